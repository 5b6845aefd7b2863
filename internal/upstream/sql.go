package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/eternumwasd/api/internal/model"
)

// Game state statements served by the SQL indexer
const (
	TribesQuery     = `SELECT * FROM "s1_eternum-GuildMember" T1 INNER JOIN "s1_eternum-Guild" T2 ON T1.guild_id = T2.guild_id`
	ArmiesQuery     = `SELECT * FROM "s1_eternum-ExplorerTroops"`
	StructuresQuery = `select * from "s1_eternum-Structure"`
	ResourcesQuery  = `SELECT * FROM [s1_eternum-Resource] where entity_id is not null`
)

// SQLClient runs read-only SQL statements against an indexer exposing
// GET <base>?query=<statement>
type SQLClient struct {
	client  *Client
	baseURL string
}

// NewSQLClient creates a SQL client; an empty baseURL leaves it unconfigured
func NewSQLClient(client *Client, baseURL string) *SQLClient {
	return &SQLClient{client: client, baseURL: baseURL}
}

// Configured reports whether the indexer URL is set
func (s *SQLClient) Configured() bool {
	return s != nil && s.baseURL != ""
}

// StatementURL returns the request URL for a statement
func (s *SQLClient) StatementURL(statement string) string {
	sep := "?"
	if strings.Contains(s.baseURL, "?") {
		sep = "&"
	}
	return s.baseURL + sep + "query=" + url.QueryEscape(statement)
}

// Raw runs a statement and returns the JSON body untouched. Non-2xx replies
// yield a *StatusError and non-JSON replies a *ContentTypeError.
func (s *SQLClient) Raw(ctx context.Context, statement string) (json.RawMessage, error) {
	resp, err := s.fetch(ctx, statement)
	if err != nil {
		return nil, err
	}
	if !resp.isJSON() {
		return nil, &ContentTypeError{ContentType: resp.ContentType, Body: string(resp.Body)}
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("%w: invalid JSON body", ErrUnexpectedShape)
	}
	return json.RawMessage(resp.Body), nil
}

// Rows runs a statement and decodes the result as an array of rows
func (s *SQLClient) Rows(ctx context.Context, statement string) ([]model.Row, error) {
	raw, err := s.Raw(ctx, statement)
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

// LooseRows decodes the body as rows without checking the content type
func (s *SQLClient) LooseRows(ctx context.Context, statement string) ([]model.Row, error) {
	resp, err := s.fetch(ctx, statement)
	if err != nil {
		return nil, err
	}
	return decodeRows(resp.Body)
}

func (s *SQLClient) fetch(ctx context.Context, statement string) (*response, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	header := http.Header{}
	header.Set("Accept", "application/json")

	resp, err := s.client.get(ctx, "sql.query", s.StatementURL(statement), header)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.statusError()
	}
	return resp, nil
}

func decodeRows(body []byte) ([]model.Row, error) {
	var rows []model.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: expected an array of rows: %v", ErrUnexpectedShape, err)
	}
	if rows == nil {
		return nil, fmt.Errorf("%w: expected an array of rows", ErrUnexpectedShape)
	}
	return rows, nil
}
