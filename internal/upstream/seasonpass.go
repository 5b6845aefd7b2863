package upstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/eternumwasd/api/internal/model"
)

// MetadataQuery selects the realm NFT tokens with their JSON metadata
func MetadataQuery(contract string) string {
	return "select *\nfrom tokens\nwhere contract_address = \"" + contract + "\"\n"
}

// OwnerQuery selects the season pass balances of 1 joined with their tokens
func OwnerQuery(contract string) string {
	return "select * \nfrom token_balances\n" +
		"inner join tokens on token_balances.token_id = tokens.contract_address||\":\"||tokens.token_id\n" +
		"where token_balances.contract_address = \"" + contract + "\"\n" +
		"and token_balances.balance = \"0x0000000000000000000000000000000000000000000000000000000000000001\"\n;"
}

// TokenRow is one row of the realm metadata query
type TokenRow struct {
	TokenID  string
	Metadata string
}

// OwnerRow is one row of the season pass owner query
type OwnerRow struct {
	TokenID        string
	AccountAddress string
}

// SeasonPassClient reads realm metadata and season pass holders from the
// season pass SQL indexer
type SeasonPassClient struct {
	sql              *SQLClient
	passContract     string
	metadataContract string
}

// NewSeasonPassClient creates a season pass client
func NewSeasonPassClient(sql *SQLClient, passContract, metadataContract string) *SeasonPassClient {
	return &SeasonPassClient{
		sql:              sql,
		passContract:     passContract,
		metadataContract: metadataContract,
	}
}

// Configured reports whether both the indexer and the pass contract are set
func (c *SeasonPassClient) Configured() bool {
	return c.sql.Configured() && c.passContract != ""
}

// Metadata returns every realm token row
func (c *SeasonPassClient) Metadata(ctx context.Context) ([]TokenRow, error) {
	rows, err := c.rows(ctx, "metadata", MetadataQuery(c.metadataContract))
	if err != nil {
		return nil, err
	}

	out := make([]TokenRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, TokenRow{TokenID: r.String("token_id"), Metadata: r.String("metadata")})
	}
	return out, nil
}

// Owners returns every season pass holder row
func (c *SeasonPassClient) Owners(ctx context.Context) ([]OwnerRow, error) {
	if c.passContract == "" {
		return nil, ErrNotConfigured
	}
	rows, err := c.rows(ctx, "owners", OwnerQuery(c.passContract))
	if err != nil {
		return nil, err
	}

	out := make([]OwnerRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, OwnerRow{TokenID: r.String("token_id"), AccountAddress: r.String("account_address")})
	}
	return out, nil
}

func (c *SeasonPassClient) rows(ctx context.Context, subject, statement string) ([]model.Row, error) {
	rows, err := c.sql.LooseRows(ctx, statement)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("SQL query for %s failed: %d %s - %s", subject, se.Status, se.StatusText, se.Body)
		}
		if errors.Is(err, ErrUnexpectedShape) {
			return nil, fmt.Errorf("expected SQL response for %s to be an array: %w", subject, err)
		}
		return nil, fmt.Errorf("SQL query for %s failed: %w", subject, err)
	}
	return rows, nil
}
