package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage   `json:"data"`
	Errors []json.RawMessage `json:"errors"`
}

// graphQL posts a query and returns the decoded envelope together with the
// raw reply. It does not interpret the HTTP status; callers decide.
func (c *Client) graphQL(ctx context.Context, span, endpoint, query string, vars map[string]interface{}, header http.Header) (*graphQLResponse, *response, error) {
	resp, err := c.postJSON(ctx, span, endpoint, graphQLRequest{Query: query, Variables: vars}, header)
	if err != nil {
		return nil, nil, err
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, resp, fmt.Errorf("decode graphql response: %w", err)
	}
	return &envelope, resp, nil
}
