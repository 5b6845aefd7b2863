package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eternumwasd/api/pkg/starknet"
)

// TokenIndexer lists minted realm token ids from the GraphQL token indexer
type TokenIndexer struct {
	client   *Client
	endpoint string
	contract string
	limit    int
}

// NewTokenIndexer creates a token indexer client for one ERC-721 contract
func NewTokenIndexer(client *Client, endpoint, contract string, limit int) *TokenIndexer {
	return &TokenIndexer{
		client:   client,
		endpoint: endpoint,
		contract: contract,
		limit:    limit,
	}
}

// Configured reports whether the indexer URL is set
func (t *TokenIndexer) Configured() bool {
	return t.endpoint != ""
}

func (t *TokenIndexer) query() string {
	return fmt.Sprintf(`
query getAllTokens {
  tokens(
    limit: %d
    contractAddress: %q
  ) {
    totalCount
    edges {
      node {
        tokenMetadata {
          __typename
          ... on ERC721__Token {
            tokenId
          }
        }
      }
    }
  }
}
`, t.limit, starknet.NormalizeAddress(t.contract))
}

// TokenIDs returns the decimal ids of every indexed token. Tokens whose id
// is missing or not hex are skipped.
func (t *TokenIndexer) TokenIDs(ctx context.Context) ([]int, error) {
	if !t.Configured() {
		return nil, ErrNotConfigured
	}

	envelope, resp, err := t.client.graphQL(ctx, "indexer.tokens", t.endpoint, t.query(), nil, nil)
	if resp != nil && !resp.ok() {
		return nil, resp.statusError()
	}
	if err != nil {
		return nil, err
	}
	if len(envelope.Errors) > 0 {
		return nil, &GraphQLError{Errors: envelope.Errors}
	}

	var data struct {
		Tokens *struct {
			Edges []struct {
				Node struct {
					TokenMetadata struct {
						TokenID string `json:"tokenId"`
					} `json:"tokenMetadata"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"tokens"`
	}
	if len(envelope.Data) == 0 || json.Unmarshal(envelope.Data, &data) != nil || data.Tokens == nil {
		return nil, fmt.Errorf("%w: tokens missing", ErrUnexpectedShape)
	}

	ids := make([]int, 0, len(data.Tokens.Edges))
	for _, edge := range data.Tokens.Edges {
		raw := edge.Node.TokenMetadata.TokenID
		if raw == "" {
			continue
		}
		id, err := starknet.ParseFelt(raw)
		if err != nil {
			continue
		}
		ids = append(ids, int(id))
	}
	return ids, nil
}
