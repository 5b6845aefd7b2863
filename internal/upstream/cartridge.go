package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/eternumwasd/api/pkg/starknet"
)

// CartridgeChainID is the chain controllers are resolved on
const CartridgeChainID = "SN_MAIN"

const controllerQuery = `
    query Controller($username: String!, $chainId: String!) {
      controller(username: $username, chainId: $chainId) {
        address
      }
    }
  `

const accountNamesQuery = `
    query AccountNames($addresses: [String!]!) {
      accounts(where: {hasControllersWith: {addressIn: $addresses}}) {
        edges {
          node {
            username
            controllers {
              edges {
                node {
                  address
                }
              }
            }
          }
        }
      }
    }`

// CartridgeClient resolves controller addresses and usernames through the
// Cartridge identity GraphQL API
type CartridgeClient struct {
	client   *Client
	endpoint string
}

// NewCartridgeClient creates a Cartridge client
func NewCartridgeClient(client *Client, endpoint string) *CartridgeClient {
	return &CartridgeClient{client: client, endpoint: endpoint}
}

func (c *CartridgeClient) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	return h
}

// AddressByUsername returns the controller address registered for username
func (c *CartridgeClient) AddressByUsername(ctx context.Context, username string) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	vars := map[string]interface{}{
		"chainId":  CartridgeChainID,
		"username": username,
	}
	envelope, resp, err := c.client.graphQL(ctx, "cartridge.controller", c.endpoint, controllerQuery, vars, c.header())
	if resp != nil && !resp.ok() {
		se := resp.statusError()
		if envelope != nil {
			se.Messages = errorMessages(envelope.Errors)
		}
		return "", se
	}
	if err != nil {
		return "", err
	}

	var data struct {
		Controller *struct {
			Address string `json:"address"`
		} `json:"controller"`
	}
	var fields map[string]json.RawMessage
	if len(envelope.Data) == 0 || json.Unmarshal(envelope.Data, &fields) != nil {
		return "", fmt.Errorf("%w: missing data", ErrUnexpectedShape)
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	if data.Controller != nil && data.Controller.Address != "" {
		return data.Controller.Address, nil
	}
	if raw, ok := fields["controller"]; ok && string(raw) == "null" {
		return "", ErrControllerNotFound
	}
	return "", fmt.Errorf("%w: controller address missing", ErrUnexpectedShape)
}

type accountsData struct {
	Accounts *struct {
		Edges *[]struct {
			Node *struct {
				Username    *string `json:"username"`
				Controllers struct {
					Edges []struct {
						Node *struct {
							Address string `json:"address"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"controllers"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"accounts"`
}

// UsernamesByAddresses maps each requested address, normalized, to its
// Cartridge username. Addresses without a username are left out.
func (c *CartridgeClient) UsernamesByAddresses(ctx context.Context, addresses []string) (map[string]string, error) {
	requested := make(map[string]struct{}, len(addresses))
	normalized := make([]string, 0, len(addresses))
	for _, a := range addresses {
		n := starknet.NormalizeAddress(a)
		if n == "" {
			continue
		}
		normalized = append(normalized, n)
		requested[n] = struct{}{}
	}

	usernames := make(map[string]string)
	if len(normalized) == 0 {
		return usernames, nil
	}
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	resp, err := c.client.postJSON(ctx, "cartridge.account_names", c.endpoint, graphQLRequest{
		Query:     accountNamesQuery,
		Variables: map[string]interface{}{"addresses": normalized},
	}, c.header())
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.statusError()
	}
	if !resp.isJSON() {
		return nil, &ContentTypeError{ContentType: resp.ContentType, Body: string(resp.Body)}
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, &GraphQLError{Errors: envelope.Errors}
	}

	var data accountsData
	if len(envelope.Data) == 0 || json.Unmarshal(envelope.Data, &data) != nil ||
		data.Accounts == nil || data.Accounts.Edges == nil {
		return nil, fmt.Errorf("%w: accounts.edges missing", ErrUnexpectedShape)
	}

	for _, edge := range *data.Accounts.Edges {
		if edge.Node == nil || edge.Node.Username == nil || *edge.Node.Username == "" {
			continue
		}
		for _, ctrl := range edge.Node.Controllers.Edges {
			if ctrl.Node == nil || ctrl.Node.Address == "" {
				continue
			}
			addr := starknet.NormalizeAddress(ctrl.Node.Address)
			if _, ok := requested[addr]; ok {
				usernames[addr] = *edge.Node.Username
			}
		}
	}
	return usernames, nil
}
