package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eternumwasd/api/pkg/starknet"
)

// OwnerOfSelector is sn_keccak("owner_of")
const OwnerOfSelector = "0x3552df12bdc6089cf963c40c4cf56fbfd4bd14680c244d1c5494c2790f1ea5c"

// rpcUserAgent identifies owner lookups to public RPC nodes
const rpcUserAgent = "EternumWASD-OwnerUpdateClient/1.0"

type rpcCall struct {
	ID      int       `json:"id"`
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Request rpcFunctionCall `json:"request"`
	BlockID string          `json:"block_id"`
}

type rpcFunctionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

type rpcReply struct {
	Result []string  `json:"result"`
	Error  *RPCError `json:"error"`
}

// StarknetRPC calls contract view functions with ordered endpoint fallback
type StarknetRPC struct {
	client    *Client
	endpoints []string
	contract  string
}

// NewStarknetRPC creates an RPC client trying endpoints in the given order
func NewStarknetRPC(client *Client, endpoints []string, contract string) *StarknetRPC {
	return &StarknetRPC{
		client:    client,
		endpoints: endpoints,
		contract:  contract,
	}
}

// OwnerOf returns the owner of a realm token. It moves to the next endpoint
// on 429, 5xx or a transport error; any other failure ends the lookup. An
// empty result, or a non-positive realm id, yields "" with no error.
func (r *StarknetRPC) OwnerOf(ctx context.Context, realmID int) (string, error) {
	if realmID <= 0 {
		return "", nil
	}
	if len(r.endpoints) == 0 {
		return "", ErrNotConfigured
	}

	call := rpcCall{
		ID:      realmID,
		JSONRPC: "2.0",
		Method:  "starknet_call",
		Params: rpcParams{
			Request: rpcFunctionCall{
				ContractAddress:    r.contract,
				EntryPointSelector: OwnerOfSelector,
				Calldata:           []string{starknet.FeltHex(uint64(realmID)), "0x0"},
			},
			BlockID: "pending",
		},
	}

	header := http.Header{}
	header.Set("User-Agent", rpcUserAgent)

	var lastErr error
	for _, endpoint := range r.endpoints {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := r.client.postJSON(ctx, "starknet.call", endpoint, call, header)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			slog.Warn("rpc transport error, trying next endpoint", "endpoint", endpoint, "realm_id", realmID, "error", err)
			lastErr = err
			continue
		}

		if resp.Status == http.StatusTooManyRequests || resp.Status >= 500 {
			slog.Warn("rpc endpoint unavailable, trying next endpoint", "endpoint", endpoint, "realm_id", realmID, "status", resp.Status)
			lastErr = resp.statusError()
			continue
		}
		if !resp.ok() {
			return "", resp.statusError()
		}

		var reply rpcReply
		if err := json.Unmarshal(resp.Body, &reply); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if reply.Error != nil {
			return "", reply.Error
		}
		if len(reply.Result) == 0 {
			return "", nil
		}
		return reply.Result[0], nil
	}

	return "", errors.Join(ErrRPCUnavailable, lastErr)
}
