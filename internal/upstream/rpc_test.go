package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternumwasd/api/internal/testing/helpers"
)

const realmContract = "0x060e8836acbebb535dfcd237ff01f20be503aae407b67bb6e3b5869afae97156"

func rpcResult(result ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": result})
	}
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func TestStarknetRPC_OwnerOf_Payload(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, rpcResult("0xowner"))
	rpc := NewStarknetRPC(testClient(), []string{up.URL}, realmContract)

	owner, err := rpc.OwnerOf(context.Background(), 1329)
	require.NoError(t, err)
	assert.Equal(t, "0xowner", owner)

	req := up.Requests()[0]
	assert.Equal(t, "EternumWASD-OwnerUpdateClient/1.0", req.Header.Get("User-Agent"))

	var call rpcCall
	require.NoError(t, json.Unmarshal(req.Body, &call))
	assert.Equal(t, 1329, call.ID)
	assert.Equal(t, "2.0", call.JSONRPC)
	assert.Equal(t, "starknet_call", call.Method)
	assert.Equal(t, "pending", call.Params.BlockID)
	assert.Equal(t, realmContract, call.Params.Request.ContractAddress)
	assert.Equal(t, OwnerOfSelector, call.Params.Request.EntryPointSelector)
	assert.Equal(t, []string{"0x531", "0x0"}, call.Params.Request.Calldata)
}

func TestStarknetRPC_OwnerOf_Fallback(t *testing.T) {
	t.Parallel()

	limited := helpers.NewUpstream(t, status(http.StatusTooManyRequests))
	broken := helpers.NewUpstream(t, status(http.StatusBadGateway))
	healthy := helpers.NewUpstream(t, rpcResult("0xabc"))

	rpc := NewStarknetRPC(testClient(), []string{limited.URL, broken.URL, healthy.URL}, realmContract)
	owner, err := rpc.OwnerOf(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", owner)

	assert.Len(t, limited.Requests(), 1)
	assert.Len(t, broken.Requests(), 1)
	assert.Len(t, healthy.Requests(), 1)
}

func TestStarknetRPC_OwnerOf_StopsOnClientError(t *testing.T) {
	t.Parallel()

	bad := helpers.NewUpstream(t, status(http.StatusBadRequest))
	healthy := helpers.NewUpstream(t, rpcResult("0xabc"))

	rpc := NewStarknetRPC(testClient(), []string{bad.URL, healthy.URL}, realmContract)
	_, err := rpc.OwnerOf(context.Background(), 7)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Empty(t, healthy.Requests())
}

func TestStarknetRPC_OwnerOf_RPCError(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]interface{}{"code": 40, "message": "Contract error"},
		})
	})

	_, err := NewStarknetRPC(testClient(), []string{up.URL}, realmContract).OwnerOf(context.Background(), 7)

	var re *RPCError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 40, re.Code)
}

func TestStarknetRPC_OwnerOf_EmptyResult(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, rpcResult())
	owner, err := NewStarknetRPC(testClient(), []string{up.URL}, realmContract).OwnerOf(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestStarknetRPC_OwnerOf_AllUnavailable(t *testing.T) {
	t.Parallel()

	a := helpers.NewUpstream(t, status(http.StatusServiceUnavailable))
	b := helpers.NewUpstream(t, status(http.StatusInternalServerError))

	_, err := NewStarknetRPC(testClient(), []string{a.URL, b.URL}, realmContract).OwnerOf(context.Background(), 7)
	require.ErrorIs(t, err, ErrRPCUnavailable)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

func TestStarknetRPC_OwnerOf_InvalidID(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, rpcResult("0xabc"))
	owner, err := NewStarknetRPC(testClient(), []string{up.URL}, realmContract).OwnerOf(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, owner)
	assert.Empty(t, up.Requests())
}

func TestStarknetRPC_OwnerOf_Cancelled(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, rpcResult("0xabc"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStarknetRPC(testClient(), []string{up.URL}, realmContract).OwnerOf(ctx, 7)
	assert.ErrorIs(t, err, context.Canceled)
}
