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

func TestCartridge_AddressByUsername(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"controller": map[string]interface{}{"address": "0x0abc"}},
		})
	})

	c := NewCartridgeClient(NewClient(0, "EternumWASD-BackendFetcher/1.0"), up.URL)
	addr, err := c.AddressByUsername(context.Background(), "loaf")
	require.NoError(t, err)
	assert.Equal(t, "0x0abc", addr)

	req := up.Requests()[0]
	assert.Equal(t, "*/*", req.Header.Get("Accept"))
	assert.Equal(t, "EternumWASD-BackendFetcher/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var body graphQLRequest
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "loaf", body.Variables["username"])
	assert.Equal(t, "SN_MAIN", body.Variables["chainId"])
	assert.Contains(t, body.Query, "controller(username: $username, chainId: $chainId)")
}

func TestCartridge_AddressByUsername_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "controller null",
			status: http.StatusOK,
			body:   `{"data":{"controller":null}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrControllerNotFound)
			},
		},
		{
			name:   "missing address",
			status: http.StatusOK,
			body:   `{"data":{"controller":{}}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedShape)
			},
		},
		{
			name:   "status with graphql errors",
			status: http.StatusBadRequest,
			body:   `{"errors":[{"message":"bad chain"},{"message":"bad user"}]}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadRequest, se.Status)
				assert.Equal(t, []string{"bad chain", "bad user"}, se.Messages)
			},
		},
		{
			name:   "status without body",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Empty(t, se.Messages)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := NewCartridgeClient(testClient(), up.URL).AddressByUsername(context.Background(), "x")
			tt.check(t, err)
		})
	}
}

func TestCartridge_UsernamesByAddresses(t *testing.T) {
	t.Parallel()

	up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"accounts": map[string]interface{}{
					"edges": []interface{}{
						map[string]interface{}{"node": map[string]interface{}{
							"username": "loaf",
							"controllers": map[string]interface{}{"edges": []interface{}{
								map[string]interface{}{"node": map[string]interface{}{"address": "0x000ABC"}},
								map[string]interface{}{"node": map[string]interface{}{"address": "0x999"}},
							}},
						}},
						map[string]interface{}{"node": map[string]interface{}{
							"username":    nil,
							"controllers": map[string]interface{}{"edges": []interface{}{}},
						}},
					},
				},
			},
		})
	})

	c := NewCartridgeClient(testClient(), up.URL)
	names, err := c.UsernamesByAddresses(context.Background(), []string{"0x0abc", "0x00DEF"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0xabc": "loaf"}, names)

	var body struct {
		Variables struct {
			Addresses []string `json:"addresses"`
		} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(up.Requests()[0].Body, &body))
	assert.Equal(t, []string{"0xabc", "0xdef"}, body.Variables.Addresses)
}

func TestCartridge_UsernamesByAddresses_Empty(t *testing.T) {
	t.Parallel()

	c := NewCartridgeClient(testClient(), "http://127.0.0.1:1")
	names, err := c.UsernamesByAddresses(context.Background(), []string{"", ""})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCartridge_UsernamesByAddresses_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		check       func(t *testing.T, err error)
	}{
		{
			name: "graphql errors", status: http.StatusOK, contentType: "application/json",
			body: `{"errors":[{"message":"nope"}]}`,
			check: func(t *testing.T, err error) {
				var ge *GraphQLError
				require.ErrorAs(t, err, &ge)
				assert.Equal(t, []string{"nope"}, ge.Messages())
			},
		},
		{
			name: "missing edges", status: http.StatusOK, contentType: "application/json",
			body: `{"data":{"accounts":{}}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnexpectedShape)
			},
		},
		{
			name: "not json", status: http.StatusOK, contentType: "text/plain",
			body: `hello`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotJSON)
			},
		},
		{
			name: "status", status: http.StatusTooManyRequests, contentType: "text/plain",
			body: `slow down`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, "Too Many Requests", se.StatusText)
				assert.Equal(t, "slow down", se.Body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			up := helpers.NewUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := NewCartridgeClient(testClient(), up.URL).UsernamesByAddresses(context.Background(), []string{"0x1"})
			tt.check(t, err)
		})
	}
}
