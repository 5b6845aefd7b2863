package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressByUsername_Required(t *testing.T) {
	t.Parallel()

	_, err := NewIdentityService(&mockIdentity{}).AddressByUsername(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrUsernameRequired)
}

func TestAddressByUsername_Trims(t *testing.T) {
	t.Parallel()

	var asked string
	client := &mockIdentity{
		addressFunc: func(_ context.Context, u string) (string, error) {
			asked = u
			return "0xabc", nil
		},
	}
	addr, err := NewIdentityService(client).AddressByUsername(context.Background(), " loaf ")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", addr)
	assert.Equal(t, "loaf", asked)
}

func TestUsernamesByAddresses(t *testing.T) {
	t.Parallel()

	called := false
	client := &mockIdentity{
		usernamesFunc: func(context.Context, []string) (map[string]string, error) {
			called = true
			return map[string]string{"0x1": "one"}, nil
		},
	}
	svc := NewIdentityService(client)
	ctx := context.Background()

	_, err := svc.UsernamesByAddresses(ctx, nil)
	assert.ErrorIs(t, err, ErrAddressesRequired)

	out, err := svc.UsernamesByAddresses(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, called)

	out, err = svc.UsernamesByAddresses(ctx, []string{"0x01"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"0x1": "one"}, out)
}
