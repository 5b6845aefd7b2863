package service

import (
	"context"
	"strings"
)

// IdentityClient resolves Cartridge controller names and addresses
type IdentityClient interface {
	AddressByUsername(ctx context.Context, username string) (string, error)
	UsernamesByAddresses(ctx context.Context, addresses []string) (map[string]string, error)
}

// IdentityService looks up Cartridge usernames and controller addresses
type IdentityService struct {
	client IdentityClient
}

// NewIdentityService creates a new identity service
func NewIdentityService(client IdentityClient) *IdentityService {
	return &IdentityService{client: client}
}

// AddressByUsername resolves a username to its controller address
func (s *IdentityService) AddressByUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUsernameRequired
	}
	return s.client.AddressByUsername(ctx, username)
}

// UsernamesByAddresses returns usernames keyed by normalized address. A nil
// slice is rejected; an empty one yields an empty map.
func (s *IdentityService) UsernamesByAddresses(ctx context.Context, addresses []string) (map[string]string, error) {
	if addresses == nil {
		return nil, ErrAddressesRequired
	}
	if len(addresses) == 0 {
		return map[string]string{}, nil
	}
	return s.client.UsernamesByAddresses(ctx, addresses)
}
