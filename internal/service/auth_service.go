package service

import (
	"net"

	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/repository"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// clientStore is the merchant lookup the authenticator needs.
type clientStore interface {
	FindByKey(key string) (*models.Client, error)
}

// AuthService authenticates merchant API requests: key lookup, client-id
// header cross-check, and source IP whitelisting.
type AuthService struct {
	clients clientStore
}

// NewAuthService constructs a new AuthService.
func NewAuthService(clients clientStore) *AuthService {
	return &AuthService{clients: clients}
}

// Authenticate resolves the API key to a merchant and enforces the merchant's
// access policy. It returns the merchant and whether the sandbox key was
// used. Failures come back as the sentinel errors in internal/utils so the
// middleware can map them to response codes:
//
//	ErrInvalidToken  - unknown or missing key
//	ErrInvalidClient - inactive merchant or client-id header mismatch
//	ErrInvalidIP     - source address not whitelisted
func (s *AuthService) Authenticate(apiKey, clientIDHeader, sourceIP string) (*models.Client, bool, error) {
	if apiKey == "" {
		return nil, false, utils.ErrInvalidToken
	}

	client, err := s.clients.FindByKey(apiKey)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, utils.ErrInvalidToken
		}
		return nil, false, err
	}

	if !client.IsActive || client.ClientID != clientIDHeader {
		return nil, false, utils.ErrInvalidClient
	}
	if !ipAllowed(client.IPWhitelist, sourceIP) {
		return nil, false, utils.ErrInvalidIP
	}

	return client, client.IsSandboxKey(apiKey), nil
}

// ipAllowed matches the source address against whitelist entries, which may
// be exact IPs or CIDR blocks. An empty whitelist denies everything.
func ipAllowed(whitelist []string, sourceIP string) bool {
	ip := net.ParseIP(sourceIP)
	for _, entry := range whitelist {
		if entry == sourceIP {
			return true
		}
		if ip == nil {
			continue
		}
		if _, block, err := net.ParseCIDR(entry); err == nil && block.Contains(ip) {
			return true
		}
	}
	return false
}
