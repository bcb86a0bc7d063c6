package service

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/LapakSync/lapaksync_api/internal/models"
	"github.com/LapakSync/lapaksync_api/internal/repository"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// Onboarding errors surfaced to the admin API.
var (
	ErrClientExists       = errors.New("client id already taken")
	ErrInvalidCallbackURL = errors.New("callback url must be a valid https endpoint")
	ErrUnknownKeyKind     = errors.New("unknown key kind")
)

// KeyKind selects which credential RotateKey replaces.
type KeyKind string

const (
	KeyLive    KeyKind = "live"
	KeySandbox KeyKind = "sandbox"
	KeyWebhook KeyKind = "webhook"
)

// ClientService onboards merchants and manages their credentials. A merchant
// gets a live key, a sandbox key and a webhook secret at onboarding; the
// optional Meta business link and default catalog are bookkeeping for the
// admin panel, pushes always address catalogs explicitly.
type ClientService struct {
	clientRepo *repository.ClientRepository
}

// NewClientService constructs a ClientService.
func NewClientService(clientRepo *repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// OnboardRequest is the admin request to onboard a merchant.
type OnboardRequest struct {
	ClientID       string   `json:"clientId" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	CallbackURL    string   `json:"callbackUrl"`
	MetaBusinessID string   `json:"metaBusinessId"`
	DefaultCatalog string   `json:"defaultCatalogId"`
	IPWhitelist    []string `json:"ipWhitelist"`
}

// UpdateRequest carries partial merchant updates; zero values leave the
// corresponding field untouched, except IPWhitelist where a non-nil empty
// slice clears the whitelist.
type UpdateRequest struct {
	Name           string   `json:"name"`
	CallbackURL    string   `json:"callbackUrl"`
	MetaBusinessID string   `json:"metaBusinessId"`
	DefaultCatalog string   `json:"defaultCatalogId"`
	IPWhitelist    []string `json:"ipWhitelist"`
	IsActive       *bool    `json:"isActive"`
}

// Onboard registers a merchant and issues its credential set. The plaintext
// keys are returned exactly once, on the created record.
func (s *ClientService) Onboard(req *OnboardRequest) (*models.Client, error) {
	if existing, _ := s.clientRepo.GetByClientID(req.ClientID); existing != nil {
		return nil, ErrClientExists
	}
	if req.CallbackURL != "" && !validCallbackURL(req.CallbackURL) {
		return nil, ErrInvalidCallbackURL
	}

	liveKey, err := utils.GenerateLiveKey()
	if err != nil {
		return nil, fmt.Errorf("failed to issue live key: %w", err)
	}
	sandboxKey, err := utils.GenerateSandboxKey()
	if err != nil {
		return nil, fmt.Errorf("failed to issue sandbox key: %w", err)
	}
	secret, err := utils.GenerateWebhookSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to issue webhook secret: %w", err)
	}

	client := &models.Client{
		ClientID:       req.ClientID,
		Name:           req.Name,
		APIKey:         liveKey,
		SandboxKey:     sandboxKey,
		MetaBusinessID: req.MetaBusinessID,
		DefaultCatalog: req.DefaultCatalog,
		CallbackURL:    req.CallbackURL,
		CallbackSecret: secret,
		IPWhitelist:    req.IPWhitelist,
		IsActive:       true,
	}
	if err := s.clientRepo.Create(client); err != nil {
		return nil, err
	}
	return client, nil
}

// Get retrieves a merchant by row id.
func (s *ClientService) Get(id int) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// GetByClientID retrieves a merchant by its public client identifier.
func (s *ClientService) GetByClientID(clientID string) (*models.Client, error) {
	client, err := s.clientRepo.GetByClientID(clientID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// List returns all onboarded merchants.
func (s *ClientService) List() ([]*models.Client, error) {
	return s.clientRepo.List()
}

// Update applies a partial merchant update.
func (s *ClientService) Update(id int, req *UpdateRequest) (*models.Client, error) {
	client, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.CallbackURL != "" {
		if !validCallbackURL(req.CallbackURL) {
			return nil, ErrInvalidCallbackURL
		}
		client.CallbackURL = req.CallbackURL
	}
	if req.Name != "" {
		client.Name = req.Name
	}
	if req.MetaBusinessID != "" {
		client.MetaBusinessID = req.MetaBusinessID
	}
	if req.DefaultCatalog != "" {
		client.DefaultCatalog = req.DefaultCatalog
	}
	if req.IPWhitelist != nil {
		client.IPWhitelist = req.IPWhitelist
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, err
	}
	return client, nil
}

// RotateKey replaces one of the merchant's credentials. A rotated live or
// sandbox key cuts over immediately; in-flight requests signed with the old
// key fail on their next attempt.
func (s *ClientService) RotateKey(id int, kind KeyKind) (*models.Client, error) {
	client, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KeyLive:
		client.APIKey, err = utils.GenerateLiveKey()
	case KeySandbox:
		client.SandboxKey, err = utils.GenerateSandboxKey()
	case KeyWebhook:
		client.CallbackSecret, err = utils.GenerateWebhookSecret()
	default:
		return nil, ErrUnknownKeyKind
	}
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, err
	}
	return client, nil
}

// validCallbackURL accepts only absolute https endpoints. Webhooks carry
// signed payloads, and the signature is worthless over plaintext transport.
func validCallbackURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}
