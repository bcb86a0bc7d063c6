package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LapakSync/lapaksync_api/internal/service"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// ClientHandler exposes merchant onboarding and credential management to the
// admin panel. Responses from onboarding and key rotation are the only places
// plaintext key material ever appears.
type ClientHandler struct {
	clientSvc *service.ClientService
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(clientSvc *service.ClientService) *ClientHandler {
	return &ClientHandler{clientSvc: clientSvc}
}

// clientID parses the :id route parameter, answering the error response
// itself when it is not numeric.
func clientID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Client id must be numeric")
		return 0, false
	}
	return id, true
}

// writeClientError maps onboarding service errors to the response envelope.
func writeClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrClientNotFound):
		utils.Error(c, 404, "CLIENT_NOT_FOUND", "Client not found")
	case errors.Is(err, service.ErrClientExists):
		utils.Error(c, 409, "CLIENT_EXISTS", "Client id already taken")
	case errors.Is(err, service.ErrInvalidCallbackURL):
		utils.Error(c, 400, "INVALID_CALLBACK_URL", "Callback URL must be a valid https endpoint")
	case errors.Is(err, service.ErrUnknownKeyKind):
		utils.Error(c, 400, "INVALID_KEY_KIND", "keyKind must be live, sandbox or webhook")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Client operation failed")
	}
}

// CreateClient handles POST /v1/admin/clients
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "clientId and name are required")
		return
	}

	client, err := h.clientSvc.Onboard(&req)
	if err != nil {
		writeClientError(c, err)
		return
	}
	utils.Success(c, 201, "Client onboarded", client)
}

// GetClient handles GET /v1/admin/clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	client, err := h.clientSvc.Get(id)
	if err != nil {
		writeClientError(c, err)
		return
	}
	utils.Success(c, 200, "Client retrieved", client)
}

// GetClientByClientID handles GET /v1/admin/clients/by-client-id/:client_id
func (h *ClientHandler) GetClientByClientID(c *gin.Context) {
	client, err := h.clientSvc.GetByClientID(c.Param("client_id"))
	if err != nil {
		writeClientError(c, err)
		return
	}
	utils.Success(c, 200, "Client retrieved", client)
}

// ListClients handles GET /v1/admin/clients
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientSvc.List()
	if err != nil {
		writeClientError(c, err)
		return
	}
	utils.Success(c, 200, "Clients retrieved", gin.H{
		"clients": clients,
		"total":   len(clients),
	})
}

// UpdateClient handles PUT /v1/admin/clients/:id
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	var req service.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	client, err := h.clientSvc.Update(id, &req)
	if err != nil {
		writeClientError(c, err)
		return
	}
	utils.Success(c, 200, "Client updated", client)
}

// RegenerateKeys handles POST /v1/admin/clients/:id/regenerate
func (h *ClientHandler) RegenerateKeys(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}

	var req struct {
		KeyKind service.KeyKind `json:"keyKind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "keyKind is required")
		return
	}

	client, err := h.clientSvc.RotateKey(id, req.KeyKind)
	if err != nil {
		writeClientError(c, err)
		return
	}
	utils.Success(c, 200, "Key rotated", client)
}
