package handler

import (
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/dto"

	"github.com/gin-gonic/gin"
)

func matchClient(c ds.Client, query string) bool {
	return contains(query, c.ClientCompName, c.ClientCompCode, c.ClientCompShortName)
}

// GetClients lists clients
// @Summary List clients
// @Description Active clients in backend order, filtered by name, code or short name
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param query query string false "Case-insensitive search"
// @Param refresh query bool false "Reload from the backend first"
// @Success 200 {object} dto.List[ds.Client]
// @Router /api/clients [get]
func (h *Handler) GetClients(c *gin.Context) {
	listEntities(c, h.Store.Clients, matchClient)
}

// GetClient returns one client
// @Summary Get client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} ds.Client
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/clients/{id} [get]
func (h *Handler) GetClient(c *gin.Context) {
	getEntity(h, c, h.Store.Clients)
}

// CreateClient creates a client; the backend assigns its code
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClientRequest true "Client"
// @Success 201 {object} ds.Client
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/clients [post]
func (h *Handler) CreateClient(c *gin.Context) {
	var req dto.ClientRequest
	if !h.bind(c, &req) {
		return
	}

	createEntity(h, c, h.Store.Clients, ds.CreateClientRequest{
		ClientCompName:      req.ClientCompName,
		ClientCompShortName: req.ClientCompShortName,
		IsActive:            dto.Active(req.IsActive, true),
	})
}

// UpdateClient updates a client
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param request body dto.ClientRequest true "Client"
// @Success 200 {object} ds.Client
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/clients/{id} [put]
func (h *Handler) UpdateClient(c *gin.Context) {
	current, ok := existing(h, c, h.Store.Clients)
	if !ok {
		return
	}
	var req dto.ClientRequest
	if !h.bind(c, &req) {
		return
	}

	updateEntity(h, c, h.Store.Clients, ds.UpdateClientRequest{
		ClientCompID:        current.ClientCompID,
		ClientCompName:      req.ClientCompName,
		ClientCompShortName: req.ClientCompShortName,
		IsActive:            dto.Active(req.IsActive, current.IsActive),
	})
}

// DeleteClient deactivates a client
// @Summary Delete client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/clients/{id} [delete]
func (h *Handler) DeleteClient(c *gin.Context) {
	deleteEntity(h, c, h.Store.Clients)
}
