package handler

import (
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/dto"

	"github.com/gin-gonic/gin"
)

func matchSubscription(s ds.Subscription, query string) bool {
	return contains(query, s.SubscriptionName)
}

// GetSubscriptions lists subscription plans
// @Summary List subscriptions
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param query query string false "Search by plan name"
// @Param refresh query bool false "Reload from the backend first"
// @Success 200 {object} dto.List[ds.Subscription]
// @Router /api/subscriptions [get]
func (h *Handler) GetSubscriptions(c *gin.Context) {
	listEntities(c, h.Store.Subscriptions, matchSubscription)
}

// GetSubscription
// @Summary Get subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscription ID"
// @Success 200 {object} ds.Subscription
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/subscriptions/{id} [get]
func (h *Handler) GetSubscription(c *gin.Context) {
	getEntity(h, c, h.Store.Subscriptions)
}

// CreateSubscription
// @Summary Create subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubscriptionRequest true "Subscription plan"
// @Success 201 {object} ds.Subscription
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/subscriptions [post]
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req dto.SubscriptionRequest
	if !h.bind(c, &req) {
		return
	}

	createEntity(h, c, h.Store.Subscriptions, ds.CreateSubscriptionRequest{
		SubscriptionName:  req.SubscriptionName,
		SubscriptionPrice: req.SubscriptionPrice,
		DurationDays:      req.DurationDays,
		MaxAllowedUsers:   req.MaxAllowedUsers,
		IsActive:          dto.Active(req.IsActive, true),
	})
}

// UpdateSubscription
// @Summary Update subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscription ID"
// @Param request body dto.SubscriptionRequest true "Subscription plan"
// @Success 200 {object} ds.Subscription
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/subscriptions/{id} [put]
func (h *Handler) UpdateSubscription(c *gin.Context) {
	current, ok := existing(h, c, h.Store.Subscriptions)
	if !ok {
		return
	}
	var req dto.SubscriptionRequest
	if !h.bind(c, &req) {
		return
	}

	updateEntity(h, c, h.Store.Subscriptions, ds.UpdateSubscriptionRequest{
		SubscriptionID:    current.SubscriptionID,
		SubscriptionName:  req.SubscriptionName,
		SubscriptionPrice: req.SubscriptionPrice,
		DurationDays:      req.DurationDays,
		MaxAllowedUsers:   req.MaxAllowedUsers,
		IsActive:          dto.Active(req.IsActive, current.IsActive),
	})
}

// DeleteSubscription
// @Summary Delete subscription
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscription ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/subscriptions/{id} [delete]
func (h *Handler) DeleteSubscription(c *gin.Context) {
	deleteEntity(h, c, h.Store.Subscriptions)
}
