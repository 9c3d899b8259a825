package handler

import (
	"errors"
	"net/http"
	"time"

	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/dto"
	"clientadmin/internal/app/export"
	"clientadmin/internal/app/licensing"
	"clientadmin/internal/app/state"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// licenseRefs are the records a license form points at.
type licenseRefs struct {
	client  ds.Client
	sub     ds.Subscription
	product ds.Product
}

// resolveRefs finds the client, plan and product named by a license form in the cached collections.
func (h *Handler) resolveRefs(c *gin.Context, req dto.LicenseRequest) (licenseRefs, bool) {
	var (
		refs  licenseRefs
		found bool
	)
	if req.ClientCompID > 0 {
		refs.client, found = h.Store.Clients.Lookup(req.ClientCompID)
	} else {
		refs.client, found = h.Store.Clients.LookupKey(req.ClientCompCode)
	}
	if !found {
		h.errorResponse(c, http.StatusBadRequest, "unknown client")
		return refs, false
	}
	if refs.sub, found = h.Store.Subscriptions.Lookup(req.SubscriptionID); !found {
		h.errorResponse(c, http.StatusBadRequest, "unknown subscription")
		return refs, false
	}
	if refs.product, found = h.Store.Products.Lookup(req.MainAppID); !found {
		h.errorResponse(c, http.StatusBadRequest, "unknown product")
		return refs, false
	}
	return refs, true
}

// GetLicenses lists licenses with client, product and plan labels
// @Summary List licenses
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Param query query string false "Search by client code"
// @Param refresh query bool false "Reload from the backend first"
// @Success 200 {object} dto.List[state.LicenseView]
// @Router /api/licenses [get]
func (h *Handler) GetLicenses(c *gin.Context) {
	licenses := h.Store.Licenses
	stale := refresh(c, licenses.Load)

	snap := licenses.Snapshot()
	items := snap.Items
	if query := searchQuery(c); query != "" {
		items = licenses.Filter(func(l ds.License) bool { return contains(query, l.ClientCompCode) })
	}
	views := h.Store.ResolveLicenses(items)

	c.JSON(http.StatusOK, dto.List[state.LicenseView]{
		Items:    views,
		Total:    len(views),
		Loading:  snap.Loading,
		Creating: snap.Creating,
		Updating: snap.Updating,
		Deleting: snap.Deleting,
		Stale:    stale,
	})
}

// GetLicense
// @Summary Get license
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "License ID"
// @Success 200 {object} state.LicenseView
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/licenses/{id} [get]
func (h *Handler) GetLicense(c *gin.Context) {
	license, ok := existing(h, c, h.Store.Licenses.Container)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Store.ResolveLicense(license))
}

// CreateLicense issues a license; users and dates come from the plan
// @Summary Create license
// @Tags Licenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LicenseRequest true "License"
// @Success 201 {object} state.LicenseView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/licenses [post]
func (h *Handler) CreateLicense(c *gin.Context) {
	var req dto.LicenseRequest
	if !h.bind(c, &req) {
		return
	}
	refs, ok := h.resolveRefs(c, req)
	if !ok {
		return
	}

	draft := licensing.NewDraft(h.Clock)
	draft.SelectClient(refs.client)
	draft.SelectProduct(refs.product)
	draft.SelectSubscription(refs.sub)
	draft.FormEndPoint = req.FormEndPoint
	draft.IsActive = dto.Active(req.IsActive, true)

	create, err := draft.CreateRequest()
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	created, ok := h.Store.Licenses.Create(c.Request.Context(), create)
	if !ok {
		h.errorResponse(c, http.StatusBadGateway, state.LicenseEntity.Failed("create"))
		return
	}
	c.JSON(http.StatusCreated, h.Store.ResolveLicense(created))
}

// UpdateLicense edits a license. Dates follow the plan from the stored start,
// or from today when renew is set.
// @Summary Update license
// @Tags Licenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "License ID"
// @Param request body dto.LicenseRequest true "License"
// @Success 200 {object} state.LicenseView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/licenses/{id} [put]
func (h *Handler) UpdateLicense(c *gin.Context) {
	current, ok := existing(h, c, h.Store.Licenses.Container)
	if !ok {
		return
	}
	var req dto.LicenseRequest
	if !h.bind(c, &req) {
		return
	}
	refs, ok := h.resolveRefs(c, req)
	if !ok {
		return
	}

	draft := licensing.EditDraft(current, h.Clock)
	draft.SelectClient(refs.client)
	draft.SelectProduct(refs.product)
	draft.SelectSubscription(refs.sub)
	if req.Renew {
		draft.ToggleRenew(refs.sub)
	}
	draft.FormEndPoint = req.FormEndPoint
	draft.IsActive = dto.Active(req.IsActive, current.IsActive)

	update, err := draft.UpdateRequest()
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	h.applyLicenseUpdate(c, update)
}

func (h *Handler) applyLicenseUpdate(c *gin.Context, update ds.UpdateLicenseRequest) {
	licenses := h.Store.Licenses
	if !licenses.Update(c.Request.Context(), update) {
		h.errorResponse(c, http.StatusBadGateway, state.LicenseEntity.Failed("update"))
		return
	}
	if updated, ok := licenses.Lookup(update.ID()); ok {
		c.JSON(http.StatusOK, h.Store.ResolveLicense(updated))
		return
	}
	h.successResponse(c, http.StatusOK, state.LicenseEntity.Succeeded("updated"), nil)
}

// DeleteLicense
// @Summary Delete license
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "License ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/licenses/{id} [delete]
func (h *Handler) DeleteLicense(c *gin.Context) {
	deleteEntity(h, c, h.Store.Licenses.Container)
}

// renewal computes the renewal of the license in the id parameter on its current plan.
func (h *Handler) renewal(c *gin.Context) (licensing.Renewal, ds.UpdateLicenseRequest, bool) {
	current, ok := existing(h, c, h.Store.Licenses.Container)
	if !ok {
		return licensing.Renewal{}, ds.UpdateLicenseRequest{}, false
	}
	sub, found := h.Store.Subscriptions.Lookup(current.SubscriptionID)
	if !found {
		h.errorResponse(c, http.StatusConflict, "subscription of this license is not available")
		return licensing.Renewal{}, ds.UpdateLicenseRequest{}, false
	}

	renewal, update, err := licensing.Renew(current, sub, h.Clock)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, licensing.ErrIncompleteDraft) {
			status = http.StatusConflict
		}
		h.errorResponse(c, status, err.Error())
		return licensing.Renewal{}, ds.UpdateLicenseRequest{}, false
	}
	return renewal, update, true
}

// GetLicenseRenewal previews a renewal
// @Summary Preview renewal
// @Description Stored validity window next to the one a renewal from today would give
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "License ID"
// @Success 200 {object} licensing.Renewal
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/licenses/{id}/renewal [get]
func (h *Handler) GetLicenseRenewal(c *gin.Context) {
	renewal, _, ok := h.renewal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, renewal)
}

// RenewLicense renews a license on its current plan from today
// @Summary Renew license
// @Tags Licenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "License ID"
// @Success 200 {object} state.LicenseView
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/licenses/{id}/renewal [post]
func (h *Handler) RenewLicense(c *gin.Context) {
	_, update, ok := h.renewal(c)
	if !ok {
		return
	}
	h.applyLicenseUpdate(c, update)
}

// UpdateLicensePlan moves a license onto another plan
// @Summary Update license plan
// @Tags Licenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "License ID"
// @Param request body dto.UpdatePlanRequest true "New plan"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/licenses/{id}/update-plan [post]
func (h *Handler) UpdateLicensePlan(c *gin.Context) {
	licenses := h.Store.Licenses
	current, ok := existing(h, c, licenses.Container)
	if !ok {
		return
	}
	var req dto.UpdatePlanRequest
	if !h.bind(c, &req) {
		return
	}
	if _, found := h.Store.Subscriptions.Lookup(req.SubscriptionID); !found {
		h.errorResponse(c, http.StatusBadRequest, "unknown subscription")
		return
	}

	mainAppID := current.MainAppID
	if req.MainAppID > 0 {
		mainAppID = req.MainAppID
	}
	ok = licenses.UpdatePlan(c.Request.Context(), ds.UpdatePlanRequest{
		ClientCompCode: current.ClientCompCode,
		SubscriptionID: req.SubscriptionID,
		MainAppID:      mainAppID,
		IsActive:       dto.Active(req.IsActive, current.IsActive),
	})
	if !ok {
		h.errorResponse(c, http.StatusBadGateway, state.PlanUpdateFailed)
		return
	}

	var data interface{}
	if updated, found := licenses.Lookup(current.ClientSubscriptionID); found {
		data = h.Store.ResolveLicense(updated)
	}
	h.successResponse(c, http.StatusOK, state.PlanUpdated, data)
}

// ExportLicenses renders the license list as XLSX
// @Summary Export licenses
// @Description Uploads the report and returns a download link when object storage is configured, streams it otherwise
// @Tags Licenses
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {object} dto.ExportResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/licenses/export [get]
func (h *Handler) ExportLicenses(c *gin.Context) {
	views := h.Store.ResolveLicenses(h.Store.Licenses.Items())
	buf, err := export.LicenseReport(views)
	if err != nil {
		logrus.Error("Error rendering license report: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "failed to render report")
		return
	}
	filename := export.FileName(h.now())

	if h.Reports == nil {
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, export.ContentType, buf.Bytes())
		return
	}

	ctx := c.Request.Context()
	object, err := h.Reports.UploadReport(ctx, filename, export.ContentType, buf, int64(buf.Len()))
	if err != nil {
		logrus.Error("Error uploading license report: ", err)
		h.errorResponse(c, http.StatusBadGateway, "failed to store report")
		return
	}
	url, err := h.Reports.ReportURL(ctx, object)
	if err != nil {
		logrus.Error("Error signing report URL: ", err)
		h.errorResponse(c, http.StatusBadGateway, "failed to store report")
		return
	}

	c.JSON(http.StatusOK, dto.ExportResponse{
		Object:    object,
		URL:       url,
		ExpiresIn: int(time.Hour.Seconds()),
	})
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}
