package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/dto"
	"clientadmin/internal/app/licensing"
	"clientadmin/internal/app/middleware"
	"clientadmin/internal/app/notify"
	"clientadmin/internal/app/repository"
	"clientadmin/internal/app/state"

	"github.com/gin-gonic/gin"
)

// Signer checks staff credentials.
type Signer interface {
	Signin(ctx context.Context, req ds.SigninRequest) (ds.User, error)
}

// ReportStore keeps exported reports and hands out download links.
type ReportStore interface {
	UploadReport(ctx context.Context, filename, contentType string, data io.Reader, size int64) (string, error)
	ReportURL(ctx context.Context, object string) (string, error)
}

// AuditLog reads the notification audit trail.
type AuditLog interface {
	Recent(ctx context.Context, f repository.AuditFilter) ([]ds.AuditEntry, error)
}

// Handler serves the admin screens. It reads and changes entities only through Store.
type Handler struct {
	Store  *state.Store
	Feed   *notify.Feed
	Auth   *middleware.AuthMiddleware
	Signer Signer
	Clock  licensing.Clock

	// optional
	Reports ReportStore
	Audit   AuditLog
}

func NewHandler(store *state.Store, feed *notify.Feed, auth *middleware.AuthMiddleware, signer Signer) *Handler {
	return &Handler{
		Store:  store,
		Feed:   feed,
		Auth:   auth,
		Signer: signer,
	}
}

// ============ Helpers ============

func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func (h *Handler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

func (h *Handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.errorResponse(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// ensureLoaded performs the first load of every collection before the first admin request.
func (h *Handler) ensureLoaded(c *gin.Context) {
	h.Store.EnsureLoaded(c.Request.Context())
	c.Next()
}

// contains matches the lower-cased query against any of fields, case-insensitively.
func contains(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func searchQuery(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.Query("query")))
}

func wantsRefresh(c *gin.Context) bool {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	return refresh
}

// refresh reloads when the request asks for it and reports whether the
// collection is stale afterwards.
func refresh(c *gin.Context, load func(context.Context) bool) bool {
	if !wantsRefresh(c) {
		return false
	}
	return !load(c.Request.Context())
}

// ============ Generic entity screens ============

func listEntities[T state.Record, C any, U state.Record](c *gin.Context, box *state.Container[T, C, U], match func(T, string) bool) {
	stale := refresh(c, box.Load)

	snap := box.Snapshot()
	items := snap.Items
	if query := searchQuery(c); query != "" {
		items = box.Filter(func(item T) bool { return match(item, query) })
	}

	c.JSON(http.StatusOK, dto.List[T]{
		Items:    items,
		Total:    len(items),
		Loading:  snap.Loading,
		Creating: snap.Creating,
		Updating: snap.Updating,
		Deleting: snap.Deleting,
		Stale:    stale,
	})
}

func getEntity[T state.Record, C any, U state.Record](h *Handler, c *gin.Context, box *state.Container[T, C, U]) {
	record, ok := existing(h, c, box)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, record)
}

func createEntity[T state.Record, C any, U state.Record](h *Handler, c *gin.Context, box *state.Container[T, C, U], req C) {
	created, ok := box.Create(c.Request.Context(), req)
	if !ok {
		h.errorResponse(c, http.StatusBadGateway, box.Entity().Failed("create"))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// updateEntity answers with the backend's copy of the record, or with a plain
// success when the record left the active list.
func updateEntity[T state.Record, C any, U state.Record](h *Handler, c *gin.Context, box *state.Container[T, C, U], req U) {
	entity := box.Entity()
	if !box.Update(c.Request.Context(), req) {
		h.errorResponse(c, http.StatusBadGateway, entity.Failed("update"))
		return
	}
	if record, ok := box.Lookup(req.ID()); ok {
		c.JSON(http.StatusOK, record)
		return
	}
	h.successResponse(c, http.StatusOK, entity.Succeeded("updated"), nil)
}

func deleteEntity[T state.Record, C any, U state.Record](h *Handler, c *gin.Context, box *state.Container[T, C, U]) {
	record, ok := existing(h, c, box)
	if !ok {
		return
	}
	entity := box.Entity()
	if !box.Delete(c.Request.Context(), record.ID()) {
		h.errorResponse(c, http.StatusBadGateway, entity.Failed("delete"))
		return
	}
	h.successResponse(c, http.StatusOK, entity.Succeeded("deleted"), nil)
}

// existing parses the id parameter and finds the record in the collection.
func existing[T state.Record, C any, U state.Record](h *Handler, c *gin.Context, box *state.Container[T, C, U]) (T, bool) {
	var zero T
	id, ok := h.parseID(c)
	if !ok {
		return zero, false
	}
	record, found := box.Lookup(id)
	if !found {
		h.errorResponse(c, http.StatusNotFound, box.Entity().Title+" not found")
		return zero, false
	}
	return record, true
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}
