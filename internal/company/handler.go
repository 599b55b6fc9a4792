package company

import (
	"context"
	"net/http"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, tenantID int64) ([]*Company, error)
	Get(ctx context.Context, tenantID, id int64) (*Company, error)
	Create(ctx context.Context, tenantID int64, dto CreateCompanyDTO) (*Company, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := apperrors.TenantIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}

	companies, err := h.Service.List(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CompaniesResponse{Companies: companies})
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := apperrors.TenantIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Get(r.Context(), tenantID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := apperrors.TenantIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}

	var dto CreateCompanyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Create(r.Context(), tenantID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}
