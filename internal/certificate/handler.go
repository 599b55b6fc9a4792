package certificate

import (
	"context"
	"fmt"
	"net/http"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/batch"
	"github.com/frahmantamala/safety-management/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, tenantID, id int64) (*Certificate, error)
	Create(ctx context.Context, tenantID int64, dto CreateCertificateDTO) (*Certificate, error)
	Update(ctx context.Context, tenantID, id int64, dto UpdateCertificateDTO) (*Certificate, error)
	Delete(ctx context.Context, tenantID, id int64) error
	List(ctx context.Context, tenantID int64, q ListQuery) (*ListResponse, error)
	Dashboard(ctx context.Context, tenantID int64) (*compliance.Report, error)
	EmployeeHistory(ctx context.Context, tenantID, employeeID int64) (*EmployeeHistory, error)
	SyncStatuses(ctx context.Context, tenantID int64) (*SyncResult, error)
	Import(ctx context.Context, tenantID int64, rows []ImportRow) (batch.Result[ImportRow], error)
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

func (h *Handler) tenant(w http.ResponseWriter, r *http.Request) (int64, bool) {
	tenantID, ok := apperrors.TenantIDFromContext(r.Context())
	if !ok {
		h.Logger.Error("tenant not found in context", "path", r.URL.Path)
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
	}
	return tenantID, ok
}

func (h *Handler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	res, err := h.Service.List(r.Context(), tenantID, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
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

func (h *Handler) CreateCertificate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var dto CreateCertificateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Create(r.Context(), tenantID, dto)
	if err != nil {
		h.Logger.Warn("CreateCertificate: service error", "error", err, "tenant_id", tenantID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCertificate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdateCertificateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	c, err := h.Service.Update(r.Context(), tenantID, id, dto)
	if err != nil {
		h.Logger.Warn("UpdateCertificate: service error", "error", err, "certificate_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCertificate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), tenantID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	report, err := h.Service.Dashboard(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) EmployeeHistory(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	employeeID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	history, err := h.Service.EmployeeHistory(r.Context(), tenantID, employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, history)
}

func (h *Handler) EmployeeHistoryCSV(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}
	employeeID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	history, err := h.Service.EmployeeHistory(r.Context(), tenantID, employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="aso-history-%d.csv"`, employeeID))
	w.WriteHeader(http.StatusOK)
	if err := WriteHistoryCSV(w, history); err != nil {
		h.Logger.Error("EmployeeHistoryCSV: failed to write csv", "error", err, "employee_id", employeeID)
	}
}

func (h *Handler) SyncStatuses(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	res, err := h.Service.SyncStatuses(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var req ImportRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if len(req.Rows) == 0 {
		h.HandleServiceError(w, apperrors.NewValidationFieldError("rows", "rows must not be empty", apperrors.ErrCodeValidationFailed))
		return
	}

	res, err := h.Service.Import(r.Context(), tenantID, req.Rows)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if len(res.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	h.WriteJSON(w, status, res)
}
