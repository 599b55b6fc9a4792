package annotation

import (
	"context"
	"net/http"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type StoreAPI interface {
	List(ctx context.Context, userID int64, priority Priority) []Note
	Create(ctx context.Context, userID int64, dto CreateNoteDTO) (*Note, error)
	Delete(ctx context.Context, userID int64, id uuid.UUID) error
}

type Handler struct {
	*transport.BaseHandler
	Store StoreAPI
}

func NewHandler(baseHandler *transport.BaseHandler, store StoreAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Store:       store,
	}
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID := apperrors.UserIDFromContext(r.Context())
	if userID == 0 {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}

	priority := Priority(r.URL.Query().Get("priority"))
	switch priority {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
	default:
		h.HandleServiceError(w, apperrors.NewValidationFieldError("priority", "priority must be one of [high medium low]", apperrors.ErrCodeInvalidFilter))
		return
	}

	h.WriteJSON(w, http.StatusOK, NotesResponse{Notes: h.Store.List(r.Context(), userID, priority)})
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID := apperrors.UserIDFromContext(r.Context())
	if userID == 0 {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}

	var dto CreateNoteDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	note, err := h.Store.Create(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := apperrors.UserIDFromContext(r.Context())
	if userID == 0 {
		h.HandleServiceError(w, apperrors.ErrInvalidToken)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, apperrors.NewValidationFieldError("id", "invalid id", apperrors.ErrCodeValidationFailed))
		return
	}

	if err := h.Store.Delete(r.Context(), userID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
