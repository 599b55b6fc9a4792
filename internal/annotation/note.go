package annotation

import (
	"strings"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/core/common/validation"
	"github.com/google/uuid"
)

const DefaultTitle = "Untitled note"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) weight() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

type Note struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body,omitempty" yaml:"body,omitempty"`
	Priority  Priority  `json:"priority" yaml:"priority"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

type CreateNoteDTO struct {
	Title    string `json:"title" validate:"max=120"`
	Body     string `json:"body" validate:"max=5000"`
	Priority string `json:"priority" validate:"omitempty,oneof=high medium low"`
}

func (d CreateNoteDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Body) == "" {
		return apperrors.NewValidationFieldError("title", "title or body is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}

// NewNote fills the default title and priority.
func NewNote(dto CreateNoteDTO, now time.Time) Note {
	n := Note{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(dto.Title),
		Body:      strings.TrimSpace(dto.Body),
		Priority:  Priority(dto.Priority),
		CreatedAt: now.UTC(),
	}
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return n
}

type NotesResponse struct {
	Notes []Note `json:"notes"`
}
