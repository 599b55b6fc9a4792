package certificate

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/common/validation"
)

const dateLayout = "2006-01-02"

// CreateCertificateDTO carries dates as YYYY-MM-DD strings. Either date may be
// omitted; records without an expiry classify as unknown.
type CreateCertificateDTO struct {
	EmployeeID    int64  `json:"employee_id" validate:"required,gt=0"`
	CompanyID     int64  `json:"company_id" validate:"omitempty,gt=0"`
	Number        string `json:"number" validate:"omitempty,max=64"`
	Type          string `json:"type" validate:"required,oneof=admission periodic return_to_work role_change termination"`
	IssuedAt      string `json:"issued_at" validate:"omitempty,datetime=2006-01-02"`
	ExpiresAt     string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
	Fitness       string `json:"fitness" validate:"required,oneof=fit unfit fit_with_restrictions"`
	Restrictions  string `json:"restrictions" validate:"omitempty,max=500"`
	Notes         string `json:"notes" validate:"omitempty,max=2000"`
	Physician     string `json:"physician" validate:"omitempty,max=160"`
	Clinic        string `json:"clinic" validate:"omitempty,max=160"`
	AttachmentURL string `json:"attachment_url" validate:"omitempty,url"`
}

func (d CreateCertificateDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateCertificateDTO replaces every editable field; the employee is fixed.
type UpdateCertificateDTO struct {
	CompanyID     int64  `json:"company_id" validate:"omitempty,gt=0"`
	Number        string `json:"number" validate:"omitempty,max=64"`
	Type          string `json:"type" validate:"required,oneof=admission periodic return_to_work role_change termination"`
	IssuedAt      string `json:"issued_at" validate:"omitempty,datetime=2006-01-02"`
	ExpiresAt     string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
	Fitness       string `json:"fitness" validate:"required,oneof=fit unfit fit_with_restrictions"`
	Restrictions  string `json:"restrictions" validate:"omitempty,max=500"`
	Notes         string `json:"notes" validate:"omitempty,max=2000"`
	Physician     string `json:"physician" validate:"omitempty,max=160"`
	Clinic        string `json:"clinic" validate:"omitempty,max=160"`
	AttachmentURL string `json:"attachment_url" validate:"omitempty,url"`
}

func (d UpdateCertificateDTO) Validate() error {
	return validation.Struct(d)
}

func (d UpdateCertificateDTO) apply(c *Certificate) {
	if d.CompanyID > 0 {
		c.CompanyID = d.CompanyID
	}
	c.Number = strings.TrimSpace(d.Number)
	c.Type = compliance.CertificateType(d.Type)
	c.IssuedAt = parseDate(d.IssuedAt)
	c.ExpiresAt = parseDate(d.ExpiresAt)
	c.Fitness = compliance.Fitness(d.Fitness)
	c.Restrictions = d.Restrictions
	c.Notes = d.Notes
	c.Physician = strings.TrimSpace(d.Physician)
	c.Clinic = strings.TrimSpace(d.Clinic)
	c.AttachmentURL = d.AttachmentURL
}

func (d CreateCertificateDTO) update() UpdateCertificateDTO {
	return UpdateCertificateDTO{
		CompanyID:     d.CompanyID,
		Number:        d.Number,
		Type:          d.Type,
		IssuedAt:      d.IssuedAt,
		ExpiresAt:     d.ExpiresAt,
		Fitness:       d.Fitness,
		Restrictions:  d.Restrictions,
		Notes:         d.Notes,
		Physician:     d.Physician,
		Clinic:        d.Clinic,
		AttachmentURL: d.AttachmentURL,
	}
}

// parseDate expects an already validated value; empty means unknown.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// ImportRow is one line of a bulk import. Company and employee are matched by
// name and CPF and created when missing.
type ImportRow struct {
	CompanyName  string `json:"company_name" validate:"required,max=160"`
	EmployeeName string `json:"employee_name" validate:"required,max=160"`
	CPF          string `json:"cpf" validate:"required,cpf"`
	Number       string `json:"number" validate:"omitempty,max=64"`
	Type         string `json:"type" validate:"required,oneof=admission periodic return_to_work role_change termination"`
	IssuedAt     string `json:"issued_at" validate:"omitempty,datetime=2006-01-02"`
	ExpiresAt    string `json:"expires_at" validate:"omitempty,datetime=2006-01-02"`
	Fitness      string `json:"fitness" validate:"required,oneof=fit unfit fit_with_restrictions"`
	Physician    string `json:"physician" validate:"omitempty,max=160"`
	Clinic       string `json:"clinic" validate:"omitempty,max=160"`
}

func (r ImportRow) Validate() error {
	return validation.Struct(r)
}

type ImportRequest struct {
	Rows []ImportRow `json:"rows"`
}

// ListQuery is the parsed form of the list endpoint's query string.
type ListQuery struct {
	Filters compliance.FilterSet
	// History keeps superseded certificates instead of reducing to the
	// latest one per employee.
	History bool
}

// ParseListQuery reads filters from query parameters. Unknown parameters are
// ignored; malformed values are reported per field.
func ParseListQuery(v url.Values) (ListQuery, error) {
	var (
		q    ListQuery
		errs []apperrors.ValidationError
	)
	bad := func(field, msg string, code apperrors.ErrorCode) {
		errs = append(errs, apperrors.ValidationError{Field: field, Message: msg, Code: string(code)})
	}

	if s := v.Get("employee_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			q.Filters.EmployeeID = &id
		} else {
			bad("employee_id", "employee_id must be an integer", apperrors.ErrCodeInvalidFilter)
		}
	}
	if s := v.Get("company_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			q.Filters.CompanyID = &id
		} else {
			bad("company_id", "company_id must be an integer", apperrors.ErrCodeInvalidFilter)
		}
	}
	if s := v.Get("type"); s != "" {
		if t := compliance.CertificateType(s); t.Valid() {
			q.Filters.Type = t
		} else {
			bad("type", "unknown certificate type", apperrors.ErrCodeInvalidType)
		}
	}
	if s := v.Get("status"); s != "" {
		switch st := compliance.PersistedStatus(s); st {
		case compliance.StatusActive, compliance.StatusOverdue:
			q.Filters.Status = st
		default:
			bad("status", "status must be active or overdue", apperrors.ErrCodeInvalidFilter)
		}
	}
	q.Filters.CPF = v.Get("cpf")
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"expires_from", &q.Filters.ExpiresFrom}, {"expires_to", &q.Filters.ExpiresTo}} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			bad(p.name, p.name+" must be YYYY-MM-DD", apperrors.ErrCodeInvalidDate)
			continue
		}
		*p.dst = &t
	}
	if s := v.Get("overdue_only"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			bad("overdue_only", "overdue_only must be a boolean", apperrors.ErrCodeInvalidFilter)
		}
		q.Filters.OverdueOnly = b
	}
	if s := v.Get("expiring_within_days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			bad("expiring_within_days", "expiring_within_days must be a non-negative integer", apperrors.ErrCodeInvalidFilter)
		} else {
			q.Filters.ExpiringWithinDays = &n
		}
	}
	q.Filters.Text = v.Get("q")
	if s := v.Get("history"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			bad("history", "history must be a boolean", apperrors.ErrCodeInvalidFilter)
		}
		q.History = b
	}

	if len(errs) > 0 {
		return ListQuery{}, apperrors.NewValidationErrors(errs)
	}
	return q, nil
}

type ListResponse struct {
	Certificates []compliance.ListItem `json:"certificates"`
	Count        int                   `json:"count"`
	History      bool                  `json:"history"`
}

// EmployeeHistory is the audit view of one employee. Employee is nil when the
// certificates outlived their employee record.
type EmployeeHistory struct {
	EmployeeID      int64                `json:"employee_id"`
	Employee        *compliance.Employee `json:"employee,omitempty"`
	EmployeeMissing bool                 `json:"employee_missing"`
	compliance.History
}

type SyncResult struct {
	Checked    int `json:"checked"`
	Updated    int `json:"updated"`
	NowOverdue int `json:"now_overdue"`
	NowActive  int `json:"now_active"`
}
