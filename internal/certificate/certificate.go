package certificate

import (
	"time"

	"github.com/frahmantamala/safety-management/internal/compliance"
	certificateDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/certificate"
)

// Certificate is one ASO issuance owned by a tenant.
type Certificate struct {
	ID            int64                      `json:"id"`
	TenantID      int64                      `json:"-"`
	EmployeeID    int64                      `json:"employee_id"`
	CompanyID     int64                      `json:"company_id"`
	Number        string                     `json:"number,omitempty"`
	Type          compliance.CertificateType `json:"type"`
	IssuedAt      *time.Time                 `json:"issued_at,omitempty"`
	ExpiresAt     *time.Time                 `json:"expires_at,omitempty"`
	Fitness       compliance.Fitness         `json:"fitness"`
	Restrictions  string                     `json:"restrictions,omitempty"`
	Notes         string                     `json:"notes,omitempty"`
	Physician     string                     `json:"physician,omitempty"`
	Clinic        string                     `json:"clinic,omitempty"`
	AttachmentURL string                     `json:"attachment_url,omitempty"`
	Status        compliance.PersistedStatus `json:"status"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// RefreshStatus recomputes the persisted status from the expiry date.
func (c *Certificate) RefreshStatus(now time.Time) {
	c.Status = compliance.StatusFor(c.ExpiresAt, now)
}

func (c *Certificate) ToRecord() compliance.Record {
	var createdAt *time.Time
	if !c.CreatedAt.IsZero() {
		t := c.CreatedAt
		createdAt = &t
	}
	return compliance.Record{
		ID:              c.ID,
		EmployeeID:      c.EmployeeID,
		CompanyID:       c.CompanyID,
		Number:          c.Number,
		Type:            c.Type,
		IssuedAt:        c.IssuedAt,
		ExpiresAt:       c.ExpiresAt,
		Fitness:         c.Fitness,
		Restrictions:    c.Restrictions,
		Notes:           c.Notes,
		Physician:       c.Physician,
		Clinic:          c.Clinic,
		AttachmentURL:   c.AttachmentURL,
		PersistedStatus: c.Status,
		CreatedAt:       createdAt,
	}
}

func ToDataModel(c *Certificate) *certificateDatamodel.Certificate {
	return &certificateDatamodel.Certificate{
		ID:            c.ID,
		TenantID:      c.TenantID,
		EmployeeID:    c.EmployeeID,
		CompanyID:     c.CompanyID,
		Number:        c.Number,
		Type:          string(c.Type),
		IssuedAt:      c.IssuedAt,
		ExpiresAt:     c.ExpiresAt,
		Fitness:       string(c.Fitness),
		Restrictions:  c.Restrictions,
		Notes:         c.Notes,
		Physician:     c.Physician,
		Clinic:        c.Clinic,
		AttachmentURL: c.AttachmentURL,
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// FromDataModel normalizes stored dates to civil dates at UTC midnight.
func FromDataModel(m *certificateDatamodel.Certificate) *Certificate {
	return &Certificate{
		ID:            m.ID,
		TenantID:      m.TenantID,
		EmployeeID:    m.EmployeeID,
		CompanyID:     m.CompanyID,
		Number:        m.Number,
		Type:          compliance.CertificateType(m.Type),
		IssuedAt:      civil(m.IssuedAt),
		ExpiresAt:     civil(m.ExpiresAt),
		Fitness:       compliance.Fitness(m.Fitness),
		Restrictions:  m.Restrictions,
		Notes:         m.Notes,
		Physician:     m.Physician,
		Clinic:        m.Clinic,
		AttachmentURL: m.AttachmentURL,
		Status:        compliance.PersistedStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func civil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := compliance.StartOfDay(*t)
	return &d
}
