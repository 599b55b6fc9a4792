package employee

import (
	"strings"
	"time"

	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/employee"
)

type Employee struct {
	ID                   int64      `json:"id"`
	TenantID             int64      `json:"-"`
	CompanyID            int64      `json:"company_id"`
	Name                 string     `json:"name"`
	CPF                  string     `json:"cpf"`
	Position             string     `json:"position,omitempty"`
	IsActive             bool       `json:"is_active"`
	FirstCertificateAt   *time.Time `json:"first_certificate_at,omitempty"`
	CertificateExpiresAt *time.Time `json:"certificate_expires_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewEmployee stores the CPF as bare digits so lookups ignore formatting.
func NewEmployee(tenantID, companyID int64, name, cpf, position string) *Employee {
	now := time.Now().UTC()
	return &Employee{
		TenantID:  tenantID,
		CompanyID: companyID,
		Name:      strings.TrimSpace(name),
		CPF:       validation.DigitsOnly(cpf),
		Position:  strings.TrimSpace(position),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *Employee) ToSnapshot() compliance.Employee {
	return compliance.Employee{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		Name:      e.Name,
		CPF:       e.CPF,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:                   e.ID,
		TenantID:             e.TenantID,
		CompanyID:            e.CompanyID,
		Name:                 e.Name,
		CPF:                  e.CPF,
		Position:             e.Position,
		IsActive:             e.IsActive,
		FirstCertificateAt:   e.FirstCertificateAt,
		CertificateExpiresAt: e.CertificateExpiresAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:                   e.ID,
		TenantID:             e.TenantID,
		CompanyID:            e.CompanyID,
		Name:                 e.Name,
		CPF:                  e.CPF,
		Position:             e.Position,
		IsActive:             e.IsActive,
		FirstCertificateAt:   e.FirstCertificateAt,
		CertificateExpiresAt: e.CertificateExpiresAt,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}
