package company

import (
	"strings"
	"time"

	"github.com/frahmantamala/safety-management/internal/compliance"
	companyDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/company"
)

type Company struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"-"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCompany(tenantID int64, name, cnpj string) *Company {
	now := time.Now().UTC()
	return &Company{
		TenantID:  tenantID,
		Name:      strings.TrimSpace(name),
		CNPJ:      strings.TrimSpace(cnpj),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Company) ToSnapshot() compliance.Company {
	return compliance.Company{ID: c.ID, Name: c.Name}
}

func ToDataModel(c *Company) *companyDatamodel.Company {
	return &companyDatamodel.Company{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		CNPJ:      c.CNPJ,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *companyDatamodel.Company) *Company {
	return &Company{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		CNPJ:      c.CNPJ,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
