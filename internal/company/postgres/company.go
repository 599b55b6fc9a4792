package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/safety-management/internal/company"
	companyDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/company"
	"github.com/jmoiron/sqlx"
)

const companyColumns = `id, tenant_id, name, cnpj, created_at, updated_at`

// CompanyRepository writes bindvar-neutral SQL and rebinds it for the driver,
// so the same statements run on pgx and sqlite.
type CompanyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*companyDatamodel.Company, error) {
	var rows []*companyDatamodel.Company
	query := r.db.Rebind(`SELECT ` + companyColumns + ` FROM companies WHERE tenant_id = ? ORDER BY name ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, tenantID, id int64) (*companyDatamodel.Company, error) {
	query := r.db.Rebind(`SELECT ` + companyColumns + ` FROM companies WHERE tenant_id = ? AND id = ?`)
	return r.getOne(ctx, query, tenantID, id)
}

func (r *CompanyRepository) GetByName(ctx context.Context, tenantID int64, name string) (*companyDatamodel.Company, error) {
	query := r.db.Rebind(`SELECT ` + companyColumns + ` FROM companies WHERE tenant_id = ? AND LOWER(name) = LOWER(?) ORDER BY id ASC LIMIT 1`)
	return r.getOne(ctx, query, tenantID, name)
}

func (r *CompanyRepository) Create(ctx context.Context, c *companyDatamodel.Company) error {
	query := r.db.Rebind(`INSERT INTO companies (tenant_id, name, cnpj, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, query, c.TenantID, c.Name, c.CNPJ, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
}

func (r *CompanyRepository) getOne(ctx context.Context, query string, args ...interface{}) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
