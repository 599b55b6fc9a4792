package postgres

import (
	"context"
	"errors"
	"time"

	employeeDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/safety-management/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, tenantID, id int64) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "tenant_id = ? AND id = ?", tenantID, id)
}

func (r *EmployeeRepository) GetByCPF(ctx context.Context, tenantID int64, cpf string) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "tenant_id = ? AND cpf = ?", tenantID, cpf)
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) UpdateCertificateSnapshot(ctx context.Context, tenantID, id int64, firstIssuedAt, latestExpiresAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"first_certificate_at":   firstIssuedAt,
			"certificate_expires_at": latestExpiresAt,
			"updated_at":             time.Now().UTC(),
		}).Error
}

func (r *EmployeeRepository) first(ctx context.Context, query string, args ...interface{}) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where(query, args...).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
