package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/safety-management/internal/certificate"
	certificateDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/certificate"
	"gorm.io/gorm"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) certificate.RepositoryAPI {
	return &CertificateRepository{db: db}
}

// ListByTenant orders by id so the reducer's tie-break by position follows
// insertion order.
func (r *CertificateRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*certificateDatamodel.Certificate, error) {
	var certs []*certificateDatamodel.Certificate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) ListByEmployee(ctx context.Context, tenantID, employeeID int64) ([]*certificateDatamodel.Certificate, error) {
	var certs []*certificateDatamodel.Certificate
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ?", tenantID, employeeID).
		Order("id ASC").
		Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) GetByID(ctx context.Context, tenantID, id int64) (*certificateDatamodel.Certificate, error) {
	var cert certificateDatamodel.Certificate
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) Create(ctx context.Context, cert *certificateDatamodel.Certificate) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *CertificateRepository) Update(ctx context.Context, cert *certificateDatamodel.Certificate) error {
	return r.db.WithContext(ctx).
		Model(cert).
		Where("tenant_id = ?", cert.TenantID).
		Select("*").
		Updates(cert).Error
}

func (r *CertificateRepository) Delete(ctx context.Context, tenantID, id int64) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&certificateDatamodel.Certificate{}).Error
}

func (r *CertificateRepository) UpdateStatuses(ctx context.Context, tenantID int64, ids []int64, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&certificateDatamodel.Certificate{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
