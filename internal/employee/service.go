package employee

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/employee"
)

// RepositoryAPI returns nil, nil for lookups that match nothing.
type RepositoryAPI interface {
	ListByTenant(ctx context.Context, tenantID int64) ([]*employeeDatamodel.Employee, error)
	GetByID(ctx context.Context, tenantID, id int64) (*employeeDatamodel.Employee, error)
	GetByCPF(ctx context.Context, tenantID int64, cpf string) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	UpdateCertificateSnapshot(ctx context.Context, tenantID, id int64, firstIssuedAt, latestExpiresAt *time.Time) error
}

type CompanyCheckerAPI interface {
	Exists(ctx context.Context, tenantID, companyID int64) (bool, error)
}

type Service struct {
	repo      RepositoryAPI
	companies CompanyCheckerAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, companies CompanyCheckerAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		companies: companies,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, tenantID int64) ([]*Employee, error) {
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list employees", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewInternalError("failed to list employees", err)
	}
	out := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load employee", err)
	}
	if row == nil {
		return nil, apperrors.ErrEmployeeNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, tenantID int64, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.companies.Exists(ctx, tenantID, dto.CompanyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrCompanyNotFound
	}

	e := NewEmployee(tenantID, dto.CompanyID, dto.Name, dto.CPF, dto.Position)
	existing, err := s.repo.GetByCPF(ctx, tenantID, e.CPF)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up employee", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateCPF
	}

	row := ToDataModel(e)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create employee", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewInternalError("failed to create employee", err)
	}
	e.ID = row.ID

	s.logger.Info("employee created", "tenant_id", tenantID, "employee_id", e.ID, "company_id", e.CompanyID)
	return e, nil
}

// Snapshot returns the tenant's employees in the shape the compliance engine reads.
func (s *Service) Snapshot(ctx context.Context, tenantID int64) ([]compliance.Employee, error) {
	employees, err := s.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]compliance.Employee, 0, len(employees))
	for _, e := range employees {
		out = append(out, e.ToSnapshot())
	}
	return out, nil
}

// Lookup is Get without the not-found error: a nil result means the employee
// is gone and callers should treat its certificates as orphaned.
func (s *Service) Lookup(ctx context.Context, tenantID, id int64) (*compliance.Employee, error) {
	row, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load employee", err)
	}
	if row == nil {
		return nil, nil
	}
	snap := FromDataModel(row).ToSnapshot()
	return &snap, nil
}

// EnsureByCPF returns the employee holding cpf, creating one under companyID
// when the tenant has none.
func (s *Service) EnsureByCPF(ctx context.Context, tenantID, companyID int64, name, cpf string) (int64, error) {
	if !validation.IsCPF(cpf) {
		return 0, apperrors.NewValidationFieldError("cpf", "cpf must contain 11 digits", apperrors.ErrCodeInvalidCPF)
	}

	row, err := s.repo.GetByCPF(ctx, tenantID, validation.DigitsOnly(cpf))
	if err != nil {
		return 0, apperrors.NewInternalError("failed to look up employee", err)
	}
	if row != nil {
		return row.ID, nil
	}

	e, err := s.Create(ctx, tenantID, CreateEmployeeDTO{CompanyID: companyID, Name: name, CPF: cpf})
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (s *Service) RefreshCertificateSnapshot(ctx context.Context, tenantID, id int64, firstIssuedAt, latestExpiresAt *time.Time) error {
	if err := s.repo.UpdateCertificateSnapshot(ctx, tenantID, id, firstIssuedAt, latestExpiresAt); err != nil {
		s.logger.Error("failed to refresh certificate snapshot", "tenant_id", tenantID, "employee_id", id, "error", err)
		return apperrors.NewInternalError("failed to refresh employee certificate snapshot", err)
	}
	return nil
}
