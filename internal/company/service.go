package company

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	companyDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/company"
)

// RepositoryAPI returns nil, nil for lookups that match nothing.
type RepositoryAPI interface {
	ListByTenant(ctx context.Context, tenantID int64) ([]*companyDatamodel.Company, error)
	GetByID(ctx context.Context, tenantID, id int64) (*companyDatamodel.Company, error)
	GetByName(ctx context.Context, tenantID int64, name string) (*companyDatamodel.Company, error)
	Create(ctx context.Context, c *companyDatamodel.Company) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, tenantID int64) ([]*Company, error) {
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list companies", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewInternalError("failed to list companies", err)
	}
	out := make([]*Company, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (*Company, error) {
	row, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load company", err)
	}
	if row == nil {
		return nil, apperrors.ErrCompanyNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, tenantID int64, dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := NewCompany(tenantID, dto.Name, dto.CNPJ)
	row := ToDataModel(c)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create company", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewInternalError("failed to create company", err)
	}
	c.ID = row.ID

	s.logger.Info("company created", "tenant_id", tenantID, "company_id", c.ID)
	return c, nil
}

// Snapshot returns the tenant's companies in the shape the compliance engine reads.
func (s *Service) Snapshot(ctx context.Context, tenantID int64) ([]compliance.Company, error) {
	companies, err := s.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]compliance.Company, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.ToSnapshot())
	}
	return out, nil
}

func (s *Service) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	row, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return false, apperrors.NewInternalError("failed to load company", err)
	}
	return row != nil, nil
}

// EnsureByName returns the id of the company with this name, creating it
// first when the tenant has none. Names compare case-insensitively.
func (s *Service) EnsureByName(ctx context.Context, tenantID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.NewValidationFieldError("company_name", "company_name is required", apperrors.ErrCodeValidationFailed)
	}

	row, err := s.repo.GetByName(ctx, tenantID, name)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to look up company", err)
	}
	if row != nil {
		return row.ID, nil
	}

	c, err := s.Create(ctx, tenantID, CreateCompanyDTO{Name: name})
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}
