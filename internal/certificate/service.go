package certificate

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/batch"
	certificateDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/certificate"
	"github.com/frahmantamala/safety-management/internal/core/events"
	"golang.org/x/sync/errgroup"
)

// RepositoryAPI is tenant-scoped throughout. GetByID returns nil, nil when
// the certificate does not exist for the tenant.
type RepositoryAPI interface {
	ListByTenant(ctx context.Context, tenantID int64) ([]*certificateDatamodel.Certificate, error)
	ListByEmployee(ctx context.Context, tenantID, employeeID int64) ([]*certificateDatamodel.Certificate, error)
	GetByID(ctx context.Context, tenantID, id int64) (*certificateDatamodel.Certificate, error)
	Create(ctx context.Context, c *certificateDatamodel.Certificate) error
	Update(ctx context.Context, c *certificateDatamodel.Certificate) error
	Delete(ctx context.Context, tenantID, id int64) error
	UpdateStatuses(ctx context.Context, tenantID int64, ids []int64, status string) (int64, error)
}

type EmployeeDirectoryAPI interface {
	Snapshot(ctx context.Context, tenantID int64) ([]compliance.Employee, error)
	Lookup(ctx context.Context, tenantID, employeeID int64) (*compliance.Employee, error)
	EnsureByCPF(ctx context.Context, tenantID, companyID int64, name, cpf string) (int64, error)
	RefreshCertificateSnapshot(ctx context.Context, tenantID, employeeID int64, firstIssuedAt, latestExpiresAt *time.Time) error
}

type CompanyDirectoryAPI interface {
	Snapshot(ctx context.Context, tenantID int64) ([]compliance.Company, error)
	EnsureByName(ctx context.Context, tenantID int64, name string) (int64, error)
}

type MetricsAPI interface {
	ObserveReport(tenantID int64, r compliance.Report)
	ObserveImport(succeeded, failed int)
	ObserveStatusSync(updated int)
}

type Service struct {
	repo       RepositoryAPI
	employees  EmployeeDirectoryAPI
	companies  CompanyDirectoryAPI
	publisher  events.Publisher
	metrics    MetricsAPI
	thresholds compliance.Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	repo RepositoryAPI,
	employees EmployeeDirectoryAPI,
	companies CompanyDirectoryAPI,
	publisher events.Publisher,
	metrics MetricsAPI,
	thresholds compliance.Thresholds,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		employees:  employees,
		companies:  companies,
		publisher:  publisher,
		metrics:    metrics,
		thresholds: thresholds.OrDefault(),
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock, for tests and one-shot reports.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Thresholds() compliance.Thresholds {
	return s.thresholds
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (*Certificate, error) {
	row, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load certificate", err)
	}
	if row == nil {
		return nil, apperrors.ErrCertificateNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, tenantID int64, dto CreateCertificateDTO) (*Certificate, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.employees.Lookup(ctx, tenantID, dto.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, apperrors.ErrEmployeeNotFound
	}

	now := s.now().UTC()
	c := &Certificate{
		TenantID:   tenantID,
		EmployeeID: dto.EmployeeID,
		CompanyID:  emp.CompanyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	dto.update().apply(c)
	c.RefreshStatus(now)

	row := ToDataModel(c)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create certificate", "tenant_id", tenantID, "employee_id", c.EmployeeID, "error", err)
		return nil, apperrors.NewInternalError("failed to create certificate", err)
	}
	c.ID = row.ID

	s.refreshEmployee(ctx, tenantID, c.EmployeeID)

	s.logger.Info("certificate created", "tenant_id", tenantID, "certificate_id", c.ID, "employee_id", c.EmployeeID, "status", c.Status)
	s.publish(ctx, events.NewCertificateEvent(events.EventTypeCertificateCreated, tenantID, c.ID, c.EmployeeID, string(c.Status)))
	return c, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id int64, dto UpdateCertificateDTO) (*Certificate, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dto.apply(c)
	c.RefreshStatus(now)
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to update certificate", "tenant_id", tenantID, "certificate_id", id, "error", err)
		return nil, apperrors.NewInternalError("failed to update certificate", err)
	}

	s.refreshEmployee(ctx, tenantID, c.EmployeeID)

	s.logger.Info("certificate updated", "tenant_id", tenantID, "certificate_id", id, "status", c.Status)
	s.publish(ctx, events.NewCertificateEvent(events.EventTypeCertificateUpdated, tenantID, c.ID, c.EmployeeID, string(c.Status)))
	return c, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id int64) error {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error("failed to delete certificate", "tenant_id", tenantID, "certificate_id", id, "error", err)
		return apperrors.NewInternalError("failed to delete certificate", err)
	}

	s.refreshEmployee(ctx, tenantID, c.EmployeeID)

	s.logger.Info("certificate deleted", "tenant_id", tenantID, "certificate_id", id)
	s.publish(ctx, events.NewCertificateEvent(events.EventTypeCertificateDeleted, tenantID, c.ID, c.EmployeeID, ""))
	return nil
}

// List filters the tenant's certificates and, unless q.History is set, keeps
// only the latest certificate of each employee.
func (s *Service) List(ctx context.Context, tenantID int64, q ListQuery) (*ListResponse, error) {
	snap, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dir := compliance.NewDirectory(snap.Employees, snap.Companies)
	records := compliance.ApplyFilters(snap.Certificates, q.Filters, dir, now)
	if !q.History {
		records = compliance.LatestPerEmployee(records)
	}
	items := compliance.Annotate(records, dir, now, s.thresholds)

	return &ListResponse{Certificates: items, Count: len(items), History: q.History}, nil
}

func (s *Service) Dashboard(ctx context.Context, tenantID int64) (*compliance.Report, error) {
	snap, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := compliance.Aggregate(snap, s.now(), s.thresholds)
	if s.metrics != nil {
		s.metrics.ObserveReport(tenantID, report)
	}
	return &report, nil
}

func (s *Service) EmployeeHistory(ctx context.Context, tenantID, employeeID int64) (*EmployeeHistory, error) {
	var (
		emp  *compliance.Employee
		rows []*certificateDatamodel.Certificate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emp, err = s.employees.Lookup(gctx, tenantID, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListByEmployee(gctx, tenantID, employeeID)
		if err != nil {
			return apperrors.NewInternalError("failed to list certificates", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// An employee that is gone but still has certificates is reported as
	// orphaned; one that never existed is not found.
	if emp == nil && len(rows) == 0 {
		return nil, apperrors.ErrEmployeeNotFound
	}

	return &EmployeeHistory{
		EmployeeID:      employeeID,
		Employee:        emp,
		EmployeeMissing: emp == nil,
		History:         compliance.ComputeHistory(recordsOf(rows)),
	}, nil
}

// SyncStatuses rewrites persisted statuses that no longer match the expiry
// date. It is idempotent for a given day.
func (s *Service) SyncStatuses(ctx context.Context, tenantID int64) (*SyncResult, error) {
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list certificates", err)
	}

	now := s.now()
	var toOverdue, toActive []int64
	for _, row := range rows {
		c := FromDataModel(row)
		want := compliance.StatusFor(c.ExpiresAt, now)
		if want == c.Status {
			continue
		}
		if want == compliance.StatusOverdue {
			toOverdue = append(toOverdue, c.ID)
		} else {
			toActive = append(toActive, c.ID)
		}
	}

	res := &SyncResult{Checked: len(rows), NowOverdue: len(toOverdue), NowActive: len(toActive)}
	for status, ids := range map[compliance.PersistedStatus][]int64{
		compliance.StatusOverdue: toOverdue,
		compliance.StatusActive:  toActive,
	} {
		if len(ids) == 0 {
			continue
		}
		n, err := s.repo.UpdateStatuses(ctx, tenantID, ids, string(status))
		if err != nil {
			s.logger.Error("failed to sync certificate statuses", "tenant_id", tenantID, "status", status, "error", err)
			return nil, apperrors.NewInternalError("failed to sync certificate statuses", err)
		}
		res.Updated += int(n)
	}

	if s.metrics != nil {
		s.metrics.ObserveStatusSync(res.Updated)
	}
	s.logger.Info("certificate statuses synced", "tenant_id", tenantID, "checked", res.Checked, "updated", res.Updated)
	s.publish(ctx, events.NewStatusSyncedEvent(tenantID, res.Checked, res.Updated))
	return res, nil
}

// Import runs rows in order so a company or employee created by one row is
// found by the next.
func (s *Service) Import(ctx context.Context, tenantID int64, rows []ImportRow) (batch.Result[ImportRow], error) {
	res, err := batch.RunSequential(ctx, rows, func(ctx context.Context, row ImportRow) error {
		return s.importRow(ctx, tenantID, row)
	})
	if err != nil {
		return res, err
	}

	if s.metrics != nil {
		s.metrics.ObserveImport(len(res.Succeeded), len(res.Failed))
	}
	s.logger.Info("certificate import finished", "tenant_id", tenantID, "succeeded", len(res.Succeeded), "failed", len(res.Failed))
	return res, nil
}

func (s *Service) importRow(ctx context.Context, tenantID int64, row ImportRow) error {
	if err := row.Validate(); err != nil {
		return err
	}

	companyID, err := s.companies.EnsureByName(ctx, tenantID, row.CompanyName)
	if err != nil {
		return err
	}
	employeeID, err := s.employees.EnsureByCPF(ctx, tenantID, companyID, row.EmployeeName, row.CPF)
	if err != nil {
		return err
	}

	_, err = s.Create(ctx, tenantID, CreateCertificateDTO{
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Number:     row.Number,
		Type:       row.Type,
		IssuedAt:   row.IssuedAt,
		ExpiresAt:  row.ExpiresAt,
		Fitness:    row.Fitness,
		Physician:  row.Physician,
		Clinic:     row.Clinic,
	})
	return err
}

// snapshot loads the three inputs of a computation pass concurrently.
func (s *Service) snapshot(ctx context.Context, tenantID int64) (compliance.Snapshot, error) {
	var (
		snap compliance.Snapshot
		rows []*certificateDatamodel.Certificate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListByTenant(gctx, tenantID)
		if err != nil {
			return apperrors.NewInternalError("failed to list certificates", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.Employees, err = s.employees.Snapshot(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Companies, err = s.companies.Snapshot(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load compliance snapshot", "tenant_id", tenantID, "error", err)
		return compliance.Snapshot{}, err
	}

	snap.Certificates = recordsOf(rows)
	return snap, nil
}

// refreshEmployee stores the employee's first issue date and the expiry of
// their current certificate. The certificate write has already committed, so
// a failure here is logged and left for the next mutation to repair.
func (s *Service) refreshEmployee(ctx context.Context, tenantID, employeeID int64) {
	if err := s.writeEmployeeSnapshot(ctx, tenantID, employeeID); err != nil {
		s.logger.Error("failed to refresh employee certificate snapshot", "tenant_id", tenantID, "employee_id", employeeID, "error", err)
	}
}

func (s *Service) writeEmployeeSnapshot(ctx context.Context, tenantID, employeeID int64) error {
	rows, err := s.repo.ListByEmployee(ctx, tenantID, employeeID)
	if err != nil {
		return err
	}

	records := recordsOf(rows)
	first := compliance.ComputeHistory(records).Summary.FirstIssuedAt
	var latest *time.Time
	if current := compliance.LatestPerEmployee(records); len(current) > 0 {
		latest = current[0].ExpiresAt
	}
	return s.employees.RefreshCertificateSnapshot(ctx, tenantID, employeeID, first, latest)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func recordsOf(rows []*certificateDatamodel.Certificate) []compliance.Record {
	out := make([]compliance.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToRecord())
	}
	return out
}
