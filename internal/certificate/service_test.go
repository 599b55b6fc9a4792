package certificate

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/batch"
	certificateDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/certificate"
	"github.com/frahmantamala/safety-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	const tenantID = int64(1)

	var (
		repo      *mockRepository
		employees *mockEmployees
		companies *mockCompanies
		publisher *recordingPublisher
		metrics   *recordingMetrics
		service   *Service
		ctx       context.Context
		now       = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockRepository()
		employees = newMockEmployees(
			compliance.Employee{ID: 1, CompanyID: 10, Name: "Ana Souza", CPF: "11111111111"},
			compliance.Employee{ID: 2, CompanyID: 10, Name: "Bruno Lima", CPF: "22222222222"},
			compliance.Employee{ID: 3, CompanyID: 20, Name: "Carla Dias", CPF: "33333333333"},
		)
		companies = &mockCompanies{list: []compliance.Company{{ID: 10, Name: "Alfa"}, {ID: 20, Name: "Beta"}}}
		publisher = &recordingPublisher{}
		metrics = &recordingMetrics{}
		service = NewService(repo, employees, companies, publisher, metrics, compliance.DefaultThresholds(), testLogger).
			WithClock(func() time.Time { return now })
	})

	seed := func(id, employeeID, companyID int64, issued, expires string, status compliance.PersistedStatus) {
		c := certificateDatamodel.Certificate{
			ID: id, TenantID: tenantID, EmployeeID: employeeID, CompanyID: companyID,
			Type: string(compliance.TypePeriodic), Fitness: string(compliance.FitnessFit), Status: string(status),
		}
		if issued != "" {
			c.IssuedAt = day(issued)
		}
		if expires != "" {
			c.ExpiresAt = day(expires)
		}
		repo.seed(c)
	}

	Describe("Create", func() {
		It("derives the persisted status and company from the employee", func() {
			c, err := service.Create(ctx, tenantID, CreateCertificateDTO{
				EmployeeID: 1, Type: "periodic", Fitness: "fit", IssuedAt: "2023-06-01", ExpiresAt: "2024-06-01",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(BeNumerically(">", 0))
			Expect(c.CompanyID).To(Equal(int64(10)))
			Expect(c.Status).To(Equal(compliance.StatusOverdue))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeCertificateCreated}))
		})

		It("keeps certificates expiring today active", func() {
			c, err := service.Create(ctx, tenantID, CreateCertificateDTO{
				EmployeeID: 1, Type: "periodic", Fitness: "fit", ExpiresAt: "2024-06-15",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(compliance.StatusActive))
		})

		It("refreshes the employee's certificate snapshot", func() {
			seed(1, 1, 10, "2022-01-10", "2023-01-10", compliance.StatusOverdue)
			_, err := service.Create(ctx, tenantID, CreateCertificateDTO{
				EmployeeID: 1, Type: "periodic", Fitness: "fit", IssuedAt: "2023-01-05", ExpiresAt: "2024-01-05",
			})
			Expect(err).NotTo(HaveOccurred())

			snap := employees.snapshots[1]
			Expect(*snap[0]).To(Equal(*day("2022-01-10")))
			Expect(*snap[1]).To(Equal(*day("2024-01-05")))
		})

		It("returns the stored certificate when the snapshot refresh fails", func() {
			employees.refreshErr = errors.New("employees table locked")
			c, err := service.Create(ctx, tenantID, CreateCertificateDTO{
				EmployeeID: 1, Type: "periodic", Fitness: "fit", IssuedAt: "2024-01-01", ExpiresAt: "2025-01-01",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.rows).To(HaveKey(c.ID))
			Expect(repo.rows).To(HaveLen(1))
			Expect(employees.snapshots).NotTo(HaveKey(int64(1)))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeCertificateCreated}))
		})

		It("rejects unknown employees", func() {
			_, err := service.Create(ctx, tenantID, CreateCertificateDTO{EmployeeID: 99, Type: "periodic", Fitness: "fit"})
			Expect(errors.Is(err, apperrors.ErrEmployeeNotFound)).To(BeTrue())
		})

		It("reports every invalid field", func() {
			_, err := service.Create(ctx, tenantID, CreateCertificateDTO{EmployeeID: 1, Type: "yearly", Fitness: "maybe", ExpiresAt: "15/06/2024"})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(apperrors.ValidationErrors)
			fields := []string{}
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			Expect(fields).To(ConsistOf("type", "fitness", "expires_at"))
		})
	})

	Describe("Update and Delete", func() {
		BeforeEach(func() {
			seed(5, 2, 10, "2023-01-01", "2024-01-01", compliance.StatusOverdue)
		})

		It("recomputes the status when the expiry moves", func() {
			c, err := service.Update(ctx, tenantID, 5, UpdateCertificateDTO{Type: "periodic", Fitness: "fit", IssuedAt: "2024-01-01", ExpiresAt: "2025-01-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Status).To(Equal(compliance.StatusActive))
			Expect(c.EmployeeID).To(Equal(int64(2)))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeCertificateUpdated}))
		})

		It("hides other tenants' certificates", func() {
			_, err := service.Get(ctx, 2, 5)
			Expect(errors.Is(err, apperrors.ErrCertificateNotFound)).To(BeTrue())
			Expect(errors.Is(service.Delete(ctx, 2, 5), apperrors.ErrCertificateNotFound)).To(BeTrue())
		})

		It("keeps update and delete successful when the snapshot refresh fails", func() {
			employees.refreshErr = errors.New("employees table locked")
			_, err := service.Update(ctx, tenantID, 5, UpdateCertificateDTO{Type: "periodic", Fitness: "fit", ExpiresAt: "2025-01-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Delete(ctx, tenantID, 5)).To(Succeed())
			Expect(repo.rows).To(BeEmpty())
		})

		It("deletes and clears the employee snapshot", func() {
			Expect(service.Delete(ctx, tenantID, 5)).To(Succeed())
			Expect(repo.rows).To(BeEmpty())
			Expect(employees.snapshots[2][1]).To(BeNil())
			Expect(publisher.types()).To(Equal([]string{events.EventTypeCertificateDeleted}))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			seed(1, 1, 10, "2022-06-01", "2023-06-01", compliance.StatusOverdue)
			seed(2, 1, 10, "2023-06-01", "2025-06-01", compliance.StatusActive)
			seed(3, 2, 10, "2023-06-18", "2024-06-18", compliance.StatusActive)
			seed(4, 3, 20, "2023-06-01", "2024-06-01", compliance.StatusActive)
			seed(5, 9, 30, "2023-05-20", "2024-05-20", compliance.StatusOverdue)
		})

		It("reduces to one current certificate per employee by default", func() {
			res, err := service.List(ctx, tenantID, ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(4))
			ids := []int64{}
			for _, item := range res.Certificates {
				ids = append(ids, item.ID)
			}
			Expect(ids).To(Equal([]int64{2, 3, 4, 5}))
		})

		It("keeps superseded certificates in history mode", func() {
			res, err := service.List(ctx, tenantID, ListQuery{History: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Count).To(Equal(5))
			Expect(res.History).To(BeTrue())
		})

		It("annotates live state and orphans", func() {
			res, _ := service.List(ctx, tenantID, ListQuery{})
			byID := map[int64]compliance.ListItem{}
			for _, item := range res.Certificates {
				byID[item.ID] = item
			}
			Expect(byID[3].State).To(Equal(compliance.StateExpiringSoon))
			Expect(byID[3].Urgent).To(BeTrue())
			Expect(byID[4].State).To(Equal(compliance.StateOverdue))
			Expect(byID[4].PersistedStatus).To(Equal(compliance.StatusActive))
			Expect(byID[5].Orphaned()).To(BeTrue())
		})

		It("filters before reducing", func() {
			res, err := service.List(ctx, tenantID, ListQuery{Filters: compliance.FilterSet{Status: compliance.StatusOverdue}})
			Expect(err).NotTo(HaveOccurred())
			ids := []int64{}
			for _, item := range res.Certificates {
				ids = append(ids, item.ID)
			}
			Expect(ids).To(Equal([]int64{1, 5}))
		})

		It("matches free text against employee names", func() {
			res, _ := service.List(ctx, tenantID, ListQuery{Filters: compliance.FilterSet{Text: "carla"}})
			Expect(res.Count).To(Equal(1))
			Expect(res.Certificates[0].EmployeeName).To(Equal("Carla Dias"))
		})

		It("surfaces repository failures as internal errors", func() {
			repo.err = errors.New("db down")
			_, err := service.List(ctx, tenantID, ListQuery{})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(apperrors.ErrorTypeInternal))
		})
	})

	Describe("Dashboard", func() {
		It("aggregates the tenant snapshot and records metrics", func() {
			seed(1, 1, 10, "", "2025-06-01", compliance.StatusActive)
			seed(2, 2, 10, "", "2024-06-18", compliance.StatusActive)
			seed(3, 3, 20, "", "2024-06-01", compliance.StatusActive)

			report, err := service.Dashboard(ctx, tenantID)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.TotalCertificates).To(Equal(3))
			Expect(report.Current.Overdue).To(Equal(1))
			Expect(report.Coverage).To(Equal(compliance.Coverage{TotalEmployees: 3, CoveredEmployees: 2, UncoveredEmployees: 1, Percentage: 67}))
			Expect(report.TopOverdueCompanies).To(HaveLen(1))
			Expect(report.TopOverdueCompanies[0].CompanyName).To(Equal("Beta"))
			Expect(metrics.reports).To(Equal(1))
		})
	})

	Describe("EmployeeHistory", func() {
		It("computes renewal deltas for the employee", func() {
			seed(1, 1, 10, "2023-01-10", "2024-01-10", compliance.StatusOverdue)
			seed(2, 1, 10, "2024-01-20", "2025-01-20", compliance.StatusActive)
			seed(3, 2, 10, "2024-01-01", "2025-01-01", compliance.StatusActive)

			h, err := service.EmployeeHistory(ctx, tenantID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Employee.Name).To(Equal("Ana Souza"))
			Expect(h.Entries).To(HaveLen(2))
			Expect(*h.Entries[1].DaysLate).To(Equal(10))
			Expect(h.Summary.LateRenewals).To(Equal(1))
		})

		It("reports orphaned histories instead of failing", func() {
			seed(1, 9, 30, "2023-01-10", "2024-01-10", compliance.StatusOverdue)
			h, err := service.EmployeeHistory(ctx, tenantID, 9)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.EmployeeMissing).To(BeTrue())
			Expect(h.Employee).To(BeNil())
			Expect(h.Entries).To(HaveLen(1))
		})

		It("returns not found for unknown employees without certificates", func() {
			_, err := service.EmployeeHistory(ctx, tenantID, 77)
			Expect(errors.Is(err, apperrors.ErrEmployeeNotFound)).To(BeTrue())
		})

		It("returns an empty history for employees without certificates", func() {
			h, err := service.EmployeeHistory(ctx, tenantID, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Entries).To(BeEmpty())
			Expect(h.Summary.MeanValidityDays).To(BeNil())
		})
	})

	Describe("SyncStatuses", func() {
		It("rewrites stale statuses in both directions and is idempotent", func() {
			seed(1, 1, 10, "", "2024-06-01", compliance.StatusActive)
			seed(2, 2, 10, "", "2025-06-01", compliance.StatusOverdue)
			seed(3, 3, 20, "", "2024-06-15", compliance.StatusActive)
			seed(4, 3, 20, "", "", compliance.StatusOverdue)

			res, err := service.SyncStatuses(ctx, tenantID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*res).To(Equal(SyncResult{Checked: 4, Updated: 3, NowOverdue: 1, NowActive: 2}))
			Expect(repo.rows[1].Status).To(Equal(string(compliance.StatusOverdue)))
			Expect(repo.rows[4].Status).To(Equal(string(compliance.StatusActive)))
			Expect(metrics.statusSyncedUpdates).To(Equal(3))

			again, err := service.SyncStatuses(ctx, tenantID)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Updated).To(Equal(0))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeCertificateStatusSynced, events.EventTypeCertificateStatusSynced}))
		})
	})

	Describe("Import", func() {
		It("creates companies and employees once across rows", func() {
			rows := []ImportRow{
				{CompanyName: "Gamma", EmployeeName: "Davi", CPF: "444.444.444-44", Type: "admission", Fitness: "fit", IssuedAt: "2024-01-01", ExpiresAt: "2025-01-01"},
				{CompanyName: "gamma", EmployeeName: "Davi", CPF: "44444444444", Type: "periodic", Fitness: "fit", IssuedAt: "2025-01-01", ExpiresAt: "2026-01-01"},
				{CompanyName: "Gamma", EmployeeName: "Eva", CPF: "123", Type: "periodic", Fitness: "fit"},
				{CompanyName: "Gamma", EmployeeName: "Fabio", CPF: "55555555555", Type: "annual", Fitness: "fit"},
			}

			res, err := service.Import(ctx, tenantID, rows)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Succeeded).To(HaveLen(2))
			Expect(res.Failed).To(HaveLen(2))
			Expect(res.Failed[0].Index).To(Equal(2))
			Expect(res.Failed[0].Reason).To(Equal(batch.KindValidation))
			Expect(res.Failed[1].Index).To(Equal(3))

			Expect(companies.list).To(HaveLen(3))
			Expect(repo.rows).To(HaveLen(2))
			for _, r := range repo.rows {
				Expect(r.EmployeeID).To(Equal(int64(4)))
				Expect(r.CompanyID).To(Equal(int64(100)))
			}
			Expect(metrics.imported).To(Equal(2))
			Expect(metrics.failed).To(Equal(2))
		})
	})
})
