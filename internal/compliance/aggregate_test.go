package compliance_test

import (
	"github.com/frahmantamala/safety-management/internal/compliance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Aggregate", func() {
	now := at("2024-06-15")
	th := compliance.DefaultThresholds()

	It("returns zero counts and empty lists for an empty snapshot", func() {
		report := compliance.Aggregate(compliance.Snapshot{}, now, th)

		Expect(report.TotalCertificates).To(Equal(0))
		Expect(report.Issued).To(Equal(compliance.StateCounts{}))
		Expect(report.Current).To(Equal(compliance.StateCounts{}))
		Expect(report.Coverage).To(Equal(compliance.Coverage{}))
		Expect(report.ByExpirationMonth).NotTo(BeNil())
		Expect(report.ByExpirationMonth).To(BeEmpty())
		Expect(report.TopOverdueCompanies).NotTo(BeNil())
		Expect(report.UpcomingExpirations).NotTo(BeNil())
		Expect(report.RecentlyExpired).NotTo(BeNil())
		Expect(report.ByType).To(HaveLen(len(compliance.CertificateTypes)))
		for _, tc := range report.ByType {
			Expect(tc.Count).To(Equal(0))
		}
	})

	Context("with a mixed snapshot", func() {
		var report compliance.Report

		BeforeEach(func() {
			snap := compliance.Snapshot{
				Employees: []compliance.Employee{
					{ID: 1, CompanyID: 10, Name: "Ana"},
					{ID: 2, CompanyID: 10, Name: "Bruno"},
					{ID: 3, CompanyID: 20, Name: "Carla"},
					{ID: 4, CompanyID: 20, Name: "Davi"},
				},
				Companies: []compliance.Company{{ID: 10, Name: "Alfa"}, {ID: 20, Name: "Beta"}},
				Certificates: []compliance.Record{
					// Ana renewed: old overdue record superseded by a valid one.
					{ID: 1, EmployeeID: 1, CompanyID: 10, Type: compliance.TypeAdmission, ExpiresAt: date("2023-06-01"), PersistedStatus: compliance.StatusOverdue},
					{ID: 2, EmployeeID: 1, CompanyID: 10, Type: compliance.TypePeriodic, ExpiresAt: date("2025-06-01"), PersistedStatus: compliance.StatusActive},
					// Bruno expires in 3 days.
					{ID: 3, EmployeeID: 2, CompanyID: 10, Type: compliance.TypePeriodic, ExpiresAt: date("2024-06-18"), PersistedStatus: compliance.StatusActive},
					// Carla is overdue.
					{ID: 4, EmployeeID: 3, CompanyID: 20, Type: compliance.TypePeriodic, ExpiresAt: date("2024-06-01"), PersistedStatus: compliance.StatusActive},
					// Davi has no expiry.
					{ID: 5, EmployeeID: 4, CompanyID: 20, Type: compliance.TypeRoleChange, PersistedStatus: compliance.StatusActive},
					// Orphan: employee 9 and company 30 are gone.
					{ID: 6, EmployeeID: 9, CompanyID: 30, Type: compliance.TypeTermination, ExpiresAt: date("2024-05-20"), PersistedStatus: compliance.StatusOverdue},
				},
			}
			report = compliance.Aggregate(snap, now, th)
		})

		It("classifies the full set and the reduced set separately", func() {
			Expect(report.TotalCertificates).To(Equal(6))
			Expect(report.Issued).To(Equal(compliance.StateCounts{
				Total: 6, Valid: 1, ExpiringSoon: 1, Urgent: 1, Overdue: 3, Unknown: 1,
			}))
			Expect(report.Current).To(Equal(compliance.StateCounts{
				Total: 5, Valid: 1, ExpiringSoon: 1, Urgent: 1, Overdue: 2, Unknown: 1,
			}))
		})

		It("keeps state buckets summing to the set size", func() {
			c := report.Current
			Expect(c.Valid + c.ExpiringSoon + c.Overdue + c.Unknown).To(Equal(c.Total))
		})

		It("counts stored statuses on the full set", func() {
			Expect(report.Stored).To(Equal(compliance.StatusCounts{Active: 4, Overdue: 2}))
		})

		It("computes coverage from current certificates of known employees", func() {
			Expect(report.Coverage).To(Equal(compliance.Coverage{
				TotalEmployees: 4, CoveredEmployees: 2, UncoveredEmployees: 2, Percentage: 50,
			}))
		})

		It("lists every certificate type in order", func() {
			Expect(report.ByType).To(Equal([]compliance.TypeCount{
				{Type: compliance.TypeAdmission, Count: 1},
				{Type: compliance.TypePeriodic, Count: 3},
				{Type: compliance.TypeReturnToWork, Count: 0},
				{Type: compliance.TypeRoleChange, Count: 1},
				{Type: compliance.TypeTermination, Count: 1},
			}))
		})

		It("groups current expiries by month in ascending order", func() {
			Expect(report.ByExpirationMonth).To(Equal([]compliance.MonthCount{
				{Month: "2024-05", Count: 1},
				{Month: "2024-06", Count: 2},
				{Month: "2025-06", Count: 1},
			}))
		})

		It("ranks companies by overdue count with id as tie-breaker", func() {
			Expect(report.TopOverdueCompanies).To(Equal([]compliance.CompanyCount{
				{CompanyID: 20, CompanyName: "Beta", Overdue: 1},
				{CompanyID: 30, CompanyMissing: true, Overdue: 1},
			}))
		})

		It("orders upcoming ascending and recently expired descending", func() {
			Expect(report.UpcomingExpirations).To(HaveLen(2))
			Expect(report.UpcomingExpirations[0].ID).To(Equal(int64(3)))
			Expect(report.UpcomingExpirations[0].Urgent).To(BeTrue())
			Expect(report.UpcomingExpirations[1].ID).To(Equal(int64(2)))

			Expect(report.RecentlyExpired).To(HaveLen(2))
			Expect(report.RecentlyExpired[0].ID).To(Equal(int64(4)))
			Expect(report.RecentlyExpired[1].ID).To(Equal(int64(6)))
		})

		It("flags orphaned records in highlight lists", func() {
			orphan := report.RecentlyExpired[1]
			Expect(orphan.EmployeeMissing).To(BeTrue())
			Expect(orphan.CompanyMissing).To(BeTrue())
			Expect(orphan.Orphaned()).To(BeTrue())
			Expect(report.RecentlyExpired[0].EmployeeName).To(Equal("Carla"))
		})
	})

	It("reports zero coverage when there are records but no employees", func() {
		snap := compliance.Snapshot{Certificates: []compliance.Record{{ID: 1, EmployeeID: 1, ExpiresAt: date("2030-01-01")}}}
		Expect(compliance.Aggregate(snap, now, th).Coverage).To(Equal(compliance.Coverage{}))
	})

	It("rounds the coverage percentage", func() {
		snap := compliance.Snapshot{
			Employees: []compliance.Employee{{ID: 1}, {ID: 2}, {ID: 3}},
			Certificates: []compliance.Record{
				{ID: 1, EmployeeID: 1, ExpiresAt: date("2030-01-01")},
				{ID: 2, EmployeeID: 2, ExpiresAt: date("2030-01-01")},
			},
		}
		Expect(compliance.Aggregate(snap, now, th).Coverage.Percentage).To(Equal(67))
	})

	It("caps rankings and highlight lists", func() {
		var snap compliance.Snapshot
		for i := int64(1); i <= 5; i++ {
			snap.Employees = append(snap.Employees, compliance.Employee{ID: i, CompanyID: i})
			snap.Certificates = append(snap.Certificates,
				compliance.Record{ID: i, EmployeeID: i, CompanyID: i, ExpiresAt: date("2024-01-01")})
		}
		small := compliance.Thresholds{ExpiringSoonDays: 30, UrgentDays: 5, TopCompanies: 2, ListLimit: 3}

		report := compliance.Aggregate(snap, now, small)
		Expect(report.TopOverdueCompanies).To(HaveLen(2))
		Expect(report.TopOverdueCompanies[0].CompanyID).To(Equal(int64(1)))
		Expect(report.RecentlyExpired).To(HaveLen(3))
	})
})
