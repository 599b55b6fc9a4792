package compliance_test

import (
	"github.com/frahmantamala/safety-management/internal/compliance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ApplyFilters", func() {
	var (
		records []compliance.Record
		dir     *compliance.Directory
		now     = at("2024-06-15")
	)

	BeforeEach(func() {
		dir = compliance.NewDirectory(
			[]compliance.Employee{
				{ID: 1, CompanyID: 10, Name: "Ana Souza", CPF: "123.456.789-00"},
				{ID: 2, CompanyID: 20, Name: "Bruno Lima", CPF: "987.654.321-00"},
			},
			[]compliance.Company{
				{ID: 10, Name: "Construtora Alfa"},
				{ID: 20, Name: "Obras Beta"},
			},
		)
		records = []compliance.Record{
			{ID: 1, EmployeeID: 1, CompanyID: 10, Type: compliance.TypeAdmission, Number: "ASO-001",
				ExpiresAt: date("2024-06-20"), PersistedStatus: compliance.StatusActive, Physician: "Dr. Carla"},
			{ID: 2, EmployeeID: 2, CompanyID: 20, Type: compliance.TypePeriodic, Number: "ASO-002",
				ExpiresAt: date("2024-05-01"), PersistedStatus: compliance.StatusOverdue, Physician: "Dr. Paulo"},
			{ID: 3, EmployeeID: 1, CompanyID: 10, Type: compliance.TypePeriodic,
				ExpiresAt: nil, PersistedStatus: compliance.StatusActive},
			{ID: 4, EmployeeID: 99, CompanyID: 30, Type: compliance.TypeTermination, Number: "ASO-099",
				ExpiresAt: date("2025-01-01"), PersistedStatus: compliance.StatusActive},
		}
	})

	It("is the identity with no filters", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{}, dir, now)
		Expect(ids(out)).To(Equal([]int64{1, 2, 3, 4}))
		Expect(compliance.FilterSet{}.IsEmpty()).To(BeTrue())
	})

	It("does not modify its input", func() {
		_ = compliance.ApplyFilters(records, compliance.FilterSet{Type: compliance.TypePeriodic}, dir, now)
		Expect(ids(records)).To(Equal([]int64{1, 2, 3, 4}))
	})

	It("matches employee, company and type exactly", func() {
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{EmployeeID: int64Ptr(1)}, dir, now))).
			To(Equal([]int64{1, 3}))
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{CompanyID: int64Ptr(20)}, dir, now))).
			To(Equal([]int64{2}))
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{Type: compliance.TypePeriodic}, dir, now))).
			To(Equal([]int64{2, 3}))
	})

	It("filters on the stored status, not the computed state", func() {
		records[0].PersistedStatus = compliance.StatusOverdue
		out := compliance.ApplyFilters(records, compliance.FilterSet{Status: compliance.StatusOverdue}, dir, now)
		Expect(ids(out)).To(Equal([]int64{1, 2}))

		out = compliance.ApplyFilters(records, compliance.FilterSet{OverdueOnly: true}, dir, now)
		Expect(ids(out)).To(Equal([]int64{1, 2}))
	})

	It("compares CPF digits only", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{CPF: "456.789"}, dir, now)
		Expect(ids(out)).To(Equal([]int64{1, 3}))
	})

	It("ignores a CPF filter without digits", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{CPF: " .- "}, dir, now)
		Expect(out).To(HaveLen(4))
	})

	It("excludes orphans from a CPF search", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{CPF: "0"}, dir, now)
		Expect(ids(out)).NotTo(ContainElement(int64(4)))
	})

	It("applies inclusive date bounds and lets unknown expiries through", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{
			ExpiresFrom: date("2024-05-01"),
			ExpiresTo:   date("2024-06-20"),
		}, dir, now)
		Expect(ids(out)).To(Equal([]int64{1, 2, 3}))
	})

	It("keeps records inside the expiring window", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{ExpiringWithinDays: intPtr(10)}, dir, now)
		Expect(ids(out)).To(Equal([]int64{1}))
	})

	It("matches free text case-insensitively against names, number and physician", func() {
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{Text: "ana"}, dir, now))).To(Equal([]int64{1, 3}))
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{Text: "BETA"}, dir, now))).To(Equal([]int64{2}))
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{Text: "aso-09"}, dir, now))).To(Equal([]int64{4}))
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{Text: "carla"}, dir, now))).To(Equal([]int64{1}))
	})

	It("keeps surrounding whitespace in the search term", func() {
		Expect(ids(compliance.ApplyFilters(records, compliance.FilterSet{Text: "ana "}, dir, now))).To(Equal([]int64{1, 3}))
		Expect(compliance.ApplyFilters(records, compliance.FilterSet{Text: "souza "}, dir, now)).To(BeEmpty())
		Expect(compliance.FilterSet{Text: " "}.IsEmpty()).To(BeFalse())
	})

	It("combines predicates with AND", func() {
		out := compliance.ApplyFilters(records, compliance.FilterSet{
			EmployeeID: int64Ptr(1),
			Type:       compliance.TypePeriodic,
			Text:       "alfa",
		}, dir, now)
		Expect(ids(out)).To(Equal([]int64{3}))
	})

	It("never grows the input", func() {
		sets := []compliance.FilterSet{
			{Text: "a"}, {OverdueOnly: true}, {CPF: "1"}, {CompanyID: int64Ptr(10)}, {ExpiresTo: date("2030-01-01")},
		}
		for _, f := range sets {
			Expect(len(compliance.ApplyFilters(records, f, dir, now))).To(BeNumerically("<=", len(records)))
		}
	})
})
