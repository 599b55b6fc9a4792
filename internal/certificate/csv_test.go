package certificate

import (
	"bytes"
	"encoding/csv"

	"github.com/frahmantamala/safety-management/internal/compliance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WriteHistoryCSV", func() {
	It("writes entries, a blank separator and the summary", func() {
		h := &EmployeeHistory{
			EmployeeID: 7,
			Employee:   &compliance.Employee{ID: 7, Name: "Ana Souza"},
			History: compliance.ComputeHistory([]compliance.Record{
				{ID: 1, Type: compliance.TypeAdmission, Fitness: compliance.FitnessFit, IssuedAt: day("2023-01-10"), ExpiresAt: day("2024-01-10"), PersistedStatus: compliance.StatusOverdue},
				{ID: 2, Type: compliance.TypePeriodic, Fitness: compliance.FitnessFit, IssuedAt: day("2024-01-20"), ExpiresAt: day("2025-01-20"), PersistedStatus: compliance.StatusActive},
			}),
		}

		var buf bytes.Buffer
		Expect(WriteHistoryCSV(&buf, h)).To(Succeed())

		r := csv.NewReader(&buf)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		Expect(err).NotTo(HaveOccurred())

		Expect(rows[0]).To(Equal(historyHeader))
		Expect(rows[1]).To(Equal([]string{"1", "", "admission", "fit", "2023-01-10", "2024-01-10", "365", "", "", "", "", "false", "overdue"}))
		Expect(rows[2]).To(Equal([]string{"2", "", "periodic", "fit", "2024-01-20", "2025-01-20", "366", "375", "10", "", "10", "true", "active"}))
		// encoding/csv skips empty lines on read
		Expect(rows[3]).To(Equal([]string{"employee_id", "7"}))
		Expect(rows).To(ContainElement([]string{"employee_name", "Ana Souza"}))
		Expect(rows).To(ContainElement([]string{"mean_days_late", "10.00"}))
		Expect(rows).To(ContainElement([]string{"mean_days_early", ""}))
		Expect(rows).To(ContainElement([]string{"late_renewals", "1"}))
	})

	It("writes an empty history for orphaned employees", func() {
		var buf bytes.Buffer
		Expect(WriteHistoryCSV(&buf, &EmployeeHistory{EmployeeID: 9, EmployeeMissing: true, History: compliance.ComputeHistory(nil)})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("employee_missing,true"))
		Expect(buf.String()).To(ContainSubstring("employee_name,\n"))
	})
})
