package certificate

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/frahmantamala/safety-management/internal/compliance"
)

var historyHeader = []string{
	"certificate_id", "number", "type", "fitness", "issued_at", "expires_at",
	"validity_days", "gap_since_previous_days", "delta_days", "days_early", "days_late", "late_renewal", "stored_status",
}

// WriteHistoryCSV renders an employee history with raw values: ISO dates,
// plain integers, and empty cells for unknowns. Summary rows follow a blank line.
func WriteHistoryCSV(w io.Writer, h *EmployeeHistory) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, e := range h.Entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Number,
			string(e.Type),
			string(e.Fitness),
			isoDate(e.IssuedAt),
			isoDate(e.ExpiresAt),
			intCell(e.ValidityDays),
			intCell(e.GapSincePreviousDays),
			intCell(e.Delta),
			intCell(e.DaysEarly),
			intCell(e.DaysLate),
			strconv.FormatBool(e.LateRenewal),
			string(e.PersistedStatus),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	s := h.Summary
	name := ""
	if h.Employee != nil {
		name = h.Employee.Name
	}
	summary := [][]string{
		{},
		{"employee_id", strconv.FormatInt(h.EmployeeID, 10)},
		{"employee_name", name},
		{"employee_missing", strconv.FormatBool(h.EmployeeMissing)},
		{"certificates", strconv.Itoa(s.Certificates)},
		{"late_renewals", strconv.Itoa(s.LateRenewals)},
		{"mean_validity_days", floatCell(s.MeanValidityDays)},
		{"mean_days_early", floatCell(s.MeanDaysEarly)},
		{"mean_days_late", floatCell(s.MeanDaysLate)},
		{"first_issued_at", isoDate(s.FirstIssuedAt)},
		{"last_issued_at", isoDate(s.LastIssuedAt)},
		{"stored_active", strconv.Itoa(s.Stored.Active)},
		{"stored_overdue", strconv.Itoa(s.Stored.Overdue)},
	}
	if err := cw.WriteAll(summary); err != nil {
		return err
	}
	return cw.Error()
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return compliance.StartOfDay(*t).Format(dateLayout)
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
