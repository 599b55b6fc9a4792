package compliance

import "time"

// ListItem is a record prepared for tabular display. State is computed at
// annotation time and must not be cached across snapshots.
type ListItem struct {
	Record
	State           LifecycleState `json:"state"`
	Urgent          bool           `json:"urgent"`
	DaysUntilExpiry *int           `json:"days_until_expiry,omitempty"`
	EmployeeName    string         `json:"employee_name,omitempty"`
	CompanyName     string         `json:"company_name,omitempty"`
	EmployeeMissing bool           `json:"employee_missing"`
	CompanyMissing  bool           `json:"company_missing"`
}

// Orphaned reports whether the record points at an employee or company that
// is no longer in the snapshot.
func (i ListItem) Orphaned() bool {
	return i.EmployeeMissing || i.CompanyMissing
}

func Annotate(records []Record, dir *Directory, now time.Time, th Thresholds) []ListItem {
	th = th.OrDefault()
	out := make([]ListItem, 0, len(records))
	for _, r := range records {
		out = append(out, annotate(r, dir, now, th))
	}
	return out
}

func annotate(r Record, dir *Directory, now time.Time, th Thresholds) ListItem {
	item := ListItem{
		Record:          r,
		State:           Classify(r.ExpiresAt, now, th.ExpiringSoonDays),
		DaysUntilExpiry: DaysUntil(r.ExpiresAt, now),
	}
	item.Urgent = item.State == StateExpiringSoon &&
		Classify(r.ExpiresAt, now, th.UrgentDays) == StateExpiringSoon

	if e, ok := dir.Employee(r.EmployeeID); ok {
		item.EmployeeName = e.Name
	} else {
		item.EmployeeMissing = true
	}
	if c, ok := dir.Company(r.CompanyID); ok {
		item.CompanyName = c.Name
	} else {
		item.CompanyMissing = true
	}
	return item
}
