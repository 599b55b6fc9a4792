package compliance

import (
	"strings"
	"time"
)

// FilterSet holds the optional list predicates. Zero values disable a predicate.
type FilterSet struct {
	EmployeeID         *int64          `json:"employee_id,omitempty"`
	CompanyID          *int64          `json:"company_id,omitempty"`
	Type               CertificateType `json:"type,omitempty"`
	Status             PersistedStatus `json:"status,omitempty"`
	CPF                string          `json:"cpf,omitempty"`
	ExpiresFrom        *time.Time      `json:"expires_from,omitempty"`
	ExpiresTo          *time.Time      `json:"expires_to,omitempty"`
	OverdueOnly        bool            `json:"overdue_only,omitempty"`
	ExpiringWithinDays *int            `json:"expiring_within_days,omitempty"`
	Text               string          `json:"text,omitempty"`
}

func (f FilterSet) IsEmpty() bool {
	return f.EmployeeID == nil &&
		f.CompanyID == nil &&
		f.Type == "" &&
		f.Status == "" &&
		digitsOnly(f.CPF) == "" &&
		f.ExpiresFrom == nil &&
		f.ExpiresTo == nil &&
		!f.OverdueOnly &&
		f.ExpiringWithinDays == nil &&
		f.Text == ""
}

type predicate func(Record) bool

// ApplyFilters narrows records with every predicate set in f. The input is
// never modified and survivors keep their relative order. Text matching runs
// last, over the already narrowed set.
func ApplyFilters(records []Record, f FilterSet, dir *Directory, now time.Time) []Record {
	out := make([]Record, 0, len(records))
	preds := f.predicates(dir, now)
	for _, r := range records {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r Record, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func (f FilterSet) predicates(dir *Directory, now time.Time) []predicate {
	var preds []predicate

	if f.EmployeeID != nil {
		id := *f.EmployeeID
		preds = append(preds, func(r Record) bool { return r.EmployeeID == id })
	}
	if f.CompanyID != nil {
		id := *f.CompanyID
		preds = append(preds, func(r Record) bool { return r.CompanyID == id })
	}
	if f.Type != "" {
		t := f.Type
		preds = append(preds, func(r Record) bool { return r.Type == t })
	}
	if f.Status != "" {
		s := f.Status
		preds = append(preds, func(r Record) bool { return r.PersistedStatus == s })
	}
	if cpf := digitsOnly(f.CPF); cpf != "" {
		preds = append(preds, func(r Record) bool {
			e, _ := dir.Employee(r.EmployeeID)
			return strings.Contains(digitsOnly(e.CPF), cpf)
		})
	}
	if f.ExpiresFrom != nil {
		from := StartOfDay(*f.ExpiresFrom)
		preds = append(preds, func(r Record) bool {
			return r.ExpiresAt == nil || !StartOfDay(*r.ExpiresAt).Before(from)
		})
	}
	if f.ExpiresTo != nil {
		to := StartOfDay(*f.ExpiresTo)
		preds = append(preds, func(r Record) bool {
			return r.ExpiresAt == nil || !StartOfDay(*r.ExpiresAt).After(to)
		})
	}
	if f.OverdueOnly {
		preds = append(preds, func(r Record) bool { return r.PersistedStatus == StatusOverdue })
	}
	if f.ExpiringWithinDays != nil {
		window := *f.ExpiringWithinDays
		preds = append(preds, func(r Record) bool {
			return Classify(r.ExpiresAt, now, window) == StateExpiringSoon
		})
	}
	if text := strings.ToLower(f.Text); text != "" {
		preds = append(preds, func(r Record) bool { return matchesText(r, dir, text) })
	}

	return preds
}

func matchesText(r Record, dir *Directory, text string) bool {
	fields := [...]string{
		dir.employeeName(r.EmployeeID),
		dir.companyName(r.CompanyID),
		r.Number,
		r.Physician,
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
