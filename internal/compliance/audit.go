package compliance

import (
	"sort"
	"time"
)

// AuditEntry is one certificate of an employee's history with its timing
// relative to the previous issuance. Nil means "not applicable or unknown".
type AuditEntry struct {
	Record
	ValidityDays         *int `json:"validity_days"`
	GapSincePreviousDays *int `json:"gap_since_previous_days"`
	Delta                *int `json:"delta_days"`
	DaysEarly            *int `json:"days_early"`
	DaysLate             *int `json:"days_late"`
	LateRenewal          bool `json:"late_renewal"`
}

type AuditSummary struct {
	Certificates     int          `json:"certificates"`
	LateRenewals     int          `json:"late_renewals"`
	MeanValidityDays *float64     `json:"mean_validity_days"`
	MeanDaysEarly    *float64     `json:"mean_days_early"`
	MeanDaysLate     *float64     `json:"mean_days_late"`
	FirstIssuedAt    *time.Time   `json:"first_issued_at"`
	LastIssuedAt     *time.Time   `json:"last_issued_at"`
	Stored           StatusCounts `json:"stored"`
}

type History struct {
	Entries []AuditEntry `json:"entries"`
	Summary AuditSummary `json:"summary"`
}

var epoch = time.Unix(0, 0).UTC()

// ComputeHistory orders one employee's certificates by issue date and derives
// the renewal deltas between consecutive issuances. Callers filter by employee
// beforehand. The result does not depend on the current time.
func ComputeHistory(records []Record) History {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return issuedKey(sorted[i]).Before(issuedKey(sorted[j]))
	})

	entries := make([]AuditEntry, 0, len(sorted))
	for i, r := range sorted {
		entry := AuditEntry{
			Record:       r,
			ValidityDays: daysBetweenPtr(r.IssuedAt, r.ExpiresAt),
		}
		if i > 0 {
			prev := sorted[i-1]
			entry.GapSincePreviousDays = daysBetweenPtr(prev.IssuedAt, r.IssuedAt)
			entry.Delta = daysBetweenPtr(prev.ExpiresAt, r.IssuedAt)
		}
		if entry.Delta != nil {
			switch d := *entry.Delta; {
			case d < 0:
				early := -d
				entry.DaysEarly = &early
			case d > 0:
				late := d
				entry.DaysLate = &late
				entry.LateRenewal = true
			}
		}
		entries = append(entries, entry)
	}

	return History{Entries: entries, Summary: summarize(entries)}
}

func summarize(entries []AuditEntry) AuditSummary {
	s := AuditSummary{Certificates: len(entries)}
	var validity, early, late []int

	for _, e := range entries {
		if e.LateRenewal {
			s.LateRenewals++
		}
		if e.ValidityDays != nil {
			validity = append(validity, *e.ValidityDays)
		}
		if e.DaysEarly != nil {
			early = append(early, *e.DaysEarly)
		}
		if e.DaysLate != nil {
			late = append(late, *e.DaysLate)
		}
		if e.IssuedAt != nil {
			if s.FirstIssuedAt == nil {
				s.FirstIssuedAt = e.IssuedAt
			}
			s.LastIssuedAt = e.IssuedAt
		}
		switch e.PersistedStatus {
		case StatusActive:
			s.Stored.Active++
		case StatusOverdue:
			s.Stored.Overdue++
		}
	}

	s.MeanValidityDays = mean(validity)
	s.MeanDaysEarly = mean(early)
	s.MeanDaysLate = mean(late)
	return s
}

func issuedKey(r Record) time.Time {
	if r.IssuedAt == nil {
		return epoch
	}
	return *r.IssuedAt
}

func daysBetweenPtr(from, to *time.Time) *int {
	if from == nil || to == nil {
		return nil
	}
	n := DaysBetween(*from, *to)
	return &n
}

func mean(samples []int) *float64 {
	if len(samples) == 0 {
		return nil
	}
	total := 0
	for _, v := range samples {
		total += v
	}
	m := float64(total) / float64(len(samples))
	return &m
}
