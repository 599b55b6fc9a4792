package compliance

import (
	"math"
	"sort"
	"time"
)

// StateCounts buckets a record set by lifecycle state. Valid, ExpiringSoon,
// Overdue and Unknown always sum to Total; Urgent is the part of ExpiringSoon
// that falls inside the urgent window.
type StateCounts struct {
	Total        int `json:"total"`
	Valid        int `json:"valid"`
	ExpiringSoon int `json:"expiring_soon"`
	Urgent       int `json:"urgent"`
	Overdue      int `json:"overdue"`
	Unknown      int `json:"unknown"`
}

type StatusCounts struct {
	Active  int `json:"active"`
	Overdue int `json:"overdue"`
}

type Coverage struct {
	TotalEmployees     int `json:"total_employees"`
	CoveredEmployees   int `json:"covered_employees"`
	UncoveredEmployees int `json:"uncovered_employees"`
	Percentage         int `json:"percentage"`
}

type TypeCount struct {
	Type  CertificateType `json:"type"`
	Count int             `json:"count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type CompanyCount struct {
	CompanyID      int64  `json:"company_id"`
	CompanyName    string `json:"company_name,omitempty"`
	CompanyMissing bool   `json:"company_missing"`
	Overdue        int    `json:"overdue"`
}

// Report is the dashboard view of a snapshot. Issued classifies every
// certificate ever issued; Current classifies the latest certificate per
// employee and drives coverage, months, rankings and highlight lists.
type Report struct {
	GeneratedAt         time.Time      `json:"generated_at"`
	Thresholds          Thresholds     `json:"thresholds"`
	TotalCertificates   int            `json:"total_certificates"`
	Issued              StateCounts    `json:"issued"`
	Current             StateCounts    `json:"current"`
	Stored              StatusCounts   `json:"stored"`
	Coverage            Coverage       `json:"coverage"`
	ByType              []TypeCount    `json:"by_type"`
	ByExpirationMonth   []MonthCount   `json:"by_expiration_month"`
	TopOverdueCompanies []CompanyCount `json:"top_overdue_companies"`
	UpcomingExpirations []ListItem     `json:"upcoming_expirations"`
	RecentlyExpired     []ListItem     `json:"recently_expired"`
}

// Aggregate computes the compliance report of a snapshot at now. It never
// fails: empty input yields zero counts and empty, non-nil lists.
func Aggregate(snap Snapshot, now time.Time, th Thresholds) Report {
	th = th.OrDefault()
	dir := NewDirectory(snap.Employees, snap.Companies)
	current := LatestPerEmployee(snap.Certificates)

	report := Report{
		GeneratedAt:       now,
		Thresholds:        th,
		TotalCertificates: len(snap.Certificates),
		Issued:            countStates(snap.Certificates, now, th),
		Current:           countStates(current, now, th),
		Stored:            countStored(snap.Certificates),
		Coverage:          coverage(current, dir, now, th),
		ByType:            countTypes(snap.Certificates),
		ByExpirationMonth: countMonths(current),
	}
	report.TopOverdueCompanies = rankOverdueCompanies(current, dir, now, th)
	report.UpcomingExpirations, report.RecentlyExpired = highlights(current, dir, now, th)

	return report
}

func countStates(records []Record, now time.Time, th Thresholds) StateCounts {
	var c StateCounts
	c.Total = len(records)
	for _, r := range records {
		switch Classify(r.ExpiresAt, now, th.ExpiringSoonDays) {
		case StateValid:
			c.Valid++
		case StateExpiringSoon:
			c.ExpiringSoon++
			if Classify(r.ExpiresAt, now, th.UrgentDays) == StateExpiringSoon {
				c.Urgent++
			}
		case StateOverdue:
			c.Overdue++
		default:
			c.Unknown++
		}
	}
	return c
}

func countStored(records []Record) StatusCounts {
	var c StatusCounts
	for _, r := range records {
		switch r.PersistedStatus {
		case StatusActive:
			c.Active++
		case StatusOverdue:
			c.Overdue++
		}
	}
	return c
}

func coverage(current []Record, dir *Directory, now time.Time, th Thresholds) Coverage {
	cov := Coverage{TotalEmployees: dir.EmployeeCount()}
	for _, r := range current {
		if _, ok := dir.Employee(r.EmployeeID); !ok {
			continue
		}
		switch Classify(r.ExpiresAt, now, th.ExpiringSoonDays) {
		case StateValid, StateExpiringSoon:
			cov.CoveredEmployees++
		}
	}
	cov.UncoveredEmployees = cov.TotalEmployees - cov.CoveredEmployees
	if cov.TotalEmployees > 0 {
		cov.Percentage = int(math.Round(float64(cov.CoveredEmployees) / float64(cov.TotalEmployees) * 100))
	}
	return cov
}

func countTypes(records []Record) []TypeCount {
	counts := make(map[CertificateType]int, len(CertificateTypes))
	for _, r := range records {
		counts[r.Type]++
	}
	out := make([]TypeCount, 0, len(CertificateTypes))
	for _, t := range CertificateTypes {
		out = append(out, TypeCount{Type: t, Count: counts[t]})
	}
	return out
}

func countMonths(records []Record) []MonthCount {
	counts := make(map[string]int)
	for _, r := range records {
		if r.ExpiresAt == nil {
			continue
		}
		counts[StartOfDay(*r.ExpiresAt).Format("2006-01")]++
	}
	out := make([]MonthCount, 0, len(counts))
	for month, n := range counts {
		out = append(out, MonthCount{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func rankOverdueCompanies(current []Record, dir *Directory, now time.Time, th Thresholds) []CompanyCount {
	counts := make(map[int64]int)
	for _, r := range current {
		if Classify(r.ExpiresAt, now, th.ExpiringSoonDays) == StateOverdue {
			counts[r.CompanyID]++
		}
	}

	out := make([]CompanyCount, 0, len(counts))
	for id, n := range counts {
		c, ok := dir.Company(id)
		out = append(out, CompanyCount{
			CompanyID:      id,
			CompanyName:    c.Name,
			CompanyMissing: !ok,
			Overdue:        n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Overdue != out[j].Overdue {
			return out[i].Overdue > out[j].Overdue
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	if len(out) > th.TopCompanies {
		out = out[:th.TopCompanies]
	}
	return out
}

func highlights(current []Record, dir *Directory, now time.Time, th Thresholds) (upcoming, expired []ListItem) {
	today := StartOfDay(now)
	upcoming = make([]ListItem, 0)
	expired = make([]ListItem, 0)

	for _, r := range current {
		if r.ExpiresAt == nil {
			continue
		}
		item := annotate(r, dir, now, th)
		if StartOfDay(*r.ExpiresAt).Before(today) {
			expired = append(expired, item)
		} else {
			upcoming = append(upcoming, item)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ExpiresAt.Before(*upcoming[j].ExpiresAt)
	})
	sort.SliceStable(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.After(*expired[j].ExpiresAt)
	})

	if len(upcoming) > th.ListLimit {
		upcoming = upcoming[:th.ListLimit]
	}
	if len(expired) > th.ListLimit {
		expired = expired[:th.ListLimit]
	}
	return upcoming, expired
}
