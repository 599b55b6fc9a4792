package compliance

const (
	DefaultExpiringSoonDays = 30
	DefaultUrgentDays       = 5
	DefaultTopCompanies     = 10
	DefaultListLimit        = 10
)

// Thresholds are the tunable windows and caps of a computation pass. Tenants
// may run with different values.
type Thresholds struct {
	ExpiringSoonDays int `json:"expiring_soon_days" validate:"min=0"`
	UrgentDays       int `json:"urgent_days" validate:"min=0,ltefield=ExpiringSoonDays"`
	TopCompanies     int `json:"top_companies" validate:"min=1"`
	ListLimit        int `json:"list_limit" validate:"min=1"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ExpiringSoonDays: DefaultExpiringSoonDays,
		UrgentDays:       DefaultUrgentDays,
		TopCompanies:     DefaultTopCompanies,
		ListLimit:        DefaultListLimit,
	}
}

// OrDefault replaces unset (zero or negative) caps with their defaults. A zero
// window is meaningful and kept.
func (t Thresholds) OrDefault() Thresholds {
	d := DefaultThresholds()
	if t.ExpiringSoonDays < 0 {
		t.ExpiringSoonDays = d.ExpiringSoonDays
	}
	if t.UrgentDays < 0 {
		t.UrgentDays = d.UrgentDays
	}
	if t.TopCompanies <= 0 {
		t.TopCompanies = d.TopCompanies
	}
	if t.ListLimit <= 0 {
		t.ListLimit = d.ListLimit
	}
	return t
}
