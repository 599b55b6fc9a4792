package compliance

import "time"

type CertificateType string

const (
	TypeAdmission    CertificateType = "admission"
	TypePeriodic     CertificateType = "periodic"
	TypeReturnToWork CertificateType = "return_to_work"
	TypeRoleChange   CertificateType = "role_change"
	TypeTermination  CertificateType = "termination"
)

// CertificateTypes lists every certificate type in reporting order.
var CertificateTypes = []CertificateType{
	TypeAdmission,
	TypePeriodic,
	TypeReturnToWork,
	TypeRoleChange,
	TypeTermination,
}

func (t CertificateType) Valid() bool {
	for _, known := range CertificateTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Fitness string

const (
	FitnessFit                 Fitness = "fit"
	FitnessUnfit               Fitness = "unfit"
	FitnessFitWithRestrictions Fitness = "fit_with_restrictions"
)

// PersistedStatus is the status column stored alongside a certificate. It can
// lag behind the live LifecycleState until the next status sync.
type PersistedStatus string

const (
	StatusActive  PersistedStatus = "active"
	StatusOverdue PersistedStatus = "overdue"
)

// Record is one certificate issuance as seen by the compliance engine.
type Record struct {
	ID              int64           `json:"id"`
	EmployeeID      int64           `json:"employee_id"`
	CompanyID       int64           `json:"company_id"`
	Number          string          `json:"number,omitempty"`
	Type            CertificateType `json:"type"`
	IssuedAt        *time.Time      `json:"issued_at,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	Fitness         Fitness         `json:"fitness"`
	Restrictions    string          `json:"restrictions,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Physician       string          `json:"physician,omitempty"`
	Clinic          string          `json:"clinic,omitempty"`
	AttachmentURL   string          `json:"attachment_url,omitempty"`
	PersistedStatus PersistedStatus `json:"persisted_status,omitempty"`
	CreatedAt       *time.Time      `json:"created_at,omitempty"`
}

type Employee struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	CPF       string `json:"cpf,omitempty"`
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Snapshot is the tenant-scoped input of one computation pass.
type Snapshot struct {
	Certificates []Record
	Employees    []Employee
	Companies    []Company
}

// Directory indexes the employee and company snapshots by id. A failed lookup
// means the record is orphaned.
type Directory struct {
	employees map[int64]Employee
	companies map[int64]Company
}

func NewDirectory(employees []Employee, companies []Company) *Directory {
	d := &Directory{
		employees: make(map[int64]Employee, len(employees)),
		companies: make(map[int64]Company, len(companies)),
	}
	for _, e := range employees {
		d.employees[e.ID] = e
	}
	for _, c := range companies {
		d.companies[c.ID] = c
	}
	return d
}

func (d *Directory) Employee(id int64) (Employee, bool) {
	if d == nil {
		return Employee{}, false
	}
	e, ok := d.employees[id]
	return e, ok
}

func (d *Directory) Company(id int64) (Company, bool) {
	if d == nil {
		return Company{}, false
	}
	c, ok := d.companies[id]
	return c, ok
}

func (d *Directory) EmployeeCount() int {
	if d == nil {
		return 0
	}
	return len(d.employees)
}

func (d *Directory) employeeName(id int64) string {
	e, _ := d.Employee(id)
	return e.Name
}

func (d *Directory) companyName(id int64) string {
	c, _ := d.Company(id)
	return c.Name
}
