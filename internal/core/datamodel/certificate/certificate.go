package certificate

import "time"

type Certificate struct {
	ID            int64      `gorm:"primaryKey"`
	TenantID      int64      `gorm:"column:tenant_id;not null;index"`
	EmployeeID    int64      `gorm:"column:employee_id;not null;index"`
	CompanyID     int64      `gorm:"column:company_id;not null"`
	Number        string     `gorm:"column:number"`
	Type          string     `gorm:"column:type;not null"`
	IssuedAt      *time.Time `gorm:"column:issued_at;type:date"`
	ExpiresAt     *time.Time `gorm:"column:expires_at;type:date"`
	Fitness       string     `gorm:"column:fitness;not null"`
	Restrictions  string     `gorm:"column:restrictions"`
	Notes         string     `gorm:"column:notes"`
	Physician     string     `gorm:"column:physician"`
	Clinic        string     `gorm:"column:clinic"`
	AttachmentURL string     `gorm:"column:attachment_url"`
	Status        string     `gorm:"column:status;not null;default:active"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Certificate) TableName() string {
	return "certificates"
}
