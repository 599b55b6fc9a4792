package employee

import "time"

type Employee struct {
	ID                   int64      `gorm:"primaryKey"`
	TenantID             int64      `gorm:"column:tenant_id;not null;index"`
	CompanyID            int64      `gorm:"column:company_id;not null"`
	Name                 string     `gorm:"column:name;not null"`
	CPF                  string     `gorm:"column:cpf;not null"`
	Position             string     `gorm:"column:position"`
	IsActive             bool       `gorm:"column:is_active;default:true"`
	FirstCertificateAt   *time.Time `gorm:"column:first_certificate_at;type:date"`
	CertificateExpiresAt *time.Time `gorm:"column:certificate_expires_at;type:date"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
