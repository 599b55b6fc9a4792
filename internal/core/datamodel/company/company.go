package company

import "time"

// Company rows are read and written through sqlx, hence db tags.
type Company struct {
	ID        int64     `db:"id"`
	TenantID  int64     `db:"tenant_id"`
	Name      string    `db:"name"`
	CNPJ      string    `db:"cnpj"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
