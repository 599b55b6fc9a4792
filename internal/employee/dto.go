package employee

import "github.com/frahmantamala/safety-management/internal/core/common/validation"

type CreateEmployeeDTO struct {
	CompanyID int64  `json:"company_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=160"`
	CPF       string `json:"cpf" validate:"required,cpf"`
	Position  string `json:"position" validate:"omitempty,max=120"`
}

func (d CreateEmployeeDTO) Validate() error {
	return validation.Struct(d)
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}
