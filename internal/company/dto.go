package company

import "github.com/frahmantamala/safety-management/internal/core/common/validation"

type CreateCompanyDTO struct {
	Name string `json:"name" validate:"required,max=160"`
	CNPJ string `json:"cnpj" validate:"omitempty,max=18"`
}

func (d CreateCompanyDTO) Validate() error {
	return validation.Struct(d)
}

type CompaniesResponse struct {
	Companies []*Company `json:"companies"`
}
