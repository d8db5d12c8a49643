package dto

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// AddressRequest is used for both create and update.
type AddressRequest struct {
	City       string `json:"city"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

func (r AddressRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Province, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Country, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.PostalCode, validation.Required, validation.Length(1, 10)),
	)
}
