// Package form validates the editable screens before anything is sent to
// the backend. Validation failures keep the edit session open; no remote
// call is made while a form is invalid.
package form

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jlcastillov/crm-console/internal/store"
)

var validate = validator.New()

// CompanyForm mirrors the editable company profile fields with their
// validation rules. RUC is the 11-digit Peruvian tax id; phones are the
// 9-digit mobile format.
type CompanyForm struct {
	CommercialName string `validate:"required"`
	LegalName      string `validate:"required"`
	RUC            string `validate:"required,len=11,numeric"`
	HeadOffice     string
	Address        string
	ContactName    string `validate:"required"`
	ContactRole    string
	ContactEmail   string `validate:"omitempty,email"`
	ContactPhone   string `validate:"omitempty,len=9,numeric"`
	ClientType     string
	BusinessLine   string
}

// CompanyFormFrom builds the form view of a company record.
func CompanyFormFrom(c *store.Company) CompanyForm {
	return CompanyForm{
		CommercialName: c.CommercialName,
		LegalName:      c.LegalName,
		RUC:            c.RUC,
		HeadOffice:     c.HeadOffice,
		Address:        c.Address,
		ContactName:    c.ContactName,
		ContactRole:    c.ContactRole,
		ContactEmail:   c.ContactEmail,
		ContactPhone:   c.ContactPhone,
		ClientType:     c.ClientType,
		BusinessLine:   c.BusinessLine,
	}
}

// FieldError is one human-readable validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidateCompany checks the company form and returns every failing field.
// An empty slice means the form may be submitted.
func ValidateCompany(f CompanyForm) []FieldError {
	return collect(validate.Struct(f), companyMessages)
}

var companyMessages = map[string]string{
	"CommercialName": "El nombre comercial es obligatorio",
	"LegalName":      "La razón social es obligatoria",
	"RUC":            "El RUC debe tener 11 dígitos numéricos",
	"ContactName":    "El nombre de contacto es obligatorio",
	"ContactEmail":   "El correo de contacto no es válido",
	"ContactPhone":   "El teléfono debe tener 9 dígitos numéricos",
}

func collect(err error, messages map[string]string) []FieldError {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	var out []FieldError
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = "Valor no válido para " + strings.ToLower(fe.Field())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
