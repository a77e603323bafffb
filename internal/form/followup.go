package form

import (
	"github.com/jlcastillov/crm-console/internal/store"
)

// FollowUpForm mirrors the editable follow-up fields.
type FollowUpForm struct {
	Type          string `validate:"required,oneof=LLAMADA VISITA CORREO"`
	Priority      string `validate:"required,oneof=ALTA MEDIA BAJA"`
	ScheduledDate string `validate:"required,datetime=2006-01-02"`
	ScheduledTime string `validate:"omitempty,datetime=15:04"`
	Status        string `validate:"required,oneof=PENDIENTE COMPLETADO CANCELADO"`
	Budget        float64 `validate:"gte=0"`
	Notes         string
}

// FollowUpFormFrom builds the form view of a follow-up record.
func FollowUpFormFrom(f *store.FollowUp) FollowUpForm {
	return FollowUpForm{
		Type:          f.Type,
		Priority:      f.Priority,
		ScheduledDate: f.ScheduledDate,
		ScheduledTime: f.ScheduledTime,
		Status:        f.Status,
		Budget:        f.Budget,
		Notes:         f.Notes,
	}
}

// ValidateFollowUp checks the follow-up form and returns every failing field.
func ValidateFollowUp(f FollowUpForm) []FieldError {
	return collect(validate.Struct(f), followUpMessages)
}

var followUpMessages = map[string]string{
	"Type":          "El tipo debe ser LLAMADA, VISITA o CORREO",
	"Priority":      "La prioridad debe ser ALTA, MEDIA o BAJA",
	"ScheduledDate": "La fecha debe tener el formato AAAA-MM-DD",
	"ScheduledTime": "La hora debe tener el formato HH:MM",
	"Status":        "El estado debe ser PENDIENTE, COMPLETADO o CANCELADO",
	"Budget":        "El presupuesto no puede ser negativo",
}
