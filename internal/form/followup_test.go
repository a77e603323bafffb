package form

import "testing"

func validFollowUpForm() FollowUpForm {
	return FollowUpForm{
		Type:          "LLAMADA",
		Priority:      "ALTA",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:30",
		Status:        "PENDIENTE",
		Budget:        15000,
	}
}

func TestValidateFollowUpAcceptsCompleteForm(t *testing.T) {
	if errs := ValidateFollowUp(validFollowUpForm()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateFollowUpType(t *testing.T) {
	f := validFollowUpForm()
	f.Type = "REUNION"
	if !fieldNames(ValidateFollowUp(f))["Type"] {
		t.Error("expected Type flagged for value outside the catalog")
	}
}

func TestValidateFollowUpDateFormat(t *testing.T) {
	for _, date := range []string{"01/09/2026", "2026-9-1", "mañana", ""} {
		f := validFollowUpForm()
		f.ScheduledDate = date
		if !fieldNames(ValidateFollowUp(f))["ScheduledDate"] {
			t.Errorf("date %q: expected ScheduledDate flagged", date)
		}
	}
}

func TestValidateFollowUpTimeOptionalButStrict(t *testing.T) {
	f := validFollowUpForm()
	f.ScheduledTime = ""
	if errs := ValidateFollowUp(f); len(errs) != 0 {
		t.Fatalf("empty time should pass, got %v", errs)
	}

	f.ScheduledTime = "10.30"
	if !fieldNames(ValidateFollowUp(f))["ScheduledTime"] {
		t.Error("expected ScheduledTime flagged for malformed value")
	}
}

func TestValidateFollowUpBudget(t *testing.T) {
	f := validFollowUpForm()
	f.Budget = -1
	if !fieldNames(ValidateFollowUp(f))["Budget"] {
		t.Error("expected Budget flagged for negative value")
	}
}
