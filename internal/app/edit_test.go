package app

import (
	"context"
	"testing"

	"github.com/jlcastillov/crm-console/internal/store"
)

func validCompany(id int64) store.Company {
	return store.Company{
		ID:             id,
		CommercialName: "Distribuidora Andina",
		LegalName:      "Distribuidora Andina S.A.C.",
		RUC:            "20100123456",
		ContactName:    "Jorge Paredes",
		ContactEmail:   "jparedes@andina.pe",
		ContactPhone:   "998877665",
	}
}

func TestSaveEditInvalidEmailMakesNoRemoteCalls(t *testing.T) {
	client := newStubClient()
	w := NewWorkspace()
	c := validCompany(7)
	c.ContactEmail = "no-es-un-correo"
	w.SetCompanies([]store.Company{c})
	w.SelectCompany(0)
	if _, err := w.BeginEdit(); err != nil {
		t.Fatal(err)
	}

	errs, err := w.SaveEdit(context.Background(), client, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) == 0 {
		t.Fatal("expected validation errors for the malformed email")
	}
	if client.totalCalls() != 0 {
		t.Fatalf("invalid form must not reach the backend, got %d calls", client.totalCalls())
	}
	if !w.Editing() {
		t.Error("validation failure should keep the edit session open")
	}
}

func TestSaveEditNewCompanyAssignsBackendID(t *testing.T) {
	client := newStubClient()
	w := NewWorkspace()
	w.SetCompanies(nil)
	c := w.NewCompany()
	*c = validCompany(c.ID) // keep the sentinel id, fill valid fields
	if _, err := w.BeginEdit(); err != nil {
		t.Fatal(err)
	}

	errs, err := w.SaveEdit(context.Background(), client, 1)
	if err != nil || len(errs) > 0 {
		t.Fatalf("save failed: err=%v errs=%v", err, errs)
	}
	if client.callCount("CreateCompany") != 1 {
		t.Errorf("expected one create call, got %d", client.callCount("CreateCompany"))
	}
	if client.callCount("UpdateCompany") != 0 {
		t.Error("new company must not go through update")
	}
	if got := w.Selected(); got == nil || got.ID <= 0 {
		t.Fatalf("expected backend-assigned id, got %+v", got)
	}
	if w.Editing() {
		t.Error("successful save should close the session")
	}
}

func TestSaveEditExistingCompanyUpdates(t *testing.T) {
	client := newStubClient()
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)
	if _, err := w.BeginEdit(); err != nil {
		t.Fatal(err)
	}
	w.Selected().ContactRole = "Gerente"

	errs, err := w.SaveEdit(context.Background(), client, 1)
	if err != nil || len(errs) > 0 {
		t.Fatalf("save failed: err=%v errs=%v", err, errs)
	}
	if client.callCount("UpdateCompany") != 1 || client.callCount("CreateCompany") != 0 {
		t.Errorf("expected exactly one update: %v", client.calls)
	}
}

func TestCancelEditRestoresSnapshot(t *testing.T) {
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)
	if _, err := w.BeginEdit(); err != nil {
		t.Fatal(err)
	}

	w.Selected().CommercialName = "Nombre cambiado"
	w.CancelEdit()

	if got := w.Selected().CommercialName; got != "Distribuidora Andina" {
		t.Errorf("expected snapshot restored, got %q", got)
	}
	if w.Editing() {
		t.Error("cancel should close the session")
	}
}

func TestCancelEditRemovesUnsavedCompany(t *testing.T) {
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(1), validCompany(2)})

	sentinel := w.NewCompany()
	sentinel.ID = -17
	if _, err := w.BeginEdit(); err != nil {
		t.Fatal(err)
	}

	w.CancelEdit()

	for _, c := range w.Companies() {
		if c.ID == -17 {
			t.Fatal("cancelled sentinel company should be gone from the working set")
		}
	}
	if got := w.Selected(); got == nil || got.ID != 1 {
		t.Errorf("expected first company reselected, got %+v", got)
	}

	// Cancelling the only (unsaved) company leaves nothing selected
	w2 := NewWorkspace()
	w2.NewCompany()
	if _, err := w2.BeginEdit(); err != nil {
		t.Fatal(err)
	}
	w2.CancelEdit()
	if w2.Selected() != nil {
		t.Error("expected empty selection after removing the only company")
	}
}

func TestSaveRowEditInvalidDateMakesNoRemoteCalls(t *testing.T) {
	client := newStubClient()
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)

	f, err := w.NewFollowUp(1)
	if err != nil {
		t.Fatal(err)
	}
	f.Type = "LLAMADA"
	f.ScheduledDate = "15/03/2026" // wrong format

	errs, err := w.SaveRowEdit(context.Background(), client, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) == 0 {
		t.Fatal("expected validation errors for the malformed date")
	}
	if client.totalCalls() != 0 {
		t.Fatalf("invalid row must not reach the backend, got %d calls", client.totalCalls())
	}
}

func TestSaveRowEditNewFollowUp(t *testing.T) {
	client := newStubClient()
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)

	f, err := w.NewFollowUp(1)
	if err != nil {
		t.Fatal(err)
	}
	f.Type = "VISITA"
	f.ScheduledDate = "2026-09-01"
	f.ScheduledTime = "10:30"

	errs, err := w.SaveRowEdit(context.Background(), client, 1)
	if err != nil || len(errs) > 0 {
		t.Fatalf("save failed: err=%v errs=%v", err, errs)
	}
	if client.callCount("CreateFollowUp") != 1 {
		t.Errorf("expected one create call, got %d", client.callCount("CreateFollowUp"))
	}
	if got := w.FollowUps()[0].ID; got <= 0 {
		t.Errorf("expected backend-assigned id, got %d", got)
	}
}

func TestCancelRowEditRemovesUnsavedRow(t *testing.T) {
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)
	w.SetFollowUps([]store.FollowUp{{ID: 10, CompanyID: 7, Status: "PENDIENTE"}})

	if _, err := w.NewFollowUp(1); err != nil {
		t.Fatal(err)
	}
	w.CancelRowEdit()

	if len(w.FollowUps()) != 1 {
		t.Fatalf("expected unsaved row removed, have %d rows", len(w.FollowUps()))
	}
}

func TestCancelRowEditRestoresSnapshot(t *testing.T) {
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)
	w.SetFollowUps([]store.FollowUp{{ID: 10, CompanyID: 7, Status: "PENDIENTE", Notes: "original"}})

	if _, err := w.BeginRowEdit(0); err != nil {
		t.Fatal(err)
	}
	w.EditedRow().Notes = "cambiado"
	w.CancelRowEdit()

	if got := w.FollowUps()[0].Notes; got != "original" {
		t.Errorf("expected snapshot restored, got %q", got)
	}
}

func TestDeleteRowRequiresConfirmation(t *testing.T) {
	client := newStubClient()
	w := NewWorkspace()
	w.SetCompanies([]store.Company{validCompany(7)})
	w.SelectCompany(0)
	w.SetFollowUps([]store.FollowUp{{ID: 10, CompanyID: 7, Status: "PENDIENTE"}})

	// Declined: nothing happens
	if err := w.DeleteRow(context.Background(), client, 1, 0, func() bool { return false }); err != nil {
		t.Fatal(err)
	}
	if client.totalCalls() != 0 {
		t.Fatal("declined confirmation must not reach the backend")
	}
	if w.FollowUps()[0].Status != "PENDIENTE" {
		t.Error("declined confirmation must not change the row")
	}

	// Accepted: persisted row is cancelled through the backend
	if err := w.DeleteRow(context.Background(), client, 1, 0, func() bool { return true }); err != nil {
		t.Fatal(err)
	}
	if client.callCount("UpdateFollowUp") != 1 {
		t.Errorf("expected one update call, got %d", client.callCount("UpdateFollowUp"))
	}
	if w.FollowUps()[0].Status != "CANCELADO" {
		t.Errorf("expected row cancelled, got %s", w.FollowUps()[0].Status)
	}
}
