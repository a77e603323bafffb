package app

import (
	"context"
	"errors"
	"time"

	"github.com/jlcastillov/crm-console/internal/api"
	"github.com/jlcastillov/crm-console/internal/form"
	"github.com/jlcastillov/crm-console/internal/store"
)

// EditSession is an open edit of the selected company profile. The UI
// mutates the workspace slot directly while the session holds the backup;
// Cancel restores it, Save persists it.
type EditSession struct {
	backup store.Company
	isNew  bool
}

// ErrNoSelection is returned when an edit is requested with no company
// selected.
var ErrNoSelection = errors.New("no company selected")

// BeginEdit opens an edit session over the selected company, snapshotting
// its current values. Only one session can be open at a time; beginning a
// new one abandons the previous backup.
func (w *Workspace) BeginEdit() (*EditSession, error) {
	c := w.Selected()
	if c == nil {
		return nil, ErrNoSelection
	}
	w.edit = &EditSession{backup: *c, isNew: IsUnsaved(c)}
	return w.edit, nil
}

// Editing reports whether a company edit session is open.
func (w *Workspace) Editing() bool {
	return w.edit != nil
}

// SaveEdit validates the edited company and persists it. Validation
// failures are returned without touching the backend and leave the session
// open. On success the session closes and an unsaved company receives its
// backend-assigned id.
func (w *Workspace) SaveEdit(ctx context.Context, client api.Client, userID int64) ([]form.FieldError, error) {
	if w.edit == nil {
		return nil, errors.New("no edit session open")
	}
	c := w.Selected()
	if c == nil {
		return nil, ErrNoSelection
	}

	if errs := form.ValidateCompany(form.CompanyFormFrom(c)); len(errs) > 0 {
		return errs, nil
	}

	if IsUnsaved(c) {
		c.CreatedBy = userID
		res := client.CreateCompany(ctx, c)
		if !res.Success {
			return nil, errors.New(res.ErrorMessage)
		}
		c.ID = res.Data
	} else {
		c.UpdatedBy = userID
		res := client.UpdateCompany(ctx, c)
		if !res.Success {
			return nil, errors.New(res.ErrorMessage)
		}
	}

	w.edit = nil
	return nil, nil
}

// CancelEdit discards the open edit session. A persisted company gets its
// snapshot restored; an unsaved one is removed from the working set, with
// the selection falling back to the first remaining company or nothing.
func (w *Workspace) CancelEdit() {
	if w.edit == nil {
		return
	}
	if w.edit.isNew {
		w.edit = nil
		w.RemoveSelected()
		return
	}
	if c := w.Selected(); c != nil {
		*c = w.edit.backup
	}
	w.edit = nil
}

// RowEditSession is an open edit of one follow-up row of the selected
// company.
type RowEditSession struct {
	index  int
	backup store.FollowUp
	isNew  bool
}

// BeginRowEdit opens an edit over the follow-up at index.
func (w *Workspace) BeginRowEdit(index int) (*RowEditSession, error) {
	if index < 0 || index >= len(w.followUps) {
		return nil, errors.New("follow-up index out of range")
	}
	w.row = &RowEditSession{index: index, backup: w.followUps[index]}
	return w.row, nil
}

// NewFollowUp appends an unsaved follow-up for the selected company and
// opens an edit session over it.
func (w *Workspace) NewFollowUp(assignedUserID int64) (*store.FollowUp, error) {
	c := w.Selected()
	if c == nil {
		return nil, ErrNoSelection
	}
	f := store.FollowUp{
		ID:             -time.Now().UnixNano(),
		CompanyID:      c.ID,
		AssignedUserID: assignedUserID,
		Priority:       "MEDIA",
		Status:         "PENDIENTE",
	}
	w.followUps = append(w.followUps, f)
	idx := len(w.followUps) - 1
	w.row = &RowEditSession{index: idx, backup: w.followUps[idx], isNew: true}
	return &w.followUps[idx], nil
}

// EditingRow reports whether a follow-up edit session is open.
func (w *Workspace) EditingRow() bool {
	return w.row != nil
}

// EditedRow returns the follow-up under edit, or nil.
func (w *Workspace) EditedRow() *store.FollowUp {
	if w.row == nil || w.row.index >= len(w.followUps) {
		return nil
	}
	return &w.followUps[w.row.index]
}

// SaveRowEdit validates the edited follow-up and persists it. Validation
// failures are returned without touching the backend.
func (w *Workspace) SaveRowEdit(ctx context.Context, client api.Client, userID int64) ([]form.FieldError, error) {
	f := w.EditedRow()
	if f == nil {
		return nil, errors.New("no follow-up edit session open")
	}

	if errs := form.ValidateFollowUp(form.FollowUpFormFrom(f)); len(errs) > 0 {
		return errs, nil
	}

	f.UpdatedBy = userID
	if f.ID < 0 {
		res := client.CreateFollowUp(ctx, f)
		if !res.Success {
			return nil, errors.New(res.ErrorMessage)
		}
		f.ID = res.Data
	} else {
		res := client.UpdateFollowUp(ctx, f)
		if !res.Success {
			return nil, errors.New(res.ErrorMessage)
		}
	}

	w.row = nil
	return nil, nil
}

// CancelRowEdit discards the open follow-up edit. A persisted row gets its
// snapshot restored; an unsaved one is removed from the history.
func (w *Workspace) CancelRowEdit() {
	if w.row == nil {
		return
	}
	idx := w.row.index
	if w.row.isNew {
		if idx >= 0 && idx < len(w.followUps) {
			w.followUps = append(w.followUps[:idx], w.followUps[idx+1:]...)
		}
	} else if idx >= 0 && idx < len(w.followUps) {
		w.followUps[idx] = w.row.backup
	}
	w.row = nil
}

// DeleteRow cancels the follow-up at index after the confirm callback
// approves. A persisted row is marked CANCELADO through the backend; an
// unsaved row is simply dropped. When confirm declines nothing changes.
func (w *Workspace) DeleteRow(ctx context.Context, client api.Client, userID int64, index int, confirm func() bool) error {
	if index < 0 || index >= len(w.followUps) {
		return errors.New("follow-up index out of range")
	}
	if confirm == nil || !confirm() {
		return nil
	}

	f := w.followUps[index]
	if f.ID >= 0 {
		f.Status = "CANCELADO"
		f.UpdatedBy = userID
		res := client.UpdateFollowUp(ctx, &f)
		if !res.Success {
			return errors.New(res.ErrorMessage)
		}
		w.followUps[index] = f
		return nil
	}

	w.followUps = append(w.followUps[:index], w.followUps[index+1:]...)
	if w.row != nil && w.row.index == index {
		w.row = nil
	}
	return nil
}
