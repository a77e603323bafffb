package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/jlcastillov/crm-console/internal/form"
	"github.com/jlcastillov/crm-console/internal/store"
)

const (
	pageCompanyForm  = "company-form"
	pageFollowForm   = "followup-form"
	pageConfirmModal = "confirm-modal"
)

// openCompanyForm opens the profile editor over the selected company. The
// form writes into the workspace slot; Guardar validates and persists,
// Cancelar restores the snapshot (removing a never-saved company).
func (ui *UI) openCompanyForm(isNew bool) {
	c := ui.workspace.Selected()
	if c == nil {
		ui.setStatusDirect("[%s]Seleccione una empresa primero[-]", ui.theme.TagWarning)
		return
	}
	if _, err := ui.workspace.BeginEdit(); err != nil {
		ui.setStatusDirect("[%s]%v[-]", ui.theme.TagError, err)
		return
	}

	f := tview.NewForm()
	f.AddInputField("Nombre comercial", c.CommercialName, 40, nil, func(v string) { c.CommercialName = v })
	f.AddInputField("Razón social", c.LegalName, 40, nil, func(v string) { c.LegalName = v })
	f.AddInputField("RUC", c.RUC, 15, nil, func(v string) { c.RUC = v })
	f.AddInputField("Sede principal", c.HeadOffice, 40, nil, func(v string) { c.HeadOffice = v })
	f.AddInputField("Dirección", c.Address, 40, nil, func(v string) { c.Address = v })
	f.AddInputField("Contacto", c.ContactName, 40, nil, func(v string) { c.ContactName = v })
	f.AddInputField("Cargo", c.ContactRole, 40, nil, func(v string) { c.ContactRole = v })
	f.AddInputField("Correo", c.ContactEmail, 40, nil, func(v string) { c.ContactEmail = v })
	f.AddInputField("Teléfono", c.ContactPhone, 15, nil, func(v string) { c.ContactPhone = v })
	f.AddInputField("Tipo de cliente", c.ClientType, 20, nil, func(v string) { c.ClientType = v })
	f.AddInputField("Rubro", c.BusinessLine, 30, nil, func(v string) { c.BusinessLine = v })
	f.AddInputField("Trabajadores", strconv.Itoa(c.Workers), 8, nil, func(v string) {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Workers = n
		}
	})

	f.AddButton("Guardar", func() { ui.saveCompanyForm() })
	f.AddButton("Cancelar", func() {
		ui.workspace.CancelEdit()
		ui.closeForm(pageCompanyForm)
	})

	title := " Editar empresa "
	if isNew {
		title = " Nueva empresa "
	}
	f.SetBorder(true)
	f.SetTitle(title)
	f.SetTitleAlign(tview.AlignLeft)

	ui.pages.AddPage(pageCompanyForm, modalWrap(f, 60, 0), true, true)
	ui.app.SetFocus(f)
}

func (ui *UI) saveCompanyForm() {
	go func() {
		ctx, cancel := ui.queryCtx()
		defer cancel()

		errs, err := ui.workspace.SaveEdit(ctx, ui.client, ui.session.UserID())
		ui.app.QueueUpdateDraw(func() {
			switch {
			case err != nil:
				ui.setStatusDirect("[%s]%v[-]", ui.theme.TagError, err)
			case len(errs) > 0:
				// Validation failed: the form stays open, nothing was sent
				ui.setStatusDirect("[%s]%s[-]", ui.theme.TagWarning, formatFieldErrors(errs))
			default:
				ui.closeForm(pageCompanyForm)
				ui.renderCompanyTable()
				ui.renderDetail()
				ui.setStatusDirect("[%s]Empresa guardada[-]", ui.theme.TagSuccess)
			}
		})
	}()
}

// openFollowUpForm opens the follow-up editor. rowIndex < 0 with isNew
// creates a fresh row; otherwise the existing row at rowIndex is edited.
func (ui *UI) openFollowUpForm(isNew bool, rowIndex int) {
	var f *store.FollowUp
	var err error
	if isNew {
		f, err = ui.workspace.NewFollowUp(ui.session.UserID())
	} else {
		if _, err = ui.workspace.BeginRowEdit(rowIndex); err == nil {
			f = ui.workspace.EditedRow()
		}
	}
	if err != nil || f == nil {
		ui.setStatusDirect("[%s]Seleccione un seguimiento[-]", ui.theme.TagWarning)
		return
	}

	types := []string{"LLAMADA", "VISITA", "CORREO"}
	priorities := []string{"ALTA", "MEDIA", "BAJA"}
	statuses := []string{"PENDIENTE", "COMPLETADO", "CANCELADO"}

	fm := tview.NewForm()
	fm.AddDropDown("Tipo", types, indexOf(types, f.Type), func(option string, _ int) { f.Type = option })
	fm.AddDropDown("Prioridad", priorities, indexOf(priorities, f.Priority), func(option string, _ int) { f.Priority = option })
	fm.AddInputField("Fecha (AAAA-MM-DD)", f.ScheduledDate, 12, nil, func(v string) { f.ScheduledDate = v })
	fm.AddInputField("Hora (HH:MM)", f.ScheduledTime, 7, nil, func(v string) { f.ScheduledTime = v })
	fm.AddDropDown("Estado", statuses, indexOf(statuses, f.Status), func(option string, _ int) { f.Status = option })
	fm.AddInputField("Resultado", f.Result, 40, nil, func(v string) { f.Result = v })
	fm.AddInputField("Presupuesto", fmt.Sprintf("%.2f", f.Budget), 12, nil, func(v string) {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			f.Budget = n
		}
	})
	fm.AddInputField("Notas", f.Notes, 50, nil, func(v string) { f.Notes = v })

	fm.AddButton("Guardar", func() { ui.saveFollowUpForm() })
	fm.AddButton("Cancelar", func() {
		ui.workspace.CancelRowEdit()
		ui.closeForm(pageFollowForm)
		ui.renderFollowTable()
	})

	title := " Editar seguimiento "
	if isNew {
		title = " Nuevo seguimiento "
	}
	fm.SetBorder(true)
	fm.SetTitle(title)
	fm.SetTitleAlign(tview.AlignLeft)

	ui.pages.AddPage(pageFollowForm, modalWrap(fm, 64, 0), true, true)
	ui.app.SetFocus(fm)
}

func (ui *UI) saveFollowUpForm() {
	go func() {
		ctx, cancel := ui.queryCtx()
		defer cancel()

		errs, err := ui.workspace.SaveRowEdit(ctx, ui.client, ui.session.UserID())
		ui.app.QueueUpdateDraw(func() {
			switch {
			case err != nil:
				ui.setStatusDirect("[%s]%v[-]", ui.theme.TagError, err)
			case len(errs) > 0:
				ui.setStatusDirect("[%s]%s[-]", ui.theme.TagWarning, formatFieldErrors(errs))
			default:
				ui.closeForm(pageFollowForm)
				ui.renderFollowTable()
				ui.renderHistory()
				ui.renderProtocols()
				ui.setStatusDirect("[%s]Seguimiento guardado[-]", ui.theme.TagSuccess)
			}
		})
	}()
}

// confirmDeleteFollowUp asks before cancelling a follow-up row. Declining
// leaves everything untouched.
func (ui *UI) confirmDeleteFollowUp(rowIndex int) {
	followUps := ui.workspace.FollowUps()
	if rowIndex < 0 || rowIndex >= len(followUps) {
		ui.setStatusDirect("[%s]Seleccione un seguimiento[-]", ui.theme.TagWarning)
		return
	}

	modal := tview.NewModal().
		SetText("¿Cancelar este seguimiento?").
		AddButtons([]string{"Sí", "No"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			ui.pages.RemovePage(pageConfirmModal)
			ui.app.SetFocus(ui.followTable)
			if buttonLabel != "Sí" {
				return
			}
			go func() {
				ctx, cancel := ui.queryCtx()
				defer cancel()
				err := ui.workspace.DeleteRow(ctx, ui.client, ui.session.UserID(), rowIndex, func() bool { return true })
				ui.app.QueueUpdateDraw(func() {
					if err != nil {
						ui.setStatusDirect("[%s]%v[-]", ui.theme.TagError, err)
						return
					}
					ui.renderFollowTable()
					ui.setStatusDirect("[%s]Seguimiento cancelado[-]", ui.theme.TagSuccess)
				})
			}()
		})

	ui.pages.AddPage(pageConfirmModal, modal, true, true)
	ui.app.SetFocus(modal)
}

func (ui *UI) closeForm(name string) {
	ui.pages.RemovePage(name)
	ui.showActivePage()
	ui.app.SetFocus(ui.companyTable)
}

// modalWrap centers a primitive in a dim overlay.
func modalWrap(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func formatFieldErrors(errs []form.FieldError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, " · ")
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}
