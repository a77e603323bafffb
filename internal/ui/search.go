package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	core "github.com/jlcastillov/crm-console/internal/app"
	"github.com/jlcastillov/crm-console/internal/store"
)

// Detail tabs of the search view, in order.
var detailTabNames = []string{"DATOS EMPRESA", "SEGUIMIENTO", "HISTÓRICO", "PROTOCOLOS Y COTIZACIONES"}

func (ui *UI) setupSearchView() {
	ui.searchInput = tview.NewInputField().
		SetLabel(" Buscar: ").
		SetFieldWidth(40)
	ui.searchInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			ui.controller.InvalidateSearchCache()
			go ui.loadSearch(ui.searchInput.GetText())
			ui.app.SetFocus(ui.companyTable)
		}
	})

	ui.companyTable = tview.NewTable()
	ui.companyTable.SetTitle(" Empresas ")
	ui.companyTable.SetBorder(true)
	ui.companyTable.SetTitleAlign(tview.AlignLeft)
	ui.companyTable.SetSelectable(true, false)
	ui.companyTable.SetFixed(1, 0)

	ui.companyTable.SetSelectionChangedFunc(func(row, col int) {
		if row < 1 {
			return
		}
		ui.workspace.SelectCompany(row - 1)
		ui.controller.SelectDetailTab(0)
		ui.renderDetail()
		if c := ui.workspace.Selected(); c != nil && !core.IsUnsaved(c) {
			go ui.loadDetail(c.ID)
		}
	})

	ui.companyTable.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case 'e':
				ui.openCompanyForm(false)
				return nil
			case 'a':
				ui.workspace.NewCompany()
				ui.renderCompanyTable()
				ui.openCompanyForm(true)
				return nil
			case 's':
				ui.openFollowUpForm(true, -1)
				return nil
			case '/':
				ui.app.SetFocus(ui.searchInput)
				return nil
			case '1', '2', '3', '4':
				ui.selectTab(int(event.Rune() - '1'))
				return nil
			}
		}
		return event
	})

	ui.tabBar = tview.NewTextView().SetDynamicColors(true)
	ui.tabBar.SetBackgroundColor(ui.theme.Surface)

	ui.companyText = tview.NewTextView()
	ui.companyText.SetDynamicColors(true)
	ui.companyText.SetWordWrap(true)
	ui.companyText.SetBorder(true)
	ui.companyText.SetTitle(" " + detailTabNames[0] + " ")
	ui.companyText.SetTitleAlign(tview.AlignLeft)

	ui.followTable = tview.NewTable()
	ui.followTable.SetBorder(true)
	ui.followTable.SetTitle(" " + detailTabNames[1] + " ")
	ui.followTable.SetTitleAlign(tview.AlignLeft)
	ui.followTable.SetSelectable(true, false)
	ui.followTable.SetFixed(1, 0)
	ui.followTable.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune {
			row, _ := ui.followTable.GetSelection()
			switch event.Rune() {
			case 'e':
				ui.openFollowUpForm(false, row-1)
				return nil
			case 'd':
				ui.confirmDeleteFollowUp(row - 1)
				return nil
			}
		}
		return event
	})

	ui.historyText = tview.NewTextView()
	ui.historyText.SetDynamicColors(true)
	ui.historyText.SetBorder(true)
	ui.historyText.SetTitle(" " + detailTabNames[2] + " ")
	ui.historyText.SetTitleAlign(tview.AlignLeft)
	ui.historyText.SetScrollable(true)

	ui.protocolText = tview.NewTextView()
	ui.protocolText.SetDynamicColors(true)
	ui.protocolText.SetBorder(true)
	ui.protocolText.SetTitle(" " + detailTabNames[3] + " ")
	ui.protocolText.SetTitleAlign(tview.AlignLeft)
	ui.protocolText.SetScrollable(true)

	ui.detailTabs = tview.NewPages().
		AddPage("tab-0", ui.companyText, true, true).
		AddPage("tab-1", ui.followTable, true, false).
		AddPage("tab-2", ui.historyText, true, false).
		AddPage("tab-3", ui.protocolText, true, false)

	detail := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.tabBar, 1, 0, false).
		AddItem(ui.detailTabs, 0, 1, false)

	page := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.searchInput, 1, 0, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexColumn).
			AddItem(ui.companyTable, 0, 1, true).
			AddItem(detail, 0, 2, false), 0, 1, true)

	ui.renderTabBar()
	ui.pages.AddPage(pageNames[core.ViewSearch], page, true, true)
}

func (ui *UI) selectTab(tab int) {
	if tab < 0 || tab >= len(detailTabNames) {
		return
	}
	ui.controller.SelectDetailTab(tab)
	ui.detailTabs.SwitchToPage(fmt.Sprintf("tab-%d", tab))
	ui.renderTabBar()
	if tab == 1 {
		ui.app.SetFocus(ui.followTable)
	}
}

func (ui *UI) renderTabBar() {
	var b strings.Builder
	active := ui.controller.ActiveDetailTab()
	for i, name := range detailTabNames {
		if i == active {
			fmt.Fprintf(&b, " [%s](%d) %s[-] ", ui.theme.TagAccent, i+1, name)
		} else {
			fmt.Fprintf(&b, " [%s](%d) %s[-] ", ui.theme.TagMuted, i+1, name)
		}
	}
	ui.tabBar.SetText(b.String())
}

// loadSearch fetches companies matching the filter and caches the result
// until the next explicit search or refresh.
func (ui *UI) loadSearch(search string) {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.SearchCompanies(ctx, search)
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.controller.SetError(res.ErrorMessage)
			ui.setStatusDirect("[%s]%s[-]", ui.theme.TagError, res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.controller.MarkSearchCached()
		ui.workspace.SetCompanies(res.Data)
		ui.renderCompanyTable()
		ui.renderDetail()
		ui.setStatusDirect("[%s]%d empresas[-]", ui.theme.TagSuccess, len(res.Data))
	})
}

// loadDetail fetches the selected company's follow-up history. A stale
// response for a previously selected company is dropped.
func (ui *UI) loadDetail(companyID int64) {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.FetchDetail(ctx, companyID)
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.setStatusDirect("[%s]%s[-]", ui.theme.TagError, res.ErrorMessage)
			return
		}
		c := ui.workspace.Selected()
		if c == nil || c.ID != companyID {
			return // selection moved on while the fetch was in flight
		}
		ui.workspace.ReplaceSelected(res.Data.Company)
		ui.workspace.SetFollowUps(res.Data.FollowUps)
		ui.renderDetail()
	})
}

func (ui *UI) renderCompanyTable() {
	ui.companyTable.Clear()
	headers := []string{"Empresa", "RUC", "Contacto", "Teléfono"}
	for col, h := range headers {
		ui.companyTable.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(ui.theme.TableHeader).
			SetBackgroundColor(ui.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
	for i, c := range ui.workspace.Companies() {
		name := c.CommercialName
		if core.IsUnsaved(&c) {
			name = "(nueva empresa)"
		}
		ui.companyTable.SetCell(i+1, 0, tview.NewTableCell(name).SetTextColor(ui.theme.TableRow).SetExpansion(1))
		ui.companyTable.SetCell(i+1, 1, tview.NewTableCell(c.RUC).SetTextColor(ui.theme.TableRowMuted))
		ui.companyTable.SetCell(i+1, 2, tview.NewTableCell(c.ContactName).SetTextColor(ui.theme.TableRowMuted))
		ui.companyTable.SetCell(i+1, 3, tview.NewTableCell(c.ContactPhone).SetTextColor(ui.theme.TableRowMuted))
	}
	if idx := ui.workspace.SelectedIndex(); idx >= 0 {
		ui.companyTable.Select(idx+1, 0)
	}
}

func (ui *UI) renderDetail() {
	ui.renderTabBar()
	ui.renderCompanyText()
	ui.renderFollowTable()
	ui.renderHistory()
	ui.renderProtocols()
}

func (ui *UI) renderCompanyText() {
	c := ui.workspace.Selected()
	if c == nil {
		ui.companyText.SetText(fmt.Sprintf("[%s]Seleccione una empresa[-]", ui.theme.TagMuted))
		return
	}
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "[%s]%-20s[-] %s\n", ui.theme.TagMuted, label, value)
	}
	field("Nombre comercial", c.CommercialName)
	field("Razón social", c.LegalName)
	field("RUC", c.RUC)
	field("Sede principal", c.HeadOffice)
	field("Dirección", c.Address)
	field("Contacto", c.ContactName)
	field("Cargo", c.ContactRole)
	field("Correo", c.ContactEmail)
	field("Teléfono", c.ContactPhone)
	field("Tipo de cliente", c.ClientType)
	field("Rubro", c.BusinessLine)
	field("Sub-rubro", c.BusinessSubLine)
	field("Tipo de crédito", c.CreditType)
	field("Cartera", c.PortfolioType)
	field("Actividad económica", c.EconomicActivity)
	field("Riesgo", c.Risk)
	field("Trabajadores", strconv.Itoa(c.Workers))
	if last := core.LatestContactDate(ui.workspace.FollowUps()); last != "" {
		field("Último contacto", displayDate(last))
	}
	fmt.Fprintf(&b, "\n[%s]e[-]:editar  [%s]a[-]:nueva empresa  [%s]s[-]:nuevo seguimiento",
		ui.theme.TagSuccess, ui.theme.TagSuccess, ui.theme.TagSuccess)
	ui.companyText.SetText(b.String())
}

func (ui *UI) renderFollowTable() {
	ui.followTable.Clear()
	headers := []string{"Fecha", "Hora", "Tipo", "Prioridad", "Estado", "Presupuesto"}
	for col, h := range headers {
		ui.followTable.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(ui.theme.TableHeader).
			SetBackgroundColor(ui.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
	for i, f := range ui.workspace.FollowUps() {
		ui.followTable.SetCell(i+1, 0, tview.NewTableCell(f.ScheduledDate).SetTextColor(ui.theme.TableRow))
		ui.followTable.SetCell(i+1, 1, tview.NewTableCell(f.ScheduledTime).SetTextColor(ui.theme.TableRowMuted))
		ui.followTable.SetCell(i+1, 2, tview.NewTableCell(f.Type).SetTextColor(ui.theme.TableRow))
		ui.followTable.SetCell(i+1, 3, tview.NewTableCell(f.Priority).SetTextColor(hex(ui.theme.priorityTag(f.Priority))))
		ui.followTable.SetCell(i+1, 4, tview.NewTableCell(f.Status).SetTextColor(ui.theme.TableRow))
		ui.followTable.SetCell(i+1, 5, tview.NewTableCell(fmt.Sprintf("S/ %.2f", f.Budget)).SetTextColor(ui.theme.TableRowMuted))
	}
}

// renderHistory shows the completed follow-ups, newest first by their
// DD/MM/YYYY display date.
func (ui *UI) renderHistory() {
	var done []store.FollowUp
	for _, f := range ui.workspace.FollowUps() {
		if f.Status == "COMPLETADO" || f.Status == "REALIZADO" {
			done = append(done, f)
		}
	}
	core.SortHistoryByDate(done, func(f store.FollowUp) string {
		return displayDate(f.ScheduledDate)
	})

	if len(done) == 0 {
		ui.historyText.SetText(fmt.Sprintf("[%s]Sin actividades completadas[-]", ui.theme.TagMuted))
		return
	}
	var b strings.Builder
	for _, f := range done {
		fmt.Fprintf(&b, "[%s]%s[-]  %-8s  %s\n", ui.theme.TagAccent,
			displayDate(f.ScheduledDate), f.Type, f.Result)
		if f.Notes != "" {
			fmt.Fprintf(&b, "    [%s]%s[-]\n", ui.theme.TagMuted, f.Notes)
		}
	}
	ui.historyText.SetText(b.String())
}

// renderProtocols shows follow-ups carrying a budget: the quotes and
// protocols attached to the company.
func (ui *UI) renderProtocols() {
	var quotes []store.FollowUp
	for _, f := range ui.workspace.FollowUps() {
		if f.Budget > 0 {
			quotes = append(quotes, f)
		}
	}
	if len(quotes) == 0 {
		ui.protocolText.SetText(fmt.Sprintf("[%s]Sin cotizaciones registradas[-]", ui.theme.TagMuted))
		return
	}
	var total float64
	var b strings.Builder
	for _, f := range quotes {
		fmt.Fprintf(&b, "[%s]%s[-]  %-10s  [%s]S/ %.2f[-]  %s\n", ui.theme.TagAccent,
			displayDate(f.ScheduledDate), f.CallType, ui.theme.TagSuccess, f.Budget, f.StatusDetail)
		total += f.Budget
	}
	fmt.Fprintf(&b, "\n[%s]Total cotizado:[-] [%s]S/ %.2f[-]", ui.theme.TagMuted, ui.theme.TagSuccess, total)
	ui.protocolText.SetText(b.String())
}

// displayDate converts YYYY-MM-DD to the DD/MM/YYYY display format.
func displayDate(iso string) string {
	parts := strings.SplitN(iso, "-", 3)
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
