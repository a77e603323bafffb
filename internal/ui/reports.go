package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	core "github.com/jlcastillov/crm-console/internal/app"
	"github.com/jlcastillov/crm-console/internal/store"
)

func (ui *UI) setupReportViews() {
	ui.agendaTable = ui.newReportTable(" Agenda del día ")
	ui.pages.AddPage(pageNames[core.ViewAgenda], ui.agendaTable, true, false)

	ui.dashboardText = tview.NewTextView()
	ui.dashboardText.SetDynamicColors(true)
	ui.dashboardText.SetBorder(true)
	ui.dashboardText.SetTitle(" Dashboard semanal ")
	ui.dashboardText.SetTitleAlign(tview.AlignLeft)
	ui.pages.AddPage(pageNames[core.ViewDashboard], ui.dashboardText, true, false)

	ui.pendingAccTable = ui.newReportTable(" Pendientes acumulados ")
	ui.pages.AddPage(pageNames[core.ViewPendingAccumulated], ui.pendingAccTable, true, false)

	ui.pendingOldTable = ui.newReportTable(" Pendientes olvidados ")
	ui.pages.AddPage(pageNames[core.ViewPendingOverdue], ui.pendingOldTable, true, false)

	ui.monitorTable = ui.newReportTable(" Monitoreo de ejecutivos ")
	ui.pages.AddPage(pageNames[core.ViewMonitor], ui.monitorTable, true, false)

	ui.closedText = tview.NewTextView()
	ui.closedText.SetDynamicColors(true)
	ui.closedText.SetBorder(true)
	ui.closedText.SetTitle(" Ventas cerradas ")
	ui.closedText.SetTitleAlign(tview.AlignLeft)
	ui.closedText.SetScrollable(true)
	ui.pages.AddPage(pageNames[core.ViewClosedSales], ui.closedText, true, false)

	ui.productionTable = ui.newReportTable(" Producción diaria ")
	ui.pages.AddPage(pageNames[core.ViewProduction], ui.productionTable, true, false)
}

func (ui *UI) newReportTable(title string) *tview.Table {
	t := tview.NewTable()
	t.SetTitle(title)
	t.SetBorder(true)
	t.SetTitleAlign(tview.AlignLeft)
	t.SetSelectable(true, false)
	t.SetFixed(1, 0)
	return t
}

func (ui *UI) tableHeaders(t *tview.Table, headers []string) {
	for col, h := range headers {
		t.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(ui.theme.TableHeader).
			SetBackgroundColor(ui.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
}

func (ui *UI) loadAgenda() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.FetchAgenda(ctx, ui.session.UserID(), today())
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.agendaTable.Clear()
		ui.tableHeaders(ui.agendaTable, []string{"Hora", "Cliente", "Contacto", "Teléfono", "Tipo", "Prioridad", "Estado"})
		for i, a := range res.Data {
			ui.agendaTable.SetCell(i+1, 0, tview.NewTableCell(a.ScheduledTime).SetTextColor(ui.theme.TableRow))
			ui.agendaTable.SetCell(i+1, 1, tview.NewTableCell(a.Client).SetTextColor(ui.theme.TableRow).SetExpansion(1))
			ui.agendaTable.SetCell(i+1, 2, tview.NewTableCell(a.Contact).SetTextColor(ui.theme.TableRowMuted))
			ui.agendaTable.SetCell(i+1, 3, tview.NewTableCell(a.Phone).SetTextColor(ui.theme.TableRowMuted))
			ui.agendaTable.SetCell(i+1, 4, tview.NewTableCell(a.Type).SetTextColor(ui.theme.TableRow))
			ui.agendaTable.SetCell(i+1, 5, tview.NewTableCell(a.Priority).SetTextColor(hex(ui.theme.priorityTag(a.Priority))))
			ui.agendaTable.SetCell(i+1, 6, tview.NewTableCell(a.Status).SetTextColor(ui.theme.TableRow))
		}
		ui.setStatusDirect("[%s]%d actividades para hoy[-]", ui.theme.TagSuccess, len(res.Data))
	})
}

func (ui *UI) loadDashboard() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.FetchDashboardMetrics(ctx, today(), ui.session.UserID())
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.renderDashboard(res.Data)
	})
}

func (ui *UI) renderDashboard(m *store.WeekMetrics) {
	monday, sunday := core.WeekBounds(time.Now())

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]Semana del %s al %s[-]\n\n", ui.theme.TagAccent,
		monday.Format("02/01/2006"), sunday.Format("02/01/2006"))

	max := m.Scheduled
	bar := func(label string, value int, tag string) {
		width := core.BarWidth(value, max, 40)
		fmt.Fprintf(&b, "[%s]%-12s[-] [%s]%s[-] %d\n", ui.theme.TagMuted, label,
			tag, strings.Repeat("█", width), value)
	}
	bar("Programados", m.Scheduled, ui.theme.TagAccent)
	bar("Completados", m.Completed, ui.theme.TagSuccess)
	bar("Pendientes", m.Pending, ui.theme.TagWarning)
	bar("Cancelados", m.Cancelled, ui.theme.TagError)

	fmt.Fprintf(&b, "\n[%s]Cumplimiento:[-] [%s]%d%%[-]\n", ui.theme.TagMuted,
		ui.theme.TagSuccess, core.CompliancePercent(m))
	ui.dashboardText.SetText(b.String())
}

func (ui *UI) loadPendingAccumulated() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.FetchPendingAccumulated(ctx, ui.session.UserID(), "", "", "")
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.renderPending(ui.pendingAccTable, res.Data)
		ui.setStatusDirect("[%s]%d pendientes acumulados[-]", ui.theme.TagWarning, len(res.Data))
	})
}

func (ui *UI) loadPendingOverdue() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.FetchPendingOverdue(ctx, ui.session.UserID(), "", "")
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.renderPending(ui.pendingOldTable, res.Data)
		ui.setStatusDirect("[%s]%d pendientes olvidados[-]", ui.theme.TagError, len(res.Data))
	})
}

func (ui *UI) renderPending(t *tview.Table, items []store.PendingItem) {
	t.Clear()
	ui.tableHeaders(t, []string{"Fecha", "Cliente", "Contacto", "Teléfono", "Tipo", "Prioridad", "Días"})
	for i, p := range items {
		t.SetCell(i+1, 0, tview.NewTableCell(displayDate(p.ScheduledDate)).SetTextColor(ui.theme.TableRow))
		t.SetCell(i+1, 1, tview.NewTableCell(p.Client).SetTextColor(ui.theme.TableRow).SetExpansion(1))
		t.SetCell(i+1, 2, tview.NewTableCell(p.Contact).SetTextColor(ui.theme.TableRowMuted))
		t.SetCell(i+1, 3, tview.NewTableCell(p.Phone).SetTextColor(ui.theme.TableRowMuted))
		t.SetCell(i+1, 4, tview.NewTableCell(p.Type).SetTextColor(ui.theme.TableRow))
		t.SetCell(i+1, 5, tview.NewTableCell(p.Priority).SetTextColor(hex(ui.theme.priorityTag(p.Priority))))
		t.SetCell(i+1, 6, tview.NewTableCell(strconv.Itoa(p.DaysElapsed)).SetTextColor(ui.theme.TableRowMuted))
	}
}

// loadMonitor loads the supervisor calendar: every executive's follow-ups
// for the current week.
func (ui *UI) loadMonitor() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	monday, sunday := core.WeekBounds(time.Now())
	res := ui.client.FetchCalendar(ctx, monday.Format("2006-01-02"), sunday.Format("2006-01-02"))
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.monitorTable.Clear()
		ui.tableHeaders(ui.monitorTable, []string{"Fecha", "Hora", "Ejecutivo", "Cliente", "Tipo", "Estado"})
		for i, a := range res.Data {
			ui.monitorTable.SetCell(i+1, 0, tview.NewTableCell(displayDate(a.ScheduledDate)).SetTextColor(ui.theme.TableRow))
			ui.monitorTable.SetCell(i+1, 1, tview.NewTableCell(a.ScheduledTime).SetTextColor(ui.theme.TableRowMuted))
			ui.monitorTable.SetCell(i+1, 2, tview.NewTableCell(a.UserName).SetTextColor(ui.theme.TableRow))
			ui.monitorTable.SetCell(i+1, 3, tview.NewTableCell(a.Client).SetTextColor(ui.theme.TableRow).SetExpansion(1))
			ui.monitorTable.SetCell(i+1, 4, tview.NewTableCell(a.Type).SetTextColor(ui.theme.TableRow))
			ui.monitorTable.SetCell(i+1, 5, tview.NewTableCell(a.Status).SetTextColor(ui.theme.TableRow))
		}
		ui.setStatusDirect("[%s]%d actividades esta semana[-]", ui.theme.TagSuccess, len(res.Data))
	})
}

func (ui *UI) loadClosedSales() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	monday, sunday := core.WeekBounds(time.Now())
	res := ui.client.FetchClosedSales(ctx, monday.Format("2006-01-02"), sunday.Format("2006-01-02"))
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.renderClosedSales(res.Data)
	})
}

func (ui *UI) renderClosedSales(r *store.ClosedSalesReport) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]Cierres:[-] %d   [%s]Monto total:[-] [%s]S/ %.2f[-]   [%s]Días promedio:[-] %.1f\n\n",
		ui.theme.TagMuted, r.TotalClosed, ui.theme.TagMuted, ui.theme.TagSuccess,
		r.TotalAmount, ui.theme.TagMuted, r.AvgDaysToClose)

	max := 0
	for _, d := range r.PerDay {
		if d.Count > max {
			max = d.Count
		}
	}
	for _, d := range r.PerDay {
		width := core.BarWidth(d.Count, max, 30)
		fmt.Fprintf(&b, "[%s]%-10s[-] [%s]%s[-] %d\n", ui.theme.TagMuted, d.Weekday,
			ui.theme.TagAccent, strings.Repeat("█", width), d.Count)
	}

	if len(r.History) > 0 {
		fmt.Fprintf(&b, "\n[%s]Historial[-]\n", ui.theme.TagAccent)
		for _, cs := range r.History {
			fmt.Fprintf(&b, "%s  %-30s  %-20s  [%s]S/ %.2f[-]\n",
				displayDate(cs.ClosedDate), cs.Company, cs.Service, ui.theme.TagSuccess, cs.Amount)
		}
	}
	ui.closedText.SetText(b.String())
}

func (ui *UI) loadProduction() {
	ctx, cancel := ui.queryCtx()
	defer cancel()

	res := ui.client.FetchDailyProduction(ctx, today())
	ui.app.QueueUpdateDraw(func() {
		if !res.Success {
			ui.showLoadError(res.ErrorMessage)
			return
		}
		ui.controller.ClearError()
		ui.productionTable.Clear()
		ui.tableHeaders(ui.productionTable, []string{"Ejecutivo", "Usuario", "Contactos", "Pendientes", "Total"})
		for i, p := range res.Data {
			ui.productionTable.SetCell(i+1, 0, tview.NewTableCell(p.UserName).SetTextColor(ui.theme.TableRow).SetExpansion(1))
			ui.productionTable.SetCell(i+1, 1, tview.NewTableCell(p.UserLogin).SetTextColor(ui.theme.TableRowMuted))
			ui.productionTable.SetCell(i+1, 2, tview.NewTableCell(strconv.Itoa(p.Contacts)).SetTextColor(ui.theme.TableRow))
			ui.productionTable.SetCell(i+1, 3, tview.NewTableCell(strconv.Itoa(p.Pending)).SetTextColor(ui.theme.TableRow))
			ui.productionTable.SetCell(i+1, 4, tview.NewTableCell(strconv.Itoa(p.Total)).SetTextColor(ui.theme.TableRow))
		}
		ui.setStatusDirect("[%s]Producción de hoy cargada[-]", ui.theme.TagSuccess)
	})
}

func (ui *UI) showLoadError(msg string) {
	ui.controller.SetError(msg)
	ui.setStatusDirect("[%s]%s[-]", ui.theme.TagError, msg)
}
