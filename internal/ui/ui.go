// Package ui renders the sales console: a role-filtered navigation bar on
// the left and one page per catalog view on the right. All data loads run
// on background goroutines and re-enter the UI through QueueUpdateDraw.
package ui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jlcastillov/crm-console/internal/api"
	core "github.com/jlcastillov/crm-console/internal/app"
	"github.com/jlcastillov/crm-console/internal/auth"
)

// Page names, one per catalog view.
var pageNames = map[int]string{
	core.ViewSearch:             "search",
	core.ViewAgenda:             "agenda",
	core.ViewDashboard:          "dashboard",
	core.ViewPendingAccumulated: "pending-accumulated",
	core.ViewPendingOverdue:     "pending-overdue",
	core.ViewMonitor:            "monitor",
	core.ViewClosedSales:        "closed-sales",
	core.ViewProduction:         "production",
}

// UI represents the terminal user interface.
type UI struct {
	app     *tview.Application
	client  api.Client
	session *auth.Session
	logger  *log.Logger

	controller *core.Controller
	workspace  *core.Workspace
	poller     *core.Poller

	// Layout components
	layout    *tview.Flex
	appTitle  *tview.TextView
	navList   *tview.List
	pages     *tview.Pages
	statusBar *tview.TextView
	bell      *tview.TextView

	// Search view
	searchInput  *tview.InputField
	companyTable *tview.Table
	detailTabs   *tview.Pages
	tabBar       *tview.TextView
	companyText  *tview.TextView
	followTable  *tview.Table
	historyText  *tview.TextView
	protocolText *tview.TextView

	// Report views
	agendaTable     *tview.Table
	dashboardText   *tview.TextView
	pendingAccTable *tview.Table
	pendingOldTable *tview.Table
	monitorTable    *tview.Table
	closedText      *tview.TextView
	productionTable *tview.Table

	// Notification panel
	notifList    *tview.List
	notifEntries []notifEntry

	hasTrueColor bool
	theme        Theme
	running      bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUI builds the console for an authenticated session.
func NewUI(ctx context.Context, client api.Client, session *auth.Session, logger *log.Logger) *UI {
	if logger == nil {
		logger = log.New(log.Writer(), "[UI] ", log.LstdFlags)
	}

	uiCtx, cancel := context.WithCancel(ctx)

	ui := &UI{
		app:          tview.NewApplication(),
		client:       client,
		session:      session,
		logger:       logger,
		workspace:    core.NewWorkspace(),
		hasTrueColor: detectTrueColor(),
		theme:        themeDark(),
		ctx:          uiCtx,
		cancel:       cancel,
	}

	ui.controller = core.NewController(core.FilterViews(session.Role()), ui.dispatchLoad)
	ui.poller = core.NewPoller(client, session.UserID(), time.Minute, logger, ui.onNotificationFeed)

	ui.setupLayout()
	ui.setupKeybindings()

	return ui
}

// Start runs the console until the context is cancelled or the user quits.
func (ui *UI) Start(ctx context.Context) error {
	ui.logger.Println("Starting TUI application")

	// Show UI immediately, then load the first view asynchronously
	go func() {
		ui.app.QueueUpdateDraw(func() {
			ui.controller.SwitchView(0)
			ui.syncNav()
		})
	}()

	// Notification poller runs for the whole session
	go ui.poller.Start(ui.ctx)

	go func() {
		select {
		case <-ctx.Done():
			ui.logger.Println("External context cancelled, stopping TUI")
		case <-ui.ctx.Done():
			ui.logger.Println("UI context cancelled, stopping TUI")
		}
		ui.cancel()
		ui.app.Stop()
	}()

	ui.running = true
	err := ui.app.Run()
	ui.running = false
	return err
}

// Stop stops the TUI application.
func (ui *UI) Stop() {
	ui.logger.Println("Stopping TUI application")
	ui.running = false
	ui.cancel()
	ui.app.Stop()
}

// setupLayout assembles the navigation bar, the view pages and the status
// bar.
func (ui *UI) setupLayout() {
	ui.appTitle = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.appTitle.SetBackgroundColor(ui.theme.Surface)
	ui.appTitle.SetText(fmt.Sprintf(" [%s]CRM Console[-]  [%s]%s[-]",
		ui.theme.TagAccent, ui.theme.TagMuted, ui.session.DisplayName()))

	ui.bell = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)
	ui.bell.SetBackgroundColor(ui.theme.Surface)
	ui.updateBell(0)

	ui.navList = tview.NewList().
		ShowSecondaryText(false)
	ui.navList.SetTitle(" Vistas ")
	ui.navList.SetBorder(true)
	ui.navList.SetTitleAlign(tview.AlignLeft)
	ui.navList.SetMainTextColor(ui.theme.TextPrimary)
	ui.navList.SetSelectedTextColor(ui.theme.SelectionFg)
	ui.navList.SetSelectedBackgroundColor(ui.theme.SelectionBg)
	ui.navList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		ui.controller.SwitchView(index)
		ui.showActivePage()
	})
	ui.syncNav()

	ui.pages = tview.NewPages()
	ui.setupSearchView()
	ui.setupReportViews()
	ui.setupNotificationPanel()

	ui.statusBar = tview.NewTextView()
	ui.statusBar.SetDynamicColors(true)
	ui.statusBar.SetText(fmt.Sprintf("[%s]q[-]:salir  [%s]n[-]:notificaciones  [%s]r[-]:recargar  [%s]Tab[-]:navegar",
		ui.theme.TagSuccess, ui.theme.TagSuccess, ui.theme.TagSuccess, ui.theme.TagSuccess))

	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.appTitle, 0, 3, false).
		AddItem(ui.bell, 0, 1, false)

	ui.layout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.navList, 28, 0, true).
		AddItem(ui.pages, 0, 1, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(ui.layout, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)

	ui.app.SetRoot(root, true)
	ui.app.SetFocus(ui.navList)
}

// syncNav rebuilds the navigation list from the role-filtered catalog.
func (ui *UI) syncNav() {
	current := ui.controller.ActiveFilteredIndex()
	ui.navList.Clear()
	for _, name := range ui.controller.Views().Names {
		ui.navList.AddItem(name, "", 0, nil)
	}
	if current < ui.navList.GetItemCount() {
		ui.navList.SetCurrentItem(current)
	}
}

// showActivePage flips the page stack to the active view.
func (ui *UI) showActivePage() {
	if name, ok := pageNames[ui.controller.ActiveViewID()]; ok {
		ui.pages.SwitchToPage(name)
	}
}

func (ui *UI) setupKeybindings() {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// While a form is active, let it handle all keys
		if ui.formActive() {
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			ui.Stop()
			return nil
		case tcell.KeyTab:
			ui.cycleFocus()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				ui.Stop()
				return nil
			case 'n':
				ui.toggleNotifications()
				return nil
			case 'r':
				ui.controller.InvalidateSearchCache()
				ui.dispatchLoad(ui.controller.ActiveViewID())
				return nil
			}
		}
		return event
	})
}

func (ui *UI) formActive() bool {
	switch ui.app.GetFocus().(type) {
	case *tview.InputField, *tview.Form, *tview.DropDown, *tview.Checkbox, *tview.Button:
		return true
	}
	return false
}

func (ui *UI) cycleFocus() {
	if ui.app.GetFocus() == ui.navList {
		ui.app.SetFocus(ui.pages)
	} else {
		ui.app.SetFocus(ui.navList)
	}
}

// dispatchLoad starts the background load for a view. Loads never run on
// the UI goroutine, and every dispatch runs: rapid view switches may leave
// several fetches in flight, each applying its own result on arrival.
func (ui *UI) dispatchLoad(viewID int) {
	ui.showActivePage()
	switch viewID {
	case core.ViewSearch:
		go ui.loadSearch(ui.searchInput.GetText())
	case core.ViewAgenda:
		go ui.loadAgenda()
	case core.ViewDashboard:
		go ui.loadDashboard()
	case core.ViewPendingAccumulated:
		go ui.loadPendingAccumulated()
	case core.ViewPendingOverdue:
		go ui.loadPendingOverdue()
	case core.ViewMonitor:
		go ui.loadMonitor()
	case core.ViewClosedSales:
		go ui.loadClosedSales()
	case core.ViewProduction:
		go ui.loadProduction()
	}
}

func (ui *UI) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(ui.ctx, 4*time.Second)
}

// setStatusDirect updates the status bar from the UI goroutine.
func (ui *UI) setStatusDirect(format string, args ...interface{}) {
	ui.statusBar.SetText(fmt.Sprintf(format, args...))
}

func today() string {
	return time.Now().Format("2006-01-02")
}
