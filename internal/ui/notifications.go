package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	core "github.com/jlcastillov/crm-console/internal/app"
	"github.com/jlcastillov/crm-console/internal/store"
)

const pageNotifications = "notifications"

type notifEntry struct {
	alert        *store.Alert
	notification *store.Notification
}

func (ui *UI) setupNotificationPanel() {
	ui.notifList = tview.NewList().ShowSecondaryText(true)
	ui.notifList.SetTitle(" Notificaciones ")
	ui.notifList.SetBorder(true)
	ui.notifList.SetTitleAlign(tview.AlignLeft)
	ui.notifList.SetMainTextColor(ui.theme.TextPrimary)
	ui.notifList.SetSecondaryTextColor(ui.theme.TextMuted)
	ui.notifList.SetSelectedTextColor(ui.theme.SelectionFg)
	ui.notifList.SetSelectedBackgroundColor(ui.theme.SelectionBg)

	ui.notifList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(ui.notifEntries) {
			return
		}
		e := ui.notifEntries[index]
		if e.alert != nil {
			ui.jumpToCompany(e.alert.CompanyName)
			return
		}
		if e.notification != nil && !e.notification.Read {
			n := e.notification
			go func() {
				ctx, cancel := ui.queryCtx()
				defer cancel()
				err := ui.poller.MarkRead(ctx, n.ID)
				ui.app.QueueUpdateDraw(func() {
					ui.applyMarkRead(n, err)
				})
			}()
		}
	})

	ui.notifList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || (event.Key() == tcell.KeyRune && event.Rune() == 'n') {
			ui.toggleNotifications()
			return nil
		}
		return event
	})

	ui.pages.AddPage(pageNotifications, modalWrap(ui.notifList, 70, 0), true, false)
}

// applyMarkRead settles a mark-read attempt: the local flag flips only when
// the remote call succeeded, a failure surfaces in the status bar.
func (ui *UI) applyMarkRead(n *store.Notification, err error) {
	if err != nil {
		ui.setStatusDirect("[%s]%s[-]", ui.theme.TagError, err.Error())
		return
	}
	n.Read = true
	ui.updateBell(ui.poller.Unread())
}

// onNotificationFeed runs on the poller goroutine; it re-enters the UI
// through QueueUpdateDraw.
func (ui *UI) onNotificationFeed(feed *store.NotificationFeed) {
	ui.app.QueueUpdateDraw(func() {
		ui.updateBell(feed.Unread)
		ui.renderNotifications(feed)
	})
}

func (ui *UI) updateBell(unread int) {
	if unread > 0 {
		ui.bell.SetText(fmt.Sprintf("[%s]🔔 %d[-] ", ui.theme.TagWarning, unread))
	} else {
		ui.bell.SetText(fmt.Sprintf("[%s]🔔[-] ", ui.theme.TagMuted))
	}
}

func (ui *UI) renderNotifications(feed *store.NotificationFeed) {
	ui.notifList.Clear()
	ui.notifEntries = ui.notifEntries[:0]

	for i := range feed.Alerts {
		a := &feed.Alerts[i]
		tag := ui.theme.TagWarning
		if a.AlertType == "ALTO_VALOR" {
			tag = ui.theme.TagSuccess
		}
		ui.notifList.AddItem(
			fmt.Sprintf("[%s]%s[-]", tag, a.Message),
			fmt.Sprintf("%s %s · %s", displayDate(a.ScheduledDate), a.ScheduledTime, a.Contact),
			0, nil)
		ui.notifEntries = append(ui.notifEntries, notifEntry{alert: a})
	}

	for i := range feed.Notifications {
		n := &feed.Notifications[i]
		tag := ui.theme.TagTextPrimary
		if n.Read {
			tag = ui.theme.TagMuted
		}
		ui.notifList.AddItem(
			fmt.Sprintf("[%s]%s[-]", tag, n.Title),
			n.Message, 0, nil)
		ui.notifEntries = append(ui.notifEntries, notifEntry{notification: n})
	}

	if ui.notifList.GetItemCount() == 0 {
		ui.notifList.AddItem(fmt.Sprintf("[%s]Sin notificaciones[-]", ui.theme.TagMuted), "", 0, nil)
		ui.notifEntries = append(ui.notifEntries, notifEntry{})
	}
}

func (ui *UI) toggleNotifications() {
	if name, _ := ui.pages.GetFrontPage(); name == pageNotifications {
		ui.pages.HidePage(pageNotifications)
		ui.showActivePage()
		ui.app.SetFocus(ui.navList)
		return
	}
	ui.pages.ShowPage(pageNotifications)
	ui.app.SetFocus(ui.notifList)
}

// jumpToCompany navigates from an alert to the search view, pre-filtered to
// the company's name. Selecting the row loads its detail.
func (ui *UI) jumpToCompany(name string) {
	ui.pages.HidePage(pageNotifications)
	idx := ui.controller.Views().FilteredIndex(core.ViewSearch)
	if idx < 0 {
		return
	}
	ui.controller.InvalidateSearchCache()
	ui.searchInput.SetText(name)
	ui.controller.SwitchView(idx)
	ui.syncNav()
	ui.showActivePage()
	ui.app.SetFocus(ui.companyTable)
}
