package app

import (
	"sort"
	"time"

	"github.com/jlcastillov/crm-console/internal/store"
)

// Workspace is the working set behind the search view: the companies loaded
// by the last search, the current selection, and the detail payload of the
// selected company.
type Workspace struct {
	companies []store.Company
	selected  int
	followUps []store.FollowUp

	edit *EditSession
	row  *RowEditSession
}

// NewWorkspace returns an empty workspace with no selection.
func NewWorkspace() *Workspace {
	return &Workspace{selected: -1}
}

// SetCompanies replaces the working set with fresh search results and
// clears the selection and any open edit session.
func (w *Workspace) SetCompanies(companies []store.Company) {
	w.companies = companies
	w.selected = -1
	w.followUps = nil
	w.edit = nil
	w.row = nil
}

// Companies returns the current working set.
func (w *Workspace) Companies() []store.Company {
	return w.companies
}

// Selected returns the selected company, or nil when nothing is selected.
func (w *Workspace) Selected() *store.Company {
	if w.selected < 0 || w.selected >= len(w.companies) {
		return nil
	}
	return &w.companies[w.selected]
}

// SelectedIndex returns the position of the selection (-1 for none).
func (w *Workspace) SelectedIndex() int {
	if w.selected >= len(w.companies) {
		return -1
	}
	return w.selected
}

// SelectCompany moves the selection. Changing selection abandons any open
// edit session without saving.
func (w *Workspace) SelectCompany(index int) {
	if index < 0 || index >= len(w.companies) {
		w.selected = -1
	} else {
		w.selected = index
	}
	w.followUps = nil
	w.edit = nil
	w.row = nil
}

// SetFollowUps attaches the detail payload for the selected company.
func (w *Workspace) SetFollowUps(followUps []store.FollowUp) {
	w.followUps = followUps
}

// FollowUps returns the selected company's follow-up history.
func (w *Workspace) FollowUps() []store.FollowUp {
	return w.followUps
}

// NewCompany appends an unsaved company carrying a negative sentinel id and
// selects it. The sentinel is replaced by the backend-assigned id on save;
// cancelling the edit removes the row again.
func (w *Workspace) NewCompany() *store.Company {
	c := store.Company{ID: -time.Now().UnixNano()}
	w.companies = append(w.companies, c)
	w.selected = len(w.companies) - 1
	w.followUps = nil
	w.edit = nil
	w.row = nil
	return &w.companies[w.selected]
}

// ReplaceSelected overwrites the selected company in place (after a save
// assigned its real id or refreshed its fields).
func (w *Workspace) ReplaceSelected(c store.Company) {
	if w.selected >= 0 && w.selected < len(w.companies) {
		w.companies[w.selected] = c
	}
}

// RemoveSelected drops the selected company from the working set and
// reselects the first remaining entry, or nothing when the set is empty.
func (w *Workspace) RemoveSelected() {
	if w.selected < 0 || w.selected >= len(w.companies) {
		return
	}
	w.companies = append(w.companies[:w.selected], w.companies[w.selected+1:]...)
	if len(w.companies) > 0 {
		w.selected = 0
	} else {
		w.selected = -1
	}
	w.followUps = nil
}

// IsUnsaved reports whether a company still carries a sentinel id (it has
// never been persisted).
func IsUnsaved(c *store.Company) bool {
	return c != nil && c.ID < 0
}

// SortHistoryByDate orders history rows by their DD/MM/YYYY date column,
// newest first. Rows with malformed dates sink to the end in their original
// order.
func SortHistoryByDate(rows []store.FollowUp, dateOf func(store.FollowUp) string) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, oki := parseDMY(dateOf(rows[i]))
		tj, okj := parseDMY(dateOf(rows[j]))
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return ti.After(tj)
	})
}

func parseDMY(s string) (time.Time, bool) {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LatestContactDate returns the most recent completed follow-up date
// (YYYY-MM-DD) among rows, or "" when the company has never been contacted.
func LatestContactDate(rows []store.FollowUp) string {
	var latest string
	for _, f := range rows {
		if f.Status != "COMPLETADO" && f.Status != "REALIZADO" {
			continue
		}
		if f.ScheduledDate > latest {
			latest = f.ScheduledDate
		}
	}
	return latest
}

// WeekBounds returns the Monday and Sunday of the week containing day,
// matching the dashboard's weekly window.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := day.AddDate(0, 0, 1-wd)
	return monday, monday.AddDate(0, 0, 6)
}

// CompliancePercent is the completed-over-scheduled dashboard KPI. A week
// with nothing scheduled reports 0.
func CompliancePercent(m *store.WeekMetrics) int {
	if m == nil || m.Scheduled == 0 {
		return 0
	}
	return m.Completed * 100 / m.Scheduled
}

// BarWidth scales value into a bar of at most maxWidth cells. Any non-zero
// value renders at least one cell.
func BarWidth(value, max, maxWidth int) int {
	if value <= 0 || max <= 0 || maxWidth <= 0 {
		return 0
	}
	w := value * maxWidth / max
	if w < 1 {
		w = 1
	}
	if w > maxWidth {
		w = maxWidth
	}
	return w
}
