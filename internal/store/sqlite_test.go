package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// isoDate returns today+offset days in YYYY-MM-DD, using UTC so the
// comparisons against SQLite's date('now') hold near midnight.
func isoDate(offsetDays int) string {
	return time.Now().UTC().AddDate(0, 0, offsetDays).Format("2006-01-02")
}

func seedCompany(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.CreateCompany(context.Background(), &Company{
		CommercialName: name,
		LegalName:      name + " S.A.C.",
		RUC:            "20100123456",
		ContactName:    "Jorge Paredes",
		ContactPhone:   "998877665",
		CreatedBy:      1,
	})
	require.NoError(t, err)
	return id
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t)

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 5, "expected application tables to be created")
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, &User{
		Login:        "ejecutivo",
		FirstName:    "Carla",
		PaternalName: "Mendoza",
		ProfileID:    3,
	}, "secreto")
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "ejecutivo", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "Carla", u.FirstName)
	assert.Equal(t, 3, u.ProfileID)

	_, err = s.Authenticate(ctx, "ejecutivo", "otra")
	assert.EqualError(t, err, "invalid credentials")

	_, err = s.Authenticate(ctx, "nadie", "secreto")
	assert.EqualError(t, err, "invalid credentials")
}

func TestCompanyLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedCompany(t, s, "Distribuidora Andina")

	c, err := s.GetCompany(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Distribuidora Andina", c.CommercialName)
	assert.Equal(t, "20100123456", c.RUC)

	c.ContactRole = "Gerente Comercial"
	c.UpdatedBy = 2
	n, err := s.UpdateCompany(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	c2, err := s.GetCompany(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Gerente Comercial", c2.ContactRole)

	// Updating a non-existent id affects no rows
	missing := *c
	missing.ID = 99999
	n, err = s.UpdateCompany(ctx, &missing)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = s.GetCompany(ctx, 99999)
	assert.Error(t, err)
}

func TestSearchCompanies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedCompany(t, s, "Distribuidora Andina")
	id2, err := s.CreateCompany(ctx, &Company{
		CommercialName: "Textiles del Sur",
		LegalName:      "Textiles del Sur S.A.C.",
		RUC:            "20456789012",
	})
	require.NoError(t, err)

	// Free text against commercial name
	got, err := s.SearchCompanies(ctx, "Andina")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Distribuidora Andina", got[0].CommercialName)

	// Against RUC
	got, err = s.SearchCompanies(ctx, "204567")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id2, got[0].ID)

	// Empty search returns everything
	got, err = s.SearchCompanies(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// No match
	got, err = s.SearchCompanies(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFollowUpLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Agroexport Norte")

	id1, err := s.CreateFollowUp(ctx, &FollowUp{
		CompanyID:      companyID,
		AssignedUserID: 1,
		Type:           "LLAMADA",
		Priority:       "ALTA",
		ScheduledDate:  "2026-08-24",
		ScheduledTime:  "09:00",
	})
	require.NoError(t, err)

	_, err = s.CreateFollowUp(ctx, &FollowUp{
		CompanyID:      companyID,
		AssignedUserID: 1,
		Type:           "VISITA",
		Priority:       "MEDIA",
		ScheduledDate:  "2026-08-26",
		ScheduledTime:  "15:00",
		Status:         "COMPLETADO",
	})
	require.NoError(t, err)

	list, err := s.ListFollowUps(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Most recent schedule first
	assert.Equal(t, "2026-08-26", list[0].ScheduledDate)
	// Empty status defaulted on insert
	assert.Equal(t, "PENDIENTE", list[1].Status)

	upd := list[1]
	upd.Status = "CANCELADO"
	upd.UpdatedBy = 2
	n, err := s.UpdateFollowUp(ctx, &upd)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err = s.ListFollowUps(ctx, companyID)
	require.NoError(t, err)
	for _, f := range list {
		if f.ID == id1 {
			assert.Equal(t, "CANCELADO", f.Status)
		}
	}
}

func TestAgendaAndCalendar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Ferretería El Tornillo")

	userID, err := s.CreateUser(ctx, &User{Login: "ejecutivo", FirstName: "Carla", ProfileID: 3}, "x")
	require.NoError(t, err)

	for _, f := range []FollowUp{
		{CompanyID: companyID, AssignedUserID: userID, Type: "LLAMADA", ScheduledDate: "2026-08-26", ScheduledTime: "09:00"},
		{CompanyID: companyID, AssignedUserID: userID, Type: "VISITA", ScheduledDate: "2026-08-26", ScheduledTime: "11:30"},
		{CompanyID: companyID, AssignedUserID: userID, Type: "CORREO", ScheduledDate: "2026-08-27", ScheduledTime: "10:00"},
		{CompanyID: companyID, AssignedUserID: 999, Type: "LLAMADA", ScheduledDate: "2026-08-26", ScheduledTime: "08:00"},
	} {
		f := f
		_, err := s.CreateFollowUp(ctx, &f)
		require.NoError(t, err)
	}

	agenda, err := s.AgendaForDay(ctx, userID, "2026-08-26")
	require.NoError(t, err)
	require.Len(t, agenda, 2, "agenda is per user and per day")
	assert.Equal(t, "09:00", agenda[0].ScheduledTime)
	assert.Equal(t, "11:30", agenda[1].ScheduledTime)
	assert.Equal(t, "Ferretería El Tornillo", agenda[0].Client)
	assert.Equal(t, "ejecutivo", agenda[0].UserLogin)

	// The monitor calendar spans every user
	cal, err := s.Calendar(ctx, "2026-08-24", "2026-08-30")
	require.NoError(t, err)
	assert.Len(t, cal, 4)
	assert.Equal(t, "08:00", cal[0].ScheduledTime, "ordered by date then time")
}

func TestDashboardMetrics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Distribuidora Andina")

	// Wednesday 2026-08-26: the week runs Monday 24 through Sunday 30
	rows := []FollowUp{
		{ScheduledDate: "2026-08-24", Status: "COMPLETADO"},
		{ScheduledDate: "2026-08-25", Status: "REALIZADO"},
		{ScheduledDate: "2026-08-26"},
		{ScheduledDate: "2026-08-30", Status: "CANCELADO"},
		{ScheduledDate: "2026-08-23"}, // previous week
		{ScheduledDate: "2026-08-31"}, // next week
	}
	for _, f := range rows {
		f.CompanyID = companyID
		f.AssignedUserID = 1
		_, err := s.CreateFollowUp(ctx, &f)
		require.NoError(t, err)
	}

	m, err := s.DashboardMetrics(ctx, "2026-08-26", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Scheduled)
	assert.Equal(t, 2, m.Completed)
	assert.Equal(t, 1, m.Pending)
	assert.Equal(t, 1, m.Cancelled)

	_, err = s.DashboardMetrics(ctx, "26/08/2026", 1)
	assert.Error(t, err)
}

func TestPendingLists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Textiles del Sur")

	rows := []FollowUp{
		{ScheduledDate: isoDate(-5), Priority: "ALTA"},
		{ScheduledDate: isoDate(-1), Priority: "BAJA"},
		{ScheduledDate: isoDate(0), Priority: "ALTA"},
		{ScheduledDate: isoDate(2), Priority: "MEDIA"},
		{ScheduledDate: isoDate(-3), Priority: "ALTA", Status: "COMPLETADO"},
	}
	for _, f := range rows {
		f.CompanyID = companyID
		f.AssignedUserID = 1
		_, err := s.CreateFollowUp(ctx, &f)
		require.NoError(t, err)
	}

	// Accumulated: every pending row, newest schedule first
	acc, err := s.PendingAccumulated(ctx, 1, "", "", "")
	require.NoError(t, err)
	require.Len(t, acc, 4)
	assert.Equal(t, isoDate(2), acc[0].ScheduledDate)
	assert.Equal(t, isoDate(-5), acc[3].ScheduledDate)
	assert.GreaterOrEqual(t, acc[3].DaysElapsed, 4)

	// Priority filter
	alta, err := s.PendingAccumulated(ctx, 1, "ALTA", "", "")
	require.NoError(t, err)
	assert.Len(t, alta, 2)

	// Overdue: strictly past dates only, oldest first
	over, err := s.PendingOverdue(ctx, 1, "", "")
	require.NoError(t, err)
	require.Len(t, over, 2)
	assert.Equal(t, isoDate(-5), over[0].ScheduledDate)
	assert.Equal(t, isoDate(-1), over[1].ScheduledDate)
}

func TestClosedSalesReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Agroexport Norte")

	sales := []ClosedSale{
		{CompanyID: companyID, Service: "Reclutamiento", Amount: 8000, ClosedDate: "2026-08-24", DaysToClose: 10, UserID: 1},
		{CompanyID: companyID, Service: "Consultoría", Amount: 12000, ClosedDate: "2026-08-24", DaysToClose: 20, UserID: 1},
		{CompanyID: companyID, Service: "Capacitación", Amount: 5000, ClosedDate: "2026-08-26", DaysToClose: 6, UserID: 2},
		{CompanyID: companyID, Service: "Fuera de rango", Amount: 9999, ClosedDate: "2026-07-01", DaysToClose: 3, UserID: 1},
	}
	for _, cs := range sales {
		cs := cs
		_, err := s.CreateClosedSale(ctx, &cs)
		require.NoError(t, err)
	}

	report, err := s.ClosedSales(ctx, "2026-08-24", "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalClosed)
	assert.Equal(t, 25000.0, report.TotalAmount)
	assert.InDelta(t, 12.0, report.AvgDaysToClose, 0.001)

	require.Len(t, report.PerDay, 2)
	assert.Equal(t, "LUNES", report.PerDay[0].Weekday)
	assert.Equal(t, 2, report.PerDay[0].Count)
	assert.Equal(t, "MIÉRCOLES", report.PerDay[1].Weekday)

	require.Len(t, report.History, 3)
	assert.Equal(t, "2026-08-26", report.History[0].ClosedDate, "history is newest first")
	assert.Equal(t, "Agroexport Norte", report.History[0].Company)
}

func TestDailyProduction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Distribuidora Andina")

	u1, err := s.CreateUser(ctx, &User{Login: "carla", FirstName: "Carla", ProfileID: 3}, "x")
	require.NoError(t, err)
	u2, err := s.CreateUser(ctx, &User{Login: "mario", FirstName: "Mario", ProfileID: 3}, "x")
	require.NoError(t, err)

	rows := []FollowUp{
		{AssignedUserID: u1, ScheduledDate: "2026-08-26", Status: "COMPLETADO"},
		{AssignedUserID: u1, ScheduledDate: "2026-08-26"},
		{AssignedUserID: u1, ScheduledDate: "2026-08-27"}, // different day
		{AssignedUserID: u2, ScheduledDate: "2026-08-26", Status: "REALIZADO"},
	}
	for _, f := range rows {
		f.CompanyID = companyID
		_, err := s.CreateFollowUp(ctx, &f)
		require.NoError(t, err)
	}

	prod, err := s.DailyProduction(ctx, "2026-08-26")
	require.NoError(t, err)
	require.Len(t, prod, 2)

	// Ordered by login: carla, mario
	assert.Equal(t, "carla", prod[0].UserLogin)
	assert.Equal(t, 1, prod[0].Contacts)
	assert.Equal(t, 1, prod[0].Pending)
	assert.Equal(t, 2, prod[0].Total)

	assert.Equal(t, "mario", prod[1].UserLogin)
	assert.Equal(t, 1, prod[1].Contacts)
	assert.Equal(t, 0, prod[1].Pending)
}

func TestNotificationFeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Textiles del Sur")

	// One overdue pending and one high-budget pending produce alerts;
	// completed and low-budget future rows do not.
	rows := []FollowUp{
		{ScheduledDate: isoDate(-2), Priority: "ALTA"},
		{ScheduledDate: isoDate(1), Budget: 15000},
		{ScheduledDate: isoDate(1), Budget: 500},
		{ScheduledDate: isoDate(-4), Status: "COMPLETADO"},
	}
	for _, f := range rows {
		f.CompanyID = companyID
		f.AssignedUserID = 1
		_, err := s.CreateFollowUp(ctx, &f)
		require.NoError(t, err)
	}

	noteID, err := s.CreateNotification(ctx, &Notification{
		UserID: 1, Title: "Bienvenido", Message: "Cuenta creada", Type: "Info",
	})
	require.NoError(t, err)
	_, err = s.CreateNotification(ctx, &Notification{
		UserID: 1, Title: "Leída", Type: "Info", Read: true,
	})
	require.NoError(t, err)
	_, err = s.CreateNotification(ctx, &Notification{
		UserID: 2, Title: "De otro usuario", Type: "Info",
	})
	require.NoError(t, err)

	feed, err := s.Notifications(ctx, 1)
	require.NoError(t, err)

	require.Len(t, feed.Alerts, 2)
	types := map[string]Alert{}
	for _, a := range feed.Alerts {
		types[a.AlertType] = a
	}
	require.Contains(t, types, "SIN_ATENCION")
	require.Contains(t, types, "ALTO_VALOR")
	assert.Contains(t, types["ALTO_VALOR"].Message, "S/ 15000")
	assert.Contains(t, types["SIN_ATENCION"].Message, "Textiles del Sur")
	assert.GreaterOrEqual(t, types["SIN_ATENCION"].HoursIdle, 24)

	assert.Len(t, feed.Notifications, 2, "feed is per user")
	assert.Equal(t, 1, feed.Unread)

	// Marking read is idempotent
	changed, err := s.MarkNotificationRead(ctx, noteID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.MarkNotificationRead(ctx, noteID)
	require.NoError(t, err)
	assert.False(t, changed)

	feed, err = s.Notifications(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, feed.Unread)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	companyID := seedCompany(t, s, "Distribuidora Andina")
	_, err := s.CreateFollowUp(ctx, &FollowUp{CompanyID: companyID, AssignedUserID: 1, ScheduledDate: "2026-08-26"})
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	got, err := s.SearchCompanies(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
