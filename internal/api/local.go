package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jlcastillov/crm-console/internal/bus"
	"github.com/jlcastillov/crm-console/internal/store"
)

// LocalClient serves the client contract directly from the SQLite store.
// Mutations publish activity records to the bus so supervisors can tail
// them with the watch command.
type LocalClient struct {
	store  *store.Store
	bus    bus.Bus
	logger *log.Logger
}

// NewLocalClient wires a store-backed client. A nil bus disables activity
// publishing.
func NewLocalClient(st *store.Store, b bus.Bus, logger *log.Logger) *LocalClient {
	if logger == nil {
		logger = log.New(log.Writer(), "[API] ", log.LstdFlags)
	}
	if b == nil {
		b = bus.NewNullBus(logger)
	}
	return &LocalClient{store: st, bus: b, logger: logger}
}

func (c *LocalClient) publish(kind string, companyID, followUpID, userID int64, detail string) {
	msg := bus.ActivityMessage{
		ID:         uuid.New().String(),
		Kind:       kind,
		CompanyID:  companyID,
		FollowUpID: followUpID,
		UserID:     userID,
		Detail:     detail,
		Timestamp:  time.Now().Unix(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.bus.PublishActivity(ctx, msg); err != nil {
		c.logger.Printf("Failed to publish %s activity: %v", kind, err)
	}
}

// Authenticate validates credentials.
func (c *LocalClient) Authenticate(ctx context.Context, login, password string) Result[*store.User] {
	u, err := c.store.Authenticate(ctx, login, password)
	if err != nil {
		if strings.Contains(err.Error(), "invalid credentials") {
			return Fail[*store.User](ErrAuth, "Usuario o contraseña incorrectos")
		}
		return FailErr[*store.User](ErrDB, err)
	}
	return OK(u)
}

// SearchCompanies returns companies matching a free-text filter.
func (c *LocalClient) SearchCompanies(ctx context.Context, search string) Result[[]store.Company] {
	companies, err := c.store.SearchCompanies(ctx, search)
	if err != nil {
		return FailErr[[]store.Company](ErrDB, err)
	}
	return OK(companies)
}

// FetchDetail loads one company's profile and follow-up history.
func (c *LocalClient) FetchDetail(ctx context.Context, companyID int64) Result[CompanyDetail] {
	company, err := c.store.GetCompany(ctx, companyID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return FailErr[CompanyDetail](ErrNotFound, err)
		}
		return FailErr[CompanyDetail](ErrDB, err)
	}
	followups, err := c.store.ListFollowUps(ctx, companyID)
	if err != nil {
		return FailErr[CompanyDetail](ErrDB, err)
	}
	return OK(CompanyDetail{Company: *company, FollowUps: followups})
}

// CreateCompany persists a new company.
func (c *LocalClient) CreateCompany(ctx context.Context, co *store.Company) Result[int64] {
	id, err := c.store.CreateCompany(ctx, co)
	if err != nil {
		return FailErr[int64](ErrDB, err)
	}
	c.publish("company.created", id, 0, co.CreatedBy, co.CommercialName)
	return OK(id)
}

// UpdateCompany persists profile changes to an existing company.
func (c *LocalClient) UpdateCompany(ctx context.Context, co *store.Company) Result[int64] {
	n, err := c.store.UpdateCompany(ctx, co)
	if err != nil {
		return FailErr[int64](ErrDB, err)
	}
	if n == 0 {
		return Fail[int64](ErrNotFound, fmt.Sprintf("company %d not found", co.ID))
	}
	c.publish("company.updated", co.ID, 0, co.UpdatedBy, co.CommercialName)
	return OK(co.ID)
}

// CreateFollowUp persists a new follow-up.
func (c *LocalClient) CreateFollowUp(ctx context.Context, f *store.FollowUp) Result[int64] {
	id, err := c.store.CreateFollowUp(ctx, f)
	if err != nil {
		return FailErr[int64](ErrDB, err)
	}
	c.publish("followup.created", f.CompanyID, id, f.AssignedUserID, f.Type)
	return OK(id)
}

// UpdateFollowUp persists changes to an existing follow-up.
func (c *LocalClient) UpdateFollowUp(ctx context.Context, f *store.FollowUp) Result[int64] {
	n, err := c.store.UpdateFollowUp(ctx, f)
	if err != nil {
		return FailErr[int64](ErrDB, err)
	}
	if n == 0 {
		return Fail[int64](ErrNotFound, fmt.Sprintf("followup %d not found", f.ID))
	}
	c.publish("followup.updated", f.CompanyID, f.ID, f.UpdatedBy, f.Status)
	return OK(f.ID)
}

// FetchAgenda returns one user's agenda for a date.
func (c *LocalClient) FetchAgenda(ctx context.Context, userID int64, date string) Result[[]store.AgendaItem] {
	items, err := c.store.AgendaForDay(ctx, userID, date)
	if err != nil {
		return FailErr[[]store.AgendaItem](ErrDB, err)
	}
	return OK(items)
}

// FetchDashboardMetrics returns the weekly KPI counters.
func (c *LocalClient) FetchDashboardMetrics(ctx context.Context, date string, userID int64) Result[*store.WeekMetrics] {
	m, err := c.store.DashboardMetrics(ctx, date, userID)
	if err != nil {
		return FailErr[*store.WeekMetrics](ErrDB, err)
	}
	return OK(m)
}

// FetchPendingAccumulated returns pending follow-ups, newest first.
func (c *LocalClient) FetchPendingAccumulated(ctx context.Context, userID int64, priority, from, to string) Result[[]store.PendingItem] {
	items, err := c.store.PendingAccumulated(ctx, userID, priority, from, to)
	if err != nil {
		return FailErr[[]store.PendingItem](ErrDB, err)
	}
	return OK(items)
}

// FetchPendingOverdue returns pending follow-ups past their date.
func (c *LocalClient) FetchPendingOverdue(ctx context.Context, userID int64, priority, until string) Result[[]store.PendingItem] {
	items, err := c.store.PendingOverdue(ctx, userID, priority, until)
	if err != nil {
		return FailErr[[]store.PendingItem](ErrDB, err)
	}
	return OK(items)
}

// FetchCalendar returns every user's follow-ups in a date range.
func (c *LocalClient) FetchCalendar(ctx context.Context, from, to string) Result[[]store.AgendaItem] {
	items, err := c.store.Calendar(ctx, from, to)
	if err != nil {
		return FailErr[[]store.AgendaItem](ErrDB, err)
	}
	return OK(items)
}

// FetchClosedSales builds the closed-sales report for a date range.
func (c *LocalClient) FetchClosedSales(ctx context.Context, from, to string) Result[*store.ClosedSalesReport] {
	report, err := c.store.ClosedSales(ctx, from, to)
	if err != nil {
		return FailErr[*store.ClosedSalesReport](ErrDB, err)
	}
	return OK(report)
}

// FetchDailyProduction returns per-user production counters for a date.
func (c *LocalClient) FetchDailyProduction(ctx context.Context, date string) Result[[]store.ProductionRow] {
	rows, err := c.store.DailyProduction(ctx, date)
	if err != nil {
		return FailErr[[]store.ProductionRow](ErrDB, err)
	}
	return OK(rows)
}

// FetchNotifications returns the alert/notification feed for a user.
func (c *LocalClient) FetchNotifications(ctx context.Context, userID int64) Result[*store.NotificationFeed] {
	feed, err := c.store.Notifications(ctx, userID)
	if err != nil {
		return FailErr[*store.NotificationFeed](ErrDB, err)
	}
	return OK(feed)
}

// MarkNotificationRead flips one notification to read.
func (c *LocalClient) MarkNotificationRead(ctx context.Context, id int64) Result[bool] {
	changed, err := c.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return FailErr[bool](ErrDB, err)
	}
	return OK(changed)
}
