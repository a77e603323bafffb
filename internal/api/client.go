package api

import (
	"context"

	"github.com/jlcastillov/crm-console/internal/store"
)

// CompanyDetail is the full payload behind a selected company: the profile
// plus its follow-up history.
type CompanyDetail struct {
	Company   store.Company    `json:"company"`
	FollowUps []store.FollowUp `json:"followups"`
}

// Client is the remote boundary the console talks to. Every operation
// returns the uniform Result envelope; a false Success never comes with a
// usable Data value.
type Client interface {
	// Authenticate validates credentials.
	Authenticate(ctx context.Context, login, password string) Result[*store.User]

	// SearchCompanies returns companies matching a free-text filter.
	SearchCompanies(ctx context.Context, search string) Result[[]store.Company]

	// FetchDetail loads one company's profile and follow-up history.
	FetchDetail(ctx context.Context, companyID int64) Result[CompanyDetail]

	// CreateCompany persists a new company and returns its assigned id.
	CreateCompany(ctx context.Context, c *store.Company) Result[int64]

	// UpdateCompany persists profile changes to an existing company.
	UpdateCompany(ctx context.Context, c *store.Company) Result[int64]

	// CreateFollowUp persists a new follow-up and returns its id.
	CreateFollowUp(ctx context.Context, f *store.FollowUp) Result[int64]

	// UpdateFollowUp persists changes to an existing follow-up.
	UpdateFollowUp(ctx context.Context, f *store.FollowUp) Result[int64]

	// FetchAgenda returns one user's agenda for a date (YYYY-MM-DD).
	FetchAgenda(ctx context.Context, userID int64, date string) Result[[]store.AgendaItem]

	// FetchDashboardMetrics returns the weekly KPI counters for the week
	// containing date.
	FetchDashboardMetrics(ctx context.Context, date string, userID int64) Result[*store.WeekMetrics]

	// FetchPendingAccumulated returns pending follow-ups, newest first.
	FetchPendingAccumulated(ctx context.Context, userID int64, priority, from, to string) Result[[]store.PendingItem]

	// FetchPendingOverdue returns pending follow-ups past their date,
	// oldest first.
	FetchPendingOverdue(ctx context.Context, userID int64, priority, until string) Result[[]store.PendingItem]

	// FetchCalendar returns every user's follow-ups in a date range.
	FetchCalendar(ctx context.Context, from, to string) Result[[]store.AgendaItem]

	// FetchClosedSales builds the closed-sales report for a date range.
	FetchClosedSales(ctx context.Context, from, to string) Result[*store.ClosedSalesReport]

	// FetchDailyProduction returns per-user production counters for a date.
	FetchDailyProduction(ctx context.Context, date string) Result[[]store.ProductionRow]

	// FetchNotifications returns the alert/notification feed for a user.
	FetchNotifications(ctx context.Context, userID int64) Result[*store.NotificationFeed]

	// MarkNotificationRead flips one notification to read. Marking an
	// already-read notification succeeds with Data=false.
	MarkNotificationRead(ctx context.Context, id int64) Result[bool]
}
