package app

import (
	"context"
	"sync"

	"github.com/jlcastillov/crm-console/internal/api"
	"github.com/jlcastillov/crm-console/internal/store"
)

// stubClient counts every remote call and answers from canned data.
type stubClient struct {
	mu    sync.Mutex
	calls map[string]int

	nextCompanyID  int64
	nextFollowUpID int64
	feed           *store.NotificationFeed
	failFetch      bool
	failMarkRead   bool
	markReadResult bool
}

func newStubClient() *stubClient {
	return &stubClient{
		calls:          make(map[string]int),
		nextCompanyID:  100,
		nextFollowUpID: 500,
		feed:           &store.NotificationFeed{},
		markReadResult: true,
	}
}

func (s *stubClient) count(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *stubClient) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubClient) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *stubClient) Authenticate(ctx context.Context, login, password string) api.Result[*store.User] {
	s.count("Authenticate")
	return api.OK(&store.User{ID: 1, Login: login})
}

func (s *stubClient) SearchCompanies(ctx context.Context, search string) api.Result[[]store.Company] {
	s.count("SearchCompanies")
	return api.OK([]store.Company{})
}

func (s *stubClient) FetchDetail(ctx context.Context, companyID int64) api.Result[api.CompanyDetail] {
	s.count("FetchDetail")
	return api.OK(api.CompanyDetail{Company: store.Company{ID: companyID}})
}

func (s *stubClient) CreateCompany(ctx context.Context, c *store.Company) api.Result[int64] {
	s.count("CreateCompany")
	s.nextCompanyID++
	return api.OK(s.nextCompanyID)
}

func (s *stubClient) UpdateCompany(ctx context.Context, c *store.Company) api.Result[int64] {
	s.count("UpdateCompany")
	return api.OK(c.ID)
}

func (s *stubClient) CreateFollowUp(ctx context.Context, f *store.FollowUp) api.Result[int64] {
	s.count("CreateFollowUp")
	s.nextFollowUpID++
	return api.OK(s.nextFollowUpID)
}

func (s *stubClient) UpdateFollowUp(ctx context.Context, f *store.FollowUp) api.Result[int64] {
	s.count("UpdateFollowUp")
	return api.OK(f.ID)
}

func (s *stubClient) FetchAgenda(ctx context.Context, userID int64, date string) api.Result[[]store.AgendaItem] {
	s.count("FetchAgenda")
	return api.OK([]store.AgendaItem{})
}

func (s *stubClient) FetchDashboardMetrics(ctx context.Context, date string, userID int64) api.Result[*store.WeekMetrics] {
	s.count("FetchDashboardMetrics")
	return api.OK(&store.WeekMetrics{})
}

func (s *stubClient) FetchPendingAccumulated(ctx context.Context, userID int64, priority, from, to string) api.Result[[]store.PendingItem] {
	s.count("FetchPendingAccumulated")
	return api.OK([]store.PendingItem{})
}

func (s *stubClient) FetchPendingOverdue(ctx context.Context, userID int64, priority, until string) api.Result[[]store.PendingItem] {
	s.count("FetchPendingOverdue")
	return api.OK([]store.PendingItem{})
}

func (s *stubClient) FetchCalendar(ctx context.Context, from, to string) api.Result[[]store.AgendaItem] {
	s.count("FetchCalendar")
	return api.OK([]store.AgendaItem{})
}

func (s *stubClient) FetchClosedSales(ctx context.Context, from, to string) api.Result[*store.ClosedSalesReport] {
	s.count("FetchClosedSales")
	return api.OK(&store.ClosedSalesReport{})
}

func (s *stubClient) FetchDailyProduction(ctx context.Context, date string) api.Result[[]store.ProductionRow] {
	s.count("FetchDailyProduction")
	return api.OK([]store.ProductionRow{})
}

func (s *stubClient) FetchNotifications(ctx context.Context, userID int64) api.Result[*store.NotificationFeed] {
	s.count("FetchNotifications")
	if s.failFetch {
		return api.Fail[*store.NotificationFeed](api.ErrDB, "db unavailable")
	}
	s.mu.Lock()
	feed := s.feed
	s.mu.Unlock()
	return api.OK(feed)
}

func (s *stubClient) MarkNotificationRead(ctx context.Context, id int64) api.Result[bool] {
	s.count("MarkNotificationRead")
	if s.failMarkRead {
		return api.Fail[bool](api.ErrDB, "db unavailable")
	}
	return api.OK(s.markReadResult)
}
