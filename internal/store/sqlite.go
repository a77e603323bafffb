package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store represents the SQLite storage implementation. Every remote contract
// the console depends on (search, agenda, dashboards, pending lists,
// notifications) is a query here, standing in for the stored procedures of
// the production database.
type Store struct {
	db *sql.DB
}

// User represents an application user.
type User struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	FirstName    string `json:"first_name"`
	PaternalName string `json:"paternal_name"`
	MaternalName string `json:"maternal_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ProfileID    int    `json:"profile_id"` // 1=admin, 2=supervisor, 3=executive
}

// Company represents a company profile row.
type Company struct {
	ID               int64     `json:"id"`
	CommercialName   string    `json:"commercial_name"`
	LegalName        string    `json:"legal_name"`
	RUC              string    `json:"ruc"`
	HeadOffice       string    `json:"head_office"`
	Address          string    `json:"address"`
	ContactName      string    `json:"contact_name"`
	ContactRole      string    `json:"contact_role"`
	ContactEmail     string    `json:"contact_email"`
	ContactPhone     string    `json:"contact_phone"`
	ClientType       string    `json:"client_type"`
	BusinessLine     string    `json:"business_line"`
	BusinessSubLine  string    `json:"business_sub_line"`
	CreditType       string    `json:"credit_type"`
	PortfolioType    string    `json:"portfolio_type"`
	EconomicActivity string    `json:"economic_activity"`
	Risk             string    `json:"risk"`
	Workers          int       `json:"workers"`
	AssignedUser     string    `json:"assigned_user"`
	CreatedBy        int64     `json:"created_by"`
	UpdatedBy        int64     `json:"updated_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FollowUp represents one scheduled follow-up for a company.
type FollowUp struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	AssignedUserID int64     `json:"assigned_user_id"`
	AssignerUserID int64     `json:"assigner_user_id"`
	Type           string    `json:"type"` // LLAMADA, VISITA, CORREO
	Priority       string    `json:"priority"`
	ScheduledDate  string    `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime  string    `json:"scheduled_time"` // HH:MM
	Status         string    `json:"status"`         // PENDIENTE, COMPLETADO, CANCELADO
	Result         string    `json:"result"`
	CommType       string    `json:"comm_type"`
	FirstContact   string    `json:"first_contact"`
	ClientStatus   string    `json:"client_status"`
	StatusDetail   string    `json:"status_detail"`
	CallType       string    `json:"call_type"`
	Budget         float64   `json:"budget"`
	Notes          string    `json:"notes"`
	UpdatedBy      int64     `json:"updated_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Notification is a user-directed message shown in the bell panel.
type Notification struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"` // Info, Warning, Alert, Success
	Read    bool   `json:"read"`
	SentAt  string `json:"sent_at"`
}

// Alert is a derived warning about a follow-up that needs attention
// (overdue or carrying a large budget).
type Alert struct {
	FollowUpID    int64   `json:"followup_id"`
	ScheduledDate string  `json:"scheduled_date"`
	ScheduledTime string  `json:"scheduled_time"`
	Priority      string  `json:"priority"`
	Status        string  `json:"status"`
	CompanyID     int64   `json:"company_id"`
	CompanyName   string  `json:"company_name"`
	Contact       string  `json:"contact"`
	Type          string  `json:"type"`
	HoursIdle     int     `json:"hours_idle"`
	Budget        float64 `json:"budget"`
	AlertType     string  `json:"alert_type"`
	Message       string  `json:"message"`
}

// AgendaItem is one row of the daily agenda / supervisor calendar.
type AgendaItem struct {
	FollowUpID    int64  `json:"followup_id"`
	CompanyID     int64  `json:"company_id"`
	Client        string `json:"client"`
	Contact       string `json:"contact"`
	Phone         string `json:"phone"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	UserLogin     string `json:"user_login"`
	UserName      string `json:"user_name"`
}

// PendingItem is one accumulated or overdue pending follow-up.
type PendingItem struct {
	FollowUpID    int64  `json:"followup_id"`
	ScheduledDate string `json:"scheduled_date"`
	Client        string `json:"client"`
	Contact       string `json:"contact"`
	Phone         string `json:"phone"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	DaysElapsed   int    `json:"days_elapsed"`
}

// WeekMetrics are the dashboard KPI counters for the week containing a date.
type WeekMetrics struct {
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

// ClosedSale is one closed deal.
type ClosedSale struct {
	ID          int64   `json:"id"`
	CompanyID   int64   `json:"company_id"`
	Company     string  `json:"company"`
	Service     string  `json:"service"`
	Amount      float64 `json:"amount"`
	ClosedDate  string  `json:"closed_date"`
	DaysToClose int     `json:"days_to_close"`
	UserID      int64   `json:"user_id"`
}

// ClosedDayCount buckets closed deals per day for the bar chart.
type ClosedDayCount struct {
	Weekday string `json:"weekday"`
	Date    string `json:"date"`
	Count   int    `json:"count"`
}

// ClosedSalesReport aggregates the closed-sales view payload.
type ClosedSalesReport struct {
	TotalClosed    int              `json:"total_closed"`
	TotalAmount    float64          `json:"total_amount"`
	AvgDaysToClose float64          `json:"avg_days_to_close"`
	PerDay         []ClosedDayCount `json:"per_day"`
	History        []ClosedSale     `json:"history"`
}

// ProductionRow is one user's daily production counters.
type ProductionRow struct {
	UserID    int64  `json:"user_id"`
	UserLogin string `json:"user_login"`
	UserName  string `json:"user_name"`
	Contacts  int    `json:"contacts"`
	Pending   int    `json:"pending"`
	Total     int    `json:"total"`
}

// NotificationFeed is the combined alert/notification payload for a user.
type NotificationFeed struct {
	Alerts        []Alert        `json:"alerts"`
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

// NewStore creates a new SQLite store instance
func NewStore(dbPath string) (*Store, error) {
	// Ensure target directory exists (e.g., ./data)
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dbPath+"?_journal_mode=WAL&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate performs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			login TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			paternal_name TEXT,
			maternal_name TEXT,
			email TEXT,
			phone TEXT,
			profile_id INTEGER NOT NULL DEFAULT 3
		)`,

		`CREATE TABLE IF NOT EXISTS companies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			commercial_name TEXT NOT NULL,
			legal_name TEXT,
			ruc TEXT,
			head_office TEXT,
			address TEXT,
			contact_name TEXT,
			contact_role TEXT,
			contact_email TEXT,
			contact_phone TEXT,
			client_type TEXT,
			business_line TEXT,
			business_sub_line TEXT,
			credit_type TEXT,
			portfolio_type TEXT,
			economic_activity TEXT,
			risk TEXT,
			workers INTEGER DEFAULT 0,
			assigned_user TEXT,
			created_by INTEGER,
			updated_by INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS followups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL,
			assigned_user_id INTEGER NOT NULL,
			assigner_user_id INTEGER,
			type TEXT,
			priority TEXT DEFAULT 'MEDIA',
			scheduled_date TEXT NOT NULL,
			scheduled_time TEXT,
			status TEXT NOT NULL DEFAULT 'PENDIENTE',
			result TEXT,
			comm_type TEXT,
			first_contact TEXT,
			client_status TEXT,
			status_detail TEXT,
			call_type TEXT,
			budget REAL DEFAULT 0,
			notes TEXT,
			updated_by INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			FOREIGN KEY (company_id) REFERENCES companies(id)
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			message TEXT,
			type TEXT NOT NULL DEFAULT 'Info',
			read INTEGER NOT NULL DEFAULT 0,
			sent_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS closed_sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			company_id INTEGER NOT NULL,
			service TEXT,
			amount REAL DEFAULT 0,
			closed_date TEXT NOT NULL,
			days_to_close INTEGER DEFAULT 0,
			user_id INTEGER,
			FOREIGN KEY (company_id) REFERENCES companies(id)
		)`,

		// Indexes for the hot query paths
		`CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(commercial_name)`,
		`CREATE INDEX IF NOT EXISTS idx_companies_ruc ON companies(ruc)`,
		`CREATE INDEX IF NOT EXISTS idx_companies_assigned ON companies(assigned_user)`,
		`CREATE INDEX IF NOT EXISTS idx_followups_company ON followups(company_id)`,
		`CREATE INDEX IF NOT EXISTS idx_followups_user_date ON followups(assigned_user_id, scheduled_date)`,
		`CREATE INDEX IF NOT EXISTS idx_followups_status ON followups(status)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read)`,
		`CREATE INDEX IF NOT EXISTS idx_closed_sales_date ON closed_sales(closed_date)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// Authenticate validates credentials and returns the matching user.
func (s *Store) Authenticate(ctx context.Context, login, password string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, login, first_name, COALESCE(paternal_name,''), COALESCE(maternal_name,''),
		        COALESCE(email,''), COALESCE(phone,''), profile_id
		 FROM users WHERE login = ? AND password = ?`, login, password)

	var u User
	err := row.Scan(&u.ID, &u.Login, &u.FirstName, &u.PaternalName, &u.MaternalName,
		&u.Email, &u.Phone, &u.ProfileID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a user (seed/import paths).
func (s *Store) CreateUser(ctx context.Context, u *User, password string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (login, password, first_name, paternal_name, maternal_name, email, phone, profile_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Login, password, u.FirstName, u.PaternalName, u.MaternalName, u.Email, u.Phone, u.ProfileID)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

const companyColumns = `id, commercial_name, COALESCE(legal_name,''), COALESCE(ruc,''),
	COALESCE(head_office,''), COALESCE(address,''),
	COALESCE(contact_name,''), COALESCE(contact_role,''),
	COALESCE(contact_email,''), COALESCE(contact_phone,''),
	COALESCE(client_type,''), COALESCE(business_line,''),
	COALESCE(business_sub_line,''), COALESCE(credit_type,''),
	COALESCE(portfolio_type,''), COALESCE(economic_activity,''),
	COALESCE(risk,''), COALESCE(workers,0), COALESCE(assigned_user,''),
	created_at, updated_at`

func scanCompany(scan func(dest ...interface{}) error) (Company, error) {
	var c Company
	var createdAt, updatedAt int64
	err := scan(&c.ID, &c.CommercialName, &c.LegalName, &c.RUC,
		&c.HeadOffice, &c.Address, &c.ContactName, &c.ContactRole,
		&c.ContactEmail, &c.ContactPhone, &c.ClientType, &c.BusinessLine,
		&c.BusinessSubLine, &c.CreditType, &c.PortfolioType,
		&c.EconomicActivity, &c.Risk, &c.Workers, &c.AssignedUser,
		&createdAt, &updatedAt)
	if err != nil {
		return c, err
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return c, nil
}

// SearchCompanies returns companies matching the free-text filter against
// commercial name, legal name or RUC. An empty search returns everything,
// most recently updated first.
func (s *Store) SearchCompanies(ctx context.Context, search string) ([]Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies`
	args := []interface{}{}
	if strings.TrimSpace(search) != "" {
		query += ` WHERE commercial_name LIKE ? OR legal_name LIKE ? OR ruc LIKE ?`
		like := "%" + strings.TrimSpace(search) + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCompany returns one company profile by id.
func (s *Store) GetCompany(ctx context.Context, id int64) (*Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	c, err := scanCompany(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("company %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// CreateCompany inserts a company and returns the new id.
func (s *Store) CreateCompany(ctx context.Context, c *Company) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (
			commercial_name, legal_name, ruc, head_office, address,
			contact_name, contact_role, contact_email, contact_phone,
			client_type, business_line, business_sub_line, credit_type,
			portfolio_type, economic_activity, risk, workers, assigned_user,
			created_by, updated_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CommercialName, c.LegalName, c.RUC, c.HeadOffice, c.Address,
		c.ContactName, c.ContactRole, c.ContactEmail, c.ContactPhone,
		c.ClientType, c.BusinessLine, c.BusinessSubLine, c.CreditType,
		c.PortfolioType, c.EconomicActivity, c.Risk, c.Workers, c.AssignedUser,
		c.CreatedBy, c.CreatedBy, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create company: %w", err)
	}
	return res.LastInsertId()
}

// UpdateCompany updates an existing company profile. Returns the number of
// rows affected (0 means the id did not exist).
func (s *Store) UpdateCompany(ctx context.Context, c *Company) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET
			commercial_name = ?, legal_name = ?, ruc = ?, head_office = ?, address = ?,
			contact_name = ?, contact_role = ?, contact_email = ?, contact_phone = ?,
			client_type = ?, business_line = ?, business_sub_line = ?, credit_type = ?,
			portfolio_type = ?, economic_activity = ?, risk = ?, workers = ?,
			updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		c.CommercialName, c.LegalName, c.RUC, c.HeadOffice, c.Address,
		c.ContactName, c.ContactRole, c.ContactEmail, c.ContactPhone,
		c.ClientType, c.BusinessLine, c.BusinessSubLine, c.CreditType,
		c.PortfolioType, c.EconomicActivity, c.Risk, c.Workers,
		c.UpdatedBy, now, c.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update company: %w", err)
	}
	return res.RowsAffected()
}

// ListFollowUps returns a company's follow-ups, most recent schedule first.
func (s *Store) ListFollowUps(ctx context.Context, companyID int64) ([]FollowUp, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, assigned_user_id, COALESCE(assigner_user_id,0),
		        COALESCE(type,''), COALESCE(priority,''), scheduled_date,
		        COALESCE(scheduled_time,''), status, COALESCE(result,''),
		        COALESCE(comm_type,''), COALESCE(first_contact,''),
		        COALESCE(client_status,''), COALESCE(status_detail,''),
		        COALESCE(call_type,''), COALESCE(budget,0), COALESCE(notes,''),
		        COALESCE(updated_by,0), created_at, updated_at
		 FROM followups WHERE company_id = ?
		 ORDER BY scheduled_date DESC, scheduled_time DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followups: %w", err)
	}
	defer rows.Close()

	var out []FollowUp
	for rows.Next() {
		var f FollowUp
		var createdAt, updatedAt int64
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.AssignedUserID, &f.AssignerUserID,
			&f.Type, &f.Priority, &f.ScheduledDate, &f.ScheduledTime, &f.Status,
			&f.Result, &f.CommType, &f.FirstContact, &f.ClientStatus, &f.StatusDetail,
			&f.CallType, &f.Budget, &f.Notes, &f.UpdatedBy, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan followup: %w", err)
		}
		f.CreatedAt = time.Unix(createdAt, 0)
		f.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFollowUp inserts a follow-up and returns the new id.
func (s *Store) CreateFollowUp(ctx context.Context, f *FollowUp) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO followups (
			company_id, assigned_user_id, assigner_user_id, type, priority,
			scheduled_date, scheduled_time, status, result, comm_type,
			first_contact, client_status, status_detail, call_type, budget,
			notes, updated_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.CompanyID, f.AssignedUserID, f.AssignerUserID, f.Type, f.Priority,
		f.ScheduledDate, f.ScheduledTime, defaultStatus(f.Status), f.Result,
		f.CommType, f.FirstContact, f.ClientStatus, f.StatusDetail, f.CallType,
		f.Budget, f.Notes, f.UpdatedBy, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create followup: %w", err)
	}
	return res.LastInsertId()
}

func defaultStatus(st string) string {
	if st == "" {
		return "PENDIENTE"
	}
	return st
}

// UpdateFollowUp updates the status/detail fields of a follow-up.
func (s *Store) UpdateFollowUp(ctx context.Context, f *FollowUp) (int64, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE followups SET
			status = ?, result = ?, comm_type = ?, first_contact = ?,
			client_status = ?, status_detail = ?, call_type = ?, budget = ?,
			notes = ?, updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		defaultStatus(f.Status), f.Result, f.CommType, f.FirstContact,
		f.ClientStatus, f.StatusDetail, f.CallType, f.Budget, f.Notes,
		f.UpdatedBy, now, f.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update followup: %w", err)
	}
	return res.RowsAffected()
}

// AgendaForDay returns the agenda of one user for one date.
func (s *Store) AgendaForDay(ctx context.Context, userID int64, date string) ([]AgendaItem, error) {
	return s.queryAgenda(ctx,
		`WHERE f.assigned_user_id = ? AND f.scheduled_date = ?
		 ORDER BY f.scheduled_time`, userID, date)
}

// Calendar returns every user's follow-ups within a date range. Used by the
// supervisor monitor view.
func (s *Store) Calendar(ctx context.Context, from, to string) ([]AgendaItem, error) {
	return s.queryAgenda(ctx,
		`WHERE f.scheduled_date BETWEEN ? AND ?
		 ORDER BY f.scheduled_date, f.scheduled_time`, from, to)
}

func (s *Store) queryAgenda(ctx context.Context, where string, args ...interface{}) ([]AgendaItem, error) {
	query := `SELECT f.id, c.id, c.commercial_name, COALESCE(c.contact_name,''),
	                 COALESCE(c.contact_phone,''), f.scheduled_date,
	                 COALESCE(f.scheduled_time,''), COALESCE(f.priority,''), f.status,
	                 COALESCE(f.type,''), COALESCE(u.login,''), COALESCE(u.first_name,'')
	          FROM followups f
	          JOIN companies c ON c.id = f.company_id
	          LEFT JOIN users u ON u.id = f.assigned_user_id ` + where

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query agenda: %w", err)
	}
	defer rows.Close()

	var out []AgendaItem
	for rows.Next() {
		var a AgendaItem
		if err := rows.Scan(&a.FollowUpID, &a.CompanyID, &a.Client, &a.Contact,
			&a.Phone, &a.ScheduledDate, &a.ScheduledTime, &a.Priority, &a.Status,
			&a.Type, &a.UserLogin, &a.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan agenda item: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DashboardMetrics computes the weekly KPI counters for the week (Monday
// through Sunday) containing the given date.
func (s *Store) DashboardMetrics(ctx context.Context, date string, userID int64) (*WeekMetrics, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	from, to := weekBounds(day)

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        SUM(CASE WHEN status IN ('COMPLETADO','REALIZADO') THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = 'PENDIENTE' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = 'CANCELADO' THEN 1 ELSE 0 END)
		 FROM followups
		 WHERE assigned_user_id = ? AND scheduled_date BETWEEN ? AND ?`,
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"))

	var m WeekMetrics
	var completed, pending, cancelled sql.NullInt64
	if err := row.Scan(&m.Scheduled, &completed, &pending, &cancelled); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard metrics: %w", err)
	}
	m.Completed = int(completed.Int64)
	m.Pending = int(pending.Int64)
	m.Cancelled = int(cancelled.Int64)
	return &m, nil
}

// weekBounds returns the Monday and Sunday of the week containing day.
func weekBounds(day time.Time) (time.Time, time.Time) {
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7 // Sunday belongs to the preceding Monday
	}
	monday := day.AddDate(0, 0, 1-wd)
	return monday, monday.AddDate(0, 0, 6)
}

// PendingAccumulated returns follow-ups still pending, newest first, with
// the day count since they were scheduled.
func (s *Store) PendingAccumulated(ctx context.Context, userID int64, priority, from, to string) ([]PendingItem, error) {
	query := pendingSelect + ` WHERE f.assigned_user_id = ? AND f.status = 'PENDIENTE'`
	args := []interface{}{userID}
	if priority != "" {
		query += ` AND f.priority = ?`
		args = append(args, priority)
	}
	if from != "" {
		query += ` AND f.scheduled_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND f.scheduled_date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY f.scheduled_date DESC`
	return s.queryPending(ctx, query, args...)
}

// PendingOverdue returns pending follow-ups whose scheduled date is strictly
// in the past (optionally bounded), oldest first.
func (s *Store) PendingOverdue(ctx context.Context, userID int64, priority, until string) ([]PendingItem, error) {
	query := pendingSelect + ` WHERE f.assigned_user_id = ? AND f.status = 'PENDIENTE'
	            AND f.scheduled_date < date('now')`
	args := []interface{}{userID}
	if priority != "" {
		query += ` AND f.priority = ?`
		args = append(args, priority)
	}
	if until != "" {
		query += ` AND f.scheduled_date <= ?`
		args = append(args, until)
	}
	query += ` ORDER BY f.scheduled_date ASC`
	return s.queryPending(ctx, query, args...)
}

const pendingSelect = `SELECT f.id, f.scheduled_date, c.commercial_name,
	COALESCE(c.contact_name,''), COALESCE(c.contact_phone,''),
	COALESCE(f.priority,''), f.status, COALESCE(f.type,''),
	CAST(julianday('now') - julianday(f.scheduled_date) AS INTEGER)
	FROM followups f
	JOIN companies c ON c.id = f.company_id`

func (s *Store) queryPending(ctx context.Context, query string, args ...interface{}) ([]PendingItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending followups: %w", err)
	}
	defer rows.Close()

	var out []PendingItem
	for rows.Next() {
		var p PendingItem
		if err := rows.Scan(&p.FollowUpID, &p.ScheduledDate, &p.Client, &p.Contact,
			&p.Phone, &p.Priority, &p.Status, &p.Type, &p.DaysElapsed); err != nil {
			return nil, fmt.Errorf("failed to scan pending item: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ClosedSales builds the closed-sales report for a date range.
func (s *Store) ClosedSales(ctx context.Context, from, to string) (*ClosedSalesReport, error) {
	report := &ClosedSalesReport{}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount),0), COALESCE(AVG(days_to_close),0)
		 FROM closed_sales WHERE closed_date BETWEEN ? AND ?`, from, to)
	if err := row.Scan(&report.TotalClosed, &report.TotalAmount, &report.AvgDaysToClose); err != nil {
		return nil, fmt.Errorf("failed to compute closed-sales metrics: %w", err)
	}

	dayRows, err := s.db.QueryContext(ctx,
		`SELECT closed_date, COUNT(*) FROM closed_sales
		 WHERE closed_date BETWEEN ? AND ? GROUP BY closed_date ORDER BY closed_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed-sales per day: %w", err)
	}
	defer dayRows.Close()
	for dayRows.Next() {
		var d ClosedDayCount
		if err := dayRows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan closed-sales day: %w", err)
		}
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			d.Weekday = spanishWeekday(t.Weekday())
		}
		report.PerDay = append(report.PerDay, d)
	}
	if err := dayRows.Err(); err != nil {
		return nil, err
	}

	histRows, err := s.db.QueryContext(ctx,
		`SELECT cs.id, cs.company_id, c.commercial_name, COALESCE(cs.service,''),
		        cs.amount, cs.closed_date, cs.days_to_close, COALESCE(cs.user_id,0)
		 FROM closed_sales cs JOIN companies c ON c.id = cs.company_id
		 WHERE cs.closed_date BETWEEN ? AND ? ORDER BY cs.closed_date DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed-sales history: %w", err)
	}
	defer histRows.Close()
	for histRows.Next() {
		var cs ClosedSale
		if err := histRows.Scan(&cs.ID, &cs.CompanyID, &cs.Company, &cs.Service,
			&cs.Amount, &cs.ClosedDate, &cs.DaysToClose, &cs.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan closed sale: %w", err)
		}
		report.History = append(report.History, cs)
	}
	return report, histRows.Err()
}

func spanishWeekday(d time.Weekday) string {
	names := [...]string{"DOMINGO", "LUNES", "MARTES", "MIÉRCOLES", "JUEVES", "VIERNES", "SÁBADO"}
	return names[int(d)]
}

// CreateClosedSale inserts a closed deal (seed/import paths).
func (s *Store) CreateClosedSale(ctx context.Context, cs *ClosedSale) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO closed_sales (company_id, service, amount, closed_date, days_to_close, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cs.CompanyID, cs.Service, cs.Amount, cs.ClosedDate, cs.DaysToClose, cs.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to create closed sale: %w", err)
	}
	return res.LastInsertId()
}

// DailyProduction returns per-user follow-up production counters for a date.
// The single-user case is simply a one-row result.
func (s *Store) DailyProduction(ctx context.Context, date string) ([]ProductionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.login, u.first_name,
		        SUM(CASE WHEN f.status IN ('COMPLETADO','REALIZADO') THEN 1 ELSE 0 END),
		        SUM(CASE WHEN f.status = 'PENDIENTE' THEN 1 ELSE 0 END),
		        COUNT(f.id)
		 FROM users u
		 LEFT JOIN followups f ON f.assigned_user_id = u.id AND f.scheduled_date = ?
		 GROUP BY u.id, u.login, u.first_name
		 ORDER BY u.login`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily production: %w", err)
	}
	defer rows.Close()

	var out []ProductionRow
	for rows.Next() {
		var p ProductionRow
		var contacts, pending sql.NullInt64
		if err := rows.Scan(&p.UserID, &p.UserLogin, &p.UserName, &contacts, &pending, &p.Total); err != nil {
			return nil, fmt.Errorf("failed to scan production row: %w", err)
		}
		p.Contacts = int(contacts.Int64)
		p.Pending = int(pending.Int64)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Notifications assembles the alert/notification feed for a user. Alerts are
// derived on the fly: pending follow-ups past their scheduled date, and
// pending follow-ups carrying a budget of 10000 or more.
func (s *Store) Notifications(ctx context.Context, userID int64) (*NotificationFeed, error) {
	feed := &NotificationFeed{}

	alertRows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.scheduled_date, COALESCE(f.scheduled_time,''),
		        COALESCE(f.priority,''), f.status, c.id, c.commercial_name,
		        COALESCE(c.contact_name,''), COALESCE(f.type,''),
		        CAST((julianday('now') - julianday(f.scheduled_date)) * 24 AS INTEGER),
		        COALESCE(f.budget,0)
		 FROM followups f JOIN companies c ON c.id = f.company_id
		 WHERE f.assigned_user_id = ? AND f.status = 'PENDIENTE'
		   AND (f.scheduled_date < date('now') OR f.budget >= 10000)
		 ORDER BY f.scheduled_date`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer alertRows.Close()
	for alertRows.Next() {
		var a Alert
		if err := alertRows.Scan(&a.FollowUpID, &a.ScheduledDate, &a.ScheduledTime,
			&a.Priority, &a.Status, &a.CompanyID, &a.CompanyName, &a.Contact,
			&a.Type, &a.HoursIdle, &a.Budget); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		if a.Budget >= 10000 {
			a.AlertType = "ALTO_VALOR"
			a.Message = fmt.Sprintf("Seguimiento de alto valor (S/ %.0f) para %s", a.Budget, a.CompanyName)
		} else {
			a.AlertType = "SIN_ATENCION"
			a.Message = fmt.Sprintf("Seguimiento sin atención hace %d horas: %s", a.HoursIdle, a.CompanyName)
		}
		feed.Alerts = append(feed.Alerts, a)
	}
	if err := alertRows.Err(); err != nil {
		return nil, err
	}

	noteRows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, COALESCE(message,''), type, read, sent_at
		 FROM notifications WHERE user_id = ? ORDER BY sent_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var n Notification
		var read int
		if err := noteRows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &read, &n.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Read = read != 0
		feed.Notifications = append(feed.Notifications, n)
		if !n.Read {
			feed.Unread++
		}
	}
	return feed, noteRows.Err()
}

// CreateNotification inserts a notification row.
func (s *Store) CreateNotification(ctx context.Context, n *Notification) (int64, error) {
	sentAt := n.SentAt
	if sentAt == "" {
		sentAt = time.Now().Format("2006-01-02 15:04:05")
	}
	read := 0
	if n.Read {
		read = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, message, type, read, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Title, n.Message, n.Type, read, sentAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}
	return res.LastInsertId()
}

// MarkNotificationRead flips the read flag. Returns true if a row changed;
// marking an already-read notification is a no-op.
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND read = 0`, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Reset drops all application data. Used by the reset command.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"followups", "closed_sales", "notifications", "companies", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
