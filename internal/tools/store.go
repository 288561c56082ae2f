// Package tools provides the customer-data tool server: an SQLite
// store of customers and tickets exposed over HTTP for the data agent.
package tools

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Customer is one customer record.
type Customer struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

// Ticket is one support ticket.
type Ticket struct {
	ID         int    `json:"id"`
	CustomerID int    `json:"customer_id"`
	Issue      string `json:"issue"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	CreatedAt  string `json:"created_at"`
}

// ValidPriorities are the accepted ticket priorities.
var ValidPriorities = []string{"low", "medium", "high"}

// ValidPriority reports whether p is an accepted ticket priority.
func ValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Store wraps an SQLite database of customers and tickets.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens an SQLite database at the given path.
// It creates the parent directories if they don't exist.
// WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// Migrate applies all pending schema migrations.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Customers},
		{2, migrationV2Tickets},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Customers = `
CREATE TABLE IF NOT EXISTS customers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE INDEX IF NOT EXISTS idx_customers_status ON customers(status);
CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email);
`

const migrationV2Tickets = `
CREATE TABLE IF NOT EXISTS tickets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id INTEGER NOT NULL REFERENCES customers(id),
	issue TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'open',
	priority TEXT NOT NULL DEFAULT 'medium',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_customer_id ON tickets(customer_id);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
`

// GetCustomer returns the customer with the given id.
func (s *Store) GetCustomer(id int) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Customer{}
	row := s.conn.QueryRow("SELECT id, name, email, phone, status FROM customers WHERE id = ?", id)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer %d not found", id)
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

// FindCustomerByEmail returns the customer with the given email.
func (s *Store) FindCustomerByEmail(email string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Customer{}
	row := s.conn.QueryRow("SELECT id, name, email, phone, status FROM customers WHERE email = ?", email)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("customer with email %s not found", email)
		}
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	return c, nil
}

// ListCustomers returns customers, optionally filtered by status.
// limit <= 0 means no limit.
func (s *Store) ListCustomers(status string, limit int) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, email, phone, status FROM customers"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateCustomer applies the given field updates to a customer.
// Only name, email, phone and status may be updated.
func (s *Store) UpdateCustomer(id int, fields map[string]any) (*Customer, error) {
	allowed := map[string]bool{"name": true, "email": true, "phone": true, "status": true}

	var sets []string
	var args []any
	for field, value := range fields {
		if !allowed[field] {
			return nil, fmt.Errorf("field %q cannot be updated", field)
		}
		sets = append(sets, field+" = ?")
		args = append(args, value)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	s.mu.Lock()
	args = append(args, id)
	res, err := s.conn.Exec("UPDATE customers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("customer %d not found", id)
	}

	return s.GetCustomer(id)
}

// CreateCustomer inserts a new customer and returns it with its id.
func (s *Store) CreateCustomer(name, email, phone, status string) (*Customer, error) {
	if status == "" {
		status = "active"
	}

	s.mu.Lock()
	res, err := s.conn.Exec(
		"INSERT INTO customers (name, email, phone, status) VALUES (?, ?, ?, ?)",
		name, email, phone, status,
	)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return s.GetCustomer(int(id))
}

// CreateTicket opens a new ticket for a customer.
func (s *Store) CreateTicket(customerID int, issue, priority string) (*Ticket, error) {
	if priority == "" {
		priority = "medium"
	}
	if !ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q: must be one of %s", priority, strings.Join(ValidPriorities, ", "))
	}
	if issue == "" {
		return nil, fmt.Errorf("issue must not be empty")
	}

	s.mu.Lock()
	res, err := s.conn.Exec(
		"INSERT INTO tickets (customer_id, issue, status, priority, created_at) VALUES (?, ?, 'open', ?, ?)",
		customerID, issue, priority, time.Now().UTC().Format(time.RFC3339),
	)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create ticket for customer %d: %w", customerID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	return s.GetTicket(int(id))
}

// GetTicket returns the ticket with the given id.
func (s *Store) GetTicket(id int) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tk := &Ticket{}
	row := s.conn.QueryRow(
		"SELECT id, customer_id, issue, status, priority, created_at FROM tickets WHERE id = ?", id,
	)
	if err := row.Scan(&tk.ID, &tk.CustomerID, &tk.Issue, &tk.Status, &tk.Priority, &tk.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("ticket %d not found", id)
		}
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return tk, nil
}

// GetCustomerHistory returns all tickets for a customer, newest first.
func (s *Store) GetCustomerHistory(customerID int) ([]Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(
		"SELECT id, customer_id, issue, status, priority, created_at FROM tickets WHERE customer_id = ? ORDER BY created_at DESC, id DESC",
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("history for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var tk Ticket
		if err := rows.Scan(&tk.ID, &tk.CustomerID, &tk.Issue, &tk.Status, &tk.Priority, &tk.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, tk)
	}
	return tickets, rows.Err()
}
