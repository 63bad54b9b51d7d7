// Package storage provides SQLite-backed persistence for tenders, bids,
// alerts and audit logs.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/securetender/bidguard/internal/models"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/bidguard/actms.db.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "bidguard", "actms.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s := &Storage{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tenders (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			title           TEXT NOT NULL,
			description     TEXT,
			department      TEXT,
			estimated_value REAL,
			deadline        TEXT,
			status          TEXT NOT NULL DEFAULT 'active',
			created_at      INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bids (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			tender_id     INTEGER REFERENCES tenders(id),
			company_name  TEXT NOT NULL,
			contact_email TEXT,
			bid_amount    REAL NOT NULL,
			proposal      TEXT,
			submitted_at  TEXT,
			status        TEXT NOT NULL DEFAULT 'submitted',
			anomaly_score REAL NOT NULL DEFAULT 0.0,
			is_suspicious INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS ai_alerts (
			id                  TEXT PRIMARY KEY,
			alert_type          TEXT NOT NULL,
			severity            TEXT,
			message             TEXT,
			related_entity_type TEXT,
			related_entity_id   INTEGER,
			status              TEXT NOT NULL DEFAULT 'active',
			created_at          INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id          TEXT PRIMARY KEY,
			action      TEXT NOT NULL,
			entity_type TEXT,
			entity_id   INTEGER,
			details     TEXT,
			timestamp   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_tender ON bids(tender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_suspicious ON bids(is_suspicious)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_status ON ai_alerts(status)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertTender stores a new tender and returns its ID.
func (s *Storage) InsertTender(t *models.Tender) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("invalid tender: %w", err)
	}
	if t.Status == "" {
		t.Status = "active"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`
		INSERT INTO tenders (title, description, department, estimated_value, deadline, status, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		t.Title, t.Description, t.Department, t.EstimatedValue, t.Deadline, t.Status,
		t.CreatedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tender: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get tender id: %w", err)
	}
	t.ID = id
	return id, nil
}

// GetTenders returns all tenders, optionally filtered by status
// (empty status = all).
func (s *Storage) GetTenders(status string) ([]*models.Tender, error) {
	query := `SELECT id, title, description, department, estimated_value, deadline, status, created_at
		FROM tenders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenders: %w", err)
	}
	defer rows.Close()

	tenders := []*models.Tender{}
	for rows.Next() {
		var t models.Tender
		var createdAtNano int64
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Department,
			&t.EstimatedValue, &t.Deadline, &t.Status, &createdAtNano)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tender: %w", err)
		}
		t.CreatedAt = time.Unix(0, createdAtNano)
		tenders = append(tenders, &t)
	}
	return tenders, rows.Err()
}

// GetTender returns a single tender by ID.
func (s *Storage) GetTender(id int64) (*models.Tender, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, department, estimated_value, deadline, status, created_at
		FROM tenders WHERE id = ?`, id)
	var t models.Tender
	var createdAtNano int64
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Department,
		&t.EstimatedValue, &t.Deadline, &t.Status, &createdAtNano)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tender not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tender: %w", err)
	}
	t.CreatedAt = time.Unix(0, createdAtNano)
	return &t, nil
}

// InsertBid stores a new bid and returns its ID. A missing submission
// timestamp defaults to now.
func (s *Storage) InsertBid(b *models.Bid) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("invalid bid: %w", err)
	}
	if b.Status == "" {
		b.Status = "submitted"
	}
	if b.SubmittedAt == "" {
		b.SubmittedAt = time.Now().Format("2006-01-02 15:04:05")
	}
	res, err := s.db.Exec(`
		INSERT INTO bids (tender_id, company_name, contact_email, bid_amount, proposal,
			submitted_at, status, anomaly_score, is_suspicious)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		b.TenderID, b.CompanyName, b.ContactEmail, b.BidAmount, b.Proposal,
		b.SubmittedAt, b.Status, b.AnomalyScore, boolToInt(b.IsSuspicious),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert bid: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get bid id: %w", err)
	}
	b.ID = id
	return id, nil
}

const bidCols = `id, tender_id, company_name, contact_email, bid_amount, proposal,
	submitted_at, status, anomaly_score, is_suspicious`

// GetBids returns all bids, optionally restricted to one tender
// (tenderID 0 = all), ordered by submission.
func (s *Storage) GetBids(tenderID int64) ([]*models.Bid, error) {
	query := `SELECT ` + bidCols + ` FROM bids`
	args := []any{}
	if tenderID != 0 {
		query += ` WHERE tender_id = ?`
		args = append(args, tenderID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}
	defer rows.Close()
	return scanBids(rows)
}

// GetBid returns a single bid by ID.
func (s *Storage) GetBid(id int64) (*models.Bid, error) {
	row := s.db.QueryRow(`SELECT `+bidCols+` FROM bids WHERE id = ?`, id)
	b, err := scanBid(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bid not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return b, nil
}

// GetSuspiciousBids returns bids flagged anomalous by the last scoring pass.
func (s *Storage) GetSuspiciousBids() ([]*models.Bid, error) {
	rows, err := s.db.Query(`SELECT ` + bidCols + ` FROM bids
		WHERE is_suspicious = 1 ORDER BY anomaly_score ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query suspicious bids: %w", err)
	}
	defer rows.Close()
	return scanBids(rows)
}

// UpdateBidAnomaly writes scoring results back onto a bid row.
func (s *Storage) UpdateBidAnomaly(bidID int64, score float64, suspicious bool) error {
	res, err := s.db.Exec(`UPDATE bids SET anomaly_score = ?, is_suspicious = ? WHERE id = ?`,
		score, boolToInt(suspicious), bidID)
	if err != nil {
		return fmt.Errorf("failed to update bid anomaly: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("bid not found: %d", bidID)
	}
	return nil
}

// CreateAlert stores a new active alert and returns it.
func (s *Storage) CreateAlert(alertType, severity, message, relatedType string, relatedID int64) (*models.Alert, error) {
	a := &models.Alert{
		ID:                uuid.NewString(),
		AlertType:         alertType,
		Severity:          severity,
		Message:           message,
		RelatedEntityType: relatedType,
		RelatedEntityID:   relatedID,
		Status:            "active",
		CreatedAt:         time.Now(),
	}
	_, err := s.db.Exec(`
		INSERT INTO ai_alerts (id, alert_type, severity, message, related_entity_type,
			related_entity_id, status, created_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		a.ID, a.AlertType, a.Severity, a.Message, a.RelatedEntityType,
		a.RelatedEntityID, a.Status, a.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}
	return a, nil
}

// GetAlerts returns alerts filtered by status (empty status = all),
// newest first.
func (s *Storage) GetAlerts(status string) ([]*models.Alert, error) {
	query := `SELECT id, alert_type, severity, message, related_entity_type,
		related_entity_id, status, created_at FROM ai_alerts`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*models.Alert{}
	for rows.Next() {
		var a models.Alert
		var createdAtNano int64
		err := rows.Scan(&a.ID, &a.AlertType, &a.Severity, &a.Message,
			&a.RelatedEntityType, &a.RelatedEntityID, &a.Status, &createdAtNano)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.CreatedAt = time.Unix(0, createdAtNano)
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// ResolveAlert marks an alert resolved.
func (s *Storage) ResolveAlert(id string) error {
	res, err := s.db.Exec(`UPDATE ai_alerts SET status = 'resolved' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}
	return nil
}

// LogAudit appends an audit entry.
func (s *Storage) LogAudit(action, entityType string, entityID int64, details string) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_logs (id, action, entity_type, entity_id, details, timestamp)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), action, entityType, entityID, details, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Counts returns the tender, bid and active-alert totals.
func (s *Storage) Counts() (tenders, bids, alerts int64, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM tenders`).Scan(&tenders); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count tenders: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM bids`).Scan(&bids); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count bids: %w", err)
	}
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM ai_alerts WHERE status = 'active'`).Scan(&alerts); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return tenders, bids, alerts, nil
}

func scanBids(rows *sql.Rows) ([]*models.Bid, error) {
	bids := []*models.Bid{}
	for rows.Next() {
		b, err := scanBid(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func scanBid(scan func(...any) error) (*models.Bid, error) {
	var b models.Bid
	var suspicious int
	err := scan(&b.ID, &b.TenderID, &b.CompanyName, &b.ContactEmail, &b.BidAmount,
		&b.Proposal, &b.SubmittedAt, &b.Status, &b.AnomalyScore, &suspicious)
	if err != nil {
		return nil, err
	}
	b.IsSuspicious = suspicious != 0
	return &b, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
