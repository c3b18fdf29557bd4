package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type Store struct {
	DB *sql.DB
}

// Session is the per-conversation state row. TurnCount only ever increases;
// EmailProvided flips to true once and never back.
type Session struct {
	SessionID     string
	ClientID      string
	TurnCount     int
	EmailProvided bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is a persisted conversation turn.
type Message struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Lead is a captured contact.
type Lead struct {
	ID        string
	Name      sql.NullString
	Email     string
	Company   sql.NullString
	Phone     sql.NullString
	Status    string
	Notes     sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Source is a registered URL eligible for scheduled re-ingestion.
type Source struct {
	ID             string
	ClientID       string
	URL            string
	RefreshCron    string
	LastIngestedAt sql.NullTime
	CreatedAt      time.Time
}

func New(ctx context.Context) (*Store, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		port := getenvDefault("POSTGRES_PORT", "5432")
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		db := os.Getenv("POSTGRES_DB")
		ssl := getenvDefault("POSTGRES_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, ssl)
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// Session operations

// EnsureSession creates the session row if missing and returns current state.
func (s *Store) EnsureSession(ctx context.Context, sessionID, clientID string) (Session, error) {
	var sess Session
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO sessions (session_id, client_id) VALUES ($1,$2)
		ON CONFLICT (session_id) DO UPDATE SET updated_at = now()
		RETURNING session_id, client_id, turn_count, email_provided, created_at, updated_at`,
		sessionID, clientID).
		Scan(&sess.SessionID, &sess.ClientID, &sess.TurnCount, &sess.EmailProvided, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return Session{}, fmt.Errorf("ensuring session: %w", err)
	}
	return sess, nil
}

// IncrementTurn bumps the turn counter and returns the new value.
func (s *Store) IncrementTurn(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `
		UPDATE sessions SET turn_count = turn_count + 1, updated_at = now()
		WHERE session_id=$1 RETURNING turn_count`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("incrementing turn: %w", err)
	}
	return count, nil
}

// MarkEmailProvided flips the flag. Returns true only on the first flip, so
// exactly one caller gets to create the lead.
func (s *Store) MarkEmailProvided(ctx context.Context, sessionID string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE sessions SET email_provided = TRUE, updated_at = now()
		WHERE session_id=$1 AND NOT email_provided`, sessionID)
	if err != nil {
		return false, fmt.Errorf("marking email provided: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Message operations

func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content) VALUES ($1,$2,$3)`,
		sessionID, role, content)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// RecentMessages returns the last n messages in chronological order.
func (s *Store) RecentMessages(ctx context.Context, sessionID string, n int) ([]Message, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at FROM messages
		WHERE session_id=$1 ORDER BY id DESC LIMIT $2`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// query is newest-first; callers want oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Lead operations

func (s *Store) CreateLead(ctx context.Context, name, email, company, phone, notes string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO leads (id, name, email, company, phone, notes)
		VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''))`,
		id, name, email, company, phone, notes)
	if err != nil {
		return "", fmt.Errorf("creating lead: %w", err)
	}
	return id, nil
}

func (s *Store) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, email, company, phone, status, notes, created_at, updated_at
		FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()
	var out []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Company, &l.Phone, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Source operations

func (s *Store) UpsertSource(ctx context.Context, clientID, url, refreshCron string) (string, error) {
	var id string
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO sources (id, client_id, url, refresh_cron) VALUES ($1,$2,$3,$4)
		ON CONFLICT (client_id, url) DO UPDATE SET refresh_cron = EXCLUDED.refresh_cron
		RETURNING id`, uuid.NewString(), clientID, url, refreshCron).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upserting source: %w", err)
	}
	return id, nil
}

func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, client_id, url, refresh_cron, last_ingested_at, created_at
		FROM sources ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()
	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.ClientID, &src.URL, &src.RefreshCron, &src.LastIngestedAt, &src.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// TouchSource records a successful re-ingestion.
func (s *Store) TouchSource(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE sources SET last_ingested_at = now() WHERE id=$1`, id)
	return err
}
