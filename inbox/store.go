package inbox

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5000

type Kind string

const (
	KindPress   Kind = "press"
	KindContact Kind = "contact"
)

// Message é uma mensagem recebida pelos formulários, já sanitizada.
type Message struct {
	ID        string
	Kind      Kind
	Name      string
	Email     string
	Subject   string
	Body      string
	IP        string
	CreatedAt time.Time
}

// Store guarda as mensagens em SQLite. Chame Close ao terminar.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "inbox.db"
	}
	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func buildDSN(path string) string {
	switch {
	case strings.HasPrefix(path, "file:"), strings.Contains(path, "?"):
		return path
	case path == ":memory:":
		return "file::memory:?cache=shared"
	default:
		return "file:" + path
	}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL,
	ip         TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_kind_created ON messages(kind, created_at);`)
	return err
}

// Save grava m, preenchendo ID e CreatedAt quando vazios.
func (s *Store) Save(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, kind, name, email, subject, body, ip, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Kind), m.Name, m.Email, m.Subject, m.Body, m.IP, m.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// Recent lista as últimas mensagens de um tipo, mais novas primeiro.
func (s *Store) Recent(ctx context.Context, kind Kind, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, name, email, subject, body, ip, created_at FROM messages WHERE kind = ? ORDER BY created_at DESC, id LIMIT ?`,
		string(kind), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m       Message
			k       string
			created int64
		)
		if err := rows.Scan(&m.ID, &k, &m.Name, &m.Email, &m.Subject, &m.Body, &m.IP, &created); err != nil {
			return nil, err
		}
		m.Kind = Kind(k)
		m.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}
