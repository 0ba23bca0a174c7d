// Package sqlite implements the user directory and the append-only message
// store on a single SQLite database. Messages are only ever inserted and
// queried by participant pair; there is no update or delete path.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/service"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('player', 'fan')),
	online        INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	sender_id   TEXT NOT NULL REFERENCES users(id),
	receiver_id TEXT NOT NULL REFERENCES users(id),
	body        TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_pair
	ON messages(sender_id, receiver_id, created_at);
`

var (
	_ service.Directory    = (*Store)(nil)
	_ service.MessageStore = (*Store)(nil)
)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and applies the schema.
func New(path string, busyTimeout time.Duration) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on",
		path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, online, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.Code == sqlite3.ErrConstraint {
			return service.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, online, created_at
		 FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role, online, created_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET online = ? WHERE id = ?`, boolToInt(online), id.String())
	if err != nil {
		return fmt.Errorf("update online flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, role, online, created_at
		 FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Append persists a message and returns the stored entity. The generated id
// and the normalized timestamp come from here so every delivery sees the
// exact persisted record.
func (s *Store) Append(ctx context.Context, senderID, receiverID uuid.UUID, body string, at time.Time) (*model.Message, error) {
	msg := &model.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  at.UnixMilli(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, body, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID.String(), msg.SenderID.String(), msg.ReceiverID.String(), msg.Body, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// QueryBetween returns every message exchanged between the two participants,
// in either direction, ordered by time with id as the tiebreaker.
func (s *Store) QueryBetween(ctx context.Context, a, b uuid.UUID, order service.Order) ([]*model.Message, error) {
	dir := "ASC"
	if order == service.OrderDesc {
		dir = "DESC"
	}

	query := fmt.Sprintf(
		`SELECT id, sender_id, receiver_id, body, created_at FROM messages
		 WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at %s, id %s`, dir, dir)

	rows, err := s.db.QueryContext(ctx, query, a.String(), b.String(), b.String(), a.String())
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var (
			m                    model.Message
			id, sender, receiver string
		)
		if err := rows.Scan(&id, &sender, &receiver, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ID, _ = uuid.Parse(id)
		m.SenderID, _ = uuid.Parse(sender)
		m.ReceiverID, _ = uuid.Parse(receiver)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		id     string
		role   string
		online int
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &role, &online, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID, _ = uuid.Parse(id)
	u.Role = model.Role(role)
	u.Online = online != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
