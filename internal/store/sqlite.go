package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
)

const schema = `CREATE TABLE IF NOT EXISTS user_laundry_days (
	user_id      INTEGER PRIMARY KEY NOT NULL,
	chat_id      INTEGER NOT NULL,
	laundry_days TEXT NOT NULL DEFAULT '',
	longitude    REAL,
	latitude     REAL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);`

const userColumns = `user_id, chat_id, laundry_days, longitude, latitude, created_at, updated_at`

// SQLiteStore implements users.Store on sqlite (pure Go driver modernc.org/sqlite).
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ users.Store = (*SQLiteStore)(nil)

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string, log logrus.FieldLogger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps the scheduler's reads from blocking bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil && log != nil {
		log.WithError(err).Warn("could not set WAL mode")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, id, chatID int64) (users.User, error) {
	if chatID == 0 {
		chatID = id
	}
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_laundry_days (user_id, chat_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET chat_id = excluded.chat_id`,
		id, chatID, now, now)
	if err != nil {
		return users.User{}, fmt.Errorf("create user %d: %w", id, err)
	}
	return s.GetUser(ctx, id)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (users.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user_laundry_days WHERE user_id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrUserNotFound
	}
	if err != nil {
		return users.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_laundry_days WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// ListUsers returns all users ordered by id.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]users.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM user_laundry_days ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetLaundryDays(ctx context.Context, id int64) (users.WeekdaySet, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.LaundryDays, nil
}

func (s *SQLiteStore) SetLaundryDays(ctx context.Context, id int64, days users.WeekdaySet) error {
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_laundry_days (user_id, chat_id, laundry_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET laundry_days = excluded.laundry_days, updated_at = excluded.updated_at`,
		id, id, days.String(), now, now)
	if err != nil {
		return fmt.Errorf("set laundry days for %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) GetCoordinates(ctx context.Context, id int64) (*weather.Coordinates, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Coordinates, nil
}

func (s *SQLiteStore) SetCoordinates(ctx context.Context, id int64, coords weather.Coordinates) error {
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_laundry_days (user_id, chat_id, longitude, latitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET longitude = excluded.longitude, latitude = excluded.latitude, updated_at = excluded.updated_at`,
		id, id, coords.Longitude, coords.Latitude, now, now)
	if err != nil {
		return fmt.Errorf("set coordinates for %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (users.User, error) {
	var (
		u                users.User
		days             string
		lon, lat         sql.NullFloat64
		created, updated string
	)
	if err := row.Scan(&u.ID, &u.ChatID, &days, &lon, &lat, &created, &updated); err != nil {
		return users.User{}, err
	}

	set, err := users.ParseWeekdays(days)
	if err != nil {
		return users.User{}, fmt.Errorf("user %d laundry_days: %w", u.ID, err)
	}
	u.LaundryDays = set

	if lon.Valid && lat.Valid {
		u.Coordinates = &weather.Coordinates{Longitude: lon.Float64, Latitude: lat.Float64}
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		u.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		u.UpdatedAt = t
	}
	return u, nil
}
