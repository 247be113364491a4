package studio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mattn/go-sqlite3"
)

type (
	// Store keeps users, teachers, sessions and their rosters
	// in a single sqlite database.
	Store struct {
		db  *sql.DB
		now func() time.Time
	}

	User struct {
		ID           int64
		Email        string
		FirstName    string
		LastName     string
		PasswordHash string
		Admin        bool
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Teacher struct {
		ID        int64
		FirstName string
		LastName  string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Session struct {
		ID          int64
		Name        string
		Date        time.Time
		Description string
		Teacher     *Teacher
		Users       []User
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

func openStudioDatabase(ctx context.Context, file string) (*sql.DB, error) {
	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		return nil, fmt.Errorf("unable to create directory to store %v, cause %w", file, err)
	}
	connstr := fmt.Sprintf("file:%v?_foreign_keys=on&_journal=wal&_busy_timeout=5000&_txlock=immediate&mode=rwc", file)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %v", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping studio database %v, cause %v", file, err)
	}
	return conn, nil
}

// Open loads (creating if needed) the studio database stored at file.
func Open(ctx context.Context, file string) (*Store, error) {
	conn, err := openStudioDatabase(ctx, file)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn, now: time.Now}
	err = s.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init studio database %v, cause %v", file, err)
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			user_id integer not null primary key autoincrement,
			email text not null,
			email_hash64 integer not null,
			first_name text not null,
			last_name text not null,
			password text not null,
			admin integer not null default 0,
			created_at integer not null,
			updated_at integer not null,
			constraint uidx_users_email unique (email)
		)`,
		`create index if not exists idx_users_email_hash64
			on users(email_hash64)`,
		`create table if not exists teachers(
			teacher_id integer not null primary key autoincrement,
			first_name text not null,
			last_name text not null,
			created_at integer not null,
			updated_at integer not null
		)`,
		`create table if not exists sessions(
			session_id integer not null primary key autoincrement,
			name text not null,
			date integer not null,
			description text not null,
			teacher_id integer,
			created_at integer not null,
			updated_at integer not null,
			foreign key (teacher_id) references teachers(teacher_id) on delete set null
		)`,
		`create table if not exists participations(
			session_id integer not null,
			user_id integer not null,
			primary key (session_id, user_id),
			foreign key (session_id) references sessions(session_id) on delete cascade,
			foreign key (user_id) references users(user_id) on delete cascade
		)`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() int64 {
	return s.now().UTC().UnixMilli()
}

func normalizeEmail(email string) (string, int64) {
	email = strings.ToLower(strings.TrimSpace(email))
	return email, int64(xxhash.Sum64String(email))
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func isConstraintViolation(err error, codes ...sqlite3.ErrNoExtended) bool {
	var sqerr sqlite3.Error
	if !errors.As(err, &sqerr) {
		return false
	}
	for _, c := range codes {
		if sqerr.ExtendedCode == c {
			return true
		}
	}
	return false
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
