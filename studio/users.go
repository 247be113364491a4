package studio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const userColumns = `u.user_id, u.email, u.first_name, u.last_name, u.password, u.admin, u.created_at, u.updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (User, error) {
	var u User
	var created, updated int64
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Admin, &created, &updated)
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

// CreateUser stores u and returns it with the generated id and timestamps.
//
// If the email is already registered, DuplicateEmail is returned.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	email, hash := normalizeEmail(u.Email)
	now := s.timestamp()
	err := s.db.QueryRowContext(ctx, `insert into users(email, email_hash64, first_name, last_name, password, admin, created_at, updated_at)
		values (?, ?, ?, ?, ?, ?, ?, ?) returning user_id`,
		email, hash, u.FirstName, u.LastName, u.PasswordHash, u.Admin, now, now).Scan(&u.ID)
	if isConstraintViolation(err, sqlite3.ErrConstraintUnique) {
		return User{}, DuplicateEmail{Email: email}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to store user %v, cause %w", email, err)
	}
	u.Email = email
	u.CreatedAt = fromMillis(now)
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (s *Store) LookupUser(ctx context.Context, id int64) (User, bool, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users u where u.user_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	} else if err != nil {
		return User{}, false, fmt.Errorf("unable to load user %v, cause %w", id, err)
	}
	return u, true, nil
}

func (s *Store) LookupUserByEmail(ctx context.Context, email string) (User, bool, error) {
	email, hash := normalizeEmail(email)
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users u where u.email_hash64 = ? and u.email = ?`, hash, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	} else if err != nil {
		return User{}, false, fmt.Errorf("unable to load user %v, cause %w", email, err)
	}
	return u, true, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	email, hash := normalizeEmail(email)
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from users where email_hash64 = ? and email = ?`, hash, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("unable to check email %v, cause %w", email, err)
	}
	return count > 0, nil
}

// DeleteUser removes the user and every roster entry that references it.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `delete from users where user_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("unable to delete user %v, cause %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unable to delete user %v, cause %w", id, err)
	}
	return n > 0, nil
}
