package studio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const sessionColumns = `s.session_id, s.name, s.date, s.description, s.created_at, s.updated_at,
	t.teacher_id, t.first_name, t.last_name, t.created_at, t.updated_at`

func scanSession(row scanner) (Session, error) {
	var s Session
	var date, created, updated int64
	var tid, tcreated, tupdated sql.NullInt64
	var tfirst, tlast sql.NullString
	err := row.Scan(&s.ID, &s.Name, &date, &s.Description, &created, &updated,
		&tid, &tfirst, &tlast, &tcreated, &tupdated)
	if err != nil {
		return Session{}, err
	}
	s.Date = fromMillis(date)
	s.CreatedAt = fromMillis(created)
	s.UpdatedAt = fromMillis(updated)
	if tid.Valid {
		s.Teacher = &Teacher{
			ID:        tid.Int64,
			FirstName: tfirst.String,
			LastName:  tlast.String,
			CreatedAt: fromMillis(tcreated.Int64),
			UpdatedAt: fromMillis(tupdated.Int64),
		}
	}
	return s, nil
}

func teacherID(t *Teacher) interface{} {
	if t == nil {
		return nil
	}
	return t.ID
}

// CreateSession stores the session and its initial roster in a single transaction.
func (s *Store) CreateSession(ctx context.Context, session Session) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()
	now := s.timestamp()
	err = tx.QueryRowContext(ctx, `insert into sessions(name, date, description, teacher_id, created_at, updated_at)
		values (?, ?, ?, ?, ?, ?) returning session_id`,
		session.Name, session.Date.UTC().UnixMilli(), session.Description, teacherID(session.Teacher), now, now).Scan(&session.ID)
	if err != nil {
		return Session{}, fmt.Errorf("unable to store session %v, cause %w", session.Name, err)
	}
	err = applyRoster(ctx, tx, session.ID, nil, session.Users)
	if err != nil {
		return Session{}, err
	}
	if err = tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("unable to commit session %v, cause %w", session.Name, err)
	}
	session.CreatedAt = fromMillis(now)
	session.UpdatedAt = session.CreatedAt
	return session, nil
}

func (s *Store) LookupSession(ctx context.Context, id int64) (Session, bool, error) {
	session, err := scanSession(s.db.QueryRowContext(ctx, `select `+sessionColumns+`
		from sessions s left join teachers t on t.teacher_id = s.teacher_id
		where s.session_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	} else if err != nil {
		return Session{}, false, fmt.Errorf("unable to load session %v, cause %w", id, err)
	}
	session.Users, err = loadRoster(ctx, s.db, session.ID)
	if err != nil {
		return Session{}, false, err
	}
	return session, true, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `select `+sessionColumns+`
		from sessions s left join teachers t on t.teacher_id = s.teacher_id
		order by s.session_id asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list sessions, cause %w", err)
	}
	out := []Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("unable to scan session, cause %w", err)
		}
		out = append(out, session)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("unable to list sessions, cause %w", err)
	}
	for i := range out {
		out[i].Users, err = loadRoster(ctx, s.db, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateSession overwrites every field of the stored session and moves its roster
// from previous to session.Users.
//
// If the session does not exist, SessionNotFound is returned.
func (s *Store) UpdateSession(ctx context.Context, session Session, previous []User) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()
	now := s.timestamp()
	var created int64
	err = tx.QueryRowContext(ctx, `update sessions set name = ?, date = ?, description = ?, teacher_id = ?, updated_at = ?
		where session_id = ? returning created_at`,
		session.Name, session.Date.UTC().UnixMilli(), session.Description, teacherID(session.Teacher), now, session.ID).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, SessionNotFound{ID: session.ID}
	} else if err != nil {
		return Session{}, fmt.Errorf("unable to update session %v, cause %w", session.ID, err)
	}
	err = applyRoster(ctx, tx, session.ID, previous, session.Users)
	if err != nil {
		return Session{}, err
	}
	if err = tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("unable to commit session %v, cause %w", session.ID, err)
	}
	session.CreatedAt = fromMillis(created)
	session.UpdatedAt = fromMillis(now)
	return session, nil
}

// SaveRoster persists the transition of a session roster from previous to next.
//
// Only the difference between both rosters is written, so concurrent changes
// that touch other users are preserved. A user that was added concurrently
// by another request results in DuplicateParticipant.
func (s *Store) SaveRoster(ctx context.Context, sessionID int64, previous, next []User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to start transaction, cause %w", err)
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `update sessions set updated_at = ? where session_id = ?`, s.timestamp(), sessionID)
	if err != nil {
		return fmt.Errorf("unable to touch session %v, cause %w", sessionID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("unable to touch session %v, cause %w", sessionID, err)
	} else if n == 0 {
		return SessionNotFound{ID: sessionID}
	}
	err = applyRoster(ctx, tx, sessionID, previous, next)
	if err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit roster of session %v, cause %w", sessionID, err)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `delete from sessions where session_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("unable to delete session %v, cause %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unable to delete session %v, cause %w", id, err)
	}
	return n > 0, nil
}

func applyRoster(ctx context.Context, tx *sql.Tx, sessionID int64, previous, next []User) error {
	keep := make(map[int64]bool, len(next))
	for _, u := range next {
		keep[u.ID] = true
	}
	had := make(map[int64]bool, len(previous))
	for _, u := range previous {
		had[u.ID] = true
		if keep[u.ID] {
			continue
		}
		_, err := tx.ExecContext(ctx, `delete from participations where session_id = ? and user_id = ?`, sessionID, u.ID)
		if err != nil {
			return fmt.Errorf("unable to remove user %v from session %v, cause %w", u.ID, sessionID, err)
		}
	}
	for _, u := range next {
		if had[u.ID] {
			continue
		}
		_, err := tx.ExecContext(ctx, `insert into participations(session_id, user_id) values (?, ?)`, sessionID, u.ID)
		if isConstraintViolation(err, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique) {
			return DuplicateParticipant{SessionID: sessionID, UserID: u.ID}
		} else if isConstraintViolation(err, sqlite3.ErrConstraintForeignKey) {
			return UserNotFound{ID: u.ID}
		} else if err != nil {
			return fmt.Errorf("unable to add user %v to session %v, cause %w", u.ID, sessionID, err)
		}
		had[u.ID] = true
	}
	return nil
}

func loadRoster(ctx context.Context, db queryer, sessionID int64) ([]User, error) {
	rows, err := db.QueryContext(ctx, `select `+userColumns+`
		from participations p inner join users u on u.user_id = p.user_id
		where p.session_id = ?
		order by p.rowid asc`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("unable to load roster of session %v, cause %w", sessionID, err)
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan roster of session %v, cause %w", sessionID, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
