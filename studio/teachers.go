package studio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func scanTeacher(row scanner) (Teacher, error) {
	var t Teacher
	var created, updated int64
	err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &created, &updated)
	if err != nil {
		return Teacher{}, err
	}
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}

func (s *Store) CreateTeacher(ctx context.Context, t Teacher) (Teacher, error) {
	now := s.timestamp()
	err := s.db.QueryRowContext(ctx, `insert into teachers(first_name, last_name, created_at, updated_at)
		values (?, ?, ?, ?) returning teacher_id`, t.FirstName, t.LastName, now, now).Scan(&t.ID)
	if err != nil {
		return Teacher{}, fmt.Errorf("unable to store teacher %v %v, cause %w", t.FirstName, t.LastName, err)
	}
	t.CreatedAt = fromMillis(now)
	t.UpdatedAt = t.CreatedAt
	return t, nil
}

func (s *Store) LookupTeacher(ctx context.Context, id int64) (Teacher, bool, error) {
	t, err := scanTeacher(s.db.QueryRowContext(ctx, `select teacher_id, first_name, last_name, created_at, updated_at
		from teachers where teacher_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Teacher{}, false, nil
	} else if err != nil {
		return Teacher{}, false, fmt.Errorf("unable to load teacher %v, cause %w", id, err)
	}
	return t, true, nil
}

func (s *Store) ListTeachers(ctx context.Context) ([]Teacher, error) {
	rows, err := s.db.QueryContext(ctx, `select teacher_id, first_name, last_name, created_at, updated_at
		from teachers order by teacher_id asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list teachers, cause %w", err)
	}
	defer rows.Close()
	out := []Teacher{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan teacher, cause %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
