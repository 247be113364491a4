// Package wire defines the JSON documents exchanged over HTTP and the
// mappers between them and the studio records.
//
// Every mapper returns nil when given nil.
package wire

import (
	"time"

	"github.com/andrebq/yogastudio/booking"
	"github.com/andrebq/yogastudio/studio"
)

type (
	SessionDTO struct {
		ID          int64      `json:"id,omitempty"`
		Name        string     `json:"name"`
		Date        Date       `json:"date"`
		TeacherID   int64      `json:"teacher_id"`
		Description string     `json:"description"`
		Users       []int64    `json:"users"`
		CreatedAt   *time.Time `json:"createdAt,omitempty"`
		UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	}

	UserDTO struct {
		ID        int64      `json:"id"`
		Email     string     `json:"email"`
		FirstName string     `json:"firstName"`
		LastName  string     `json:"lastName"`
		Admin     bool       `json:"admin"`
		CreatedAt *time.Time `json:"createdAt,omitempty"`
		UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	}

	TeacherDTO struct {
		ID        int64      `json:"id"`
		FirstName string     `json:"firstName"`
		LastName  string     `json:"lastName"`
		CreatedAt *time.Time `json:"createdAt,omitempty"`
		UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	}
)

func timeRef(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func FromSession(s *studio.Session) *SessionDTO {
	if s == nil {
		return nil
	}
	dto := &SessionDTO{
		ID:          s.ID,
		Name:        s.Name,
		Date:        Date{s.Date},
		Description: s.Description,
		Users:       make([]int64, 0, len(s.Users)),
		CreatedAt:   timeRef(s.CreatedAt),
		UpdatedAt:   timeRef(s.UpdatedAt),
	}
	if s.Teacher != nil {
		dto.TeacherID = s.Teacher.ID
	}
	for _, u := range s.Users {
		dto.Users = append(dto.Users, u.ID)
	}
	return dto
}

func FromSessions(sessions []studio.Session) []*SessionDTO {
	if sessions == nil {
		return nil
	}
	out := make([]*SessionDTO, 0, len(sessions))
	for i := range sessions {
		out = append(out, FromSession(&sessions[i]))
	}
	return out
}

// FromUser never exposes the password hash.
func FromUser(u *studio.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
		CreatedAt: timeRef(u.CreatedAt),
		UpdatedAt: timeRef(u.UpdatedAt),
	}
}

func FromTeacher(t *studio.Teacher) *TeacherDTO {
	if t == nil {
		return nil
	}
	return &TeacherDTO{
		ID:        t.ID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		CreatedAt: timeRef(t.CreatedAt),
		UpdatedAt: timeRef(t.UpdatedAt),
	}
}

func FromTeachers(teachers []studio.Teacher) []*TeacherDTO {
	if teachers == nil {
		return nil
	}
	out := make([]*TeacherDTO, 0, len(teachers))
	for i := range teachers {
		out = append(out, FromTeacher(&teachers[i]))
	}
	return out
}

// ToDraft keeps the id, timestamps and anything else the
// client does not control out of the draft.
func ToDraft(dto *SessionDTO) *booking.Draft {
	if dto == nil {
		return nil
	}
	return &booking.Draft{
		Name:        dto.Name,
		Date:        dto.Date.Time,
		Description: dto.Description,
		TeacherID:   dto.TeacherID,
		UserIDs:     append([]int64(nil), dto.Users...),
	}
}
