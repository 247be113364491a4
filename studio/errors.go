package studio

import "fmt"

type (
	UserNotFound struct {
		ID int64
	}

	TeacherNotFound struct {
		ID int64
	}

	SessionNotFound struct {
		ID int64
	}

	// DuplicateEmail is returned when a user is created with an email
	// that is already present in the users table.
	DuplicateEmail struct {
		Email string
	}

	// DuplicateParticipant is returned when a roster would store
	// the same user twice for a single session.
	DuplicateParticipant struct {
		SessionID int64
		UserID    int64
	}
)

func (u UserNotFound) Error() string {
	return fmt.Sprintf("user %v not found", u.ID)
}

func (t TeacherNotFound) Error() string {
	return fmt.Sprintf("teacher %v not found", t.ID)
}

func (s SessionNotFound) Error() string {
	return fmt.Sprintf("session %v not found", s.ID)
}

func (d DuplicateEmail) Error() string {
	return fmt.Sprintf("email %v already registered", d.Email)
}

func (d DuplicateParticipant) Error() string {
	return fmt.Sprintf("user %v already participates in session %v", d.UserID, d.SessionID)
}
