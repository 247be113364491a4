// Package booking holds the rules around yoga sessions: who takes part in
// which session and how sessions are created, changed and removed.
package booking

import (
	"fmt"
	"time"

	"github.com/andrebq/yogastudio/studio"
	validation "github.com/go-ozzo/ozzo-validation"
)

type (
	AlreadyParticipating struct {
		SessionID int64
		UserID    int64
	}

	NotParticipating struct {
		SessionID int64
		UserID    int64
	}

	// Draft carries the fields a client controls when creating or updating a session.
	Draft struct {
		Name        string    `json:"name"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		TeacherID   int64     `json:"teacher_id"`
		UserIDs     []int64   `json:"users"`
	}
)

func (a AlreadyParticipating) Error() string {
	return fmt.Sprintf("user %v already participates in session %v", a.UserID, a.SessionID)
}

func (n NotParticipating) Error() string {
	return fmt.Sprintf("user %v does not participate in session %v", n.UserID, n.SessionID)
}

func (d Draft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&d.Date, validation.Required),
		validation.Field(&d.Description, validation.Required, validation.Length(1, 2500)),
		validation.Field(&d.TeacherID, validation.Required),
	)
}

// Join returns a new roster with u appended at the end.
//
// If u is already on the roster, AlreadyParticipating is returned
// and the roster is left as it is.
func Join(roster []studio.User, u studio.User) ([]studio.User, error) {
	for _, r := range roster {
		if r.ID == u.ID {
			return roster, AlreadyParticipating{UserID: u.ID}
		}
	}
	out := make([]studio.User, 0, len(roster)+1)
	out = append(out, roster...)
	return append(out, u), nil
}

// Leave returns a new roster without userID.
//
// If userID is not on the roster, NotParticipating is returned.
func Leave(roster []studio.User, userID int64) ([]studio.User, error) {
	out := make([]studio.User, 0, len(roster))
	for _, r := range roster {
		if r.ID != userID {
			out = append(out, r)
		}
	}
	if len(out) == len(roster) {
		return roster, NotParticipating{UserID: userID}
	}
	return out, nil
}
