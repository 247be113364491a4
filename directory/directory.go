// Package directory exposes the people of the studio: teachers and users.
package directory

import (
	"context"
	"fmt"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/andrebq/yogastudio/studio"
)

type (
	TeacherStore interface {
		ListTeachers(ctx context.Context) ([]studio.Teacher, error)
		LookupTeacher(ctx context.Context, id int64) (studio.Teacher, bool, error)
	}

	UserStore interface {
		LookupUser(ctx context.Context, id int64) (studio.User, bool, error)
		DeleteUser(ctx context.Context, id int64) (bool, error)
	}

	// Forgetter drops cached knowledge about a username.
	Forgetter interface {
		Forget(username string)
	}

	Teachers struct {
		store TeacherStore
	}

	Users struct {
		store     UserStore
		forgetter Forgetter
	}

	// NotOwner is returned when a principal tries to change an account
	// that is not its own.
	NotOwner struct {
		UserID int64
	}
)

func (n NotOwner) Error() string {
	return fmt.Sprintf("user %v can only be changed by its owner", n.UserID)
}

func NewTeachers(store TeacherStore) *Teachers {
	return &Teachers{store: store}
}

func (t *Teachers) FindAll(ctx context.Context) ([]studio.Teacher, error) {
	return t.store.ListTeachers(ctx)
}

func (t *Teachers) Find(ctx context.Context, id int64) (studio.Teacher, bool, error) {
	return t.store.LookupTeacher(ctx, id)
}

// NewUsers returns the user directory. forgetter may be nil.
func NewUsers(store UserStore, forgetter Forgetter) *Users {
	return &Users{store: store, forgetter: forgetter}
}

func (u *Users) Find(ctx context.Context, id int64) (studio.User, bool, error) {
	return u.store.LookupUser(ctx, id)
}

// Delete removes the user identified by id, as long as it belongs to p.
func (u *Users) Delete(ctx context.Context, id int64, p auth.Principal) error {
	log := logutil.GetOrDefault(ctx)
	user, found, err := u.store.LookupUser(ctx, id)
	if err != nil {
		return err
	} else if !found {
		return studio.UserNotFound{ID: id}
	}
	if !p.Owns(user.Email) {
		log.Warn().Str("username", p.Username).Int64("user", id).Msg("Refusing to delete account of another user")
		return NotOwner{UserID: id}
	}
	deleted, err := u.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	} else if !deleted {
		return studio.UserNotFound{ID: id}
	}
	if u.forgetter != nil {
		u.forgetter.Forget(user.Email)
	}
	log.Info().Str("username", user.Email).Msg("User deleted")
	return nil
}
