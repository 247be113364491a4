// Package fixtures populates a studio database from a Lua file.
//
// A fixture file is a Lua chunk that returns a single table:
//
//	return {
//		teachers = {
//			{ first_name = "Margot", last_name = "DELAHAYE" },
//		},
//		users = {
//			{ email = "yoga@studio.com", password = "test!1234", first_name = "Admin", last_name = "Admin", admin = true },
//		},
//		sessions = {
//			{ name = "Hatha yoga course", date = "2024-09-01", description = "...", teacher = 1, users = { "yoga@studio.com" } },
//		},
//	}
//
// Sessions reference teachers by their (1-based) position in the teachers
// list and users by email. Passwords are hashed before they reach the
// database, so fixture files never need to carry password hashes.
package fixtures

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andrebq/yogastudio/studio"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

type (
	Fixtures struct {
		Teachers []Teacher
		Users    []User
		Sessions []Session
	}

	Teacher struct {
		FirstName string
		LastName  string
	}

	User struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
		Admin     bool
	}

	Session struct {
		Name        string
		Date        string
		Description string
		Teacher     int
		Users       []string
	}

	Hasher interface {
		Hash(plain string) (string, error)
	}

	// InvalidFixture is returned when a fixture file cannot be mapped
	// to the expected structure.
	InvalidFixture struct {
		Name  string
		cause error
	}
)

//go:embed default.lua
var defaultFixtures string

func (i InvalidFixture) Error() string {
	return fmt.Sprintf("fixture %v is invalid, cause %v", i.Name, i.cause)
}

func (i InvalidFixture) Unwrap() error {
	return i.cause
}

// Default returns the fixtures bundled with the binary
// (the studio administrator and the initial teachers).
func Default() (*Fixtures, error) {
	return Parse("default.lua", strings.NewReader(defaultFixtures))
}

func injectFixtureLibs(L *lua.LState) error {
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage}, // Must be first
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			return err
		}
	}
	return nil
}

// Parse runs the Lua chunk read from src and maps the returned table to Fixtures.
func Parse(name string, src io.Reader) (*Fixtures, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := injectFixtureLibs(L); err != nil {
		return nil, fmt.Errorf("unable to prepare lua state, cause %w", err)
	}
	fn, err := L.Load(src, name)
	if err != nil {
		return nil, InvalidFixture{Name: name, cause: err}
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, InvalidFixture{Name: name, cause: err}
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return nil, InvalidFixture{Name: name, cause: errors.New("chunk must return a table")}
	}
	var f Fixtures
	if err := gluamapper.Map(tbl, &f); err != nil {
		return nil, InvalidFixture{Name: name, cause: err}
	}
	return &f, f.validate()
}

func (f *Fixtures) validate() error {
	for i, s := range f.Sessions {
		if s.Teacher < 0 || s.Teacher > len(f.Teachers) {
			return InvalidFixture{Name: s.Name, cause: fmt.Errorf("session %v references teacher %v, only %v available", i+1, s.Teacher, len(f.Teachers))}
		}
		if _, err := parseDate(s.Date); err != nil {
			return InvalidFixture{Name: s.Name, cause: err}
		}
	}
	return nil
}

func parseDate(val string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q must be RFC3339 or YYYY-MM-DD", val)
}

// Load writes the fixtures to the given store. Users whose email is already
// registered are kept as they are, which makes loading the same file twice harmless
// for users (teachers and sessions are always appended).
func Load(ctx context.Context, store *studio.Store, hasher Hasher, f *Fixtures) error {
	teachers := make([]studio.Teacher, 0, len(f.Teachers))
	for _, t := range f.Teachers {
		saved, err := store.CreateTeacher(ctx, studio.Teacher{FirstName: t.FirstName, LastName: t.LastName})
		if err != nil {
			return err
		}
		teachers = append(teachers, saved)
	}
	users := make(map[string]studio.User, len(f.Users))
	for _, u := range f.Users {
		existing, found, err := store.LookupUserByEmail(ctx, u.Email)
		if err != nil {
			return err
		} else if found {
			users[strings.ToLower(u.Email)] = existing
			continue
		}
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("unable to hash password of %v, cause %w", u.Email, err)
		}
		saved, err := store.CreateUser(ctx, studio.User{
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			PasswordHash: hash,
			Admin:        u.Admin,
		})
		if err != nil {
			return err
		}
		users[strings.ToLower(u.Email)] = saved
	}
	for _, s := range f.Sessions {
		date, _ := parseDate(s.Date)
		session := studio.Session{
			Name:        s.Name,
			Date:        date,
			Description: s.Description,
		}
		if s.Teacher > 0 {
			session.Teacher = &teachers[s.Teacher-1]
		}
		for _, email := range s.Users {
			u, found := users[strings.ToLower(email)]
			if !found {
				var err error
				u, found, err = store.LookupUserByEmail(ctx, email)
				if err != nil {
					return err
				} else if !found {
					return InvalidFixture{Name: s.Name, cause: fmt.Errorf("unknown participant %v", email)}
				}
			}
			session.Users = append(session.Users, u)
		}
		if _, err := store.CreateSession(ctx, session); err != nil {
			return err
		}
	}
	return nil
}
