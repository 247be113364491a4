package booking

import (
	"context"
	"errors"

	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/andrebq/yogastudio/studio"
)

type (
	// Store is the part of the studio database used by the booking service.
	Store interface {
		LookupSession(ctx context.Context, id int64) (studio.Session, bool, error)
		ListSessions(ctx context.Context) ([]studio.Session, error)
		CreateSession(ctx context.Context, session studio.Session) (studio.Session, error)
		UpdateSession(ctx context.Context, session studio.Session, previous []studio.User) (studio.Session, error)
		SaveRoster(ctx context.Context, sessionID int64, previous, next []studio.User) error
		DeleteSession(ctx context.Context, id int64) (bool, error)
		LookupUser(ctx context.Context, id int64) (studio.User, bool, error)
		LookupTeacher(ctx context.Context, id int64) (studio.Teacher, bool, error)
	}

	Service struct {
		store Store
	}
)

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Participate adds userID to the roster of sessionID.
func (s *Service) Participate(ctx context.Context, sessionID, userID int64) error {
	session, found, err := s.store.LookupSession(ctx, sessionID)
	if err != nil {
		return err
	} else if !found {
		return studio.SessionNotFound{ID: sessionID}
	}
	u, found, err := s.store.LookupUser(ctx, userID)
	if err != nil {
		return err
	} else if !found {
		return studio.UserNotFound{ID: userID}
	}
	next, err := Join(session.Users, u)
	if err != nil {
		return AlreadyParticipating{SessionID: sessionID, UserID: userID}
	}
	err = s.saveRoster(ctx, sessionID, session.Users, next)
	if err != nil {
		return err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Int64("session", sessionID).Int64("user", userID).Msg("User joined session")
	return nil
}

// NoLongerParticipate removes userID from the roster of sessionID.
func (s *Service) NoLongerParticipate(ctx context.Context, sessionID, userID int64) error {
	session, found, err := s.store.LookupSession(ctx, sessionID)
	if err != nil {
		return err
	} else if !found {
		return studio.SessionNotFound{ID: sessionID}
	}
	next, err := Leave(session.Users, userID)
	if err != nil {
		return NotParticipating{SessionID: sessionID, UserID: userID}
	}
	err = s.saveRoster(ctx, sessionID, session.Users, next)
	if err != nil {
		return err
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Int64("session", sessionID).Int64("user", userID).Msg("User left session")
	return nil
}

func (s *Service) saveRoster(ctx context.Context, sessionID int64, previous, next []studio.User) error {
	err := s.store.SaveRoster(ctx, sessionID, previous, next)
	var dup studio.DuplicateParticipant
	if errors.As(err, &dup) {
		return AlreadyParticipating{SessionID: dup.SessionID, UserID: dup.UserID}
	}
	return err
}

func (s *Service) FindAll(ctx context.Context) ([]studio.Session, error) {
	return s.store.ListSessions(ctx)
}

func (s *Service) Find(ctx context.Context, id int64) (studio.Session, bool, error) {
	return s.store.LookupSession(ctx, id)
}

func (s *Service) Create(ctx context.Context, d Draft) (studio.Session, error) {
	session, err := s.resolve(ctx, d)
	if err != nil {
		return studio.Session{}, err
	}
	return s.store.CreateSession(ctx, session)
}

// Update overwrites every field of the session identified by id,
// the roster included.
func (s *Service) Update(ctx context.Context, id int64, d Draft) (studio.Session, error) {
	current, found, err := s.store.LookupSession(ctx, id)
	if err != nil {
		return studio.Session{}, err
	} else if !found {
		return studio.Session{}, studio.SessionNotFound{ID: id}
	}
	session, err := s.resolve(ctx, d)
	if err != nil {
		return studio.Session{}, err
	}
	session.ID = id
	updated, err := s.store.UpdateSession(ctx, session, current.Users)
	var dup studio.DuplicateParticipant
	if errors.As(err, &dup) {
		return studio.Session{}, AlreadyParticipating{SessionID: dup.SessionID, UserID: dup.UserID}
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteSession(ctx, id)
	if err != nil {
		return err
	} else if !deleted {
		return studio.SessionNotFound{ID: id}
	}
	return nil
}

// resolve turns d into a session, replacing ids with the records they point to.
// Unknown users are dropped and repeated ids are kept only once.
func (s *Service) resolve(ctx context.Context, d Draft) (studio.Session, error) {
	teacher, found, err := s.store.LookupTeacher(ctx, d.TeacherID)
	if err != nil {
		return studio.Session{}, err
	} else if !found {
		return studio.Session{}, studio.TeacherNotFound{ID: d.TeacherID}
	}
	session := studio.Session{
		Name:        d.Name,
		Date:        d.Date,
		Description: d.Description,
		Teacher:     &teacher,
		Users:       []studio.User{},
	}
	seen := make(map[int64]bool, len(d.UserIDs))
	for _, id := range d.UserIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		u, found, err := s.store.LookupUser(ctx, id)
		if err != nil {
			return studio.Session{}, err
		} else if !found {
			log := logutil.GetOrDefault(ctx)
			log.Debug().Int64("user", id).Msg("Ignoring unknown participant")
			continue
		}
		session.Users = append(session.Users, u)
	}
	return session, nil
}
