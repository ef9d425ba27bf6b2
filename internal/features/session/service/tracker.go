package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/keylock"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/features/session/models"
	"gemini-relay-bot/internal/features/session/repository"
	usermodels "gemini-relay-bot/internal/features/user/models"
)

// Tracker owns the session life cycle. All mutations of one user's session
// are serialized; every state change goes through the transition table.
type Tracker struct {
	repo  repository.SessionRepository
	locks keylock.Map
}

func NewTracker(repo repository.SessionRepository) *Tracker {
	return &Tracker{repo: repo}
}

// GetOrCreate returns the user's session, creating one in the main menu with
// prefs when none exists.
func (t *Tracker) GetOrCreate(ctx context.Context, userID int64, prefs usermodels.Preferences) (models.Session, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()
	return t.getOrCreateLocked(ctx, userID, prefs)
}

func (t *Tracker) getOrCreateLocked(ctx context.Context, userID int64, prefs usermodels.Preferences) (models.Session, error) {
	s, ok, err := t.repo.Get(ctx, userID)
	if err != nil {
		return models.Session{}, err
	}
	if ok {
		if !s.State.Valid() {
			s.State = models.StateMainMenu
		}
		return s, nil
	}

	s = models.New(userID, prefs)
	if err := t.repo.Set(ctx, s); err != nil {
		return models.Session{}, err
	}
	logger.Debug().Int64("user_id", userID).Msg("Session created")
	return s, nil
}

// Get returns the stored session without creating one.
func (t *Tracker) Get(ctx context.Context, userID int64) (models.Session, bool, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()
	return t.repo.Get(ctx, userID)
}

// Can reports whether event is allowed from the user's current state.
func (t *Tracker) Can(ctx context.Context, userID int64, event string) (bool, error) {
	s, ok, err := t.repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	state := models.StateMainMenu
	if ok && s.State.Valid() {
		state = s.State
	}
	return newMachine(state).Can(event), nil
}

// Fire applies event to the user's session. A rejected event leaves the
// session untouched and returns an INVALID_TRANSITION error together with the
// unchanged session.
func (t *Tracker) Fire(ctx context.Context, userID int64, event string) (models.Session, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	s, err := t.getOrCreateLocked(ctx, userID, usermodels.DefaultPreferences(userID))
	if err != nil {
		return models.Session{}, err
	}

	from := s.State
	machine := newMachine(from)
	if err := machine.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			logger.Debug().
				Int64("user_id", userID).
				Str("state", string(from)).
				Str("event", event).
				Msg("Transition rejected")
			return s, apperrors.NewInvalidTransitionError(string(from), event)
		}
	}

	s.State = models.State(machine.Current())
	s.UpdatedAt = time.Now().UTC()
	if err := t.repo.Set(ctx, s); err != nil {
		return models.Session{}, err
	}

	if s.State != from {
		logger.Debug().
			Int64("user_id", userID).
			Str("from", string(from)).
			Str("to", string(s.State)).
			Str("event", event).
			Msg("Session state changed")
	}
	return s, nil
}

// SetData stores a transient selection on the session.
func (t *Tracker) SetData(ctx context.Context, userID int64, key, value string) (models.Session, error) {
	return t.update(ctx, userID, func(s *models.Session) {
		s.Data[key] = value
	})
}

// SetPreferences replaces the cached preferences.
func (t *Tracker) SetPreferences(ctx context.Context, userID int64, prefs usermodels.Preferences) (models.Session, error) {
	return t.update(ctx, userID, func(s *models.Session) {
		s.Preferences = prefs
	})
}

func (t *Tracker) update(ctx context.Context, userID int64, mutate func(*models.Session)) (models.Session, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	s, err := t.getOrCreateLocked(ctx, userID, usermodels.DefaultPreferences(userID))
	if err != nil {
		return models.Session{}, err
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	mutate(&s)
	s.UpdatedAt = time.Now().UTC()
	if err := t.repo.Set(ctx, s); err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (t *Tracker) Delete(ctx context.Context, userID int64) error {
	unlock := t.locks.Lock(userID)
	defer unlock()

	if err := t.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session for user %d: %w", userID, err)
	}
	logger.Debug().Int64("user_id", userID).Msg("Session deleted")
	return nil
}

// ActiveCount is the number of sessions currently held by the store.
func (t *Tracker) ActiveCount(ctx context.Context) (int, error) {
	return t.repo.Len(ctx)
}
