// Package session holds the signed-in principal across restarts.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/user"
)

// ErrAuthenticationFailed is returned when no account matches the credentials.
// It does not tell an unknown email from a wrong password.
var ErrAuthenticationFailed = errors.New("authentication failed")

type (
	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// Directory looks accounts up by email.
	Directory interface {
		FindByEmail(ctx context.Context, email string) (user.User, error)
	}
)

// Authenticate returns the principal of the account matching the credentials.
func Authenticate(ctx context.Context, dir Directory, creds Credentials) (user.Principal, error) {
	usr, err := dir.FindByEmail(ctx, core.CleanString(creds.Email, true /* lower */))
	if errors.Is(err, core.ErrNotFound) {
		return user.Principal{}, ErrAuthenticationFailed
	} else if err != nil {
		return user.Principal{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return user.Principal{}, ErrAuthenticationFailed
	}
	p, err := usr.Principal()
	if err != nil {
		return user.Principal{}, errors.Wrapf(err, "user %s", usr.ID)
	}
	return p, nil
}

// Store holds the current principal, persisting its session token in a Slot.
type Store struct {
	mu      sync.RWMutex
	dir     Directory
	slot    Slot
	codec   *TokenCodec
	log     core.Logger
	current user.Principal
}

// Open returns a Store rehydrated from the slot. A token that cannot be read or
// verified rehydrates to no session, and is cleared.
func Open(dir Directory, slot Slot, codec *TokenCodec, log core.Logger) *Store {
	s := &Store{dir: dir, slot: slot, codec: codec, log: log}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	token, err := s.slot.Load()
	if err != nil {
		s.log.Warn("session: unreadable slot", err)
		s.discard()
		return
	}
	if len(token) == 0 {
		return
	}
	p, err := s.codec.Parse(string(token))
	if err != nil {
		s.log.Info("session: discarding token", err)
		s.discard()
		return
	}
	s.current = p
}

func (s *Store) discard() {
	if err := s.slot.Clear(); err != nil {
		s.log.Warn("session: clearing slot", err)
	}
}

// SignIn authenticates the credentials and makes the matching principal current.
// The previous session, if any, is replaced.
func (s *Store) SignIn(ctx context.Context, creds Credentials) (user.Principal, error) {
	p, err := Authenticate(ctx, s.dir, creds)
	if err != nil {
		return user.Principal{}, err
	}
	token, err := s.codec.Issue(p)
	if err != nil {
		return user.Principal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.slot.Store([]byte(token)); err != nil {
		return user.Principal{}, errors.Wrap(err, "storing session")
	}
	s.current = p
	return p, nil
}

// SignOut clears the current principal. Signing out without a session is not an error.
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = user.Principal{}
	return errors.Wrap(s.slot.Clear(), "clearing session")
}

// Current returns the signed-in principal; ok is false when there is none.
func (s *Store) Current() (p user.Principal, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, !s.current.IsZero()
}
