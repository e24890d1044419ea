// Package session keeps the signed-in identity on disk and tells
// subscribers when it, or the cart, changes.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"deliveryfood/models"
)

// State is what survives between CLI invocations.
type State struct {
	UserID    uint            `json:"userId,omitempty"`
	Role      models.UserRole `json:"role,omitempty"`
	Email     string          `json:"email,omitempty"`
	AdminID   uint            `json:"adminId,omitempty"`
	ActiveTab Tab             `json:"activeTab,omitempty"`
	Token     string          `json:"token,omitempty"`
}

type EventType string

const (
	IdentityChanged EventType = "identity_changed"
	CartChanged     EventType = "cart_changed"
	LoggedOut       EventType = "logged_out"
)

type Event struct {
	Type  EventType
	State State
}

type subscriber struct {
	id int
	fn func(Event)
}

// Store is safe for concurrent use. Events are delivered synchronously, in
// subscription order, one publish at a time; a subscriber must not publish
// from inside its callback.
type Store struct {
	path string

	mu     sync.Mutex
	state  State
	subs   []subscriber
	nextID int

	deliver sync.Mutex
}

// Open loads the session file at path. A missing file is an empty session;
// an empty path keeps the session in memory only.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) UserID() uint {
	return s.State().UserID
}

func (s *Store) Role() models.UserRole {
	return s.State().Role
}

func (s *Store) Token() string {
	return s.State().Token
}

// SignIn replaces the identity. Admins also get AdminID, which the courier
// management endpoints expect in their path.
func (s *Store) SignIn(userID uint, role models.UserRole, email, token string) error {
	s.mu.Lock()
	s.state = State{UserID: userID, Role: role, Email: email, Token: token}
	if role == models.RoleAdmin {
		s.state.AdminID = userID
	}
	if tabs := Navigation(role); len(tabs) > 0 {
		s.state.ActiveTab = tabs[0]
	}
	st := s.state
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(Event{Type: IdentityChanged, State: st})
	return nil
}

// SetActiveTab records the selected navigation entry. Tabs that the current
// role cannot see are rejected.
func (s *Store) SetActiveTab(tab Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !Allowed(s.state.Role, tab) {
		return fmt.Errorf("tab %q is not available for role %q", tab, s.state.Role)
	}
	s.state.ActiveTab = tab
	return s.saveLocked()
}

// Clear wipes the whole session (logout).
func (s *Store) Clear() error {
	s.mu.Lock()
	s.state = State{}
	var err error
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("remove session: %w", rmErr)
		}
	}
	s.mu.Unlock()
	s.publish(Event{Type: LoggedOut})
	return err
}

// NotifyCartChanged tells subscribers that cart contents changed.
func (s *Store) NotifyCartChanged() {
	s.publish(Event{Type: CartChanged, State: s.State()})
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) publish(e Event) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(e)
	}
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
