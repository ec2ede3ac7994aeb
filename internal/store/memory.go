package store

import (
	"fmt"
	"sync"
	"time"
)

type credKey struct {
	service string
	account string
}

// memChain is the state of one simulated protected keychain: whether it
// exists, whether it is unlocked, its password, its auto-lock settings,
// and its credentials.
type memChain struct {
	password    string
	unlocked    bool
	idle        time.Duration
	lockOnSleep bool
	creds       map[credKey]string
}

// MemoryStore is an in-memory implementation of Store for testing. It
// simulates the full keychain contract: item operations against a
// protected keychain fail unless the keychain exists and is unlocked.
type MemoryStore struct {
	mu       sync.Mutex
	defaults map[credKey]string
	chains   map[string]*memChain

	// CreatePassword is assigned to keychains made by Create, standing in
	// for the password the OS dialog would collect.
	CreatePassword string

	// Error injection for failure-path tests.
	CreateErr error
	UnlockErr error
	LockErr   error
	OpErr     error

	// Call counters.
	Creates int
	Unlocks int
	Locks   int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		defaults: make(map[credKey]string),
		chains:   make(map[string]*memChain),
	}
}

func (s *MemoryStore) Create(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Creates++
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.chains[path]; ok {
		return fmt.Errorf("keychain %q already exists", path)
	}
	// A freshly created keychain is unlocked.
	s.chains[path] = &memChain{
		password: s.CreatePassword,
		unlocked: true,
		creds:    make(map[credKey]string),
	}
	return nil
}

func (s *MemoryStore) Unlock(path, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unlocks++
	if s.UnlockErr != nil {
		return s.UnlockErr
	}
	c, ok := s.chains[path]
	if !ok {
		return fmt.Errorf("keychain %q does not exist", path)
	}
	if password != c.password {
		return fmt.Errorf("%w: incorrect password", ErrAuthFailed)
	}
	c.unlocked = true
	return nil
}

func (s *MemoryStore) Lock(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Locks++
	if s.LockErr != nil {
		return s.LockErr
	}
	c, ok := s.chains[path]
	if !ok {
		return fmt.Errorf("keychain %q does not exist", path)
	}
	c.unlocked = false
	return nil
}

func (s *MemoryStore) SetAutoLock(path string, idle time.Duration, lockOnSleep bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chains[path]
	if !ok {
		return fmt.Errorf("keychain %q does not exist", path)
	}
	if !c.unlocked {
		return fmt.Errorf("keychain %q is locked", path)
	}
	c.idle = idle
	c.lockOnSleep = lockOnSleep
	return nil
}

func (s *MemoryStore) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chains[path]
	return ok
}

func (s *MemoryStore) Add(scope Scope, service, account, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpErr != nil {
		return s.OpErr
	}
	creds, err := s.scoped(scope)
	if err != nil {
		return err
	}
	creds[credKey{service, account}] = value
	return nil
}

func (s *MemoryStore) Find(scope Scope, service, account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpErr != nil {
		return "", s.OpErr
	}
	creds, err := s.scoped(scope)
	if err != nil {
		return "", err
	}
	value, ok := creds[credKey{service, account}]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	return value, nil
}

func (s *MemoryStore) Delete(scope Scope, service, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpErr != nil {
		return s.OpErr
	}
	creds, err := s.scoped(scope)
	if err != nil {
		return err
	}
	key := credKey{service, account}
	if _, ok := creds[key]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	delete(creds, key)
	return nil
}

// scoped resolves a scope to its credentials map, enforcing that a
// protected keychain exists and is unlocked. Callers hold s.mu.
func (s *MemoryStore) scoped(scope Scope) (map[credKey]string, error) {
	if scope.Keychain == "" {
		return s.defaults, nil
	}
	c, ok := s.chains[scope.Keychain]
	if !ok {
		return nil, fmt.Errorf("keychain %q does not exist", scope.Keychain)
	}
	if !c.unlocked {
		return nil, fmt.Errorf("keychain %q is locked", scope.Keychain)
	}
	return c.creds, nil
}

// Locked reports the lock state of the keychain at path for assertions.
// A keychain that does not exist is not locked.
func (s *MemoryStore) Locked(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chains[path]
	return ok && !c.unlocked
}

// AutoLock returns the recorded auto-lock settings for path.
func (s *MemoryStore) AutoLock(path string) (idle time.Duration, lockOnSleep bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chains[path]
	if !ok {
		return 0, false
	}
	return c.idle, c.lockOnSleep
}

// DefaultValue returns a credential from the simulated default store.
func (s *MemoryStore) DefaultValue(service, account string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.defaults[credKey{service, account}]
	return value, ok
}

// ProtectedValue returns a credential from a simulated protected keychain
// regardless of its lock state.
func (s *MemoryStore) ProtectedValue(path, service, account string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chains[path]
	if !ok {
		return "", false
	}
	value, ok := c.creds[credKey{service, account}]
	return value, ok
}
