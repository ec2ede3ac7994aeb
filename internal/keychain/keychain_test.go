package keychain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dean0x/silo/internal/policy"
	"github.com/dean0x/silo/internal/prompt"
	"github.com/dean0x/silo/internal/store"
)

// fakePrompter scripts dialog responses and counts how often a prompt was
// actually shown.
type fakePrompter struct {
	password string
	err      error
	calls    int
}

func (p *fakePrompter) RequestPassword(reason string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.password, nil
}

const (
	testService = "app"
	testDir     = "/keychains"
)

func testKeychain(t *testing.T) (*Keychain, *store.MemoryStore, *fakePrompter) {
	t.Helper()
	st := store.NewMemoryStore()
	st.CreatePassword = "correct horse"
	pr := &fakePrompter{password: "correct horse"}
	k := New(st, pr, Options{
		Policy:      policy.Default(),
		Dir:         testDir,
		AutoLock:    10 * time.Second,
		LockOnSleep: true,
	})
	return k, st, pr
}

func protectedPath() string {
	return store.Path(testDir, testService)
}

func TestUnprotectedRoundTripZeroPrompts(t *testing.T) {
	k, st, pr := testKeychain(t)

	if err := k.Store(testService, "db-staging", "x"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	val, err := k.Get(testService, "db-staging")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "x" {
		t.Errorf("expected %q, got %q", "x", val)
	}

	if pr.calls != 0 {
		t.Errorf("unprotected path prompted %d times, want 0", pr.calls)
	}
	if st.Unlocks != 0 {
		t.Errorf("unprotected path unlocked %d times, want 0", st.Unlocks)
	}
	if st.Exists(protectedPath()) {
		t.Error("unprotected write must not create a protected keychain")
	}
}

func TestProtectedFirstWriteCreatesAndActivates(t *testing.T) {
	k, st, pr := testKeychain(t)

	if err := k.Store(testService, "db-production", "y"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// One creation, no unlock: the fresh keychain is written while still
	// unlocked from creation.
	if st.Creates != 1 {
		t.Errorf("expected 1 keychain creation, got %d", st.Creates)
	}
	if pr.calls != 0 {
		t.Errorf("creation flow showed %d unlock prompts, want 0", pr.calls)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must be locked after activation")
	}
	idle, onSleep := st.AutoLock(protectedPath())
	if idle != 10*time.Second || !onSleep {
		t.Errorf("auto-lock not armed: (%v, %v)", idle, onSleep)
	}
	if v, ok := st.ProtectedValue(protectedPath(), testService, "db-production"); !ok || v != "y" {
		t.Errorf("credential not in protected keychain: (%q, %v)", v, ok)
	}
}

func TestProtectedRoundTrip(t *testing.T) {
	k, st, pr := testKeychain(t)

	if err := k.Store(testService, "db-production", "y"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	val, err := k.Get(testService, "db-production")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "y" {
		t.Errorf("expected %q, got %q", "y", val)
	}
	if pr.calls != 1 {
		t.Errorf("expected exactly 1 unlock prompt for the read, got %d", pr.calls)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must be locked again after the read")
	}
}

func TestProtectedWriteToExistingStoreUnlocks(t *testing.T) {
	k, st, pr := testKeychain(t)

	k.Store(testService, "db-production", "first")
	pr.calls = 0

	if err := k.Store(testService, "api-production", "second"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if pr.calls != 1 {
		t.Errorf("expected 1 unlock prompt, got %d", pr.calls)
	}
	if st.Creates != 1 {
		t.Errorf("expected no second creation, got %d", st.Creates)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must be locked after the write")
	}
}

func TestCreateStoreIdempotent(t *testing.T) {
	k, st, _ := testKeychain(t)

	if err := k.CreateStore(testService); err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	// Put a credential in, then create again: nothing may be destroyed.
	st.Add(store.Protected(protectedPath()), testService, "db-production", "keep")
	if err := k.CreateStore(testService); err != nil {
		t.Fatalf("second CreateStore: %v", err)
	}
	if st.Creates != 1 {
		t.Errorf("expected 1 creation, got %d", st.Creates)
	}
	if v, ok := st.ProtectedValue(protectedPath(), testService, "db-production"); !ok || v != "keep" {
		t.Error("second CreateStore destroyed an existing credential")
	}
}

func TestCreateStoreFailure(t *testing.T) {
	k, st, _ := testKeychain(t)
	st.CreateErr = errors.New("user dismissed creation dialog")

	err := k.CreateStore(testService)
	if !errors.Is(err, ErrStoreCreation) {
		t.Errorf("expected ErrStoreCreation, got %v", err)
	}
}

func TestLockedAfterSuccess(t *testing.T) {
	k, st, _ := testKeychain(t)
	k.Store(testService, "db-production", "y")

	for _, op := range []func() error{
		func() error { _, err := k.Get(testService, "db-production"); return err },
		func() error { return k.Store(testService, "db-production", "y2") },
		func() error { return k.Remove(testService, "db-production") },
	} {
		if err := op(); err != nil {
			t.Fatalf("operation: %v", err)
		}
		if !st.Locked(protectedPath()) {
			t.Fatal("keychain must be locked after a successful operation")
		}
	}
}

func TestLockedAfterNotFound(t *testing.T) {
	k, st, _ := testKeychain(t)
	k.Store(testService, "db-production", "y")

	_, err := k.Get(testService, "other-production")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must be locked after a not-found outcome")
	}

	err = k.Remove(testService, "other-production")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must be locked after a failed remove")
	}
}

func TestLockedAfterOperationFailure(t *testing.T) {
	k, st, _ := testKeychain(t)
	k.Store(testService, "db-production", "y")

	st.OpErr = errors.New("keychain I/O error")
	_, err := k.Get(testService, "db-production")
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	st.OpErr = nil
	if !st.Locked(protectedPath()) {
		t.Error("keychain must be locked after an operation failure")
	}
}

func TestCancelledPromptChangesNothing(t *testing.T) {
	k, st, pr := testKeychain(t)
	k.Store(testService, "db-production", "y")

	pr.err = prompt.ErrCancelled

	if err := k.Store(testService, "db-production", "changed"); !errors.Is(err, ErrCancelled) {
		t.Errorf("Store: expected ErrCancelled, got %v", err)
	}
	if _, err := k.Get(testService, "db-production"); !errors.Is(err, ErrCancelled) {
		t.Errorf("Get: expected ErrCancelled, got %v", err)
	}
	if err := k.Remove(testService, "db-production"); !errors.Is(err, ErrCancelled) {
		t.Errorf("Remove: expected ErrCancelled, got %v", err)
	}

	if v, ok := st.ProtectedValue(protectedPath(), testService, "db-production"); !ok || v != "y" {
		t.Errorf("cancelled operations must not touch credentials: (%q, %v)", v, ok)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must stay locked after cancellation")
	}
}

func TestEmptyPasswordIsCancellation(t *testing.T) {
	k, st, pr := testKeychain(t)
	k.Store(testService, "db-production", "y")

	pr.password = ""
	_, err := k.Get(testService, "db-production")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled for empty password, got %v", err)
	}
	if st.Unlocks != 0 {
		t.Errorf("empty password must never reach the store, got %d unlocks", st.Unlocks)
	}
}

func TestWrongPasswordIsUnlockFailure(t *testing.T) {
	k, st, pr := testKeychain(t)
	k.Store(testService, "db-production", "y")

	pr.password = "wrong"
	_, err := k.Get(testService, "db-production")
	if !errors.Is(err, ErrUnlockFailed) {
		t.Errorf("expected ErrUnlockFailed, got %v", err)
	}
	if !st.Locked(protectedPath()) {
		t.Error("keychain must stay locked after a failed unlock")
	}
}

func TestNotFoundCarriesAccount(t *testing.T) {
	k, _, _ := testKeychain(t)

	_, err := k.Get(testService, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrOperationFailed) {
		t.Errorf("not-found must not read as a generic operation failure: %v", err)
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error %q does not carry the account name", err)
	}
}

func TestProtectedNotFoundWithoutStoreSkipsPrompt(t *testing.T) {
	k, _, pr := testKeychain(t)

	// No keychain exists for the service: the mismatch surfaces as
	// not-found without ever prompting.
	_, err := k.Get(testService, "db-production")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := k.Remove(testService, "db-production"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if pr.calls != 0 {
		t.Errorf("expected 0 prompts, got %d", pr.calls)
	}
}

func TestPolicyMismatchSurfacesAsNotFound(t *testing.T) {
	k, st, _ := testKeychain(t)

	// Written as protected under the default policy.
	if err := k.Store(testService, "db-production", "y"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// Re-evaluated under an override that no longer protects it: the read
	// goes to the default store only and misses.
	relaxed := New(st, &fakePrompter{password: "correct horse"}, Options{
		Policy: policy.New([]string{"never-matches"}),
		Dir:    testDir,
	})
	_, err := relaxed.Get(testService, "db-production")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on policy mismatch, got %v", err)
	}
}

func TestGetTrimsTrailingWhitespace(t *testing.T) {
	k, _, _ := testKeychain(t)

	if err := k.Store(testService, "token", "value\n"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	val, err := k.Get(testService, "token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "value" {
		t.Errorf("expected trailing newline trimmed, got %q", val)
	}
}

func TestStatusOf(t *testing.T) {
	k, _, pr := testKeychain(t)

	status := k.StatusOf(testService)
	if status.Configured {
		t.Error("expected unconfigured before creation")
	}
	if status.Path != protectedPath() {
		t.Errorf("expected path %q, got %q", protectedPath(), status.Path)
	}

	k.CreateStore(testService)
	if !k.StatusOf(testService).Configured {
		t.Error("expected configured after creation")
	}
	if pr.calls != 0 {
		t.Errorf("status must not prompt, got %d prompts", pr.calls)
	}
}

func TestAutoLockRearmedOnEveryUnlock(t *testing.T) {
	k, st, _ := testKeychain(t)
	k.Store(testService, "db-production", "y")

	// Simulate an external actor clearing the settings while unlocked.
	st.Unlock(protectedPath(), "correct horse")
	st.SetAutoLock(protectedPath(), 0, false)
	st.Lock(protectedPath())

	if _, err := k.Get(testService, "db-production"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	idle, onSleep := st.AutoLock(protectedPath())
	if idle != 10*time.Second || !onSleep {
		t.Errorf("auto-lock not re-armed inside the unlocked window: (%v, %v)", idle, onSleep)
	}
}

func TestLockFailureIsSwallowed(t *testing.T) {
	k, st, _ := testKeychain(t)
	k.Store(testService, "db-production", "y")

	// The keychain may already have locked itself via the idle timer; a
	// failing explicit lock must not disturb the operation's outcome.
	st.LockErr = errors.New("keychain already locked")
	val, err := k.Get(testService, "db-production")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "y" {
		t.Errorf("expected %q, got %q", "y", val)
	}
	// Locks attempted: one from activation, one from the read.
	if st.Locks < 2 {
		t.Errorf("expected lock attempted after every protected access, got %d", st.Locks)
	}
}
