package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pairchat/internal/pkg/logx"
)

func init() {
	logx.InitGlobalLogger(false)
}

type fakeSink struct {
	id string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func newFakeSink(id string) *fakeSink {
	return &fakeSink{id: id}
}

func (f *fakeSink) ID() string {
	return f.id
}

func (f *fakeSink) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, payload)
	return nil
}

func (f *fakeSink) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func TestRegistry_Register_One_User_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newFakeSink("s1")

	// Given no session is registered
	req.Empty(registry.SessionsFor(1))

	// When a session registers for a user
	registry.Register(sink, 1)

	// Then the user's group contains exactly that session
	sessions := registry.SessionsFor(1)
	req.Len(sessions, 1)
	req.Contains(sessions, Sink(sink))
}

func TestRegistry_Register_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newFakeSink("s1")

	// When the same session registers for the same user repeatedly
	registry.Register(sink, 1)
	registry.Register(sink, 1)
	registry.Register(sink, 1)

	// Then the group still contains it exactly once
	req.Len(registry.SessionsFor(1), 1)
}

func TestRegistry_Register_Last_Registration_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newFakeSink("s1")

	// Given a session registered for user 1
	registry.Register(sink, 1)

	// When it re-registers for user 2
	registry.Register(sink, 2)

	// Then it moved: user 1's group is empty, user 2's group holds it
	req.Empty(registry.SessionsFor(1))
	req.Len(registry.SessionsFor(2), 1)
}

func TestRegistry_Multiple_Sessions_Per_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	tab1 := newFakeSink("tab1")
	tab2 := newFakeSink("tab2")

	// When two connections register for the same user (multi-tab)
	registry.Register(tab1, 7)
	registry.Register(tab2, 7)

	// Then both are live sessions for that user
	sessions := registry.SessionsFor(7)
	req.Len(sessions, 2)
	req.Contains(sessions, Sink(tab1))
	req.Contains(sessions, Sink(tab2))
}

func TestRegistry_UnregisterAll_Removes_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newFakeSink("s1")
	other := newFakeSink("s2")

	registry.Register(sink, 1)
	registry.Register(other, 1)

	// When one session disconnects
	registry.UnregisterAll(sink)

	// Then only the other remains
	sessions := registry.SessionsFor(1)
	req.Len(sessions, 1)
	req.Contains(sessions, Sink(other))
}

func TestRegistry_UnregisterAll_Never_Registered_Is_Safe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When an unknown session unregisters, nothing happens
	req.NotPanics(func() {
		registry.UnregisterAll(newFakeSink("ghost"))
	})
}

func TestRegistry_SessionsFor_Returns_Snapshot(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newFakeSink("s1")
	registry.Register(sink, 1)

	// Given a snapshot of user 1's sessions
	snapshot := registry.SessionsFor(1)
	req.Len(snapshot, 1)

	// When the session unregisters afterwards
	registry.UnregisterAll(sink)

	// Then the snapshot is unaffected
	req.Len(snapshot, 1)
	req.Empty(registry.SessionsFor(1))
}

func TestRegistry_Unknown_User_Has_Empty_Group(t *testing.T) {
	require.Empty(t, NewRegistry().SessionsFor(42))
}

func TestRegistry_Shutdown_Closes_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := newFakeSink("s1")
	registry.Register(sink, 1)

	registry.Shutdown()

	req.True(sink.closed)
	req.Empty(registry.SessionsFor(1))
}

func TestRegistry_Concurrent_Churn(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const workers = 16
	const rounds = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			sink := newFakeSink(fmt.Sprintf("sink-%d", w))
			userID := int64(w%4 + 1)

			for i := 0; i < rounds; i++ {
				registry.Register(sink, userID)
				registry.SessionsFor(userID)
				registry.UnregisterAll(sink)
			}
		}(w)
	}
	wg.Wait()

	// All sessions finished unregistered; every group must be empty
	for userID := int64(1); userID <= 4; userID++ {
		req.Empty(registry.SessionsFor(userID))
	}
}
