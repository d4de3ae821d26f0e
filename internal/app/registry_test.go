package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/internal/core"
	"huddle/internal/domain"
)

type fakeConn struct {
	closed bool
}

func (f *fakeConn) TrySend(core.Frame) error { return nil }
func (f *fakeConn) Close()                   { f.closed = true }

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	s := r.Register("c1", "k1", "Alice", &fakeConn{})

	require.NotNil(t, s)
	assert.Equal(t, domain.ConnID("c1"), s.ID)
	assert.Equal(t, "k1", s.DeviceKey)
	assert.Equal(t, "Alice", s.Name)
	assert.True(t, s.Online)

	got, ok := r.Lookup("c1")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistry_OverwriteKeepsSingleEntry(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "k1", "Alice", &fakeConn{})
	r.Register("c2", "k2", "Bob", &fakeConn{})
	r.Register("c1", "k1", "Alice2", &fakeConn{})

	assert.Equal(t, 2, r.Len())

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	// Overwrite keeps the original slot in the ordering.
	assert.Equal(t, domain.ConnID("c1"), snap[0].ID)
	assert.Equal(t, "Alice2", snap[0].Name)
	assert.Equal(t, domain.ConnID("c2"), snap[1].ID)
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "k1", "Alice", &fakeConn{})

	assert.True(t, r.Remove("c1"))
	assert.False(t, r.Remove("c1"))
	assert.False(t, r.Remove("never-existed"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SnapshotAfterChurn(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 10; i++ {
		id := domain.ConnID(fmt.Sprintf("c%d", i))
		r.Register(id, "k", "user", &fakeConn{})
	}
	for i := 0; i < 10; i += 2 {
		r.Remove(domain.ConnID(fmt.Sprintf("c%d", i)))
	}

	snap := r.Snapshot()
	require.Len(t, snap, 5)
	seen := make(map[domain.ConnID]bool)
	for _, s := range snap {
		assert.False(t, seen[s.ID], "duplicate %s in snapshot", s.ID)
		seen[s.ID] = true
	}
	for i := 1; i < 10; i += 2 {
		assert.True(t, seen[domain.ConnID(fmt.Sprintf("c%d", i))])
	}
}

func TestRegistry_SnapshotInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("b", "k", "B", &fakeConn{})
	r.Register("a", "k", "A", &fakeConn{})
	r.Register("c", "k", "C", &fakeConn{})
	r.Remove("a")
	r.Register("a", "k", "A", &fakeConn{})

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, domain.ConnID("b"), snap[0].ID)
	assert.Equal(t, domain.ConnID("c"), snap[1].ID)
	assert.Equal(t, domain.ConnID("a"), snap[2].ID)
}
