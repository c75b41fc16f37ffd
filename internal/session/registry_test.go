package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrAssign(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "anonymous 1", r.ResolveOrAssign("a"))
	assert.Equal(t, "anonymous 2", r.ResolveOrAssign("b"))

	// A known connection keeps its binding.
	assert.Equal(t, "anonymous 1", r.ResolveOrAssign("a"))
	assert.Equal(t, 2, r.Len())
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name     string
		register bool
		wantName string
		wantOK   bool
	}{
		{"registered", true, "anonymous 1", true},
		{"never joined", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if tt.register {
				r.ResolveOrAssign("conn")
			}

			name, ok := r.Remove("conn")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)

			_, ok = r.Lookup("conn")
			assert.False(t, ok)
		})
	}
}

func TestCounterNeverRecycles(t *testing.T) {
	r := NewRegistry()

	r.ResolveOrAssign("a")
	r.ResolveOrAssign("b")
	_, ok := r.Remove("b")
	require.True(t, ok)

	assert.Equal(t, "anonymous 3", r.ResolveOrAssign("c"))
	// Reconnecting under a removed handle is a new session.
	assert.Equal(t, "anonymous 4", r.ResolveOrAssign("b"))
}

func TestConcurrentFirstContact(t *testing.T) {
	r := NewRegistry()
	const n = 200

	var wg sync.WaitGroup
	names := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i] = r.ResolveOrAssign(ConnID(fmt.Sprintf("conn-%d", i)))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, name := range names {
		_, dup := seen[name]
		require.False(t, dup, "name %q assigned twice", name)
		seen[name] = struct{}{}
	}
	for i := 1; i <= n; i++ {
		assert.Contains(t, seen, fmt.Sprintf("anonymous %d", i))
	}
}
