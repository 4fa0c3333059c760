package toposort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/depflow/internal/keymap"
)

// mustReady drains the ready queue, failing the test on protocol errors.
func mustReady(t *testing.T, s *Sorter[string]) []string {
	t.Helper()
	batch, err := s.GetReady()
	require.NoError(t, err)
	return batch
}

func TestPipeline(t *testing.T) {
	// {A: [], B: [A], C: [B]}
	s := New[string]()
	require.NoError(t, s.Add("a"))
	require.NoError(t, s.Add("b", "a"))
	require.NoError(t, s.Add("c", "b"))

	require.NoError(t, s.Prepare())

	assert.Equal(t, []string{"a"}, mustReady(t, s))
	require.NoError(t, s.Done("a"))
	assert.Equal(t, []string{"b"}, mustReady(t, s))
	require.NoError(t, s.Done("b"))
	assert.Equal(t, []string{"c"}, mustReady(t, s))
	require.NoError(t, s.Done("c"))

	active, err := s.IsActive()
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, PhaseClosed, s.Phase())
}

func TestImplicitPredecessorNodes(t *testing.T) {
	// Nodes named only as predecessors are created implicitly.
	s := New[string]()
	require.NoError(t, s.Add("b", "a"))
	require.NoError(t, s.Prepare())

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a"}, mustReady(t, s))
}

func TestEmptySorter(t *testing.T) {
	s := New[string]()
	require.NoError(t, s.Prepare())

	assert.Empty(t, mustReady(t, s))
	active, err := s.IsActive()
	require.NoError(t, err)
	assert.False(t, active)
	assert.Equal(t, PhaseClosed, s.Phase())
}

func TestPhaseTransitions(t *testing.T) {
	s := New[string]()
	require.NoError(t, s.Add("a"))
	assert.Equal(t, PhaseEditable, s.Phase())

	require.NoError(t, s.Prepare())
	assert.Equal(t, PhaseActive, s.Phase())

	_ = mustReady(t, s)
	require.NoError(t, s.Done("a"))
	assert.Equal(t, PhaseClosed, s.Phase())
}

func TestProtocolViolations(t *testing.T) {
	t.Run("get ready before prepare", func(t *testing.T) {
		s := New[string]()
		_, err := s.GetReady()
		assert.ErrorIs(t, err, ErrNotPrepared)
	})

	t.Run("done before prepare", func(t *testing.T) {
		s := New[string]()
		require.NoError(t, s.Add("a"))
		assert.ErrorIs(t, s.Done("a"), ErrNotPrepared)
	})

	t.Run("is active before prepare", func(t *testing.T) {
		s := New[string]()
		_, err := s.IsActive()
		assert.ErrorIs(t, err, ErrNotPrepared)
	})

	t.Run("add after prepare", func(t *testing.T) {
		s := New[string]()
		require.NoError(t, s.Add("a"))
		require.NoError(t, s.Prepare())
		assert.ErrorIs(t, s.Add("b"), ErrMutateAfterPrepare)
	})

	t.Run("prepare twice", func(t *testing.T) {
		s := New[string]()
		require.NoError(t, s.Prepare())
		assert.ErrorIs(t, s.Prepare(), ErrAlreadyPrepared)
	})
}

func TestDoneValidation(t *testing.T) {
	newPrepared := func(t *testing.T) *Sorter[string] {
		s := New[string]()
		require.NoError(t, s.Add("a"))
		require.NoError(t, s.Add("b", "a"))
		require.NoError(t, s.Prepare())
		return s
	}

	t.Run("unknown key", func(t *testing.T) {
		s := newPrepared(t)
		assert.ErrorIs(t, s.Done("nope"), keymap.ErrUnknownKey)
	})

	t.Run("node not surfaced yet", func(t *testing.T) {
		s := newPrepared(t)
		err := s.Done("a")
		assert.ErrorIs(t, err, ErrNotProcessing)
		assert.ErrorContains(t, err, "pending")
	})

	t.Run("done twice", func(t *testing.T) {
		s := newPrepared(t)
		_ = mustReady(t, s)
		require.NoError(t, s.Done("a"))
		err := s.Done("a")
		assert.ErrorIs(t, err, ErrNotProcessing)
		assert.ErrorContains(t, err, "done")
	})

	t.Run("duplicate within batch", func(t *testing.T) {
		s := newPrepared(t)
		_ = mustReady(t, s)
		assert.ErrorIs(t, s.Done("a", "a"), ErrNotProcessing)
	})

	t.Run("failing batch leaves state unchanged", func(t *testing.T) {
		s := newPrepared(t)
		_ = mustReady(t, s)
		require.Error(t, s.Done("a", "nope"))

		// "a" must still be processing: completing it alone works and
		// unlocks its successor.
		require.NoError(t, s.Done("a"))
		assert.Equal(t, []string{"b"}, mustReady(t, s))
	})
}

func TestDuplicateEdgesDeduplicated(t *testing.T) {
	s := New[string]()
	require.NoError(t, s.Add("b", "a", "a"))
	require.NoError(t, s.Add("b", "a"))
	require.NoError(t, s.Prepare())

	assert.Equal(t, []string{"a"}, mustReady(t, s))
	require.NoError(t, s.Done("a"))
	// A duplicated edge would leave b waiting on a phantom predecessor.
	assert.Equal(t, []string{"b"}, mustReady(t, s))
}

func TestReadyOrderFollowsInsertion(t *testing.T) {
	// Tie-breaks use ascending id, which is first-seen order, not any
	// property of the keys themselves.
	s := New[string]()
	require.NoError(t, s.Add("zeta"))
	require.NoError(t, s.Add("alpha"))
	require.NoError(t, s.Add("mid"))
	require.NoError(t, s.Prepare())

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, mustReady(t, s))
}

func TestBatchDoneTieBreak(t *testing.T) {
	// Diamond: b and c depend on a; d depends on both.
	s := New[string]()
	require.NoError(t, s.Add("a"))
	require.NoError(t, s.Add("b", "a"))
	require.NoError(t, s.Add("c", "a"))
	require.NoError(t, s.Add("d", "b", "c"))
	require.NoError(t, s.Prepare())

	assert.Equal(t, []string{"a"}, mustReady(t, s))
	require.NoError(t, s.Done("a"))
	assert.Equal(t, []string{"b", "c"}, mustReady(t, s))

	// Completing both predecessors in one batch surfaces d exactly once,
	// regardless of the order inside the batch.
	require.NoError(t, s.Done("c", "b"))
	assert.Equal(t, []string{"d"}, mustReady(t, s))
	assert.Empty(t, mustReady(t, s))
}

func TestDeterministicReplay(t *testing.T) {
	build := func() *Sorter[string] {
		s := New[string]()
		require.NoError(t, s.Add("fetch"))
		require.NoError(t, s.Add("parse", "fetch"))
		require.NoError(t, s.Add("lint", "fetch"))
		require.NoError(t, s.Add("compile", "parse"))
		require.NoError(t, s.Add("test", "compile", "lint"))
		require.NoError(t, s.Prepare())
		return s
	}

	drive := func(s *Sorter[string]) [][]string {
		var batches [][]string
		for {
			batch := mustReady(t, s)
			if len(batch) == 0 {
				break
			}
			batches = append(batches, batch)
			require.NoError(t, s.Done(batch...))
		}
		return batches
	}

	first := drive(build())
	second := drive(build())
	assert.Equal(t, first, second)
}

func TestConservation(t *testing.T) {
	s := New[string]()
	require.NoError(t, s.Add("a"))
	require.NoError(t, s.Add("b", "a"))
	require.NoError(t, s.Add("c", "a"))
	require.NoError(t, s.Add("d", "b", "c"))
	require.NoError(t, s.Add("e", "d"))
	require.NoError(t, s.Prepare())

	surfaced := map[string]int{}
	total := 0
	for {
		batch := mustReady(t, s)
		if len(batch) == 0 {
			break
		}
		for _, k := range batch {
			surfaced[k]++
			total++
		}
		require.NoError(t, s.Done(batch...))
	}

	assert.Equal(t, 5, total)
	for k, n := range surfaced {
		assert.Equal(t, 1, n, "node %s surfaced more than once", k)
	}
	active, err := s.IsActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestIntKeys(t *testing.T) {
	// The engine is generic over any comparable key type.
	s := New[int]()
	require.NoError(t, s.Add(10))
	require.NoError(t, s.Add(20, 10))
	require.NoError(t, s.Prepare())

	batch, err := s.GetReady()
	require.NoError(t, err)
	assert.Equal(t, []int{10}, batch)
}
