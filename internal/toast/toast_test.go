package toast

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushEvictsOldest(t *testing.T) {
	s := New(0)
	defer s.Close()

	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		ids = append(ids, s.Info(fmt.Sprintf("toast %d", i)))
	}

	list := s.List()
	require.Len(t, list, MaxToasts)
	require.Equal(t, "toast 1", list[0].Message)
	require.Equal(t, "toast 5", list[4].Message)
	for _, tt := range list {
		require.NotEqual(t, ids[0], tt.ID)
	}
}

func TestNeverExceedsMax(t *testing.T) {
	s := New(0)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Error("boom")
		}()
	}
	wg.Wait()
	require.Len(t, s.List(), MaxToasts)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := New(0)
	defer s.Close()

	var seen [][]Toast
	unsubscribe := s.Subscribe(func(list []Toast) { seen = append(seen, list) })

	id := s.Success("Saved")
	s.Dismiss(id)
	s.Dismiss("unknown")
	require.Len(t, seen, 2)
	require.Len(t, seen[0], 1)
	require.Empty(t, seen[1])

	unsubscribe()
	s.Info("after unsubscribe")
	require.Len(t, seen, 2)
}

func TestAutoDismiss(t *testing.T) {
	s := New(20 * time.Millisecond)
	defer s.Close()

	s.Info("short lived")
	require.Len(t, s.List(), 1)
	require.Eventually(t, func() bool { return len(s.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestCloseStopsEverything(t *testing.T) {
	s := New(time.Hour)
	calls := 0
	s.Subscribe(func([]Toast) { calls++ })
	s.Info("one")
	s.Close()

	require.Empty(t, s.List())
	require.Equal(t, "", s.Info("ignored"))
	require.Equal(t, 1, calls)
}
