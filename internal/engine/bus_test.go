package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/canvasflow/pkg/api"
)

func TestStatusBus_PreservesOrderPerSubscriber(t *testing.T) {
	bus := newStatusBus()

	var mu sync.Mutex
	var got []int
	exited := make(chan struct{})
	unsubscribe := bus.subscribe(func(snap api.ExecutionContext) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, snap.Progress.Completed)
	}, func() { close(exited) })

	for i := 0; i < 100; i++ {
		snap := api.NewExecutionContext()
		snap.Progress.Completed = i
		bus.publish(snap)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 100
	}, time.Second, 5*time.Millisecond)

	for i, v := range got {
		require.Equal(t, i, v)
	}

	unsubscribe()
	<-exited
	require.Zero(t, bus.len())
}

func TestStatusBus_BlockedSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := newStatusBus()

	block := make(chan struct{})
	unsubscribe := bus.subscribe(func(api.ExecutionContext) { <-block }, nil)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			bus.publish(api.NewExecutionContext())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
	close(block)
}

func TestPauseGate(t *testing.T) {
	var g pauseGate
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx), "open gate does not block")

	g.close()
	g.close()

	released := make(chan error, 1)
	go func() { released <- g.Wait(ctx) }()

	select {
	case <-released:
		t.Fatalf("closed gate must block")
	case <-time.After(20 * time.Millisecond):
	}

	g.open()
	require.NoError(t, <-released)

	g.close()
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, g.Wait(cctx), context.Canceled)
	g.open()
}
