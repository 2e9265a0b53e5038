package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGate_AcquireUpToCapacity(t *testing.T) {
	t.Parallel()

	g := newGate(2, 1)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
}

func TestGate_SaturationFailsFast(t *testing.T) {
	t.Parallel()

	g := newGate(1, 1)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// Occupy the single queue position.
	queued := make(chan error, 1)
	go func() {
		queued <- g.Acquire(ctx)
	}()
	time.Sleep(20 * time.Millisecond)

	// Holder and waiter in place; the next arrival must not block.
	start := time.Now()
	err := g.Acquire(ctx)
	if !errors.Is(err, ErrGateSaturated) {
		t.Fatalf("Acquire on saturated gate = %v, want ErrGateSaturated", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("saturated Acquire took %v, want immediate rejection", elapsed)
	}

	g.Release()
	if err := <-queued; err != nil {
		t.Fatalf("queued Acquire after Release: %v", err)
	}
}

func TestGate_WaiterGetsSlotAfterRelease(t *testing.T) {
	t.Parallel()

	g := newGate(1, 4)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	acquired := make(chan error, 1)
	go func() {
		acquired <- g.Acquire(ctx)
	}()

	select {
	case err := <-acquired:
		t.Fatalf("waiter acquired while gate was full: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	g.Release()

	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("waiter Acquire: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired after Release")
	}
}

func TestGate_ContextCancelWhileQueued(t *testing.T) {
	t.Parallel()

	g := newGate(1, 1)

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	acquired := make(chan error, 1)
	go func() {
		acquired <- g.Acquire(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-acquired:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled Acquire = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled waiter never returned")
	}

	// The abandoned queue position must be reusable.
	queued := make(chan error, 1)
	go func() {
		queued <- g.Acquire(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)
	g.Release()
	if err := <-queued; err != nil {
		t.Fatalf("Acquire after cancelled waiter freed its position: %v", err)
	}
}
