package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutorRunsJobs(t *testing.T) {
	e := NewExecutor(context.Background(), 2)
	defer e.Close()

	var ran int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		if err := e.Submit("count", func(context.Context) {
			if atomic.AddInt32(&ran, 1) == 5 {
				close(done)
			}
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("only %d of 5 jobs ran", atomic.LoadInt32(&ran))
	}
}

func TestExecutorCloseDrainsQueue(t *testing.T) {
	e := NewExecutor(context.Background(), 1)

	var ran int32
	for i := 0; i < 8; i++ {
		if err := e.Submit("count", func(context.Context) {
			atomic.AddInt32(&ran, 1)
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	e.Close()

	if got := atomic.LoadInt32(&ran); got != 8 {
		t.Errorf("Close() returned with %d of 8 jobs done", got)
	}
}

func TestExecutorSubmitAfterClose(t *testing.T) {
	e := NewExecutor(context.Background(), 1)
	e.Close()
	if err := e.Submit("late", func(context.Context) {}); err == nil {
		t.Error("Submit() after Close() should fail")
	}
}

func TestExecutorContainsPanics(t *testing.T) {
	e := NewExecutor(context.Background(), 1)
	defer e.Close()

	if err := e.Submit("boom", func(context.Context) {
		panic("job bug")
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// The pool must survive the panic and run the next job.
	done := make(chan struct{})
	if err := e.Submit("after", func(context.Context) {
		close(done)
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from a panicking job")
	}
}

func TestExecutorCloseIdempotent(t *testing.T) {
	e := NewExecutor(context.Background(), 1)
	e.Close()
	e.Close()
}
