package shutdownqueue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newQuiet() *Queue {
	return New().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAddNilTaskIgnored(t *testing.T) {
	t.Parallel()

	q := newQuiet()
	q.Add("nil", nil)

	if q.Len() != 0 {
		t.Fatalf("expected nil task to be ignored, len=%d", q.Len())
	}

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("expected nil after adding nil task; got %v", err)
	}
}

func TestLIFOOrder(t *testing.T) {
	t.Parallel()

	q := newQuiet()

	var (
		orderMu sync.Mutex
		order   []string
	)

	makeTask := func(name string) Task {
		return func(ctx context.Context) error {
			orderMu.Lock()
			order = append(order, name)
			orderMu.Unlock()

			return nil
		}
	}

	q.Add("postgres", makeTask("postgres"))
	q.Add("redis", makeTask("redis"))
	q.Add("http", makeTask("http"))

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	want := []string{"http", "redis", "postgres"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order mismatch: got %v, want %v", order, want)
	}
}

func TestPanicRecoveryIncludedAndContinues(t *testing.T) {
	t.Parallel()

	q := newQuiet()

	var ranAfterPanic atomic.Bool

	q.Add("after", func(ctx context.Context) error {
		ranAfterPanic.Store(true)

		return nil
	})
	q.Add("boom", func(ctx context.Context) error { panic("boom") })

	shErr := q.Shutdown(t.Context())
	if shErr == nil {
		t.Fatalf("expected aggregated error with panic; got nil")
	}

	if !strings.Contains(shErr.Error(), `panic in shutdown task "boom": boom`) {
		t.Fatalf("expected panic message in error; got: %q", shErr.Error())
	}

	if !ranAfterPanic.Load() {
		t.Fatalf("expected tasks after the panic to still run")
	}
}

func TestEarlyCancelStopsDrain(t *testing.T) {
	t.Parallel()

	q := newQuiet()

	var ranB atomic.Bool

	gateReady := make(chan struct{})

	q.Add("b", func(ctx context.Context) error {
		ranB.Store(true)

		return nil
	})
	q.Add("gate", func(ctx context.Context) error {
		close(gateReady)
		<-ctx.Done()

		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- q.Shutdown(ctx)
	}()

	<-gateReady
	cancel()

	shErr := <-errCh
	if !errors.Is(shErr, context.Canceled) {
		t.Fatalf("expected errors.Is(err, context.Canceled); got: %v", shErr)
	}

	if !strings.Contains(shErr.Error(), `"b"`) {
		t.Fatalf("expected skipped task name in error; got: %v", shErr)
	}

	if ranB.Load() {
		t.Fatalf("expected task b not to run after cancel")
	}
}

func TestIdempotentAndRunsOnce(t *testing.T) {
	t.Parallel()

	q := newQuiet()

	var count atomic.Int32

	q.Add("count", func(ctx context.Context) error {
		count.Add(1)

		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := range 2 {
		err := q.Shutdown(ctx)
		if err != nil {
			t.Fatalf("Shutdown #%d error: %v", i+1, err)
		}
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected count=1; got %d", got)
	}
}

func TestAddAfterShutdownIgnored(t *testing.T) {
	t.Parallel()

	q := newQuiet()

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	var ran atomic.Bool

	q.Add("late", func(ctx context.Context) error {
		ran.Store(true)

		return nil
	})

	err = q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	if ran.Load() {
		t.Fatalf("task added after shutdown should not run")
	}
}

func TestTaskErrorsAreJoinedAndNamed(t *testing.T) {
	t.Parallel()

	q := newQuiet()

	err1 := errors.New("alpha")
	err2 := errors.New("beta")

	q.Add("postgres", func(ctx context.Context) error { return err1 })
	q.Add("redis", func(ctx context.Context) error { return err2 })

	shErr := q.Shutdown(t.Context())
	if !errors.Is(shErr, err1) || !errors.Is(shErr, err2) {
		t.Fatalf("expected joined error to contain both; got: %v", shErr)
	}

	s := shErr.Error()
	if !strings.Contains(s, "postgres: alpha") || !strings.Contains(s, "redis: beta") {
		t.Fatalf("expected task names in error string; got: %q", s)
	}
}
