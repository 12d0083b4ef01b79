package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunNowRecordsLastRun(t *testing.T) {
	svc := New(quietLogger())

	details, err := svc.RunNow(context.Background(), "export", func(context.Context) (any, error) {
		return 3, nil
	})
	if err != nil || details != 3 {
		t.Fatalf("unexpected result %v %v", details, err)
	}
	run, ok := svc.Last("export")
	if !ok || run.Err != "" || run.Details != 3 {
		t.Fatalf("unexpected last run %+v", run)
	}

	boom := errors.New("boom")
	if _, err := svc.RunNow(context.Background(), "export", func(context.Context) (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if run, _ := svc.Last("export"); run.Err != "boom" {
		t.Fatalf("expected failure recorded, got %+v", run)
	}
}

func TestWorkerRunsQueuedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := New(quietLogger())
	svc.Start(ctx)

	done := make(chan struct{})
	if !svc.Enqueue("ping", func(context.Context) (any, error) {
		close(done)
		return nil, nil
	}) {
		t.Fatal("enqueue refused")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
}

func TestEveryEnqueuesOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := New(quietLogger())
	svc.Start(ctx)

	ticks := make(chan struct{}, 4)
	svc.Every(ctx, "tick", 10*time.Millisecond, func(context.Context) (any, error) {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil, nil
	})
	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduled job did not run")
		}
	}
}
