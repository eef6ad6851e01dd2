package scheduler

import (
	"context"
	"errors"
	"testing"
)

func TestNewInvalidTimezone(t *testing.T) {
	if _, err := New("Mars/Olympus"); err == nil {
		t.Error("expected an error for an unknown timezone")
	}
}

func TestRunNowExecutesJob(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ran := false
	err = s.RunNow("sync", func(ctx context.Context) error {
		if ctx.Err() != nil {
			t.Error("job context already done")
		}
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if !ran {
		t.Error("job did not run")
	}
}

func TestRunNowPropagatesJobError(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := errors.New("sync failed")
	if got := s.RunNow("sync", func(ctx context.Context) error { return want }); !errors.Is(got, want) {
		t.Errorf("RunNow error = %v, want %v", got, want)
	}
}

func TestAddDigestJobInvalidTime(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	noop := func(ctx context.Context) error { return nil }
	if err := s.AddDigestJob("digest", "25:99", noop); err == nil {
		t.Error("expected an error for an invalid send time")
	}
	if err := s.AddDigestJob("digest", "07:30", noop); err != nil {
		t.Errorf("valid send time rejected: %v", err)
	}
}

func TestAddSyncJob(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.AddSyncJob(6, func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("AddSyncJob: %v", err)
	}
}
