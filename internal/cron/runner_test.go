package cronrunner

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSweeper struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakeSweeper) SweepPending(_ context.Context, cutoff time.Time) (int, error) {
	f.calls++
	f.cutoff = cutoff
	return 2, f.err
}

func TestPendingSweepJobUsesMaxAge(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{}

	job := PendingSweepJob(sweeper, 48*time.Hour, nil, func() time.Time { return now })
	job(context.Background())

	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
	if want := now.Add(-48 * time.Hour); !sweeper.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, sweeper.cutoff)
	}

	sweeper.err = errors.New("db down")
	job(context.Background())
	if sweeper.calls != 2 {
		t.Fatalf("failed sweeps should still be attempted")
	}
}

func TestRunnerAcceptsStandardAndSecondsSpecs(t *testing.T) {
	r := New(nil, nil)
	for _, spec := range []string{"@daily", "0 3 * * *", "30 0 3 * * *"} {
		if _, err := r.Add(spec, func(context.Context) {}); err != nil {
			t.Fatalf("spec %q rejected: %v", spec, err)
		}
	}
	if _, err := r.Add("not a spec", func(context.Context) {}); err == nil {
		t.Fatalf("invalid spec should be rejected")
	}
	r.Start()
	r.Stop()
}
