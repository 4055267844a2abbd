package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestRefreshJobRunsTargetWithDeadline(t *testing.T) {
	var sawDeadline bool
	calls := 0
	job := NewRefreshJob("dashboard", RefreshFunc(func(ctx context.Context) bool {
		calls++
		_, sawDeadline = ctx.Deadline()
		return true
	}), time.Second, nil)

	job.Run()
	job.Run()

	if calls != 2 {
		t.Fatalf("expected two refreshes, got %d", calls)
	}
	if !sawDeadline {
		t.Errorf("expected refresh context to carry a deadline")
	}
}

func TestSchedulerAdd(t *testing.T) {
	s := New(nil)
	job := NewRefreshJob("dashboard", RefreshFunc(func(context.Context) bool { return false }), 0, nil)

	if err := s.Add("", job); err != nil {
		t.Fatalf("empty spec: %v", err)
	}
	if s.Jobs() != 0 {
		t.Errorf("empty spec must not register a job")
	}
	if err := s.Add("not a spec", job); err == nil {
		t.Errorf("expected invalid spec error")
	}
	if err := s.Add("@every 30s", job); err != nil {
		t.Fatalf("descriptor spec: %v", err)
	}
	if err := s.Add("*/10 * * * * *", job); err != nil {
		t.Fatalf("seconds spec: %v", err)
	}
	if s.Jobs() != 2 {
		t.Errorf("expected two jobs, got %d", s.Jobs())
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
