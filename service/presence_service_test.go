package service

import (
	"context"
	"testing"

	"github.com/cydxin/chat-hub/cons"
)

func TestPresenceService_SetGet(t *testing.T) {
	ctx := context.Background()
	ps := NewPresenceService(&Service{RDB: newTestRedis(t)})

	got, err := ps.Get(ctx, 1)
	if err != nil || got != cons.PresenceUnavailable {
		t.Fatalf("expected unavailable, got %q %v", got, err)
	}

	if err := ps.Set(ctx, 1, cons.PresenceAvailable); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ps.Set(ctx, 2, cons.PresenceAway); err != nil {
		t.Fatalf("Set: %v", err)
	}
	all, err := ps.Batch(ctx, []uint64{1, 2, 3})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if all[1] != cons.PresenceAvailable || all[2] != cons.PresenceAway || all[3] != cons.PresenceUnavailable {
		t.Fatalf("unexpected batch: %v", all)
	}

	if err := ps.Set(ctx, 1, cons.PresenceUnavailable); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := ps.Get(ctx, 1); got != cons.PresenceUnavailable {
		t.Fatalf("expected unavailable after set, got %q", got)
	}
}

func TestPresenceService_NoRedis(t *testing.T) {
	ps := NewPresenceService(&Service{})
	if err := ps.Set(context.Background(), 1, cons.PresenceAvailable); err != ErrNoRedis {
		t.Fatalf("expected ErrNoRedis, got %v", err)
	}
}
