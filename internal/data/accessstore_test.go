package data

import (
	"context"
	"reflect"
	"testing"
	"time"

	"telegram-filter-bot/internal/biz/domain"
)

func TestAccessStoreAdminsPersist(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewAccessStore(dir)
	if err != nil {
		t.Fatalf("NewAccessStore: %v", err)
	}
	for _, id := range []int64{30, 10, 20} {
		if err := s.AddAdmin(ctx, id); err != nil {
			t.Fatalf("AddAdmin(%d): %v", id, err)
		}
	}
	// Adding twice must not duplicate the entry.
	if err := s.AddAdmin(ctx, 10); err != nil {
		t.Fatalf("AddAdmin dup: %v", err)
	}

	reloaded, err := NewAccessStore(dir)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	admins, err := reloaded.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("ListAdmins: %v", err)
	}
	if !reflect.DeepEqual(admins, []int64{30, 10, 20}) {
		t.Errorf("Admin order lost across reload: %v", admins)
	}
	ok, _ := reloaded.IsAdmin(ctx, 20)
	if !ok {
		t.Error("Membership lost across reload")
	}
}

func TestAccessStoreRemoveAdmin(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, _ := NewAccessStore(dir)
	s.AddAdmin(ctx, 1)
	s.AddAdmin(ctx, 2)

	if err := s.RemoveAdmin(ctx, 1); err != nil {
		t.Fatalf("RemoveAdmin: %v", err)
	}
	if ok, _ := s.IsAdmin(ctx, 1); ok {
		t.Error("Removed admin still reported")
	}

	reloaded, _ := NewAccessStore(dir)
	if ok, _ := reloaded.IsAdmin(ctx, 1); ok {
		t.Error("Removal not persisted")
	}
	if ok, _ := reloaded.IsAdmin(ctx, 2); !ok {
		t.Error("Unrelated admin lost")
	}
}

func TestAccessStoreBlacklistPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, _ := NewAccessStore(dir)
	if err := s.AddToBlacklist(ctx, 666); err != nil {
		t.Fatalf("AddToBlacklist: %v", err)
	}

	reloaded, _ := NewAccessStore(dir)
	if banned, _ := reloaded.IsBlacklisted(ctx, 666); !banned {
		t.Error("Ban not persisted")
	}

	if err := reloaded.RemoveFromBlacklist(ctx, 666); err != nil {
		t.Fatalf("RemoveFromBlacklist: %v", err)
	}
	again, _ := NewAccessStore(dir)
	if banned, _ := again.IsBlacklisted(ctx, 666); banned {
		t.Error("Unban not persisted")
	}
}

func TestAccessStoreTimeoutsAreVolatile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, _ := NewAccessStore(dir)
	to := domain.Timeout{Until: time.Now().Add(time.Minute), Reason: "spam"}
	if err := s.SetTimeout(ctx, 5, to); err != nil {
		t.Fatalf("SetTimeout: %v", err)
	}

	got, err := s.GetTimeout(ctx, 5)
	if err != nil {
		t.Fatalf("GetTimeout: %v", err)
	}
	if got == nil || got.Reason != "spam" {
		t.Fatalf("Unexpected record: %+v", got)
	}

	if err := s.ClearTimeout(ctx, 5); err != nil {
		t.Fatalf("ClearTimeout: %v", err)
	}
	if got, _ := s.GetTimeout(ctx, 5); got != nil {
		t.Error("Cleared timeout still present")
	}

	// Timeouts never hit the disk and vanish on restart.
	s.SetTimeout(ctx, 6, to)
	reloaded, _ := NewAccessStore(dir)
	if got, _ := reloaded.GetTimeout(ctx, 6); got != nil {
		t.Error("Timeouts must not survive a reload")
	}
}

func TestAccessStoreEmptyDir(t *testing.T) {
	s, err := NewAccessStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAccessStore on empty dir: %v", err)
	}
	if admins, _ := s.ListAdmins(context.Background()); len(admins) != 0 {
		t.Errorf("Expected no admins, got %v", admins)
	}
}
