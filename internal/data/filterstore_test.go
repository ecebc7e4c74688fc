package data

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"telegram-filter-bot/internal/biz/domain"
)

func newTestFilterStore(t *testing.T) (*FilterStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filters.json")
	s, err := NewFilterStore(path)
	if err != nil {
		t.Fatalf("NewFilterStore: %v", err)
	}
	return s, path
}

func TestFilterStorePutGet(t *testing.T) {
	s, _ := newTestFilterStore(t)
	ctx := context.Background()

	f := &domain.Filter{
		Text:     "welcome!",
		Entities: []domain.Span{{Kind: domain.SpanBold, Offset: 0, Length: 7}},
	}
	if err := s.Put(ctx, "welcome", f); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "welcome")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Text != "welcome!" {
		t.Fatalf("Unexpected filter: %+v", got)
	}

	missing, err := s.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if missing != nil {
		t.Error("Absent name must return nil")
	}
}

func TestFilterStorePersistsAcrossReload(t *testing.T) {
	s, path := newTestFilterStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.Put(ctx, name, &domain.Filter{Text: name}); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}

	reloaded, err := NewFilterStore(path)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	names, err := reloaded.Names(ctx)
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	// Insertion order survives the round trip, not lexical order.
	if !reflect.DeepEqual(names, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("Order lost across reload: %v", names)
	}

	f, err := reloaded.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f == nil || f.Text != "alpha" {
		t.Errorf("Filter content lost: %+v", f)
	}
}

func TestFilterStorePersistsMediaAndButtons(t *testing.T) {
	s, path := newTestFilterStore(t)
	ctx := context.Background()

	in := &domain.Filter{
		Text:            "caption",
		Media:           domain.MediaRef{Kind: domain.MediaPhoto, FileID: "ph9"},
		CaptionEntities: []domain.Span{{Kind: domain.SpanItalic, Offset: 0, Length: 7}},
		Buttons:         [][]domain.Button{{{Label: "Site", URL: "https://example.com"}}},
		CreatedBy:       77,
	}
	if err := s.Put(ctx, "pic", in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reloaded, err := NewFilterStore(path)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	out, err := reloaded.Get(ctx, "pic")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Media != in.Media {
		t.Errorf("Media mismatch: %+v", out.Media)
	}
	if !reflect.DeepEqual(out.CaptionEntities, in.CaptionEntities) {
		t.Errorf("Caption entities mismatch: %+v", out.CaptionEntities)
	}
	if !reflect.DeepEqual(out.Buttons, in.Buttons) {
		t.Errorf("Buttons mismatch: %+v", out.Buttons)
	}
	if out.CreatedBy != 77 {
		t.Errorf("CreatedBy mismatch: %d", out.CreatedBy)
	}
}

func TestFilterStoreDelete(t *testing.T) {
	s, _ := newTestFilterStore(t)
	ctx := context.Background()

	s.Put(ctx, "a", &domain.Filter{Text: "a"})
	s.Put(ctx, "b", &domain.Filter{Text: "b"})

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f, _ := s.Get(ctx, "a"); f != nil {
		t.Error("Deleted filter still present")
	}
	names, _ := s.Names(ctx)
	if !reflect.DeepEqual(names, []string{"b"}) {
		t.Errorf("Order not updated: %v", names)
	}

	// Deleting an absent name is a no-op.
	if err := s.Delete(ctx, "ghost"); err != nil {
		t.Errorf("Deleting absent name: %v", err)
	}
}

func TestFilterStoreRenameKeepsSlot(t *testing.T) {
	s, _ := newTestFilterStore(t)
	ctx := context.Background()

	s.Put(ctx, "first", &domain.Filter{Text: "1"})
	s.Put(ctx, "second", &domain.Filter{Text: "2"})
	s.Put(ctx, "third", &domain.Filter{Text: "3"})

	if err := s.Rename(ctx, "second", "middle"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	names, _ := s.Names(ctx)
	if !reflect.DeepEqual(names, []string{"first", "middle", "third"}) {
		t.Errorf("Renamed filter lost its slot: %v", names)
	}
	if f, _ := s.Get(ctx, "middle"); f == nil || f.Text != "2" {
		t.Errorf("Content lost on rename: %+v", f)
	}
}

func TestFilterStoreRenameErrors(t *testing.T) {
	s, _ := newTestFilterStore(t)
	ctx := context.Background()

	s.Put(ctx, "a", &domain.Filter{Text: "a"})
	s.Put(ctx, "b", &domain.Filter{Text: "b"})

	if err := s.Rename(ctx, "ghost", "x"); err == nil {
		t.Error("Renaming an absent filter should fail")
	}
	if err := s.Rename(ctx, "a", "b"); err == nil {
		t.Error("Renaming onto a taken name should fail")
	}
}

func TestFilterStoreCount(t *testing.T) {
	s, _ := newTestFilterStore(t)
	ctx := context.Background()

	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Expected 0, got %d", n)
	}
	s.Put(ctx, "a", &domain.Filter{Text: "a"})
	s.Put(ctx, "a", &domain.Filter{Text: "a2"}) // replace, not append
	s.Put(ctx, "b", &domain.Filter{Text: "b"})
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Expected 2, got %d", n)
	}
}
