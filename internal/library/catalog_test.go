package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	cat, err := OpenCatalog(path, nil)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestCatalogUpsertAndByPath(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	track := &Track{
		Path:        "/music/a.flac",
		Title:       "Song A",
		Artist:      "Artist A",
		Album:       "Album A",
		TrackNumber: 1,
		ScannedAt:   time.Now(),
	}
	if err := cat.Upsert(ctx, track); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := cat.ByPath(ctx, track.Path)
	if err != nil {
		t.Fatalf("ByPath: %v", err)
	}
	if got == nil {
		t.Fatal("ByPath: got nil, want track")
	}
	if got.Title != track.Title || got.Artist != track.Artist {
		t.Errorf("ByPath: got %+v, want matching %+v", got, track)
	}
}

func TestCatalogByPathMissingReturnsNil(t *testing.T) {
	cat := openTestCatalog(t)
	got, err := cat.ByPath(context.Background(), "/nowhere.mp3")
	if err != nil {
		t.Fatalf("ByPath: %v", err)
	}
	if got != nil {
		t.Errorf("ByPath for missing row: got %+v, want nil", got)
	}
}

func TestCatalogUpsertReplacesExisting(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	track := &Track{Path: "/music/a.flac", Title: "Old Title", ScannedAt: time.Now()}
	if err := cat.Upsert(ctx, track); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	track.Title = "New Title"
	if err := cat.Upsert(ctx, track); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}

	got, err := cat.ByPath(ctx, track.Path)
	if err != nil {
		t.Fatalf("ByPath: %v", err)
	}
	if got.Title != "New Title" {
		t.Errorf("Title after replace: got %q, want %q", got.Title, "New Title")
	}
}

func TestCatalogUpsertAllAndAll(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	tracks := []*Track{
		{Path: "/music/b.mp3", Title: "B", Artist: "Zeta", Album: "Z1", ScannedAt: time.Now()},
		{Path: "/music/a.mp3", Title: "A", Artist: "Alpha", Album: "A1", ScannedAt: time.Now()},
	}
	if err := cat.UpsertAll(ctx, tracks); err != nil {
		t.Fatalf("UpsertAll: %v", err)
	}

	all, err := cat.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("All: got %d tracks, want 2", len(all))
	}
	if all[0].Artist != "Alpha" {
		t.Errorf("All order: got first artist %q, want Alpha", all[0].Artist)
	}
}

func TestCatalogSearchMatchesTitleArtistAlbum(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	if err := cat.UpsertAll(ctx, []*Track{
		{Path: "/music/c.mp3", Title: "Midnight City", Artist: "M83", Album: "Hurry Up", ScannedAt: time.Now()},
		{Path: "/music/d.mp3", Title: "Daylight", Artist: "Someone", Album: "Other", ScannedAt: time.Now()},
	}); err != nil {
		t.Fatalf("UpsertAll: %v", err)
	}

	results, err := cat.Search(ctx, "midnight")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "/music/c.mp3" {
		t.Fatalf("Search %q: got %+v, want single match on c.mp3", "midnight", results)
	}
}

func TestCatalogDelete(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	track := &Track{Path: "/music/e.mp3", Title: "E", ScannedAt: time.Now()}
	if err := cat.Upsert(ctx, track); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := cat.Delete(ctx, track.Path); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := cat.ByPath(ctx, track.Path)
	if err != nil {
		t.Fatalf("ByPath after delete: %v", err)
	}
	if got != nil {
		t.Errorf("ByPath after delete: got %+v, want nil", got)
	}
}

func TestCatalogOperationsFailAfterClose(t *testing.T) {
	cat := openTestCatalog(t)
	if err := cat.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := cat.Upsert(context.Background(), &Track{Path: "/x.mp3"}); err == nil {
		t.Error("Upsert after close: got nil error, want error")
	}
}
