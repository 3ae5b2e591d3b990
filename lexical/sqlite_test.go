package lexical

import (
	"context"
	"errors"
	"testing"

	"github.com/lumenframe/cliplens/core"
)

func newTestIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := OpenSQLiteIndex(":memory:")
	if err != nil {
		t.Fatalf("Failed to open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteIndexSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	docs := []*core.ClipDocument{
		{
			Id:       core.IDFromContent("beach.mp4"),
			FileName: "beach.mp4",
			Summary:  "Waves crash on a sandy beach at sunset",
			Tags:     []string{"beach", "ocean"},
			Category: "nature",
		},
		{
			Id:       core.IDFromContent("city.mp4"),
			FileName: "city.mp4",
			Summary:  "Traffic moves through a busy downtown intersection",
			Tags:     []string{"urban", "traffic"},
			Category: "city",
		},
	}
	if err := idx.Put(ctx, docs...); err != nil {
		t.Fatalf("Failed to index docs: %v", err)
	}

	results, err := idx.Search(ctx, "sandy beach", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].ClipID != docs[0].Id {
		t.Fatalf("Expected beach clip, got %d", results[0].ClipID)
	}
}

func TestSQLiteIndexSearchRanking(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	// The first doc mentions the term in two fields, the second in one
	docs := []*core.ClipDocument{
		{
			Id:       core.IDFromContent("skiing_trip.mp4"),
			FileName: "skiing_trip.mp4",
			Summary:  "Skiing down a steep mountain slope",
			Tags:     []string{"skiing", "snow"},
		},
		{
			Id:       core.IDFromContent("lodge.mp4"),
			FileName: "lodge.mp4",
			Summary:  "A warm lodge after a day of skiing",
		},
	}
	if err := idx.Put(ctx, docs...); err != nil {
		t.Fatalf("Failed to index docs: %v", err)
	}

	results, err := idx.Search(ctx, "skiing", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].ClipID != docs[0].Id {
		t.Fatal("Expected the multi-field match ranked first")
	}
	if results[0].Score < results[1].Score {
		t.Fatal("Expected descending scores")
	}
}

func TestSQLiteIndexTranscriptOnly(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	docs := []*core.ClipDocument{
		{
			Id:                core.IDFromContent("interview.mp4"),
			FileName:          "interview.mp4",
			Summary:           "An interview about local history",
			TranscriptPreview: "we talked about the old lighthouse on the cliff",
		},
		{
			Id:       core.IDFromContent("lighthouse_tour.mp4"),
			FileName: "lighthouse_tour.mp4",
			Summary:  "A tour of the lighthouse",
		},
	}
	if err := idx.Put(ctx, docs...); err != nil {
		t.Fatalf("Failed to index docs: %v", err)
	}

	// Only the clip whose transcript mentions the term should match
	results, err := idx.SearchTranscripts(ctx, "lighthouse", 10)
	if err != nil {
		t.Fatalf("SearchTranscripts failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].ClipID != docs[0].Id {
		t.Fatalf("Expected the interview clip, got %d", results[0].ClipID)
	}
}

func TestSQLiteIndexPutReplaces(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	id := core.IDFromContent("garden.mp4")
	if err := idx.Put(ctx, &core.ClipDocument{
		Id: id, FileName: "garden.mp4", Summary: "Roses blooming in spring",
	}); err != nil {
		t.Fatalf("Failed to index doc: %v", err)
	}
	if err := idx.Put(ctx, &core.ClipDocument{
		Id: id, FileName: "garden.mp4", Summary: "Tulips blooming in spring",
	}); err != nil {
		t.Fatalf("Failed to reindex doc: %v", err)
	}

	results, err := idx.Search(ctx, "roses", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatal("Expected stale entry to be replaced")
	}

	results, err = idx.Search(ctx, "tulips", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result for replacement text, got %d", len(results))
	}
}

func TestSQLiteIndexDelete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	id := core.IDFromContent("temp.mp4")
	if err := idx.Put(ctx, &core.ClipDocument{
		Id: id, FileName: "temp.mp4", Summary: "Temporary footage",
	}); err != nil {
		t.Fatalf("Failed to index doc: %v", err)
	}
	if err := idx.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := idx.Delete(ctx, core.ID(12345)); err != nil {
		t.Fatalf("Expected unknown-id delete to be a no-op, got %v", err)
	}

	results, err := idx.Search(ctx, "temporary", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatal("Expected deleted clip to be unsearchable")
	}
}

func TestSQLiteIndexQuerySanitization(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Put(ctx, &core.ClipDocument{
		Id: core.IDFromContent("notes.mp4"), FileName: "notes.mp4",
		Summary: "Notes and reminders",
	}); err != nil {
		t.Fatalf("Failed to index doc: %v", err)
	}

	// Operator words and FTS5 syntax must not leak into the query
	if _, err := idx.Search(ctx, `notes AND "reminders" NEAR(x)`, 10); err != nil {
		t.Fatalf("Expected sanitized search to succeed, got %v", err)
	}

	_, err := idx.Search(ctx, "   ", 10)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("Expected ErrEmptyQuery, got %v", err)
	}
}
