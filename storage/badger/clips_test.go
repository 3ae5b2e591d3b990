package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/storage"
)

func TestClipDocumentBasics(t *testing.T) {
	clipRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		embeddingRepo.Close()
		clipRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	doc := &core.ClipDocument{
		Id:       core.IDFromContent("beach_sunset.mp4"),
		FileName: "beach_sunset.mp4",
		Summary:  "A sunset over the beach with waves rolling in.",
		Tags:     []string{"beach", "sunset"},
		Category: "nature",
	}

	if err := clipRepo.Put(ctx, doc); err != nil {
		t.Fatalf("Failed to put clip document: %v", err)
	}
	if doc.ProcessedAt.IsZero() {
		t.Fatal("Expected ProcessedAt to be set")
	}

	retrieved, err := clipRepo.Get(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get clip document: %v", err)
	}
	if retrieved.FileName != "beach_sunset.mp4" {
		t.Fatalf("Expected 'beach_sunset.mp4', got '%s'", retrieved.FileName)
	}
	if len(retrieved.Tags) != 2 {
		t.Fatalf("Expected 2 tags, got %d", len(retrieved.Tags))
	}
}

func TestClipDocumentNotFound(t *testing.T) {
	clipRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { embeddingRepo.Close(); clipRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = clipRepo.Get(ctx, core.ID(42))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	err = clipRepo.Delete(ctx, core.ID(42))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestClipDocumentUpsertReplaces(t *testing.T) {
	clipRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { embeddingRepo.Close(); clipRepo.Close(); backend.Close() }()

	ctx := context.Background()
	id := core.IDFromContent("hiking.mp4")

	first := &core.ClipDocument{Id: id, FileName: "hiking.mp4", Summary: "first pass"}
	if err := clipRepo.Put(ctx, first); err != nil {
		t.Fatalf("Failed to put first version: %v", err)
	}

	second := &core.ClipDocument{Id: id, FileName: "hiking.mp4", Summary: "second pass"}
	if err := clipRepo.Put(ctx, second); err != nil {
		t.Fatalf("Failed to put second version: %v", err)
	}

	retrieved, err := clipRepo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get clip document: %v", err)
	}
	if retrieved.Summary != "second pass" {
		t.Fatalf("Expected replacement summary, got '%s'", retrieved.Summary)
	}

	// Replacing must not leave a stale recency entry behind
	recent, err := clipRepo.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get recent clips: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("Expected 1 recent clip, got %d", len(recent))
	}
}

func TestClipDocumentGetMany(t *testing.T) {
	clipRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { embeddingRepo.Close(); clipRepo.Close(); backend.Close() }()

	ctx := context.Background()

	docs := []*core.ClipDocument{
		{Id: core.IDFromContent("a.mp4"), FileName: "a.mp4"},
		{Id: core.IDFromContent("b.mp4"), FileName: "b.mp4"},
	}
	if err := clipRepo.Put(ctx, docs...); err != nil {
		t.Fatalf("Failed to put clip documents: %v", err)
	}

	// Missing ids are skipped, not errors
	results, err := clipRepo.GetMany(ctx, docs[0].Id, core.ID(99999), docs[1].Id)
	if err != nil {
		t.Fatalf("Failed to get many: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(results))
	}
}

func TestClipDocumentGetRecent(t *testing.T) {
	clipRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { embeddingRepo.Close(); clipRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("clip_%d.mp4", i)
		doc := &core.ClipDocument{
			Id:          core.IDFromContent(name),
			FileName:    name,
			ProcessedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := clipRepo.Put(ctx, doc); err != nil {
			t.Fatalf("Failed to put clip document: %v", err)
		}
	}

	recent, err := clipRepo.GetRecent(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to get recent clips: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 clips, got %d", len(recent))
	}
	if recent[0].FileName != "clip_4.mp4" {
		t.Fatalf("Expected most recent clip first, got '%s'", recent[0].FileName)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].ProcessedAt.After(recent[i-1].ProcessedAt) {
			t.Fatal("Expected clips in descending ProcessedAt order")
		}
	}
}

func TestClipDocumentDeleteRemovesRecencyEntry(t *testing.T) {
	clipRepo, embeddingRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { embeddingRepo.Close(); clipRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.ClipDocument{Id: core.IDFromContent("gone.mp4"), FileName: "gone.mp4"}
	if err := clipRepo.Put(ctx, doc); err != nil {
		t.Fatalf("Failed to put clip document: %v", err)
	}
	if err := clipRepo.Delete(ctx, doc.Id); err != nil {
		t.Fatalf("Failed to delete clip document: %v", err)
	}

	recent, err := clipRepo.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get recent clips: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("Expected no recent clips, got %d", len(recent))
	}
}
