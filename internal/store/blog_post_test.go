package store

import (
	"testing"
	"time"

	"aistyleguide/internal/models"
)

func TestBlogPostStoreLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewBlogPostStore(db)

	slug := "store-test-brand-voice"
	t.Cleanup(func() { cleanPosts(t, db, slug) })

	exists, err := s.SlugExists(slug)
	if err != nil || exists {
		t.Fatalf("SlugExists before create: %v, %v", exists, err)
	}

	created, err := s.Create(&models.BlogPost{
		Title:    "Brand Voice",
		Slug:     slug,
		Content:  "## Intro\n\nHello.",
		Excerpt:  "Hello.",
		Category: "guides",
		Keywords: []string{"brand voice", "tone"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Published || created.PublishedAt != nil {
		t.Error("new post should be a draft")
	}

	exists, _ = s.SlugExists(slug)
	if !exists {
		t.Error("SlugExists after create = false")
	}

	found, err := s.FindBySlug(slug)
	if err != nil || found == nil {
		t.Fatalf("FindBySlug: %v, %v", found, err)
	}
	if len(found.Keywords) != 2 || found.Keywords[1] != "tone" {
		t.Errorf("keywords: %v", found.Keywords)
	}

	published, err := s.SetPublished(slug, true)
	if err != nil || published == nil || published.PublishedAt == nil {
		t.Fatalf("SetPublished: %v, %v", published, err)
	}
	first := *published.PublishedAt

	time.Sleep(10 * time.Millisecond)
	s.SetPublished(slug, false)
	again, _ := s.SetPublished(slug, true)
	if !again.PublishedAt.Equal(first) {
		t.Errorf("published_at changed on republish: %v vs %v", again.PublishedAt, first)
	}

	list, err := s.ListPublished(100)
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	var listed bool
	for _, p := range list {
		if p.Slug == slug {
			listed = true
		}
	}
	if !listed {
		t.Error("published post missing from list")
	}

	deleted, err := s.Delete(slug)
	if err != nil || !deleted {
		t.Fatalf("Delete: %v, %v", deleted, err)
	}
	deleted, _ = s.Delete(slug)
	if deleted {
		t.Error("second delete should report false")
	}
	missing, _ := s.SetPublished(slug, true)
	if missing != nil {
		t.Error("SetPublished on missing slug should return nil")
	}
}
