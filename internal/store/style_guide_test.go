package store

import (
	"testing"

	"github.com/google/uuid"

	"aistyleguide/internal/models"
)

func TestStyleGuideStoreSaveAndLoad(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	s := NewStyleGuideStore(db)

	email := "test-guides@store-test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u, err := users.Create(email, "pw", "Guide Owner", models.RoleCustomer)
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	g, err := s.Save(&models.StyleGuide{
		UserID:       u.ID,
		Title:        "Acme",
		Plan:         models.PlanCore,
		BrandDetails: models.BrandDetails{Name: "Acme", Keywords: []string{"rockets"}},
		Content:      "# Acme v1",
	})
	if err != nil || g == nil {
		t.Fatalf("Save (insert): %v, %v", g, err)
	}

	g.Content = "# Acme v2"
	updated, err := s.Save(g)
	if err != nil || updated == nil || updated.ID != g.ID {
		t.Fatalf("Save (update): %v, %v", updated, err)
	}

	loaded, err := s.FindForUser(g.ID, u.ID)
	if err != nil || loaded == nil {
		t.Fatalf("FindForUser: %v, %v", loaded, err)
	}
	if loaded.Content != "# Acme v2" {
		t.Errorf("last write should win, got %q", loaded.Content)
	}
	if loaded.BrandDetails.Keywords[0] != "rockets" {
		t.Errorf("brand details not round-tripped: %+v", loaded.BrandDetails)
	}

	other, err := s.FindForUser(g.ID, uuid.New())
	if err != nil || other != nil {
		t.Errorf("guide visible to another user: %v, %v", other, err)
	}

	stolen, err := s.Save(&models.StyleGuide{ID: g.ID, UserID: uuid.New(), Title: "x", Plan: models.PlanCore})
	if err != nil || stolen != nil {
		t.Errorf("update by another user should be a no-op: %v, %v", stolen, err)
	}

	latest, err := s.LatestForUser(u.ID)
	if err != nil || latest == nil || latest.ID != g.ID {
		t.Errorf("LatestForUser: %v, %v", latest, err)
	}
}
