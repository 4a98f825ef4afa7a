package auth

import (
	"context"
	"testing"
	"time"

	"github.com/keyxmakerx/reverie/internal/apperror"
	"github.com/keyxmakerx/reverie/internal/database/dbtest"
)

func TestUserRepository_SQLite(t *testing.T) {
	repo := NewUserRepository(dbtest.New(t))
	ctx := context.Background()

	if _, err := repo.FindByEmail(ctx, "a@b.c"); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	u := &User{ID: "u1", Email: "a@b.c", DisplayName: "a", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, &User{ID: "u2", Email: "a@b.c", DisplayName: "a", PasswordHash: "h", CreatedAt: time.Now().UTC()}); err == nil {
		t.Error("expected unique email violation")
	}

	got, err := repo.FindByEmail(ctx, "a@b.c")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "u1" || got.LastLoginAt != nil {
		t.Errorf("unexpected user %+v", got)
	}

	if err := repo.UpdateLastLogin(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdatePassword(ctx, "u1", "h2"); err != nil {
		t.Fatal(err)
	}
	got, err = repo.FindByID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLoginAt == nil || got.PasswordHash != "h2" {
		t.Errorf("updates not persisted: %+v", got)
	}

	if err := repo.UpdatePassword(ctx, "missing", "x"); !apperror.IsNotFound(err) {
		t.Errorf("expected not found for missing user, got %v", err)
	}
}
