package repository

import (
	"context"
	"testing"

	"trendies_market_v1/internal/model"
)

func TestUserRepo_UpsertBySubject(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	first := &model.User{Subject: "google-123", Email: "a@example.com", Name: "Amal"}
	if err := repo.UpsertBySubject(ctx, first); err != nil {
		t.Fatalf("UpsertBySubject() error = %v", err)
	}
	if first.ID == 0 {
		t.Fatal("ID 应该被自动分配")
	}

	// 同一 subject 再次登录只更新资料
	second := &model.User{Subject: "google-123", Email: "b@example.com", Name: "Amal B"}
	if err := repo.UpsertBySubject(ctx, second); err != nil {
		t.Fatalf("UpsertBySubject() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ID = %d, want %d", second.ID, first.ID)
	}

	found, err := repo.GetByID(ctx, first.ID)
	if err != nil || found == nil {
		t.Fatalf("GetByID() = %v, %v", found, err)
	}
	if found.Email != "b@example.com" {
		t.Errorf("Email = %s, want b@example.com", found.Email)
	}
	if found.LastLoginAt == nil {
		t.Error("LastLoginAt 应该被设置")
	}
}

func TestUserRepo_GetBySubject_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	user, err := repo.GetBySubject(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetBySubject() error = %v", err)
	}
	if user != nil {
		t.Errorf("user = %v, want nil", user)
	}
}
