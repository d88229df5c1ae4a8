package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmeshcher/piolas-market/internal/model"
	"github.com/mmeshcher/piolas-market/internal/platform"
)

func TestProcessProfileBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/viewer":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]string{"profile_pic": "https://cdn.example.com/viewer.png"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	repo := newStubRepo()
	repo.users[1] = model.User{ID: 1, Login: "viewer", Role: model.RoleUser}
	repo.users[2] = model.User{ID: 2, Login: "unknown_to_platform", Role: model.RoleUser}

	svc := NewService(repo, nil, platform.NewClient(srv.URL), nil)
	svc.processProfileBatch(context.Background())

	if pic := repo.users[1].ProfilePic; pic == nil || *pic != "https://cdn.example.com/viewer.png" {
		t.Errorf("expected profile pic backfilled for known user, got %v", pic)
	}
	if repo.users[2].ProfilePic != nil {
		t.Errorf("unknown user must stay without profile pic, got %v", *repo.users[2].ProfilePic)
	}
}

func TestStartProfileBackfillWithoutClient(t *testing.T) {
	svc := newTestService(newStubRepo())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Без настроенного клиента платформы фоновая задача не запускается.
	svc.StartProfileBackfill(ctx)
}
