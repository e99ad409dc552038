package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

type fakeNotifications struct {
	items    []model.Notification
	err      error
	clientID string
}

func (f *fakeNotifications) ListNotificationsForClient(_ context.Context, clientID string) ([]model.Notification, error) {
	f.clientID = clientID
	return f.items, f.err
}

func TestNotificationsMine(t *testing.T) {
	f := &fakeNotifications{items: []model.Notification{
		{ID: "n1", ClientID: "user-1", Message: "Your appointment is tomorrow", CreatedAt: "2024-05-01T09:00:00Z"},
	}}
	h := NewNotificationHandler(f, testLogger())

	rec := httptest.NewRecorder()
	h.Mine(rec, authedRequest(http.MethodGet, "/api/notifications/me", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.clientID != "user-1" {
		t.Fatalf("principal id not forwarded: %q", f.clientID)
	}
	if !strings.Contains(rec.Body.String(), "Your appointment is tomorrow") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestNotificationsMine_EmptyIsArray(t *testing.T) {
	h := NewNotificationHandler(&fakeNotifications{}, testLogger())

	rec := httptest.NewRecorder()
	h.Mine(rec, authedRequest(http.MethodGet, "/api/notifications/me", ""))

	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}
