package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/model"
)

type NotificationStore interface {
	ListNotificationsForClient(ctx context.Context, clientID string) ([]model.Notification, error)
}

type NotificationHandler struct {
	store  NotificationStore
	logger *slog.Logger
}

func NewNotificationHandler(store NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{store: store, logger: logger}
}

type notificationItem struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

// Mine handles GET /api/notifications/me.
func (h *NotificationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperr.New(apperr.Unauthorized, "Not authorized, no token"))
		return
	}

	notifications, err := h.store.ListNotificationsForClient(r.Context(), principal.ID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.Persistence, "failed to list notifications", err))
		return
	}

	out := make([]notificationItem, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationItem{ID: n.ID, Message: n.Message, CreatedAt: n.CreatedAt, Read: n.Read})
	}
	writeJSON(w, http.StatusOK, out)
}
