package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/model"
	"github.com/bzbookit/bzbookit-backend/internal/storage"
)

type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (identity.Session, error)
	GetUserByID(ctx context.Context, id string) (identity.User, error)
	SignUp(ctx context.Context, email, password, name string, role identity.Role) (identity.User, error)
}

type BusinessDirectory interface {
	SoleBusinessOwnedBy(ctx context.Context, ownerID string) (model.Business, error)
	InsertBusiness(ctx context.Context, ownerID, name, email string) error
}

type AuthHandler struct {
	provider   IdentityProvider
	businesses BusinessDirectory
	logger     *slog.Logger
}

func NewAuthHandler(provider IdentityProvider, businesses BusinessDirectory, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, businesses: businesses, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	BusinessID *string `json:"businessId"`
	Token      string  `json:"token"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type meResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	BusinessID *string `json:"businessId"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Invalid JSON body."))
		return
	}

	session, err := h.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.Unauthorized, "Invalid email or password.", err))
		return
	}

	// The sign-in response carries a trimmed user; the admin lookup returns
	// the full record including app metadata.
	user, err := h.provider.GetUserByID(r.Context(), session.User.ID)
	if err != nil {
		h.logger.Error("failed to retrieve user metadata", "err", err)
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: "Failed to retrieve user metadata."})
		return
	}

	principal := user.Principal()
	writeJSON(w, http.StatusOK, loginResponse{
		ID:         principal.ID,
		Email:      principal.Email,
		Role:       string(principal.Role),
		BusinessID: h.businessIDFor(r.Context(), principal),
		Token:      session.AccessToken,
	})
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Invalid JSON body."))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Email and password are required."))
		return
	}

	role := identity.ParseRole(req.Role)
	user, err := h.provider.SignUp(r.Context(), req.Email, req.Password, req.Name, role)
	if err != nil {
		// Provider rejections (weak password, duplicate email) surface as-is.
		writeError(w, h.logger, apperr.Wrap(apperr.Persistence, "signup rejected", err))
		return
	}

	if role == identity.RoleBusinessOwner {
		if err := h.businesses.InsertBusiness(r.Context(), user.ID, req.Name+"'s Business", user.Email); err != nil {
			h.logger.Error("failed to create business profile for new user", "user_id", user.ID, "err", err)
			writeJSON(w, http.StatusInternalServerError, messageBody{
				Message: "User account created, but failed to set up business profile. Please contact support.",
			})
			return
		}
	}

	writeJSON(w, http.StatusCreated, messageBody{
		Message: "Account created successfully! Please check your email to confirm your account.",
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperr.New(apperr.Unauthorized, "Not authorized, no token"))
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:         principal.ID,
		Email:      principal.Email,
		Role:       string(principal.Role),
		BusinessID: h.businessIDFor(r.Context(), principal),
	})
}

// businessIDFor resolves the owner's business id for response payloads.
// Resolution failures degrade to null rather than failing the request.
func (h *AuthHandler) businessIDFor(ctx context.Context, principal identity.Principal) *string {
	if principal.Role != identity.RoleBusinessOwner {
		return nil
	}
	business, err := h.businesses.SoleBusinessOwnedBy(ctx, principal.ID)
	if err != nil {
		if !storage.IsNotFound(err) {
			h.logger.Warn("failed to resolve business for owner", "owner_id", principal.ID, "err", err)
		}
		return nil
	}
	return &business.ID
}
