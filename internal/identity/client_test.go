package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "user-1",
			"email":         "ada@example.com",
			"user_metadata": map[string]string{"name": "Ada"},
			"app_metadata":  map[string]string{"role": "business_owner"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon", "service")
	principal, err := client.VerifyToken(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if principal.ID != "user-1" || principal.Email != "ada@example.com" {
		t.Fatalf("unexpected principal: %#v", principal)
	}
	if principal.Role != RoleBusinessOwner {
		t.Fatalf("unexpected role: %s", principal.Role)
	}

	if _, err := client.VerifyToken(context.Background(), "bad-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Fatalf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "session-token",
			"user":         map[string]string{"id": "user-1", "email": "ada@example.com"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon", "service")
	session, err := client.SignInWithPassword(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if session.AccessToken != "session-token" || session.User.ID != "user-1" {
		t.Fatalf("unexpected session: %#v", session)
	}

	if _, err := client.SignInWithPassword(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUp_EnvelopeShapes(t *testing.T) {
	// Confirmation-on providers return the bare user; confirmation-off ones
	// return a session envelope. Both must decode.
	cases := []struct {
		name string
		body any
	}{
		{"bare user", map[string]any{"id": "user-1", "email": "ada@example.com"}},
		{"session envelope", map[string]any{"access_token": "t", "user": map[string]string{"id": "user-1", "email": "ada@example.com"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/v1/signup" {
					t.Fatalf("unexpected path %s", r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "anon", "service")
			user, err := client.SignUp(context.Background(), "ada@example.com", "secret", "Ada", RoleClient)
			if err != nil {
				t.Fatalf("signup failed: %v", err)
			}
			if user.ID != "user-1" {
				t.Fatalf("unexpected user: %#v", user)
			}
		})
	}
}

func TestSignUp_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Password should be at least 6 characters"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon", "service")
	_, err := client.SignUp(context.Background(), "ada@example.com", "x", "Ada", RoleClient)
	if err == nil {
		t.Fatal("expected signup rejection")
	}
	if err.Error() != "Password should be at least 6 characters" {
		t.Fatalf("provider message must surface, got %q", err.Error())
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("business_owner") != RoleBusinessOwner {
		t.Fatal("business_owner must parse")
	}
	if ParseRole("admin") != RoleClient {
		t.Fatal("unknown roles must default to client")
	}
	if ParseRole("") != RoleClient {
		t.Fatal("empty role must default to client")
	}
}
