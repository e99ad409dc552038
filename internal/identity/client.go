package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrTokenInvalid       = errors.New("identity: token verification failed")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
)

// Client talks to the external identity provider over its REST surface.
// The anon key authorizes user-scoped calls; the service key authorizes
// admin-scoped ones (full user records).
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, anonKey, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// User is the provider-held user record. Metadata stays raw here; the
// gatekeeper normalizes it into a Principal.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

func (u User) Principal() Principal {
	return Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.UserMetadata.Name,
		Role:  ParseRole(u.AppMetadata.Role),
	}
}

// VerifyToken asks the provider to verify the bearer token and returns the
// principal it belongs to. Any verification failure (invalid, expired,
// malformed) is ErrTokenInvalid; transport failures are returned as-is.
func (c *Client) VerifyToken(ctx context.Context, token string) (Principal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Principal{}, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Principal{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Principal{}, ErrTokenInvalid
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Principal{}, ErrTokenInvalid
	}
	if user.ID == "" {
		return Principal{}, ErrTokenInvalid
	}
	return user.Principal(), nil
}

// GetUserByID fetches the full user record with the admin-scoped service key.
// Used during login to resolve role metadata the user-scoped call omits.
func (c *Client) GetUserByID(ctx context.Context, id string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("identity: admin user lookup returned %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SignInWithPassword exchanges credentials for a provider session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Session{}, ErrInvalidCredentials
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, err
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return Session{}, ErrInvalidCredentials
	}
	return session, nil
}

// SignUp registers a new user with the provider. Display name and role land
// in provider metadata; the provider may still require email confirmation
// before the account is usable.
func (c *Client) SignUp(ctx context.Context, email, password, name string, role Role) (User, error) {
	body, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"name": name,
			"role": string(role),
		},
	})
	if err != nil {
		return User{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/signup", bytes.NewReader(body))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return User{}, providerError(resp)
	}

	// The provider returns either the bare user record or a session envelope
	// depending on whether email confirmation is enabled.
	var envelope struct {
		User
		Inner *User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return User{}, err
	}
	if envelope.Inner != nil && envelope.Inner.ID != "" {
		return *envelope.Inner, nil
	}
	if envelope.User.ID == "" {
		return User{}, errors.New("identity: user not returned after signup")
	}
	return envelope.User, nil
}

func providerError(resp *http.Response) error {
	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Msg != "" {
			return errors.New(payload.Msg)
		}
		if payload.Message != "" {
			return errors.New(payload.Message)
		}
	}
	return fmt.Errorf("identity provider returned %d", resp.StatusCode)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
