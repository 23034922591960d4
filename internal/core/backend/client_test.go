package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliphub/gateway/internal/core/domain"
)

func authOK(role *string) string {
	user := map[string]any{"id": 7, "name": "Jane", "email": "jane@example.com", "role": role}
	body, _ := json.Marshal(map[string]any{
		"status":  true,
		"message": "ok",
		"data": map[string]any{
			"access_token": "backend-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"user":         user,
		},
	})
	return string(body)
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	role := "clipper"
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(authOK(&role)))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	result, err := c.Login(context.Background(), "jane@example.com", "hunter22", true)
	require.NoError(t, err)

	assert.Equal(t, "7", result.User.ID)
	assert.Equal(t, "Jane", result.User.Name)
	assert.Equal(t, domain.RoleClipper, result.User.Role)
	assert.Equal(t, "backend-token", result.AccessToken)

	assert.Equal(t, "jane@example.com", gotBody["email"])
	assert.Equal(t, "hunter22", gotBody["password"])
	assert.Equal(t, true, gotBody["remember_me"])
}

func TestLoginNullRole(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(authOK(nil)))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	result, err := c.Login(context.Background(), "new@example.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, result.User.Role)
}

func TestLoginRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"These credentials do not match our records."}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "jane@example.com", "wrong", false)
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "These credentials do not match our records.", apiErr.Message)
}

// A 200 body with status=false is still a rejection.
func TestStatusFalseWithHTTP200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"nope"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.Register(context.Background(), "Jane", "jane@example.com", "pw123456")

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestRegisterSendsConfirmation(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"status":true,"message":"registered"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.Register(context.Background(), "Jane", "jane@example.com", "pw123456"))

	assert.Equal(t, "pw123456", gotBody["password"])
	assert.Equal(t, "pw123456", gotBody["password_confirmation"])
}

// Each provider has its own endpoint and payload field.
func TestSocialExchangePayloadShapes(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		role := "business"
		w.Write([]byte(authOK(&role)))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	_, err := c.SocialExchange(context.Background(), domain.ProviderGoogle, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "/auth/google/callback", gotPath)
	assert.Equal(t, "google-id-token", gotBody["id_token"])
	assert.NotContains(t, gotBody, "access_token")

	_, err = c.SocialExchange(context.Background(), domain.ProviderFacebook, "fb-access-token")
	require.NoError(t, err)
	assert.Equal(t, "/auth/facebook/callback", gotPath)
	assert.Equal(t, "fb-access-token", gotBody["access_token"])
	assert.NotContains(t, gotBody, "id_token")
}

func TestSocialExchangeUnknownProvider(t *testing.T) {
	t.Parallel()

	c := New("http://backend.invalid", time.Second)
	_, err := c.SocialExchange(context.Background(), domain.SocialProvider("myspace"), "tok")
	require.Error(t, err)
}

func TestAssignRoleSendsBearer(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/assign-role", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"status":true,"message":"role assigned"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	require.NoError(t, c.AssignRole(context.Background(), "backend-token", domain.RoleClipper))

	assert.Equal(t, "Bearer backend-token", gotAuth)
	assert.Equal(t, "clipper", gotBody["role"])
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/profile/update", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":true,"message":"ok","data":{"user":{"id":7,"name":"Janet","email":"jane@example.com","role":"clipper"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	user, err := c.UpdateProfile(context.Background(), "tok", "Janet")
	require.NoError(t, err)
	assert.Equal(t, "Janet", user.Name)
	assert.Equal(t, domain.RoleClipper, user.Role)
}

// A hung backend fails the call instead of blocking the flow.
func TestRequestTimeout(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(srv.URL, 50*time.Millisecond)
	_, err := c.Login(context.Background(), "a@b.c", "pw", false)
	require.Error(t, err)

	var apiErr *domain.APIError
	assert.False(t, errors.As(err, &apiErr), "timeout must not look like a backend rejection")
}

func TestMalformedResponseBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "a@b.c", "pw", false)
	require.Error(t, err)

	var apiErr *domain.APIError
	assert.False(t, errors.As(err, &apiErr))
}
