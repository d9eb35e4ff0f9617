package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newEnv(t)

	payload := e.register(t, "Alice", "Alice@Example.com", "red12345")

	assert.Equal(t, "Alice", payload.User["name"])
	assert.Equal(t, "alice@example.com", payload.User["email"], "email is normalized to lowercase")
	assert.Equal(t, float64(18), payload.User["age"], "age defaults to 18")

	// Sensitive fields never serialize
	assert.NotContains(t, payload.User, "password")
	assert.NotContains(t, payload.User, "tokens")
	assert.NotContains(t, payload.User, "avatar")

	// The stored password is a hash, not the plaintext
	stored, err := e.users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "red12345", stored.Password)
	assert.Contains(t, stored.Tokens, payload.Token)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing name", body: map[string]interface{}{"email": "a@b.com", "password": "red12345"}},
		{name: "bad email", body: map[string]interface{}{"name": "A", "email": "not-an-email", "password": "red12345"}},
		{name: "short password", body: map[string]interface{}{"name": "A", "email": "a@b.com", "password": "red12"}},
		{name: "password contains password", body: map[string]interface{}{"name": "A", "email": "a@b.com", "password": "Password1"}},
		{name: "negative age", body: map[string]interface{}{"name": "A", "email": "a@b.com", "password": "red12345", "age": -1}},
		{name: "age too high", body: map[string]interface{}{"name": "A", "email": "a@b.com", "password": "red12345", "age": 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/users", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t)

	e.register(t, "Alice", "alice@example.com", "red12345")

	// Same address with different casing is still a duplicate
	rec := e.do(t, http.MethodPost, "/users", "", map[string]string{
		"name":     "Mallory",
		"email":    "ALICE@example.com",
		"password": "blue12345",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Alice", "alice@example.com", "red12345")

	payload := e.login(t, "alice@example.com", "red12345")
	assert.NotEmpty(t, payload.Token)
	assert.NotContains(t, payload.User, "password")

	// Both tokens are now valid (multi-device)
	stored, err := e.users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, stored.Tokens, 2)
}

func TestLogin_GenericFailure(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Alice", "alice@example.com", "red12345")

	wrongPassword := e.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "blue12345",
	})
	unknownEmail := e.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "red12345",
	})

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	// Identical bodies: neither response reveals whether the account exists
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	// Failed logins append no token
	stored, err := e.users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, stored.Tokens, 1)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	first := e.register(t, "Alice", "alice@example.com", "red12345")
	second := e.login(t, "alice@example.com", "red12345")

	rec := e.do(t, http.MethodGet, "/users/logout", first.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The logged-out token is rejected, the other stays valid
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/users", first.Token, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/users", second.Token, nil).Code)
}

func TestLogoutAll(t *testing.T) {
	e := newEnv(t)
	first := e.register(t, "Alice", "alice@example.com", "red12345")
	second := e.login(t, "alice@example.com", "red12345")

	rec := e.do(t, http.MethodGet, "/users/logoutAll", second.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/users", first.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/users", second.Token, nil).Code)
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)
	payload := e.register(t, "Alice", "alice@example.com", "red12345")

	rec := e.do(t, http.MethodGet, "/users", payload.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	profile := decodeMap(t, rec)
	assert.Equal(t, "Alice", profile["name"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "tokens")
	assert.NotContains(t, profile, "avatar")
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	payload := e.register(t, "Alice", "alice@example.com", "red12345")

	rec := e.do(t, http.MethodPatch, "/users", payload.Token, map[string]interface{}{
		"name": "Alicia",
		"age":  31,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeMap(t, rec)
	assert.Equal(t, "Alicia", updated["name"])
	assert.Equal(t, float64(31), updated["age"])
}

func TestUpdateProfile_RejectsUnknownField(t *testing.T) {
	e := newEnv(t)
	payload := e.register(t, "Alice", "alice@example.com", "red12345")

	// A valid field alongside an unknown one must not be applied
	rec := e.do(t, http.MethodPatch, "/users", payload.Token, map[string]interface{}{
		"name":   "Alicia",
		"height": 170,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	profile := decodeMap(t, e.do(t, http.MethodGet, "/users", payload.Token, nil))
	assert.Equal(t, "Alice", profile["name"], "no partial application")
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	e := newEnv(t)
	payload := e.register(t, "Alice", "alice@example.com", "red12345")

	rec := e.do(t, http.MethodPatch, "/users", payload.Token, map[string]string{
		"password": "blue6789",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer works, new one does
	old := e.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "red12345",
	})
	assert.Equal(t, http.StatusBadRequest, old.Code)
	e.login(t, "alice@example.com", "blue6789")
}

func TestUpdateProfile_ValidationFailure(t *testing.T) {
	e := newEnv(t)
	payload := e.register(t, "Alice", "alice@example.com", "red12345")

	rec := e.do(t, http.MethodPatch, "/users", payload.Token, map[string]string{
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser_CascadesTasks(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "Alice", "alice@example.com", "red12345")
	bob := e.register(t, "Bob", "bob@example.com", "blue12345")

	e.do(t, http.MethodPost, "/tasks", alice.Token, map[string]string{"description": "pack boxes"})
	e.do(t, http.MethodPost, "/tasks", alice.Token, map[string]string{"description": "cancel lease"})
	e.do(t, http.MethodPost, "/tasks", bob.Token, map[string]string{"description": "water plants"})

	rec := e.do(t, http.MethodDelete, "/users", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	deleted := decodeMap(t, rec)
	assert.Equal(t, "Alice", deleted["name"])
	assert.NotContains(t, deleted, "password")

	// Account and session are gone
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/users", alice.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "red12345",
	}).Code)

	// Alice's tasks were cascade-deleted, Bob's survive
	bobTasks := e.do(t, http.MethodGet, "/tasks", bob.Token, nil)
	require.Equal(t, http.StatusOK, bobTasks.Code)
	assert.Len(t, decodeSlice(t, bobTasks), 1)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	e := newEnv(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodPatch, "/users"},
		{http.MethodDelete, "/users"},
		{http.MethodGet, "/users/logout"},
		{http.MethodGet, "/users/logoutAll"},
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks"},
	}

	for _, route := range protected {
		rec := e.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}
