package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck-backend/internal/handlers"
	"github.com/taskdeck/taskdeck-backend/internal/middleware"
	"github.com/taskdeck/taskdeck-backend/internal/routes"
	"github.com/taskdeck/taskdeck-backend/internal/services"
)

var testSecret = []byte("handlers-test-secret")

// env is a full router over in-memory stores, so requests run through the
// real auth gate and route table.
type env struct {
	router *chi.Mux
	users  *services.MemoryUserStore
	tasks  *services.MemoryTaskStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := services.NewMemoryUserStore()
	tasks := services.NewMemoryTaskStore()
	handlers.Init(users, tasks, nil, testSecret)

	r := chi.NewRouter()
	routes.SetupRoutes(r, middleware.Authenticate(users, testSecret))

	return &env{router: r, users: users, tasks: tasks}
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type authPayload struct {
	User  map[string]interface{} `json:"user"`
	Token string                 `json:"token"`
}

func (e *env) register(t *testing.T, name, email, password string) authPayload {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/users", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register failed: %s", rec.Body.String())

	var payload authPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)
	return payload
}

func (e *env) login(t *testing.T, email, password string) authPayload {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	var payload authPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func decodeSlice(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var s []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}
