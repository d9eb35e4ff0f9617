package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskdeck/taskdeck-backend/internal/services"
)

var (
	userStore services.UserStore
	taskStore services.TaskStore
	mailer    *services.EmailService
	jwtSecret []byte
)

// Init wires the handler package to its collaborators. Called once from
// main; tests call it with in-memory stores.
func Init(users services.UserStore, tasks services.TaskStore, email *services.EmailService, secret []byte) {
	userStore = users
	taskStore = tasks
	mailer = email
	jwtSecret = secret
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
