package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskdeck/taskdeck-backend/internal/middleware"
	"github.com/taskdeck/taskdeck-backend/internal/models"
	"github.com/taskdeck/taskdeck-backend/internal/services"
	"github.com/taskdeck/taskdeck-backend/pkg/utils"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a user account, mints its first session token and sends
// a best-effort welcome email.
func Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name, err := models.NewName(req.Name)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	email, err := models.NewEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	password, err := models.NewPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	age := models.DefaultAge
	if req.Age != nil {
		if age, err = models.NewAge(*req.Age); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	hashed, err := utils.HashPassword(password.String())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Email:     email.String(),
		Password:  hashed,
		Age:       age,
		Tokens:    []string{},
	}

	if err := userStore.Insert(r.Context(), user); err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, "email already in use")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := issueToken(r, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	go mailer.SendWelcome(user.Email, user.Name)

	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login verifies credentials and appends a fresh session token. Unknown
// email and wrong password produce the same response so neither reveals
// whether an account exists.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Need both email and password to login")
		return
	}

	email, err := models.NewEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid userid or password")
		return
	}

	user, err := userStore.FindByEmail(r.Context(), email.String())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid userid or password")
		return
	}

	match, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !match {
		respondError(w, http.StatusBadRequest, "invalid userid or password")
		return
	}

	token, err := issueToken(r, user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Logout revokes the session token used for this request. Tokens issued to
// other devices stay valid.
func Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	token := middleware.TokenFromContext(r.Context())

	if err := userStore.RemoveToken(r.Context(), user.ID, token); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// LogoutAll revokes every session token for the user.
func LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if err := userStore.ClearTokens(r.Context(), user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// GetProfile returns the authenticated user's own record.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.UserFromContext(r.Context()))
}

var userUpdateFields = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// UpdateProfile applies an allow-listed partial update. Any field outside
// the allow-list rejects the whole request before anything is applied.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for field := range body {
		if !userUpdateFields[field] {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}

	if raw, ok := body["name"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		name, err := models.NewName(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		user.Name = name
	}
	if raw, ok := body["email"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		email, err := models.NewEmail(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		user.Email = email.String()
	}
	if raw, ok := body["password"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		password, err := models.NewPassword(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		hashed, err := utils.HashPassword(password.String())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}
		user.Password = hashed
	}
	if raw, ok := body["age"]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		age, err := models.NewAge(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		user.Age = age
	}

	user.UpdatedAt = time.Now()
	if err := userStore.SaveProfile(r.Context(), user); err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, "email already in use")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser removes the account. The task cascade runs first so no task
// can survive its owner, then a best-effort goodbye email goes out.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if err := taskStore.DeleteByOwner(r.Context(), user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if err := userStore.Delete(r.Context(), user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	go mailer.SendGoodbye(user.Email, user.Name)

	respondJSON(w, http.StatusOK, user)
}

// issueToken mints a session token and appends it to the user's token list.
func issueToken(r *http.Request, user *models.User) (string, error) {
	token, err := utils.SignToken(user.ID.Hex(), jwtSecret)
	if err != nil {
		return "", err
	}
	if err := userStore.AppendToken(r.Context(), user.ID, token); err != nil {
		log.Printf("Failed to persist session token for %s: %v", user.ID.Hex(), err)
		return "", err
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}
