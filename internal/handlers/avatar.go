package handlers

import (
	"net/http"

	"github.com/taskdeck/taskdeck-backend/internal/middleware"
	"github.com/taskdeck/taskdeck-backend/internal/services"
)

// UploadAvatar accepts a single "avatar" file part, normalizes it to a
// 250x250 PNG and stores it on the user document. Every validation or
// processing failure answers 400 with no body so nothing about the file
// handling leaks.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, services.AvatarMaxBytes)
	if err := r.ParseMultipartForm(services.AvatarMaxBytes); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Extension check runs before any decoding.
	if !services.AllowedAvatarExt(header.Filename) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	avatar, err := services.NormalizeAvatar(file)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := userStore.SetAvatar(r.Context(), user.ID, avatar); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetAvatar serves the caller's stored avatar as PNG.
func GetAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if len(user.Avatar) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(user.Avatar)
}

// DeleteAvatar clears the stored avatar.
func DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if err := userStore.ClearAvatar(r.Context(), user.ID); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
