package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskdeck/taskdeck-backend/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist or is not
	// visible to the caller. Handlers never distinguish the two.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an insert or profile update
	// violates the unique index on users.email.
	ErrDuplicateEmail = errors.New("email already in use")
)

// UserStore is the persistence contract for user documents. Token and
// avatar mutations are individual atomic operations so that, for example,
// logout removes exactly the one token it targets regardless of concurrent
// logins on other devices.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIDAndToken resolves a user only when the exact token string is
	// present in the user's current token list. This containment check is
	// what makes logout effective while the signature stays valid.
	FindByIDAndToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error)

	AppendToken(ctx context.Context, id primitive.ObjectID, token string) error
	RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokens(ctx context.Context, id primitive.ObjectID) error

	// SaveProfile persists name, email, password hash, age and updated_at.
	// It deliberately leaves tokens and avatar untouched so a stale
	// in-memory copy cannot clobber concurrent session or avatar changes.
	SaveProfile(ctx context.Context, user *models.User) error

	SetAvatar(ctx context.Context, id primitive.ObjectID, avatar []byte) error
	ClearAvatar(ctx context.Context, id primitive.ObjectID) error

	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SortField is one sortBy term, applied in listed order.
type SortField struct {
	Field string
	Desc  bool
}

// TaskQuery carries the optional refinements of a task list request.
// Limit and Skip values <= 0 mean "no limit" / "no skip".
type TaskQuery struct {
	Completed *bool
	Limit     int64
	Skip      int64
	Sort      []SortField
}

// TaskStore is the persistence contract for task documents. Every read and
// write is scoped to the owner so a task owned by somebody else behaves
// exactly like a task that does not exist.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByOwner(ctx context.Context, owner primitive.ObjectID, query TaskQuery) ([]models.Task, error)
	FindByIDAndOwner(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error)

	// SaveFields persists description, completed and updated_at after a
	// fetch-then-save update.
	SaveFields(ctx context.Context, task *models.Task) error

	// DeleteByIDAndOwner removes a task and returns its last state.
	DeleteByIDAndOwner(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error)

	// DeleteByOwner removes every task owned by the user. Used by the
	// user-delete cascade.
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) error
}
