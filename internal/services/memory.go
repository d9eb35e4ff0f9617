package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskdeck/taskdeck-backend/internal/models"
)

// MemoryUserStore is an in-memory UserStore. It mirrors the Mongo store's
// semantics (unique email, per-operation token mutations) and backs the
// handler and middleware tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func copyUser(u *models.User) *models.User {
	dup := *u
	dup.Tokens = append([]string(nil), u.Tokens...)
	dup.Avatar = append([]byte(nil), u.Avatar...)
	return &dup
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByIDAndToken(_ context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, t := range user.Tokens {
		if t == token {
			return copyUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) AppendToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Tokens = append(user.Tokens, token)
	return nil
}

func (s *MemoryUserStore) RemoveToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept
	return nil
}

func (s *MemoryUserStore) ClearTokens(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Tokens = []string{}
	return nil
}

func (s *MemoryUserStore) SaveProfile(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range s.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Password = user.Password
	stored.Age = user.Age
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

func (s *MemoryUserStore) SetAvatar(_ context.Context, id primitive.ObjectID, avatar []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Avatar = append([]byte(nil), avatar...)
	return nil
}

func (s *MemoryUserStore) ClearAvatar(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Avatar = nil
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// MemoryTaskStore is an in-memory TaskStore with the same ownership scoping
// and query semantics as the Mongo store.
type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks []*models.Task
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{}
}

func (s *MemoryTaskStore) Insert(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := *task
	s.tasks = append(s.tasks, &dup)
	return nil
}

func (s *MemoryTaskStore) FindByOwner(_ context.Context, owner primitive.ObjectID, query TaskQuery) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Task
	for _, task := range s.tasks {
		if task.Owner != owner {
			continue
		}
		if query.Completed != nil && task.Completed != *query.Completed {
			continue
		}
		matched = append(matched, *task)
	}

	if len(query.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, field := range query.Sort {
				cmp := compareTasks(&matched[i], &matched[j], field.Field)
				if cmp == 0 {
					continue
				}
				if field.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if query.Skip > 0 {
		if query.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[query.Skip:]
		}
	}
	if query.Limit > 0 && int64(len(matched)) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func compareTasks(a, b *models.Task, field string) int {
	switch field {
	case "description":
		return strings.Compare(a.Description, b.Description)
	case "completed":
		if a.Completed == b.Completed {
			return 0
		}
		if b.Completed {
			return -1
		}
		return 1
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}

func (s *MemoryTaskStore) FindByIDAndOwner(_ context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.ID == id && task.Owner == owner {
			dup := *task
			return &dup, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryTaskStore) SaveFields(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.tasks {
		if stored.ID == task.ID && stored.Owner == task.Owner {
			stored.Description = task.Description
			stored.Completed = task.Completed
			stored.UpdatedAt = task.UpdatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryTaskStore) DeleteByIDAndOwner(_ context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, task := range s.tasks {
		if task.ID == id && task.Owner == owner {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return task, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryTaskStore) DeleteByOwner(_ context.Context, owner primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, task := range s.tasks {
		if task.Owner != owner {
			kept = append(kept, task)
		}
	}
	s.tasks = kept
	return nil
}
