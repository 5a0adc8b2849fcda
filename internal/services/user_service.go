package services

import (
	"context"
	"strings"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type UserService struct {
	store repositories.Store
}

func NewUserService(store repositories.Store) *UserService {
	return &UserService{store: store}
}

type UserPatch struct {
	Username models.Optional[string] `json:"username"`
	Email    models.Optional[string] `json:"email"`
}

func (s *UserService) Create(ctx context.Context, username string, email *string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewValidationError("username", "must not be empty")
	}

	user := &models.User{Username: username, Email: email}
	if err := s.store.Repos().Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.Repos().Users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, page reports.Page) (reports.List[*models.User], error) {
	users, total, err := s.store.Repos().Users.List(ctx, page)
	if err != nil {
		return reports.List[*models.User]{}, err
	}
	return reports.NewList(users, page, total, nil), nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	if patch.Username.Set && (!patch.Username.Valid || strings.TrimSpace(patch.Username.Value) == "") {
		return nil, NewValidationError("username", "must not be empty")
	}

	repos := s.store.Repos()
	user, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Username.Set {
		user.Username = strings.TrimSpace(patch.Username.Value)
	}
	patch.Email.ApplyTo(&user.Email)

	if err := repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user together with everything it owns.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.store.Repos().Users.Delete(ctx, id)
}
