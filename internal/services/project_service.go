package services

import (
	"context"
	"strings"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type ProjectService struct {
	store repositories.Store
}

func NewProjectService(store repositories.Store) *ProjectService {
	return &ProjectService{store: store}
}

// Create adds a project for userID. Names are unique per user, so two users
// may each own a project with the same name.
func (s *ProjectService) Create(ctx context.Context, userID int64, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	repos := s.store.Repos()
	if _, err := repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	project := &models.Project{UserID: userID, Name: name}
	if err := repos.Projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	return s.store.Repos().Projects.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, userID *int64, page reports.Page) (reports.List[*models.Project], error) {
	projects, total, err := s.store.Repos().Projects.List(ctx, userID, page)
	if err != nil {
		return reports.List[*models.Project]{}, err
	}

	filters := map[string]any{}
	if userID != nil {
		filters["user_id"] = *userID
	}
	return reports.NewList(projects, page, total, filters), nil
}

func (s *ProjectService) Rename(ctx context.Context, id int64, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	repos := s.store.Repos()
	project, err := repos.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Name = name
	if err := repos.Projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	return s.store.Repos().Projects.Delete(ctx, id)
}
