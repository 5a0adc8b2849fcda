package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/repositories"
)

type TokenService struct {
	store repositories.Store
	auth  *AuthService
}

func NewTokenService(store repositories.Store, auth *AuthService) *TokenService {
	return &TokenService{store: store, auth: auth}
}

type IssueTokenRequest struct {
	// Token is used verbatim when set, otherwise a random one is generated.
	Token     string
	Status    models.TokenStatus
	UserID    int64
	ProjectID int64
}

// Issue stores a new token for a project owned by the given user.
func (s *TokenService) Issue(ctx context.Context, req IssueTokenRequest) (*models.Token, error) {
	if req.Status == "" {
		req.Status = models.TokenStatusActive
	}
	if !req.Status.Valid() {
		return nil, NewValidationError("status", "must be ACTIVE or INACTIVE")
	}
	if req.Token == "" {
		req.Token = uuid.NewString()
	}

	repos := s.store.Repos()
	project, err := repos.Projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != req.UserID {
		return nil, NewValidationError("project_id", "project does not belong to user")
	}

	token := &models.Token{
		Token:     req.Token,
		Status:    req.Status,
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
	}
	if err := repos.Tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// List pages through tokens with their token strings masked. The full value
// is only ever returned by Issue.
func (s *TokenService) List(ctx context.Context, userID, projectID *int64, page reports.Page) (reports.List[*models.Token], error) {
	tokens, total, err := s.store.Repos().Tokens.List(ctx, userID, projectID, page)
	if err != nil {
		return reports.List[*models.Token]{}, err
	}
	for i, t := range tokens {
		masked := t.Masked()
		tokens[i] = &masked
	}

	filters := map[string]any{}
	if userID != nil {
		filters["user_id"] = *userID
	}
	if projectID != nil {
		filters["project_id"] = *projectID
	}
	return reports.NewList(tokens, page, total, filters), nil
}

// SetStatus activates or deactivates a token. The cached identity is dropped
// so a deactivation takes effect on the next request.
func (s *TokenService) SetStatus(ctx context.Context, token string, status models.TokenStatus) (*models.Token, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "must be ACTIVE or INACTIVE")
	}

	repos := s.store.Repos()
	if err := repos.Tokens.UpdateStatus(ctx, token, status); err != nil {
		return nil, err
	}
	s.auth.Forget(ctx, token)

	updated, err := repos.Tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to reload token: %w", err)
	}
	return updated, nil
}

func (s *TokenService) Revoke(ctx context.Context, token string) error {
	if err := s.store.Repos().Tokens.Delete(ctx, token); err != nil {
		return err
	}
	s.auth.Forget(ctx, token)
	return nil
}
