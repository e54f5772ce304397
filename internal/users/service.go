package users

import "context"

// RepositoryPort defines data access methods for user profiles.
type RepositoryPort interface {
	GetProfile(ctx context.Context, id int64) (*Profile, error)
	UpdateProfile(ctx context.Context, id int64, input UpdateProfileInput) (*Profile, error)
}

// Service handles profile business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the profile owned by userID.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile applies profile edits for userID.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*Profile, error) {
	return s.repo.UpdateProfile(ctx, userID, input)
}
