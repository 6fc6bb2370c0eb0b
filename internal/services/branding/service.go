// Package branding looks up stored company branding used as a fallback for
// records that carry none.
package branding

import (
	"context"
	"errors"

	"certforge/internal/ports"
)

type Service struct {
	profiles ports.ProfileRepository
}

func New(profiles ports.ProfileRepository) *Service {
	return &Service{profiles: profiles}
}

// Profile returns nil without error when the company is unknown or unset.
func (s *Service) Profile(ctx context.Context, companyID string) (map[string]any, error) {
	if companyID == "" || s.profiles == nil {
		return nil, nil
	}
	p, err := s.profiles.GetProfile(ctx, companyID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	return p, err
}
