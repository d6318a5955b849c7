package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validStatuses = map[string]bool{
	"success": true,
	"failure": true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record validates and persists one audit entry, assigning id and creation
// time. Callers never supply either.
func (s *Service) Record(ctx context.Context, e *Entry) error {
	if e.Action == "" {
		return fmt.Errorf("action is required")
	}
	if e.Resource == "" {
		return fmt.Errorf("resource is required")
	}
	if e.Status == "" {
		e.Status = "success"
	}
	if !validStatuses[e.Status] {
		return fmt.Errorf("invalid status: %s", e.Status)
	}

	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) SearchEntries(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, fmt.Errorf("invalid status filter: %s", f.Status)
	}
	return s.repo.Search(ctx, f, limit, offset)
}
