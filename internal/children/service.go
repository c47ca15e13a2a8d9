package children

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/identifier"
)

// Service exposes the read side of the child directory. Writes happen only
// through enrollment acceptance.
type Service interface {
	Lookup(ctx context.Context, ref string) (*models.Child, error)
	ActiveWithGroups(ctx context.Context) ([]models.Child, error)
	All(ctx context.Context) ([]models.Child, error)
}

type service struct {
	repo Repository
}

// NewService builds a child directory service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("children repository required")
	}
	return &service{repo: repo}, nil
}

// Lookup resolves a reference of either identifier generation to a child.
// Exact lookups hit the store directly; the containment fallback scans the
// whole directory and only fires when nothing matched exactly. Inactive
// children still resolve here so legacy ledger refs keep working after a
// child leaves.
func (s *service) Lookup(ctx context.Context, ref string) (*models.Child, error) {
	norm := identifier.Normalize(ref)
	if norm == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "child reference required")
	}

	if id, err := uuid.Parse(norm); err == nil {
		child, err := s.repo.FindByID(ctx, id)
		if err == nil {
			return child, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "child lookup failed")
		}
	}

	child, err := s.repo.FindByLegacyID(ctx, norm)
	if err == nil {
		return child, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "child lookup failed")
	}

	kids, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "child lookup failed")
	}
	cands := make([]identifier.Candidate, len(kids))
	for i, c := range kids {
		cands[i] = c.IdentifierCandidate()
	}
	if idx, kind := identifier.Resolve(norm, cands); kind != identifier.MatchNone {
		return &kids[idx], nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "child not found")
}

func (s *service) ActiveWithGroups(ctx context.Context) ([]models.Child, error) {
	out, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing children failed")
	}
	return out, nil
}

// All returns every child on file, inactive and soft-deleted included. The
// ledger uses it to resolve historical refs.
func (s *service) All(ctx context.Context) ([]models.Child, error) {
	out, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing children failed")
	}
	return out, nil
}
