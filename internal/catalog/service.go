package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the material does not exist.
var ErrNotFound = errors.New("catalog: material not found")

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id string) (*Material, error)
	List(ctx context.Context) ([]MaterialWithStock, error)
}

// Service handles catalog business logic.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create stores a material and its 1:1 inventory record in one transaction.
// Stock counters start at zero; receipts move them.
func (s *Service) Create(ctx context.Context, req CreateMaterialRequest) (*Material, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("catalog: material name is required")
	}
	material := Material{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Grade:          req.Grade,
		Length:         req.Length,
		LengthUnits:    req.LengthUnits,
		Width:          req.Width,
		WidthUnits:     req.WidthUnits,
		Thickness:      req.Thickness,
		ThicknessUnits: req.ThicknessUnits,
		DefaultPrice:   req.DefaultPrice,
		PriceUnits:     req.PriceUnits,
		CreatedAt:      time.Now().UTC(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertMaterial(ctx, material); err != nil {
			return err
		}
		return tx.InitInventory(ctx, material.ID)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return &material, nil
}

// Get returns one material.
func (s *Service) Get(ctx context.Context, id string) (*Material, error) {
	return s.repo.Get(ctx, id)
}

// List returns all materials with their stock counters, served from cache
// when fresh.
func (s *Service) List(ctx context.Context) ([]MaterialWithStock, error) {
	if materials, ok := s.cache.GetList(ctx); ok {
		return materials, nil
	}
	materials, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, materials)
	return materials, nil
}
