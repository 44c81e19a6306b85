package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListMiniatures(ctx context.Context) ([]Miniature, error)
	InsertCategory(ctx context.Context, name string) error
	UpdateCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error
	InsertMiniature(ctx context.Context, in MiniatureInput) error
	UpdateMiniature(ctx context.Context, id string, in MiniatureInput) error
	DeleteMiniature(ctx context.Context, id string) error
}

type ImageIngester interface {
	Ingest(ctx context.Context, image string) (string, error)
}

// Service serves reads from an in-memory mirror of the catalog. The mirror
// is replaced wholesale after every mutation, never patched; a failed reload
// leaves the previous (stale) mirror in place.
type Service struct {
	store  Store
	images ImageIngester
	log    zerolog.Logger

	mu         sync.RWMutex
	categories []Category
	miniatures []Miniature
}

func NewService(store Store, images ImageIngester, log zerolog.Logger) *Service {
	return &Service{store: store, images: images, log: log}
}

func (s *Service) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Service) Miniatures() []Miniature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Miniature, len(s.miniatures))
	copy(out, s.miniatures)
	return out
}

// Refresh reloads both mirrors. Each mirror keeps its previous value when
// its reload fails.
func (s *Service) Refresh(ctx context.Context) error {
	cerr := s.refreshCategories(ctx)
	merr := s.refreshMiniatures(ctx)
	if cerr != nil {
		return cerr
	}
	return merr
}

func (s *Service) refreshCategories(ctx context.Context) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("category reload failed, keeping stale mirror")
		return err
	}
	s.mu.Lock()
	s.categories = cats
	s.mu.Unlock()
	return nil
}

func (s *Service) refreshMiniatures(ctx context.Context) error {
	minis, err := s.store.ListMiniatures(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("miniature reload failed, keeping stale mirror")
		return err
	}
	s.mu.Lock()
	s.miniatures = minis
	s.mu.Unlock()
	return nil
}

func (s *Service) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name", ErrInvalidInput)
	}
	if err := s.store.InsertCategory(ctx, name); err != nil {
		return err
	}
	return s.refreshCategories(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name", ErrInvalidInput)
	}
	if err := s.store.UpdateCategory(ctx, id, name); err != nil {
		return err
	}
	return s.refreshCategories(ctx)
}

// DeleteCategory also reloads miniatures: their category references are
// detached, not cascade-deleted.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if err := s.refreshCategories(ctx); err != nil {
		return err
	}
	return s.refreshMiniatures(ctx)
}

func (s *Service) AddMiniature(ctx context.Context, in MiniatureInput) error {
	if err := validateMiniature(in); err != nil {
		return err
	}
	url, err := s.images.Ingest(ctx, in.Image)
	if err != nil {
		return err
	}
	in.Image = url
	if err := s.store.InsertMiniature(ctx, in); err != nil {
		return err
	}
	return s.refreshMiniatures(ctx)
}

func (s *Service) UpdateMiniature(ctx context.Context, id string, in MiniatureInput) error {
	if err := validateMiniature(in); err != nil {
		return err
	}
	url, err := s.images.Ingest(ctx, in.Image)
	if err != nil {
		return err
	}
	in.Image = url
	if err := s.store.UpdateMiniature(ctx, id, in); err != nil {
		return err
	}
	return s.refreshMiniatures(ctx)
}

func (s *Service) DeleteMiniature(ctx context.Context, id string) error {
	if err := s.store.DeleteMiniature(ctx, id); err != nil {
		return err
	}
	return s.refreshMiniatures(ctx)
}

func validateMiniature(in MiniatureInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: miniature name", ErrInvalidInput)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	return nil
}
