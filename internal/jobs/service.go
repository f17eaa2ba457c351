// Package jobs owns the lifecycle of job applications: creation, owner-scoped
// reads, and updates/deletes that only the owner may perform.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/jobtrail/internal/cache"
	"github.com/geocoder89/jobtrail/internal/domain/job"
	"github.com/geocoder89/jobtrail/internal/utils"
)

// Store persists jobs. GetByID, Update and Delete return job.ErrNotFound
// when no row matches.
type Store interface {
	Create(ctx context.Context, j job.Job) error
	GetByID(ctx context.Context, id string) (job.Job, error)
	ListByOwner(ctx context.Context, ownerID string, f job.Filter) ([]job.Job, error)
	Update(ctx context.Context, j job.Job) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, ownerID string) (job.Stats, error)
}

// CacheObserver records stats cache lookups; *observability.Prom implements it.
type CacheObserver interface {
	ObserveCache(result string)
}

type Service struct {
	store Store
	cache cache.Store
	obs   CacheObserver
	log   *slog.Logger
	now   func() time.Time
}

// NewService wires the job store; c may be nil to disable stats caching.
func NewService(store Store, c cache.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, cache: c, log: log, now: time.Now}
}

func (s *Service) WithCacheObserver(obs CacheObserver) *Service {
	s.obs = obs
	return s
}

func (s *Service) observeCache(result string) {
	if s.obs != nil {
		s.obs.ObserveCache(result)
	}
}

// timestamp is the current time at the precision every store keeps, so a
// write returns what a later read will.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) Create(ctx context.Context, ownerID string, req job.CreateRequest) (job.Job, error) {
	j, err := job.New(ownerID, req, s.timestamp())
	if err != nil {
		return job.Job{}, err
	}

	if err := s.store.Create(ctx, j); err != nil {
		return job.Job{}, fmt.Errorf("create job: %w", err)
	}

	s.invalidateStats(ctx, ownerID)
	return j, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string, f job.Filter) ([]job.Job, error) {
	out, err := s.store.ListByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (job.Job, error) {
	return s.store.GetByID(ctx, id)
}

// Update merges the provided fields. Concurrent updates of the same job are
// last-write-wins.
func (s *Service) Update(ctx context.Context, id, requesterID string, req job.UpdateRequest) (job.Job, error) {
	current, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return job.Job{}, err
	}

	updated, err := current.Apply(req, s.timestamp())
	if err != nil {
		return job.Job{}, err
	}

	if err := s.store.Update(ctx, updated); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, err
		}
		return job.Job{}, fmt.Errorf("update job: %w", err)
	}

	s.invalidateStats(ctx, updated.OwnerID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	current, err := s.authorize(ctx, id, requesterID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete job: %w", err)
	}

	s.invalidateStats(ctx, current.OwnerID)
	return nil
}

// Stats counts the owner's jobs per status, through the cache when one is set.
func (s *Service) Stats(ctx context.Context, ownerID string) (job.Stats, error) {
	key := utils.BuildJobStatsCacheKey(ownerID)

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.observeCache("error")
			s.log.WarnContext(ctx, "stats cache read failed", "err", err)
		case ok:
			var st job.Stats
			if err := json.Unmarshal(raw, &st); err == nil {
				s.observeCache("hit")
				return st, nil
			}
			s.observeCache("miss")
		default:
			s.observeCache("miss")
		}
	}

	st, err := s.store.CountByStatus(ctx, ownerID)
	if err != nil {
		return job.Stats{}, fmt.Errorf("count jobs: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(st); err == nil {
			if err := s.cache.Set(ctx, key, raw); err != nil {
				s.log.WarnContext(ctx, "stats cache write failed", "err", err)
			}
		}
	}

	return st, nil
}

// authorize loads the job and applies the ownership check.
func (s *Service) authorize(ctx context.Context, id, requesterID string) (job.Job, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return job.Job{}, err
	}

	if !job.CanMutate(requesterID, current) {
		return job.Job{}, job.ErrForbidden
	}

	return current, nil
}

func (s *Service) invalidateStats(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, utils.BuildJobStatsCacheKey(ownerID)); err != nil {
		s.log.WarnContext(ctx, "stats cache invalidation failed", "err", err, "owner_id", ownerID)
	}
}
