package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dixis/shipping/internal/cache"
	"github.com/dixis/shipping/internal/domain"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const snapshotCacheKey = "reference:snapshot"

// Store hands out the current Snapshot. Snapshots are kept in process for ttl
// and shared between instances through an optional cache.
type Store struct {
	source domain.ReferenceSource
	cache  cache.Cache
	ttl    time.Duration
	logger *otelzap.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *Snapshot
	expires time.Time
}

// NewStore creates a Store. c may be nil.
func NewStore(source domain.ReferenceSource, c cache.Cache, ttl time.Duration, logger *otelzap.Logger) *Store {
	return &Store{
		source: source,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns a valid snapshot, reloading once the previous one expired.
// A reload that fails validation keeps serving the previous snapshot.
func (s *Store) Current(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.now().Before(s.expires) {
		return s.current, nil
	}

	data, err := s.load(ctx)
	if err == nil {
		var snap *Snapshot
		if snap, err = NewSnapshot(data); err == nil {
			s.current = snap
			s.expires = s.now().Add(s.ttl)
			s.logger.Info("Reference snapshot loaded",
				zap.String("version", snap.Version),
				zap.Int("zones", len(data.Zones)),
				zap.Int("rates", len(data.Rates)),
			)
			return snap, nil
		}
	}

	if s.current != nil {
		s.logger.Error("Reference reload failed, keeping previous snapshot",
			zap.String("version", s.current.Version),
			zap.Error(err),
		)
		s.expires = s.now().Add(s.ttl)
		return s.current, nil
	}
	return nil, err
}

// Invalidate drops the in-process and shared snapshot.
func (s *Store) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, snapshotCacheKey)
}

func (s *Store) load(ctx context.Context) (*domain.ReferenceData, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, snapshotCacheKey)
		switch {
		case err == nil:
			var data domain.ReferenceData
			decodeErr := json.Unmarshal(raw, &data)
			if decodeErr == nil {
				return &data, nil
			}
			s.logger.Warn("Discarding undecodable cached snapshot", zap.Error(decodeErr))
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn("Snapshot cache unavailable", zap.Error(err))
		}
	}

	data, err := s.source.LoadReferenceData(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(data); err == nil {
			if err := s.cache.Set(ctx, snapshotCacheKey, raw, s.ttl); err != nil {
				s.logger.Warn("Failed to share snapshot", zap.Error(err))
			}
		}
	}
	return data, nil
}
