package dataset

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"jobtrends/common/cache"
	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/dashboard/dataset")

// Store loads the enriched table and memoizes the parsed copy for ttl.
type Store struct {
	path   string
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	open   func(string) (*os.File, error)
}

func NewStore(path string, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		open:   os.Open,
	}
}

func (s *Store) cacheKey() string {
	return cache.Key("dataset", s.path)
}

// Load returns the enriched dataset, reading the file only on a cache miss.
func (s *Store) Load(ctx context.Context) (*jobs.Dataset, error) {
	ctx, span := tracer.Start(ctx, "Store.Load")
	defer span.End()

	key := s.cacheKey()
	ds := &jobs.Dataset{}
	err := s.cache.Get(ctx, key, ds)
	if err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		return ds, nil
	}
	if !stderrors.Is(err, cache.ErrNotFound) {
		span.SetAttributes(telemetry.String("cache.result", "error"))
		s.logger.Warn("dataset cache error", zap.Error(err))
	} else {
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	}

	ds, err = s.read()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(telemetry.Int("dataset.rows", len(ds.Jobs)))

	if err := s.cache.Set(ctx, key, ds, s.ttl); err != nil {
		s.logger.Warn("failed to cache dataset", zap.Error(err))
	}
	s.logger.Info("loaded enriched dataset",
		zap.String("path", s.path),
		zap.Int("rows", len(ds.Jobs)))
	return ds, nil
}

func (s *Store) read() (*jobs.Dataset, error) {
	f, err := s.open(s.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NotFound(fmt.Sprintf("enriched dataset %s", s.path), err)
		}
		return nil, errors.Internal(fmt.Sprintf("opening %s", s.path), err)
	}
	defer f.Close()

	ds, err := jobs.ReadEnrichedCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return ds, nil
}

// Invalidate drops the memoized copy so the next Load rereads the file.
func (s *Store) Invalidate(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.cacheKey()); err != nil && !stderrors.Is(err, cache.ErrNotFound) {
		return errors.Internal("invalidating dataset cache", err)
	}
	s.logger.Info("dataset cache invalidated", zap.String("path", s.path))
	return nil
}
