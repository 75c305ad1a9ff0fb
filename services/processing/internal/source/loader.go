package source

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"jobtrends/common/cache"
	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/processing/source")

// Loader reads a raw dataset from a local path or an http(s) URL.
type Loader struct {
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewLoader builds a Loader. c may be nil, in which case remote bodies are
// always downloaded.
func NewLoader(client *http.Client, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{
		client:   client,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads and parses the raw table at location. A missing source is
// reported as a NOT_FOUND domain error.
func (l *Loader) Load(ctx context.Context, location string) (jobs.Table, error) {
	ctx, span := tracer.Start(ctx, "Loader.Load")
	defer span.End()
	span.SetAttributes(telemetry.String("source.location", location))

	var (
		data []byte
		err  error
	)
	if IsRemote(location) {
		data, err = l.fetch(ctx, location)
	} else {
		data, err = l.readFile(location)
	}
	if err != nil {
		span.RecordError(err)
		return jobs.Table{}, err
	}

	table, err := jobs.ReadRawCSV(bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return jobs.Table{}, fmt.Errorf("parse %s: %w", location, err)
	}

	span.SetAttributes(telemetry.Int("source.rows", len(table.Records)))
	l.logger.Info("loaded raw dataset",
		zap.String("location", location),
		zap.Int("rows", len(table.Records)),
		zap.Int("columns", len(table.Columns)))
	return table, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.NotFound(fmt.Sprintf("raw dataset %s", path), err)
	}
	if err != nil {
		return nil, errors.Internal(fmt.Sprintf("reading %s", path), err)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	cacheKey := cache.Key("source", url)
	if l.cache != nil {
		var cached []byte
		err := l.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			l.logger.Debug("cache hit for raw dataset", zap.String("url", url))
			return cached, nil
		}
		if !stderrors.Is(err, cache.ErrNotFound) {
			l.logger.Warn("cache error for raw dataset", zap.String("url", url), zap.Error(err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.InvalidInput("creating request", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Unavailable(fmt.Sprintf("fetching %s", url), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			l.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFound(fmt.Sprintf("raw dataset %s", url), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errors.Unavailable(fmt.Sprintf("fetching %s: unexpected status %d", url, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Unavailable(fmt.Sprintf("reading body of %s", url), err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, cacheKey, data, l.cacheTTL); err != nil {
			l.logger.Warn("failed to cache raw dataset", zap.String("url", url), zap.Error(err))
		}
	}
	return data, nil
}
