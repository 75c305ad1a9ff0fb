package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"jobtrends/common/cache"
	"jobtrends/common/errors"
	"jobtrends/common/jobs"
	"jobtrends/common/telemetry"
	"jobtrends/services/ingestion/internal/config"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobtrends/ingestion/api")

type DatasetClient interface {
	FetchTable(ctx context.Context) (jobs.Table, error)
}

type datasetClient struct {
	client *http.Client
	logger *zap.Logger
	config *config.Config
	cache  cache.Cache
}

func NewDatasetClient(logger *zap.Logger, config *config.Config, c cache.Cache) DatasetClient {
	return &datasetClient{
		client: &http.Client{
			Timeout: config.DatasetTimeout,
		},
		logger: logger,
		config: config,
		cache:  c,
	}
}

// FetchTable downloads the remote CSV, served from cache while it is fresh,
// and parses it into a raw table.
func (c *datasetClient) FetchTable(ctx context.Context) (jobs.Table, error) {
	ctx, span := tracer.Start(ctx, "FetchTable")
	defer span.End()

	body, err := c.fetchCSV(ctx)
	if err != nil {
		span.RecordError(err)
		return jobs.Table{}, err
	}

	table, err := jobs.ReadRawCSV(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return jobs.Table{}, err
	}
	span.SetAttributes(telemetry.Int("dataset.rows", len(table.Records)))
	return table, nil
}

func (c *datasetClient) fetchCSV(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "fetchCSV")
	defer span.End()

	url := c.config.DatasetURL
	cacheKey := cache.Key("dataset", "csv", url)

	var cached []byte
	err := c.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		span.SetAttributes(telemetry.String("cache.result", "hit"))
		c.logger.Debug("cache hit for dataset", zap.String("url", url))
		return cached, nil
	} else if !stderrors.Is(err, cache.ErrNotFound) {
		span.SetAttributes(telemetry.String("cache.result", "error"))
		span.RecordError(err)
		c.logger.Warn("cache error for dataset", zap.Error(err))
	} else {
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	}

	c.logger.Debug("cache miss, downloading dataset", zap.String("url", url))
	span.SetAttributes(telemetry.String("http.url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Internal("creating request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("failed to execute request", zap.Error(err))
		return nil, errors.Unavailable("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(
		telemetry.Int("http.status_code", resp.StatusCode),
		telemetry.String("http.method", http.MethodGet),
	)

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Warn("dataset not found", zap.String("url", url))
		return nil, errors.NotFound("dataset not found", nil)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status code", zap.Int("status_code", resp.StatusCode))
		return nil, errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Unavailable("reading response", err)
	}

	c.logger.Info("downloaded dataset",
		zap.String("url", url),
		zap.Int("bytes", len(body)))

	if err := c.cache.Set(ctx, cacheKey, body, c.config.CacheTTL); err != nil {
		c.logger.Warn("failed to cache dataset", zap.Error(err))
	}

	return body, nil
}
