package esodm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/esodm/internal/db"
	"github.com/kailas-cloud/esodm/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/esodm/internal/db/redis"
	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
	"github.com/kailas-cloud/esodm/internal/domain/update"
	"github.com/kailas-cloud/esodm/internal/repository/querycache"
	documentrepo "github.com/kailas-cloud/esodm/internal/repository/document"
	indexrepo "github.com/kailas-cloud/esodm/internal/repository/index"
	searchrepo "github.com/kailas-cloud/esodm/internal/repository/search"
	bulkuc "github.com/kailas-cloud/esodm/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/esodm/internal/usecase/document"
	indexuc "github.com/kailas-cloud/esodm/internal/usecase/index"
	searchuc "github.com/kailas-cloud/esodm/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type indexUseCase interface {
	Create(ctx context.Context, name string, def mapping.Definition) error
	Ensure(ctx context.Context, name string, def mapping.Definition) (bool, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, name string) error
}

type documentUseCase interface {
	Save(ctx context.Context, index, id string, source []byte) (domdoc.Info, error)
	Get(ctx context.Context, index, id string) (json.RawMessage, error)
	Update(ctx context.Context, index string, u update.ByID) (*update.Response, error)
	Delete(ctx context.Context, index, id string) (string, error)
	Count(ctx context.Context, index string, q query.Query) (int64, error)
	UpdateByQuery(ctx context.Context, index string, u update.ByQuery) (*update.ByQueryResponse, error)
	DeleteByQuery(
		ctx context.Context, index string, q query.Query, opts documentuc.DeleteByQueryOptions,
	) (*update.ByQueryResponse, error)
}

type bulkUseCase interface {
	Index(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Info, error)
	Delete(ctx context.Context, index string, ids []string) ([]domdoc.Info, error)
}

type searchUseCase interface {
	Search(ctx context.Context, index string, req *request.Request) (*result.Hits, error)
}

// Client is the esodm entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	kv        *dbRedis.Store
	indexSvc  indexUseCase
	docSvc    documentUseCase
	bulkSvc   bulkUseCase
	searchSvc searchUseCase
	obs       *observer
}

// New creates a Client and waits until the cluster answers.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("esodm: elasticsearch address required (use WithAddresses)")
	}
	if !cfg.refresh.Valid() {
		return nil, fmt.Errorf("esodm: invalid refresh policy %q", cfg.refresh)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := elastic.NewStore(elastic.Config{
		Addrs:               cfg.addrs,
		Username:            cfg.username,
		Password:            cfg.password,
		APIKey:              cfg.apiKey,
		MaxRetries:          cfg.maxRetries,
		RetryOnStatus:       cfg.retryOnStatus,
		CompressRequestBody: cfg.compress,
		Transport:           cfg.transport,
		Logger:              cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("esodm: create elasticsearch store: %w", err)
	}
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		return nil, fmt.Errorf("esodm: elasticsearch not ready: %w", err)
	}

	var kv *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		kv, err = dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			return nil, fmt.Errorf("esodm: create cache store: %w", err)
		}
	}

	return wireClient(store, kv, cfg, obs), nil
}

func wireClient(store db.Store, kv *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	var (
		searchStore interface {
			Search(ctx context.Context, index string, body []byte) ([]byte, error)
		} = store
		invalidator interface {
			Invalidate(ctx context.Context, index string) error
		}
	)
	if kv != nil {
		ttl := cfg.cacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		cache := querycache.New(store, kv, ttl, nil, cfg.logger)
		searchStore, invalidator = cache, cache
	}

	docRepo := documentrepo.New(store, cfg.refresh)
	return &Client{
		store:     store,
		kv:        kv,
		indexSvc:  indexuc.New(indexrepo.New(store), invalidator),
		docSvc:    documentuc.New(docRepo, invalidator),
		bulkSvc:   bulkuc.New(docRepo, invalidator).WithLimits(cfg.bulkSize, cfg.bulkBytes, cfg.bulkWorkers),
		searchSvc: searchuc.New(searchrepo.New(searchStore)).WithPagination(cfg.defaultPageSize, cfg.maxPageSize),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.kv != nil {
		c.kv.Close()
	}
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("", "ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
