package querier

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/darkclainer/kabgo/pkg/parser"
)

// Cached keeps successful answers of wrapped querier in badger.
// Errors are never cached.
type Cached struct {
	querier Querier
	storage *Storage
	logger  *zap.Logger
}

func NewCached(querier Querier, storage *badger.DB, logger *zap.Logger, config *CachedConfig) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		querier: querier,
		storage: &Storage{DB: storage, TTL: config.TTL},
		logger:  logger,
	}
}

func (c *Cached) Categories(ctx context.Context) ([]*parser.Category, error) {
	cached, err := c.storage.GetCategories()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		c.logger.Warn("Can not read cached categories", zap.Error(err))
	}
	categories, err := c.querier.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.storage.PutCategories(categories); err != nil {
		c.logger.Warn("Can not cache categories", zap.Error(err))
	}
	return categories, nil
}

func (c *Cached) Entries(ctx context.Context, page string) ([]*parser.LexicalEntry, error) {
	cached, err := c.storage.GetEntries(page)
	if err == nil {
		c.logger.Debug("Page served from cache", zap.String("page", page))
		return cached, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		c.logger.Warn("Can not read cached page", zap.String("page", page), zap.Error(err))
	}
	entries, err := c.querier.Entries(ctx, page)
	if err != nil {
		return nil, err
	}
	if err := c.storage.PutEntries(page, entries); err != nil {
		c.logger.Warn("Can not cache page", zap.String("page", page), zap.Error(err))
	}
	return entries, nil
}

func (c *Cached) Close(ctx context.Context) error {
	var errs error
	if closeErr := c.querier.Close(ctx); closeErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("querier close failed: %w", closeErr))
	}
	if closeErr := c.storage.Close(); closeErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("storage close failed: %w", closeErr))
	}
	return errs
}
