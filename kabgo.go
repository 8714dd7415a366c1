// Package kabgo collects entries of the Kabyle dictionary into a local file.
//
// The work is split between packages: pkg/querier fetches pages, pkg/parser
// extracts entries from their markup, pkg/writer stores entries and
// pkg/collector drives pages through them one after another.
package kabgo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/darkclainer/kabgo/pkg/collector"
	"github.com/darkclainer/kabgo/pkg/querier"
	"github.com/darkclainer/kabgo/pkg/writer"
)

type Options struct {
	// Output is derived from selected categories when empty
	Output string
	Format string
	Append bool

	Remote    querier.Config
	Cached    querier.CachedConfig
	Collector collector.Config
}

// NewQuerier returns remote querier, wrapped with cache when options ask for it
func NewQuerier(logger *zap.Logger, opts *Options) (querier.Querier, error) {
	var q querier.Querier
	q = querier.NewRemote(nil, nil, logger.Named("remote"), &opts.Remote)
	if opts.Cached.Enabled() {
		db, err := querier.OpenStorage(&opts.Cached, logger)
		if err != nil {
			_ = q.Close(context.Background())
			return nil, err
		}
		q = querier.NewCached(q, db, logger.Named("cache"), &opts.Cached)
	}
	return q, nil
}

type Result struct {
	Output string
	Stats  *collector.Stats
}

// Collect fetches categories, writes entries of selected ones and returns
// where they were written. Result is returned even on failure if output was opened.
func Collect(ctx context.Context, logger *zap.Logger, q querier.Querier, opts *Options) (*Result, error) {
	categories, err := q.Categories(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := collector.Select(categories, opts.Collector.Categories)
	if err != nil {
		return nil, err
	}
	pages := collector.Plan(selected, opts.Collector.EntriesPerPage)

	result := &Result{Output: opts.Output}
	if result.Output == "" {
		result.Output = collector.DefaultOutput(selected, opts.Format)
	}
	w, err := writer.Open(result.Output, &writer.Config{Format: opts.Format, Append: opts.Append})
	if err != nil {
		return nil, err
	}

	c, err := collector.New(logger.Named("collector"), q, w, &opts.Collector)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	logger.Info("Collecting",
		zap.Int("categories", len(selected)),
		zap.Int("pages", len(pages)),
		zap.String("output", result.Output),
	)
	result.Stats, err = c.Run(ctx, pages)
	if closeErr := w.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("can not close output: %w", closeErr)
	}
	return result, err
}
