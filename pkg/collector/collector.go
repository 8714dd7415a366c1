package collector

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/darkclainer/kabgo/pkg/parser"
	"github.com/darkclainer/kabgo/pkg/querier"
	"github.com/darkclainer/kabgo/pkg/writer"
)

const (
	defaultEntriesPerPage = 10
	allCategoriesOutput   = "all_kabyle_words"
)

type Config struct {
	// Categories selects categories by name or path slug, empty means all
	Categories []string
	// EntriesPerPage is how many entries site shows on one listing page
	EntriesPerPage int
	// Delay is minimal pause between two pages, actual pause is in [Delay, 2*Delay)
	Delay time.Duration
	// KeepGoing makes collector log failed page and continue with the next one
	KeepGoing bool
	// Filter is tengo expression, entry is written only when it is true
	Filter string
}

// Page is one listing page of category
type Page struct {
	Category *parser.Category
	Number   int
	Path     string
}

type Stats struct {
	Pages   int
	Failed  int
	Entries int
	Skipped int
}

type Collector struct {
	q      querier.Querier
	w      writer.Writer
	filter *Filter
	config *Config
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(logger *zap.Logger, q querier.Querier, w writer.Writer, config *Config) (*Collector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.EntriesPerPage < 1 {
		config.EntriesPerPage = defaultEntriesPerPage
	}
	filter, err := NewFilter(config.Filter)
	if err != nil {
		return nil, err
	}
	return &Collector{
		q:      q,
		w:      w,
		filter: filter,
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

// Select returns categories matching names by name (case insensitive) or by path slug.
// Empty names selects everything. Category named several times is selected once.
func Select(categories []*parser.Category, names []string) ([]*parser.Category, error) {
	if len(names) == 0 {
		return categories, nil
	}
	selected := make([]*parser.Category, 0, len(names))
	seen := make(map[*parser.Category]bool, len(names))
	for _, name := range names {
		category := findCategory(categories, name)
		if category == nil {
			return nil, fmt.Errorf("unknown category: %s", name)
		}
		if seen[category] {
			continue
		}
		seen[category] = true
		selected = append(selected, category)
	}
	return selected, nil
}

func findCategory(categories []*parser.Category, name string) *parser.Category {
	name = strings.TrimSpace(name)
	for _, category := range categories {
		if strings.EqualFold(category.Name, name) || category.Slug() == strings.Trim(name, "/") {
			return category
		}
	}
	return nil
}

// Plan lists all pages of categories in order
func Plan(categories []*parser.Category, perPage int) []*Page {
	if perPage < 1 {
		perPage = defaultEntriesPerPage
	}
	var pages []*Page
	for _, category := range categories {
		for n := 1; n <= category.Pages(perPage); n++ {
			pages = append(pages, &Page{
				Category: category,
				Number:   n,
				Path:     category.PagePath(n),
			})
		}
	}
	return pages
}

// DefaultOutput returns output file name for selected categories
func DefaultOutput(selected []*parser.Category, format string) string {
	name := allCategoriesOutput
	if len(selected) == 1 {
		name = fileName(selected[0])
	}
	return name + "." + writer.Extension(format)
}

var pathReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// fileName keeps output in working directory whatever the site names category
func fileName(category *parser.Category) string {
	name := strings.TrimSpace(pathReplacer.Replace(category.Name))
	if strings.Trim(name, ".") != "" {
		return name
	}
	if slug := category.Slug(); strings.Trim(slug, ".") != "" {
		return slug
	}
	return allCategoriesOutput
}

// Run fetches pages one after another and writes their entries.
// Without KeepGoing the first failure stops the run. Entries written before
// failure stay in output.
func (c *Collector) Run(ctx context.Context, pages []*Page) (*Stats, error) {
	stats := &Stats{}
	var errs error
	for i, page := range pages {
		if i > 0 {
			if err := c.sleep(ctx, c.pause()); err != nil {
				return stats, multierr.Append(errs, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, multierr.Append(errs, err)
		}
		err := c.collectPage(ctx, page, stats)
		if err == nil {
			continue
		}
		stats.Failed++
		if !c.config.KeepGoing {
			return stats, err
		}
		c.logger.Error("Page collection failed",
			zap.String("page", page.Path),
			zap.String("category", page.Category.Name),
			zap.Error(err),
		)
		errs = multierr.Append(errs, err)
	}
	return stats, errs
}

func (c *Collector) collectPage(ctx context.Context, page *Page, stats *Stats) error {
	entries, err := c.q.Entries(ctx, page.Path)
	if err != nil {
		return fmt.Errorf("page %d of %s: %w", page.Number, page.Category.Name, err)
	}
	// planned pages are within category count, so empty one means markup has changed
	if len(entries) == 0 {
		return &parser.ParseError{Marker: ".lemma", Reason: fmt.Sprintf("planned page %s has no entries", page.Path)}
	}
	stats.Pages++
	kept := make([]*parser.LexicalEntry, 0, len(entries))
	for _, entry := range entries {
		stamped := *entry
		stamped.Collection = page.Category.Name
		keep, err := c.filter.Keep(&stamped)
		if err != nil {
			return err
		}
		if !keep {
			stats.Skipped++
			continue
		}
		kept = append(kept, &stamped)
	}
	if err := c.w.Write(kept); err != nil {
		return fmt.Errorf("can not write entries of %s: %w", page.Path, err)
	}
	stats.Entries += len(kept)
	c.logger.Info("Page collected",
		zap.String("page", page.Path),
		zap.Int("entries", len(kept)),
		zap.Int("total", stats.Entries),
	)
	return nil
}

func (c *Collector) pause() time.Duration {
	if c.config.Delay <= 0 {
		return 0
	}
	return c.config.Delay + time.Duration(rand.Int63n(int64(c.config.Delay))) // nolint:gosec // jitter only
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
