package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/darkclainer/kabgo"
	"github.com/darkclainer/kabgo/pkg/parser"
	"github.com/darkclainer/kabgo/pkg/querier"
)

const (
	codeErrorArgs = iota + 1
	codeInternalError
	codeNetworkError
	codeParseError
)

func exitf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// exitCode classifies run error
func exitCode(err error) int {
	var networkErr *querier.NetworkError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &networkErr):
		return codeNetworkError
	case errors.As(err, &parseErr):
		return codeParseError
	default:
		return codeInternalError
	}
}

func printCategories(w io.Writer, categories []*parser.Category, perPage int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Category", "Slug", "Entries", "Pages"})
	total := 0
	for i, category := range categories {
		t.AppendRow(table.Row{i + 1, category.Name, category.Slug(), category.Count, category.Pages(perPage)})
		total += category.Count
	}
	t.AppendFooter(table.Row{"", "", "Total", strconv.Itoa(total), ""})
	t.Render()
}

func run(ctx context.Context, logger *zap.Logger, conf *Config) error {
	q, err := kabgo.NewQuerier(logger, &conf.Options)
	if err != nil {
		return err
	}
	defer func() {
		if err := q.Close(context.Background()); err != nil {
			logger.Error("Close error", zap.Error(err))
		}
	}()

	if conf.List {
		categories, err := q.Categories(ctx)
		if err != nil {
			return err
		}
		printCategories(os.Stdout, categories, conf.Collector.EntriesPerPage)
		return nil
	}

	result, err := kabgo.Collect(ctx, logger, q, &conf.Options)
	if result != nil && result.Stats != nil {
		logger.Info("Collection finished",
			zap.Int("pages", result.Stats.Pages),
			zap.Int("failed", result.Stats.Failed),
			zap.Int("entries", result.Stats.Entries),
			zap.Int("skipped", result.Stats.Skipped),
			zap.String("output", result.Output),
		)
	}
	return err
}

func main() {
	conf, zapConf, err := getConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		exitf(codeErrorArgs, "Failure while parsing arguments: %s\n", err)
	}
	logger, err := zapConf.Build()
	if err != nil {
		exitf(codeErrorArgs, "Failure while instatiating logger: %s\n", err)
	}
	defer logger.Sync() // nolint:errcheck // nothing to do on failure

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		logger.Warn("Interrupted, stopping")
		cancel()
	}()

	if err := run(ctx, logger, conf); err != nil {
		logger.Error("Collection failed", zap.Error(err))
		_ = logger.Sync()
		cancel()
		os.Exit(exitCode(err))
	}
	cancel()
}
