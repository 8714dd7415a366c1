package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/darkclainer/kabgo/pkg/parser"
	"github.com/darkclainer/kabgo/pkg/querier"
)

const (
	codeErrorArgs = iota + 1
	codeInternalError
)

const fetchTimeout = 30 * time.Second

func exitf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

func downloadPage(page, host string) ([]byte, error) {
	q := querier.NewRemote(nil, nil, nil, &querier.Config{Host: host})
	defer q.Close(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	return q.Fetch(ctx, page)
}

func savePage(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0660); err != nil { // nolint:gosec // debug output
		return fmt.Errorf("can not save page to %s: %w", path, err)
	}
	return nil
}

// run parses one page described by args and prints it to stdout as json.
// Returned code is meaningful only with non-nil error.
func run(args []string, stdout io.Writer) (int, error) {
	flags := pflag.NewFlagSet("kabpage", pflag.ContinueOnError)
	webPage := flags.StringP("url", "u", "", "page path or url that you want to fetch from the web")
	localPath := flags.StringP("file", "f", "", "Local html file for parsing")
	savePath := flags.StringP("save", "s", "", "name of file where fetched html will be saved")
	host := flags.String("host", "", "dictionary host")
	categories := flags.Bool("categories", false, "parse categories instead of entries")
	if err := flags.Parse(args); err != nil {
		return codeErrorArgs, err
	}

	var input io.Reader
	switch {
	case *webPage != "" && *localPath != "":
		return codeErrorArgs, errors.New("both -u and -f can not be specified at the same time")
	case *webPage != "":
		pageBytes, err := downloadPage(*webPage, *host)
		if err != nil {
			return codeInternalError, fmt.Errorf("can not download page %s: %w", *webPage, err)
		}
		if *savePath != "" {
			if err := savePage(*savePath, pageBytes); err != nil {
				return codeInternalError, err
			}
		}
		input = bytes.NewReader(pageBytes)
	case *localPath != "":
		file, err := os.Open(*localPath)
		if err != nil {
			return codeErrorArgs, fmt.Errorf("can not open file %s: %w", *localPath, err)
		}
		defer file.Close()
		input = file
	default:
		return codeErrorArgs, errors.New("you should specify either -u or -f")
	}

	var parsed interface{}
	var err error
	if *categories {
		parsed, err = parser.ParseCategoriesHTML(input)
	} else {
		parsed, err = parser.ParseEntriesHTML(input)
	}
	if err != nil {
		return codeErrorArgs, fmt.Errorf("can not parse page: %w", err)
	}
	s, err := json.MarshalIndent(parsed, "", "\t")
	if err != nil {
		return codeInternalError, fmt.Errorf("can not marshal page: %w", err)
	}
	fmt.Fprintf(stdout, "%s\n", s)
	return 0, nil
}

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		exitf(code, "%s\n", err)
	}
}
