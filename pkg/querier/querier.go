package querier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/darkclainer/kabgo/pkg/parser"
)

const (
	defaultHost      = "www.dictionnaire-kabyle.com"
	defaultProtocol  = "https"
	defaultIndexPath = "/category/isem-amalay-asuf/"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
	defaultTimeout      = 30 * time.Second
	defaultRetryWait    = time.Second
	defaultRetryMaxWait = 10 * time.Second
)

type Config struct {
	// ExtraHeader specifies what header will be added to each request
	ExtraHeader map[string]string
	UserAgent   string
	// Timeout specifies maximum wait time for each request
	Timeout time.Duration
	// Host specifies remote host to which request will be sent
	Host     string
	Protocol string
	// IndexPath is the page whose side column lists all categories
	IndexPath string
	// Retries is how many times failed request is repeated,
	// only transport errors, 429 and 5xx responses are retried
	Retries      int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	// MaxWorkers specifies how many worker parse html content of page
	// Zero value mean that it will be equal to number of logical CPU
	MaxWorkers int
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Protocol == "" {
		c.Protocol = defaultProtocol
	}
	if c.IndexPath == "" {
		c.IndexPath = defaultIndexPath
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryWait <= 0 {
		c.RetryWait = defaultRetryWait
	}
	if c.RetryMaxWait < c.RetryWait {
		c.RetryMaxWait = defaultRetryMaxWait
	}
	if c.MaxWorkers < 1 { // nolint:gomnd // if number not specified
		c.MaxWorkers = runtime.NumCPU()
	}
}

type Remote struct {
	client *resty.Client
	config *Config
	pool   *workerpool.WorkerPool
	p      Parser
	logger *zap.Logger
}

func NewRemote(client *http.Client, p Parser, logger *zap.Logger, config *Config) *Remote {
	if client == nil {
		client = &http.Client{}
	}
	if p == nil {
		p = &HTMLParser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.setDefaults()

	restyClient := resty.NewWithClient(client).
		SetLogger(logger.Sugar()).
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", config.UserAgent).
		SetHeaders(config.ExtraHeader).
		SetRetryCount(config.Retries).
		SetRetryWaitTime(config.RetryWait).
		SetRetryMaxWaitTime(config.RetryMaxWait).
		AddRetryCondition(shouldRetry)

	return &Remote{
		client: restyClient,
		config: config,
		pool:   workerpool.New(config.MaxWorkers),
		p:      p,
		logger: logger,
	}
}

func shouldRetry(response *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if response == nil {
		return false
	}
	status := response.StatusCode()
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Categories returns all categories listed on index page
func (q *Remote) Categories(ctx context.Context) ([]*parser.Category, error) {
	content, err := q.Fetch(ctx, q.config.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	var categories []*parser.Category
	// Use pool here, because it's heavy cpu bound task
	q.pool.SubmitWait(func() {
		categories, err = q.p.ParseCategories(bytes.NewReader(content))
	})
	if err != nil {
		return nil, fmt.Errorf("can not parse categories: %w", err)
	}
	return categories, nil
}

// Entries returns entries listed on page, page is either path on remote host or absolute url
func (q *Remote) Entries(ctx context.Context, page string) ([]*parser.LexicalEntry, error) {
	content, err := q.Fetch(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	var entries []*parser.LexicalEntry
	q.pool.SubmitWait(func() {
		entries, err = q.p.ParseEntries(bytes.NewReader(content))
	})
	if err != nil {
		return nil, fmt.Errorf("can not parse entries of %s: %w", page, err)
	}
	return entries, nil
}

// Fetch returns page content converted to utf-8.
// All failures are reported as *NetworkError.
func (q *Remote) Fetch(ctx context.Context, page string) ([]byte, error) {
	pageURL, err := q.newPageURL(page)
	if err != nil {
		return nil, &NetworkError{URL: page, Err: err}
	}
	q.logger.Debug("fetching page", zap.String("url", pageURL))
	response, err := q.client.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}
	if !response.IsSuccess() {
		return nil, &NetworkError{URL: pageURL, StatusCode: response.StatusCode()}
	}
	content, err := decodeBody(response.Body(), response.Header().Get("Content-Type"))
	if err != nil {
		return nil, &NetworkError{URL: pageURL, StatusCode: response.StatusCode(), Err: err}
	}
	return content, nil
}

func decodeBody(body []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("can not detect charset: %w", err)
	}
	return io.ReadAll(reader)
}

func (q *Remote) newPageURL(page string) (string, error) {
	if strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://") {
		pageURL, err := url.Parse(page)
		if err != nil {
			return "", fmt.Errorf("can not parse page url: %w", err)
		}
		return pageURL.String(), nil
	}
	if !strings.HasPrefix(page, "/") {
		page = "/" + page
	}
	pageURL := &url.URL{
		Scheme: q.config.Protocol,
		Host:   q.config.Host,
		Path:   page,
	}
	return pageURL.String(), nil
}

func (q *Remote) Close(ctx context.Context) error {
	q.client.GetClient().CloseIdleConnections()
	q.pool.StopWait()
	return nil
}
