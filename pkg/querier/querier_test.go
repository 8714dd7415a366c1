package querier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkclainer/kabgo/pkg/parser"
)

func errorRequestf(t *testing.T, w http.ResponseWriter, format string, args ...interface{}) {
	str := fmt.Sprintf(format, args...)
	t.Error(str)
	http.Error(w, str, http.StatusInternalServerError)
}

func newTestRemote(
	t *testing.T,
	p Parser,
	config *Config,
	pageFn map[string]http.HandlerFunc,
) (
	*Remote,
	func(),
) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn, ok := pageFn[r.URL.Path]
		if !ok {
			errorRequestf(t, w, "handler for page '%s' not found", r.URL.Path)
			return
		}
		fn(w, r)
	}))
	if config == nil {
		config = &Config{}
	}
	config.Host = server.Listener.Addr().String()
	config.Protocol = "http"
	if config.RetryWait == 0 {
		config.RetryWait = time.Millisecond
		config.RetryMaxWait = 5 * time.Millisecond
	}
	querier := NewRemote(server.Client(), p, nil, config)
	return querier, func() {
		server.Close()
		_ = querier.Close(context.TODO())
	}
}

func writeJSON(t *testing.T, v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := json.NewEncoder(w).Encode(v)
		assert.NoError(t, err)
	}
}

func TestRemoteEntries(t *testing.T) { // nolint:funlen // test
	testEntries := []*parser.LexicalEntry{
		{
			Headword:     "amsaɛi",
			Category:     "noun",
			Translations: map[string]string{"en": "helper"},
		},
	}
	testCases := map[string]struct {
		page    string
		entries []*parser.LexicalEntry
		pageFn  map[string]http.HandlerFunc
		network bool
		err     bool
	}{
		"return entries": {
			page:    "/category/isem/",
			entries: testEntries,
			pageFn: map[string]http.HandlerFunc{
				"/category/isem/": writeJSON(t, testEntries),
			},
		},
		"page without leading slash": {
			page:    "category/isem/2/",
			entries: testEntries,
			pageFn: map[string]http.HandlerFunc{
				"/category/isem/2/": writeJSON(t, testEntries),
			},
		},
		"return malformed entries": {
			page: "/category/isem/",
			pageFn: map[string]http.HandlerFunc{
				"/category/isem/": func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte("{,}")) // json error decoding
				},
			},
			err: true,
		},
		"return wrong status code": {
			page: "/category/isem/",
			pageFn: map[string]http.HandlerFunc{
				"/category/isem/": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusNotFound)
				},
			},
			network: true,
			err:     true,
		},
	}
	for name := range testCases {
		tc := testCases[name]
		t.Run(name, func(t *testing.T) {
			querier, clean := newTestRemote(t, &JSONParser{}, nil, tc.pageFn)
			defer clean()

			entries, err := querier.Entries(context.TODO(), tc.page)
			if tc.err {
				assert.Error(t, err)
				var networkErr *NetworkError
				assert.Equal(t, tc.network, errors.As(err, &networkErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.entries, entries)
		})
	}
}

func TestRemoteCategories(t *testing.T) {
	testCategories := []*parser.Category{
		{Name: "Amyag", Path: "/category/amyag/", Count: 20},
	}
	querier, clean := newTestRemote(t, &JSONParser{}, &Config{IndexPath: "/index/"}, map[string]http.HandlerFunc{
		"/index/": writeJSON(t, testCategories),
	})
	defer clean()

	categories, err := querier.Categories(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, testCategories, categories)
}

func TestRemoteHTMLParser(t *testing.T) {
	page := `<html><head><meta charset="utf-8"></head><body>
<div class="lemma"><div class="word"><h2><a href="/amsa%C9%9Bi/">amsaɛi</a></h2></div>
<span class="w_category">noun</span>
<div class="translation"><div class="feature"><img title="English"><p>helper</p></div></div>
</div></body></html>`
	querier, clean := newTestRemote(t, nil, nil, map[string]http.HandlerFunc{
		"/category/isem/": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(page))
		},
	})
	defer clean()

	entries, err := querier.Entries(context.TODO(), "/category/isem/")
	require.NoError(t, err)
	assert.Equal(t, []*parser.LexicalEntry{
		{Headword: "amsaɛi", Category: "noun", Translations: map[string]string{"en": "helper"}},
	}, entries)
}

func TestRemoteCharset(t *testing.T) {
	// e acute encoded in latin-1
	latin1 := []byte("<p>r\xe9sultat</p>")
	querier, clean := newTestRemote(t, nil, nil, map[string]http.HandlerFunc{
		"/latin/": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write(latin1)
		},
	})
	defer clean()

	content, err := querier.Fetch(context.TODO(), "/latin/")
	require.NoError(t, err)
	assert.Equal(t, "<p>résultat</p>", string(content))
}

func TestRemoteRetry(t *testing.T) {
	testCases := map[string]struct {
		retries  int
		failures int32
		status   int
		calls    int32
		err      bool
	}{
		"recover after unavailable": {
			retries:  2,
			failures: 1,
			status:   http.StatusServiceUnavailable,
			calls:    2,
		},
		"recover after too many requests": {
			retries:  3,
			failures: 3,
			status:   http.StatusTooManyRequests,
			calls:    4,
		},
		"give up": {
			retries:  1,
			failures: 5,
			status:   http.StatusBadGateway,
			calls:    2,
			err:      true,
		},
		"not found is not retried": {
			retries:  3,
			failures: 5,
			status:   http.StatusNotFound,
			calls:    1,
			err:      true,
		},
	}
	for name := range testCases {
		tc := testCases[name]
		t.Run(name, func(t *testing.T) {
			var calls int32
			querier, clean := newTestRemote(t, &JSONParser{}, &Config{Retries: tc.retries}, map[string]http.HandlerFunc{
				"/page/": func(w http.ResponseWriter, r *http.Request) {
					if atomic.AddInt32(&calls, 1) <= tc.failures {
						w.WriteHeader(tc.status)
						return
					}
					_, _ = w.Write([]byte(`[{"headword":"ul"}]`))
				},
			})
			defer clean()

			entries, err := querier.Entries(context.TODO(), "/page/")
			assert.Equal(t, tc.calls, atomic.LoadInt32(&calls))
			if tc.err {
				var networkErr *NetworkError
				require.True(t, errors.As(err, &networkErr), "expected NetworkError, got: %v", err)
				assert.Equal(t, tc.status, networkErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []*parser.LexicalEntry{{Headword: "ul"}}, entries)
		})
	}
}

func TestRemoteTimeout(t *testing.T) {
	querier, clean := newTestRemote(t, &JSONParser{}, nil, map[string]http.HandlerFunc{
		"/slow/": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		},
	})
	defer clean()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := querier.Entries(ctx, "/slow/")
	var networkErr *NetworkError
	require.True(t, errors.As(err, &networkErr), "expected NetworkError, got: %v", err)
	assert.Equal(t, 0, networkErr.StatusCode)
	assert.True(t, networkErr.Timeout())
}

func TestRemotePageURL(t *testing.T) {
	querier := NewRemote(nil, nil, nil, &Config{})
	defer querier.Close(context.TODO())

	testCases := map[string]string{
		"/category/amyag/":                 "https://www.dictionnaire-kabyle.com/category/amyag/",
		"category/amyag/2/":                "https://www.dictionnaire-kabyle.com/category/amyag/2/",
		"http://localhost:8080/category/x/": "http://localhost:8080/category/x/",
	}
	for page, expected := range testCases {
		pageURL, err := querier.newPageURL(page)
		assert.NoError(t, err)
		assert.Equal(t, expected, pageURL)
	}
}
