package querier

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkclainer/kabgo/pkg/parser"
)

func getStorage(t *testing.T) *Storage {
	db, err := OpenStorage(&CachedConfig{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return &Storage{DB: db}
}

func TestCachedKeys(t *testing.T) {
	testCases := map[string]struct {
		keyType  keyType
		keyRaw   string
		expected []byte
	}{
		"Cached categories key": {
			keyType:  categoriesKey,
			keyRaw:   "",
			expected: []byte{byte(categoriesKey)},
		},
		"Cached entries key": {
			keyType:  entriesKey,
			keyRaw:   "/a/",
			expected: []byte{byte(entriesKey), '/', 'a', '/'},
		},
		"Cached entries empty": {
			keyType:  entriesKey,
			keyRaw:   "",
			expected: []byte{byte(entriesKey)},
		},
	}
	for name := range testCases {
		tc := testCases[name]
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, marshalKey(tc.keyRaw, tc.keyType))
		})
	}
}

func TestStorage(t *testing.T) {
	storage := getStorage(t)

	_, err := storage.GetEntries("/category/amyag/")
	assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	_, err = storage.GetCategories()
	assert.ErrorIs(t, err, badger.ErrKeyNotFound)

	entries := []*parser.LexicalEntry{
		{Headword: "ddu", Category: "amyag", Translations: map[string]string{"fr": "aller"}},
	}
	require.NoError(t, storage.PutEntries("/category/amyag/", entries))
	cached, err := storage.GetEntries("/category/amyag/")
	require.NoError(t, err)
	assert.Equal(t, entries, cached)

	// same path under another key type must not collide
	_, err = storage.GetCategories()
	assert.ErrorIs(t, err, badger.ErrKeyNotFound)

	categories := []*parser.Category{{Name: "Amyag", Path: "/category/amyag/", Count: 1}}
	require.NoError(t, storage.PutCategories(categories))
	cachedCategories, err := storage.GetCategories()
	require.NoError(t, err)
	assert.Equal(t, categories, cachedCategories)
}
