package querier

import (
	"encoding/json"
	"io"

	"github.com/darkclainer/kabgo/pkg/parser"
)

// JSONParser parses entries or categories from JSON format. Use it for testing
type JSONParser struct{}

func (p *JSONParser) ParseEntries(page io.Reader) ([]*parser.LexicalEntry, error) {
	var entries []*parser.LexicalEntry
	if err := json.NewDecoder(page).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (p *JSONParser) ParseCategories(page io.Reader) ([]*parser.Category, error) {
	var categories []*parser.Category
	if err := json.NewDecoder(page).Decode(&categories); err != nil {
		return nil, err
	}
	return categories, nil
}
