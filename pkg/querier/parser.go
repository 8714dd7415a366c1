package querier

import (
	"io"

	"github.com/darkclainer/kabgo/pkg/parser"
)

type Parser interface {
	ParseEntries(page io.Reader) ([]*parser.LexicalEntry, error)
	ParseCategories(page io.Reader) ([]*parser.Category, error)
}

type HTMLParser struct{}

func (p *HTMLParser) ParseEntries(page io.Reader) ([]*parser.LexicalEntry, error) {
	return parser.ParseEntriesHTML(page)
}
func (p *HTMLParser) ParseCategories(page io.Reader) ([]*parser.Category, error) {
	return parser.ParseCategoriesHTML(page)
}
