package collector

import (
	"fmt"

	"github.com/d5/tengo/script"

	"github.com/darkclainer/kabgo/pkg/parser"
)

const filterResult = "__keep"

// Filter decides with tengo expression whether entry is written.
// Expression sees variables headword, category, transcription, collection
// and translations (map from language code to text).
type Filter struct {
	compiled *script.Compiled
}

// NewFilter compiles expression, empty expression returns nil filter that keeps everything
func NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}
	s := script.New([]byte(fmt.Sprintf("%s := (%s)", filterResult, expression)))
	for name, value := range filterVariables(&parser.LexicalEntry{}) {
		if err := s.Add(name, value); err != nil {
			return nil, fmt.Errorf("can not declare filter variable %s: %w", name, err)
		}
	}
	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("can not compile filter: %w", err)
	}
	return &Filter{compiled: compiled}, nil
}

// Keep runs expression against entry
func (f *Filter) Keep(entry *parser.LexicalEntry) (bool, error) {
	if f == nil {
		return true, nil
	}
	for name, value := range filterVariables(entry) {
		if err := f.compiled.Set(name, value); err != nil {
			return false, fmt.Errorf("can not set filter variable %s: %w", name, err)
		}
	}
	if err := f.compiled.Run(); err != nil {
		return false, fmt.Errorf("filter failed on %q: %w", entry.Headword, err)
	}
	return f.compiled.Get(filterResult).Bool(), nil
}

func filterVariables(entry *parser.LexicalEntry) map[string]interface{} {
	translations := make(map[string]interface{}, len(entry.Translations))
	for lang, text := range entry.Translations {
		translations[lang] = text
	}
	return map[string]interface{}{
		"headword":      entry.Headword,
		"category":      entry.Category,
		"transcription": entry.Transcription,
		"collection":    entry.Collection,
		"translations":  translations,
	}
}
