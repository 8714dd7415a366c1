package parser

import (
	"fmt"
	"strings"
)

type LexicalEntry struct {
	Headword      string            `json:"headword"`
	Category      string            `json:"category,omitempty"`
	Transcription string            `json:"transcription,omitempty"`
	Translations  map[string]string `json:"translations,omitempty"`
	// Collection is the site section the entry was listed under
	Collection string `json:"collection,omitempty"`
}

// Language codes used as Translations keys
const (
	LangFrench  = "fr"
	LangEnglish = "en"
	LangArabic  = "ar"
)

type Category struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Pages returns how many listing pages are needed to show all entries of the category
func (c *Category) Pages(perPage int) int {
	if c.Count <= 0 || perPage <= 0 {
		return 0
	}
	return (c.Count + perPage - 1) / perPage
}

// PagePath returns path of n-th listing page, pages are numbered from 1
func (c *Category) PagePath(n int) string {
	if n <= 1 {
		return c.Path
	}
	return fmt.Sprintf("%s%d/", ensureSlash(c.Path), n)
}

// Slug returns last non-empty element of category path
func (c *Category) Slug() string {
	parts := strings.Split(strings.Trim(c.Path, "/"), "/")
	return parts[len(parts)-1]
}

func ensureSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

type ParseError struct {
	// Marker is the structural marker that was expected
	Marker string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Marker != "" {
		msg += " at " + e.Marker
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
