package parser

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var categoryItemMatcher = cascadia.MustCompile(`#column-right .shadow-box .list-group-item`)
var categoryLinkMatcher = cascadia.MustCompile(`a[href]`)
var categoryBadgeMatcher = cascadia.MustCompile(`.badge`)

// ParseCategoriesHTML extracts dictionary categories from the side column of any page
func ParseCategoriesHTML(page io.Reader) ([]*Category, error) {
	doc, err := newDocument(page)
	if err != nil {
		return nil, err
	}

	var lastError error
	var categories []*Category
	doc.FindMatcher(categoryItemMatcher).EachWithBreak(func(i int, item *goquery.Selection) bool {
		link := item.FindMatcher(categoryLinkMatcher).First()
		badge := item.FindMatcher(categoryBadgeMatcher).First()
		if link.Length() == 0 || badge.Length() == 0 {
			return true
		}
		category, err := newCategory(link, badge)
		if err != nil {
			lastError = err
			return false
		}
		categories = append(categories, category)
		return true
	})
	if lastError != nil {
		return nil, lastError
	}
	if len(categories) == 0 {
		return nil, &ParseError{Marker: ".list-group-item", Reason: "no categories found"}
	}
	return categories, nil
}

func newCategory(link, badge *goquery.Selection) (*Category, error) {
	// site renders absolute links, only path is kept
	href, err := url.Parse(link.AttrOr("href", ""))
	if err != nil {
		return nil, &ParseError{Marker: ".list-group-item a", Reason: "bad href", Err: err}
	}
	badgeText := cleanText(badge.Text())
	count, err := strconv.Atoi(badgeText)
	if err != nil {
		return nil, &ParseError{
			Marker: ".badge",
			Reason: fmt.Sprintf("count is not a number: %q", badgeText),
			Err:    err,
		}
	}
	return &Category{
		Name:  cleanText(link.Text()),
		Path:  href.Path,
		Count: count,
	}, nil
}
