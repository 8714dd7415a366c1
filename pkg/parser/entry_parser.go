package parser

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/text/unicode/norm"
)

var lemmaMatcher = cascadia.MustCompile(`.lemma`)

// ParseEntriesHTML returns entry for every lemma block found on the page.
// Page without lemma blocks gives no entries and no error.
func ParseEntriesHTML(page io.Reader) ([]*LexicalEntry, error) {
	doc, err := newDocument(page)
	if err != nil {
		return nil, err
	}
	lemmas := doc.FindMatcher(lemmaMatcher)
	return parseLemmas(lemmas)
}

// ParseEntryHTML returns the first entry of the page or nil if there is none
func ParseEntryHTML(page io.Reader) (*LexicalEntry, error) {
	doc, err := newDocument(page)
	if err != nil {
		return nil, err
	}
	entries, err := parseLemmas(doc.FindMatcher(lemmaMatcher).First())
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

func newDocument(page io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, &ParseError{Reason: "can not parse page", Err: err}
	}
	return doc, nil
}

func parseLemmas(sel *goquery.Selection) ([]*LexicalEntry, error) {
	var lastError error
	entries := make([]*LexicalEntry, 0, sel.Length())
	sel.EachWithBreak(func(i int, lemma *goquery.Selection) bool {
		entry, err := parseLemma(lemma)
		if err != nil {
			lastError = err
			return false
		}
		entries = append(entries, entry)
		return true
	})
	if lastError != nil {
		return nil, lastError
	}
	return entries, nil
}

var headwordMatcher = cascadia.MustCompile(`.word h2 a`)
var categoryMatcher = cascadia.MustCompile(`.w_category`)
var transcriptionMatcher = cascadia.MustCompile(`.w_transcription`)

func parseLemma(lemma *goquery.Selection) (*LexicalEntry, error) {
	headword := lemma.FindMatcher(headwordMatcher)
	if headword.Length() == 0 {
		return nil, &ParseError{Marker: ".lemma", Reason: "has no .word h2 a element"}
	}
	entry := &LexicalEntry{
		Headword: cleanText(headword.First().Text()),
	}
	if entry.Headword == "" {
		return nil, &ParseError{Marker: ".word h2 a", Reason: "headword is empty"}
	}
	entry.Category = cleanText(lemma.FindMatcher(categoryMatcher).First().Text())
	entry.Transcription = getTranscription(lemma.FindMatcher(transcriptionMatcher).First())
	entry.Translations = getTranslations(lemma)
	return entry, nil
}

// getTranscription strips brackets around transcription, like [amsaɛi]
func getTranscription(sel *goquery.Selection) string {
	return cleanText(strings.Trim(cleanText(sel.Text()), "[]"))
}

var featureMatcher = cascadia.MustCompile(`.translation .feature`)
var flagMatcher = cascadia.MustCompile(`img[title]`)
var featureTextMatcher = cascadia.MustCompile(`p`)

var flagTitleToLanguage = map[string]string{
	"french":   LangFrench,
	"français": LangFrench,
	"english":  LangEnglish,
	"anglais":  LangEnglish,
	"arabic":   LangArabic,
	"arabe":    LangArabic,
}

// getTranslations returns nil when lemma has no translation with text
func getTranslations(lemma *goquery.Selection) map[string]string {
	var translations map[string]string
	lemma.FindMatcher(featureMatcher).Each(func(i int, feature *goquery.Selection) {
		title := strings.ToLower(cleanText(feature.FindMatcher(flagMatcher).First().AttrOr("title", "")))
		if title == "" {
			return
		}
		text := cleanText(feature.FindMatcher(featureTextMatcher).First().Text())
		if text == "" {
			return
		}
		lang, ok := flagTitleToLanguage[title]
		if !ok {
			lang = title
		}
		if translations == nil {
			translations = make(map[string]string)
		}
		translations[lang] = text
	})
	return translations
}

var spaceRegexp = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	s = spaceRegexp.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(s))
}
