package writer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/darkclainer/kabgo/pkg/parser"
)

// tsv line: headword, category, transcription, translations as json object
const tsvFields = 4

// maxTSVLine limits single line while reading tsv back
const maxTSVLine = 1 << 20

var tsvReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

type tsvEncoder struct {
	w *bufio.Writer
}

func newTSVEncoder(w io.Writer) *tsvEncoder {
	return &tsvEncoder{w: bufio.NewWriter(w)}
}

func (e *tsvEncoder) WriteHeader() error { return nil }

func (e *tsvEncoder) Encode(entry *parser.LexicalEntry) error {
	translations, err := marshalTranslations(entry.Translations)
	if err != nil {
		return err
	}
	fields := []string{
		entry.Headword,
		entry.Category,
		entry.Transcription,
		translations,
	}
	for i := range fields {
		fields[i] = tsvReplacer.Replace(fields[i])
	}
	_, err = e.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

func (e *tsvEncoder) Flush() error {
	return e.w.Flush()
}

func marshalTranslations(translations map[string]string) (string, error) {
	if len(translations) == 0 {
		return "", nil
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(translations); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalTranslations(field string) (map[string]string, error) {
	if field == "" {
		return nil, nil
	}
	var translations map[string]string
	if err := json.Unmarshal([]byte(field), &translations); err != nil {
		return nil, fmt.Errorf("malformed translations: %w", err)
	}
	if len(translations) == 0 {
		return nil, nil
	}
	return translations, nil
}

func readTSV(r io.Reader) ([]*parser.LexicalEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxTSVLine)
	var entries []*parser.LexicalEntry
	line := 0
	for scanner.Scan() {
		line++
		if scanner.Text() == "" {
			continue
		}
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != tsvFields {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, tsvFields, len(fields))
		}
		translations, err := unmarshalTranslations(fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, &parser.LexicalEntry{
			Headword:      fields[0],
			Category:      fields[1],
			Transcription: fields[2],
			Translations:  translations,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var csvHeader = []string{
	"dictionary_category",
	"grammatical_category",
	"word",
	"transcription",
	"french",
	"english",
	"arabic",
}

// csvLanguages maps language columns of csv header to translation keys
var csvLanguages = map[int]string{
	4: parser.LangFrench,
	5: parser.LangEnglish,
	6: parser.LangArabic,
}

type csvEncoder struct {
	w *csv.Writer
}

func newCSVEncoder(w io.Writer) *csvEncoder {
	return &csvEncoder{w: csv.NewWriter(w)}
}

func (e *csvEncoder) WriteHeader() error {
	return e.w.Write(csvHeader)
}

func (e *csvEncoder) Encode(entry *parser.LexicalEntry) error {
	record := make([]string, len(csvHeader))
	record[0] = entry.Collection
	record[1] = entry.Category
	record[2] = entry.Headword
	record[3] = entry.Transcription
	for i, lang := range csvLanguages {
		record[i] = entry.Translations[lang]
	}
	return e.w.Write(record)
}

func (e *csvEncoder) Flush() error {
	e.w.Flush()
	return e.w.Error()
}

func readCSV(r io.Reader) ([]*parser.LexicalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	var entries []*parser.LexicalEntry
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		// header may be repeated when files were concatenated
		if isCSVHeader(record) {
			continue
		}
		entry := &parser.LexicalEntry{
			Collection:    record[0],
			Category:      record[1],
			Headword:      record[2],
			Transcription: record[3],
		}
		for i, lang := range csvLanguages {
			if record[i] == "" {
				continue
			}
			if entry.Translations == nil {
				entry.Translations = make(map[string]string)
			}
			entry.Translations[lang] = record[i]
		}
		entries = append(entries, entry)
	}
}

func isCSVHeader(record []string) bool {
	for i := range csvHeader {
		if record[i] != csvHeader[i] {
			return false
		}
	}
	return true
}

type jsonEncoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func newJSONEncoder(w io.Writer) *jsonEncoder {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &jsonEncoder{w: bw, enc: enc}
}

func (e *jsonEncoder) WriteHeader() error { return nil }

func (e *jsonEncoder) Encode(entry *parser.LexicalEntry) error {
	return e.enc.Encode(entry)
}

func (e *jsonEncoder) Flush() error {
	return e.w.Flush()
}

func readJSON(r io.Reader) ([]*parser.LexicalEntry, error) {
	dec := json.NewDecoder(r)
	var entries []*parser.LexicalEntry
	for {
		var entry parser.LexicalEntry
		err := dec.Decode(&entry)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		if len(entry.Translations) == 0 {
			entry.Translations = nil
		}
		entries = append(entries, &entry)
	}
}
