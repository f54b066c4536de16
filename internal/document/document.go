// Package document turns uploaded lab reports into plain text suitable for a prompt.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the declared type of an upload, derived from its filename extension.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindTabular Kind = "tabular"
)

// ErrUnsupportedKind is returned for any extension other than .pdf and .csv.
var ErrUnsupportedKind = errors.New("unsupported file type (only PDF and CSV allowed)")

// Error reports an upload that could not be read.
type Error struct {
	Kind     Kind
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("read %s file %q: %v", e.Kind, e.Filename, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Document is an upload after extraction. Table is set for tabular uploads only.
type Document struct {
	Filename string `json:"filename"`
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	Table    *Table `json:"table,omitempty"`
}

// Empty reports whether extraction produced nothing worth sending to a model.
func (d *Document) Empty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// KindFromFilename maps .pdf and .csv (any case) to a Kind.
func KindFromFilename(name string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF, nil
	case ".csv":
		return KindTabular, nil
	default:
		return "", ErrUnsupportedKind
	}
}

// Extractor holds the per-kind extraction functions so callers can observe or replace them.
type Extractor struct {
	PDF     func(data []byte) (string, error)
	Tabular func(data []byte) (Table, error)
}

// NewExtractor returns an Extractor backed by ExtractPDF and ParseTabular.
func NewExtractor() *Extractor {
	return &Extractor{PDF: ExtractPDF, Tabular: ParseTabular}
}

// Extract dispatches on the filename extension. Unsupported names are rejected
// before either extractor runs.
func (x *Extractor) Extract(filename string, data []byte) (Document, error) {
	kind, err := KindFromFilename(filename)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Filename: filename, Kind: kind}
	switch kind {
	case KindPDF:
		text, err := x.PDF(data)
		if err != nil {
			return Document{}, &Error{Kind: kind, Filename: filename, Err: err}
		}
		doc.Text = text
	case KindTabular:
		table, err := x.Tabular(data)
		if err != nil {
			return Document{}, &Error{Kind: kind, Filename: filename, Err: err}
		}
		doc.Table = &table
		doc.Text = table.Render()
	}
	return doc, nil
}

// Extract uses the default extractors.
func Extract(filename string, data []byte) (Document, error) {
	return NewExtractor().Extract(filename, data)
}
