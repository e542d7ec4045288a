package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const exportStampLayout = "2006-01-02T15:04:05.000Z"

var stampReplacer = strings.NewReplacer(":", "-", ".", "-")

// ExportFile is a downloadable snapshot of the book list.
type ExportFile struct {
	Name    string
	Content []byte
}

// ExportFileName builds books-<UTC ISO8601 stamp>.json with the
// characters which are unsafe in file names replaced by dashes.
func ExportFileName(now time.Time) string {
	return "books-" + stampReplacer.Replace(now.UTC().Format(exportStampLayout)) + ".json"
}

// ExportBooks renders books as an indented JSON array.
func ExportBooks(books []Book, now time.Time) (ExportFile, error) {
	if books == nil {
		books = []Book{}
	}
	content, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return ExportFile{}, fmt.Errorf("export: encode list: %w", err)
	}
	return ExportFile{Name: ExportFileName(now), Content: content}, nil
}
