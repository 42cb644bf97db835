// Package extract pulls plain text out of uploaded documents so the text
// detector can score it. PDF, DOCX, and CSV get format-aware extraction;
// everything else is decoded as text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/deepsift/deepsift/internal/classify"
)

// Metadata describes how extraction went.
type Metadata struct {
	Method    string `json:"extraction_method"`
	FileType  string `json:"file_type"`
	Mime      string `json:"mime_type"`
	CharCount int    `json:"char_count"`
	WordCount int    `json:"word_count"`
}

// Extract dispatches on extension (then mime) and returns the normalized
// text plus extraction metadata.
func Extract(data []byte, filename, mimeType string) (string, Metadata, error) {
	ext := classify.Extension(filename, mimeType)
	meta := Metadata{
		FileType: coalesce(ext, "unknown"),
		Mime:     coalesce(mimeType, "unknown"),
	}

	var (
		text string
		err  error
	)
	switch {
	case ext == "pdf" || strings.Contains(mimeType, "pdf"):
		meta.Method = "pdf"
		text, err = fromPDF(data)
	case ext == "docx" || ext == "doc" || strings.Contains(mimeType, "wordprocessingml"):
		meta.Method = "docx"
		text, err = fromDOCX(data)
	case ext == "csv" || strings.Contains(mimeType, "csv"):
		meta.Method = "csv"
		text, err = fromCSV(data)
	default:
		meta.Method = "text-decode"
		text = fromText(data)
	}
	if err != nil {
		return "", meta, err
	}

	text = strings.TrimSpace(text)
	meta.CharCount = len([]rune(text))
	meta.WordCount = len(strings.Fields(text))
	return text, meta, nil
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n\n"), nil
}

// fromDOCX walks word/document.xml, keeping paragraph text and flattening
// table rows as pipe-joined cells.
func fromDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var document io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			break
		}
	}
	if document == nil {
		return "", errors.New("docx has no word/document.xml")
	}
	defer document.Close()

	decoder := xml.NewDecoder(document)
	var (
		lines     []string
		paragraph strings.Builder
		cell      strings.Builder
		row       []string
		inText    bool
		tableDep  int
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tbl":
				tableDep++
			case "tc":
				cell.Reset()
			case "tr":
				row = row[:0]
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tbl":
				tableDep--
			case "p":
				if tableDep == 0 {
					if text := strings.TrimSpace(paragraph.String()); text != "" {
						lines = append(lines, text)
					}
				}
				paragraph.Reset()
			case "tc":
				if text := strings.TrimSpace(cell.String()); text != "" {
					row = append(row, text)
				}
			case "tr":
				if len(row) > 0 {
					lines = append(lines, strings.Join(row, " | "))
				}
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tableDep > 0 {
				cell.Write(t)
			} else {
				paragraph.Write(t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

func fromCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	var lines []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse csv: %w", err)
		}
		cells := make([]string, 0, len(record))
		for _, c := range record {
			if trimmed := strings.TrimSpace(c); trimmed != "" {
				cells = append(cells, trimmed)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// fromText decodes UTF-8 input directly and falls back to Latin-1, which
// accepts any byte sequence, so plain-text extraction cannot fail.
func fromText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
