package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/rs/zerolog/log"
)

// ExtractPagesFromPDFReader reads a PDF and rebuilds its text row by row.
// Pages without any text are left out.
func ExtractPagesFromPDFReader(reader io.Reader, source string) (*Document, error) {
	// Ensure we have an io.ReaderAt and know the size
	var rAt io.ReaderAt
	var size int64

	switch v := reader.(type) {
	case io.ReaderAt:
		rAt = v
		seeker, ok := reader.(io.Seeker)
		if !ok {
			return nil, errors.New("reader is io.ReaderAt but not io.Seeker, cannot determine size")
		}
		cur, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("failed to determine position: %w", err)
		}
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to determine size: %w", err)
		}
		if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind: %w", err)
		}
		size = end
	default:
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, err
		}
		b := buf.Bytes()
		rAt = bytes.NewReader(b)
		size = int64(len(b))
	}

	r, err := pdf.NewReader(rAt, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	doc := &Document{}
	numPages := r.NumPage()

	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		rows, err := page.GetTextByRow()
		if err != nil {
			log.Warn().Err(err).Str("source", source).Int("page", no).Msg("could not read page text")
			continue
		}

		extracted := make([]string, 0, len(rows))
		for _, row := range rows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				extracted = append(extracted, builder.String())
			}
		}

		if len(extracted) > 0 {
			doc.Pages = append(doc.Pages, Page{Source: source, Number: no, Rows: extracted})
		}
	}

	return doc, nil
}

// ExtractPagesFromText treats plain text as a single page.
func ExtractPagesFromText(reader io.Reader, source string) (*Document, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return &Document{}, nil
	}
	return &Document{Pages: []Page{{Source: source, Number: 1, Rows: strings.Split(text, "\n")}}}, nil
}

// IsTextFile reports whether name should be read as plain text rather than PDF.
func IsTextFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return true
	}
	return false
}

// IsSupportedFile reports whether name looks like something we can read.
func IsSupportedFile(name string) bool {
	return IsTextFile(name) || strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ReadDocument picks a text or PDF reader based on the file name.
func ReadDocument(reader io.Reader, name string) (*Document, error) {
	source := filepath.Base(name)
	if IsTextFile(name) {
		return ExtractPagesFromText(reader, source)
	}
	return ExtractPagesFromPDFReader(reader, source)
}

// ReadDocumentFile opens path and reads it with ReadDocument.
func ReadDocumentFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadDocument(file, path)
}
