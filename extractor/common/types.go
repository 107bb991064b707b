package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aqlanhadi/baldigest/extractor/filter"
)

// RawLine is one line of extracted text and where it came from.
type RawLine struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// Page holds the text rows of a single document page.
type Page struct {
	Source string   `json:"source"`
	Number int      `json:"number"`
	Rows   []string `json:"rows"`
}

// Banner is the separator line written ahead of each page's text.
func (p Page) Banner() string {
	return fmt.Sprintf("--- %s | Page %d ---", p.Source, p.Number)
}

// Document is the extracted text of one or more uploaded files.
type Document struct {
	Pages []Page `json:"pages"`
}

// Append adds the pages of other after the pages of d.
func (d *Document) Append(other *Document) {
	if other == nil {
		return
	}
	d.Pages = append(d.Pages, other.Pages...)
}

// Lines flattens the document into lines, each page preceded by its banner.
// Rows holding embedded line breaks are split the way SplitLines does.
func (d *Document) Lines() []RawLine {
	var lines []RawLine
	for _, p := range d.Pages {
		lines = append(lines, RawLine{Text: p.Banner(), Source: p.Source, Page: p.Number})
		for _, row := range p.Rows {
			for _, l := range filter.SplitLines(row) {
				lines = append(lines, RawLine{Text: l, Source: p.Source, Page: p.Number})
			}
		}
	}
	return lines
}

// Text renders the document as one string, pages separated by a blank line.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Pages {
		b.WriteString(p.Banner())
		b.WriteByte('\n')
		b.WriteString(strings.Join(p.Rows, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

// Digest is the outcome of reducing a document to monthly representative lines.
//
// NoCandidates is set when no line looked like a transaction row; the
// selection then ran over the whole document text instead of Candidates.
type Digest struct {
	Source        string   `json:"source"`
	TargetDay     int      `json:"target_day"`
	MaxMonths     int      `json:"max_months"`
	NoCandidates  bool     `json:"no_candidates"`
	Candidates    []string `json:"candidates"`
	FormattedText string   `json:"formatted_text"`
	Selected      []string `json:"selected"`
	Summary       string   `json:"summary,omitempty"`
	SummaryError  string   `json:"summary_error,omitempty"`
}

// FilteredText is the selected lines joined for display or summarization.
func (d Digest) FilteredText() string {
	return strings.Join(d.Selected, "\n")
}

// MarshalJSON adds filtered_text to the encoded digest.
func (d Digest) MarshalJSON() ([]byte, error) {
	type digest Digest
	return json.Marshal(struct {
		digest
		FilteredText string `json:"filtered_text"`
	}{digest(d), d.FilteredText()})
}
