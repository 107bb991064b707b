package extractor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aqlanhadi/baldigest/extractor/common"
	"github.com/aqlanhadi/baldigest/extractor/filter"
	"github.com/aqlanhadi/baldigest/extractor/monthly"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

// ErrMalformedInput is returned when there is no text to work on at all.
// Everything else, including empty text, degrades to empty results.
var ErrMalformedInput = errors.New("malformed input: no document text")

// CandidatesHeader introduces the candidate block handed to a summarizer.
const CandidatesHeader = "Below is the list of bank transactions. Each line contains a date, description, amount(s), and closing balance:"

type Options = monthly.Options

func DefaultOptions() Options {
	return monthly.DefaultOptions()
}

// IsTransactionLine reports whether a line starts with a supported date.
func IsTransactionLine(line string) bool {
	return filter.IsTransactionLine(line)
}

// FilterCandidates returns the transaction-like lines of fullText.
// An empty result means "no candidates"; callers fall back to the full text.
func FilterCandidates(fullText string) []string {
	return filter.Candidates(filter.SplitLines(fullText))
}

// ExtractRepresentativeLines picks one line per month, for at most maxMonths
// months, using the last transaction on or before targetDay.
func ExtractRepresentativeLines(fullText string, targetDay, maxMonths int) []string {
	return monthly.Select(filter.SplitLines(fullText), Options{TargetDay: targetDay, MaxMonths: maxMonths})
}

// FormatCandidates renders candidate lines the way they are shown to a summarizer.
func FormatCandidates(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return CandidatesHeader + "\n\n" + strings.Join(candidates, "\n")
}

// Digest filters the document down to transaction rows and selects one line
// per month from them. When nothing looks like a transaction row the whole
// document text is used for selection instead.
func Digest(doc *common.Document, opts Options) (common.Digest, error) {
	if doc == nil {
		return common.Digest{}, ErrMalformedInput
	}
	if opts.MaxMonths < 1 {
		opts.MaxMonths = monthly.DefaultMaxMonths
	}

	var lines []string
	for _, l := range doc.Lines() {
		lines = append(lines, l.Text)
	}

	result := common.Digest{
		Source:     documentSource(doc),
		TargetDay:  opts.TargetDay,
		MaxMonths:  opts.MaxMonths,
		Candidates: filter.Candidates(lines),
	}

	if len(result.Candidates) == 0 {
		result.NoCandidates = true
		result.Candidates = []string{}
		result.FormattedText = doc.Text()
	} else {
		result.FormattedText = FormatCandidates(result.Candidates)
	}

	result.Selected = monthly.Select(filter.SplitLines(result.FormattedText), opts)

	log.Debug().
		Str("source", result.Source).
		Int("candidates", len(result.Candidates)).
		Bool("no_candidates", result.NoCandidates).
		Int("selected", len(result.Selected)).
		Msg("digest complete")

	return result, nil
}

// ProcessReader reads a PDF or text file from reader and digests it.
func ProcessReader(reader io.Reader, name string, opts Options) (common.Digest, error) {
	if reader == nil {
		return common.Digest{}, ErrMalformedInput
	}
	doc, err := common.ReadDocument(reader, name)
	if err != nil {
		return common.Digest{}, fmt.Errorf("failed to read %s: %w", filepath.Base(name), err)
	}
	return Digest(doc, opts)
}

// ProcessFile opens and digests a single file.
func ProcessFile(path string, opts Options) (common.Digest, error) {
	doc, err := common.ReadDocumentFile(path)
	if err != nil {
		return common.Digest{}, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Digest(doc, opts)
}

// FileResult is the outcome for one file in directory mode.
type FileResult struct {
	Path   string
	Digest common.Digest
	Err    error
}

// ExecuteAgainstPath digests a single file, or every supported file in a
// directory. Files in a directory are processed concurrently and returned in
// file name order.
func ExecuteAgainstPath(path string, opts Options) ([]FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		log.Info().Str("path", path).Msg("scanning file")
		d, err := ProcessFile(path, opts)
		return []FileResult{{Path: path, Digest: d, Err: err}}, nil
	}

	log.Info().Str("path", path).Msg("scanning directory")
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !common.IsSupportedFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)

	results := iter.Map(files, func(file *string) FileResult {
		d, err := ProcessFile(*file, opts)
		if err != nil {
			log.Warn().Err(err).Str("path", *file).Msg("skipping file")
		}
		return FileResult{Path: *file, Digest: d, Err: err}
	})

	return results, nil
}

// CreateFinalOutput shapes a digest for output. selectedOnly yields just the
// selected lines; candidatesOnly yields the filter result without selection.
func CreateFinalOutput(d common.Digest, selectedOnly, candidatesOnly bool) interface{} {
	if selectedOnly {
		return d.Selected
	}

	if candidatesOnly {
		return map[string]interface{}{
			"source":        d.Source,
			"no_candidates": d.NoCandidates,
			"candidates":    d.Candidates,
		}
	}

	return d
}

func documentSource(doc *common.Document) string {
	var names []string
	seen := map[string]bool{}
	for _, p := range doc.Pages {
		if !seen[p.Source] {
			seen[p.Source] = true
			names = append(names, p.Source)
		}
	}
	return strings.Join(names, ", ")
}
