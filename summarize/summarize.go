// Package summarize turns selected statement lines into a short narrative
// using a language model. It sits outside the digest pipeline: a failing or
// missing summarizer never changes which lines were selected.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aqlanhadi/baldigest/extractor/common"
	"github.com/rs/zerolog/log"
)

// Summarizer produces a narrative for one digest.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Request is what a summarizer gets to work with.
type Request struct {
	Lines     []string
	TargetDay int
}

// Noop is a Summarizer that returns nothing.
type Noop struct{}

func (Noop) Summarize(context.Context, Request) (string, error) {
	return "", nil
}

const SystemPrompt = "You are a financial assistant that analyzes bank statements."

// BuildPrompt renders the instructions for a closing-balance summary of lines.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Here is the extracted bank statement:\n")
	b.WriteString(strings.Join(req.Lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString("Each line contains a transaction that ends with the **closing balance**.\n")
	b.WriteString("This balance is always the **last numeric value in the line**, typically followed by \"CR\" or \"DR\" (but not always).\n\n")
	b.WriteString("Please follow these rules:\n")
	b.WriteString("1. For each line:\n")
	b.WriteString("   - Extract the **transaction date** in the format `DD-MM-YYYY`.\n")
	b.WriteString("   - Extract the **closing balance**, which is the **last numeric value** in the line (before or followed by 'CR' or 'DR').\n")
	fmt.Fprintf(&b, "2. Treat each line as the **final selected transaction for a month**, the last one on or before day %d.\n", req.TargetDay)
	b.WriteString("3. Format the output as:\n")
	b.WriteString("   - Used date: `DD-MM-YYYY`, Closing Balance: ₹amount\n")
	b.WriteString("4. After listing all lines, calculate the average of the extracted closing balances and display it as:\n")
	b.WriteString("   **average_balance = ₹amount**\n\n")
	b.WriteString("Output only as specified. Do not include any summaries, titles, headers, or additional explanations.\n")
	return b.String()
}

// Apply runs s over the digest's selected lines and records the outcome on
// the digest. Digests without selected lines are left alone.
func Apply(ctx context.Context, s Summarizer, d *common.Digest, timeout time.Duration) {
	if s == nil || d == nil || len(d.Selected) == 0 {
		return
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	summary, err := s.Summarize(ctx, Request{Lines: d.Selected, TargetDay: d.TargetDay})
	if err != nil {
		log.Warn().Err(err).Str("source", d.Source).Msg("summarizer failed")
		d.SummaryError = err.Error()
		return
	}
	d.Summary = strings.TrimSpace(summary)
}
