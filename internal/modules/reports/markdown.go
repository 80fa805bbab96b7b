package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/pkg/logger"
)

// MarkdownWriter renders reports as markdown files for human review.
type MarkdownWriter struct {
	dir string
	log zerolog.Logger
}

// NewMarkdownWriter creates a writer rooted at dir.
func NewMarkdownWriter(dir string, log zerolog.Logger) *MarkdownWriter {
	return &MarkdownWriter{dir: dir, log: logger.Service(log, "markdown_writer")}
}

// Write renders the report and returns the file path.
func (w *MarkdownWriter) Write(report *Report) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.md", report.Security.Code, report.CreatedAt.Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(w.render(report)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	w.log.Debug().Str("path", path).Msg("markdown report written")
	return path, nil
}

func (w *MarkdownWriter) render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", r.Security.Name, r.Security.Code)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.CreatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "## Rating: %s (conviction %.1f)\n\n", r.Scores.Rating, r.Scores.Conviction)

	fmt.Fprintf(&b, "## Valuation — %s\n\n", r.Valuation.Verdict)
	fmt.Fprintf(&b, "- Current price: %.0f KRW\n", r.Valuation.CurrentPrice)
	fmt.Fprintf(&b, "- Target price: %d KRW (range %d – %d)\n", r.Valuation.TargetPrice, r.Valuation.TargetLow, r.Valuation.TargetHigh)
	if r.Valuation.UpsidePct != nil {
		fmt.Fprintf(&b, "- Upside: %+.1f%%\n", *r.Valuation.UpsidePct)
	}
	fmt.Fprintf(&b, "- Methodology: %s\n\n", r.Valuation.Methodology)
	for _, line := range r.Valuation.Rationale {
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	if len(r.Valuation.Caveats) > 0 {
		b.WriteString("\n**Caveats**\n\n")
		for _, c := range r.Valuation.Caveats {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if nav := r.Valuation.NAV; nav != nil {
		b.WriteString("\n### NAV breakdown\n\n")
		fmt.Fprintf(&b, "- Listed stakes: %.0f KRW (%d holdings)\n", nav.ListedValue, nav.ListedCount)
		fmt.Fprintf(&b, "- Unlisted at book: %.0f KRW (%d holdings)\n", nav.UnlistedValue, nav.UnlistedCount)
		fmt.Fprintf(&b, "- Discount: %.0f%% → net NAV %.0f KRW (%d KRW/share)\n", nav.DiscountPct, nav.NetNAV, nav.PerShare)
	}

	fmt.Fprintf(&b, "\n## Risk — %s (composite %.1f)\n\n", r.Risk.Grade, r.Risk.CompositeScore)
	fmt.Fprintf(&b, "| Sub-score | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Market | %.0f |\n", r.Risk.MarketScore)
	fmt.Fprintf(&b, "| Credit | %.0f |\n", r.Risk.CreditScore)
	fmt.Fprintf(&b, "| Liquidity | %.0f (%s) |\n", r.Risk.LiquidityScore, r.Risk.LiquidityGrade)
	fmt.Fprintf(&b, "| Concentration | %.0f |\n", r.Risk.ConcentrationScore)

	if len(r.Risk.Scenarios) > 0 {
		b.WriteString("\n### Stress scenarios\n\n")
		for _, s := range r.Risk.Scenarios {
			fmt.Fprintf(&b, "- **%s** (%s): %.1f%% — %s\n", s.Name, s.Severity, s.LossPct, s.Description)
		}
	}
	if len(r.Risk.KeyRisks) > 0 {
		b.WriteString("\n### Key risks\n\n")
		for _, k := range r.Risk.KeyRisks {
			fmt.Fprintf(&b, "1. %s\n", k)
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Data warnings\n\n")
		for _, warning := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	return b.String()
}
