// Package report summarizes a finished analysis as Markdown and HTML.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"corromics/domain/omics"
	"corromics/internal/correlation"
	"corromics/internal/pipeline"
)

// TopAssociations is how many target pairs the report lists.
const TopAssociations = 10

func score(v float64) string {
	if math.IsNaN(v) {
		return "none"
	}
	return fmt.Sprintf("%.3f", v)
}

func pvalue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.3g", v)
}

func matrixRow(b *strings.Builder, assay string, s omics.MatrixSummary) {
	fmt.Fprintf(b, "| %s | %d | %d | %d | %d |\n", assay, s.Features, s.Samples, s.ZeroVarianceRows, s.AllZeroRows)
}

func runRow(b *strings.Builder, run string, t *correlation.LongTable, fingerprint string) {
	pairs, invalid := 0, 0
	if t != nil {
		pairs, invalid = t.Len(), t.InvalidCount()
	}
	fmt.Fprintf(b, "| %s | %d | %d | `%s` |\n", run, pairs, invalid, fingerprint)
}

// Markdown renders a human-readable summary of a.
func Markdown(a *pipeline.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Correlation analysis %s\n\n", a.ID)
	fmt.Fprintf(&b, "- Created: %s\n", a.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Seed: %d\n", a.Seed)
	fmt.Fprintf(&b, "- FDR bin width: %g\n", a.BinWidth)
	fmt.Fprintf(&b, "- Shared samples: %d\n", len(a.SharedSamples))
	fmt.Fprintf(&b, "- Elapsed: %s\n\n", a.Elapsed.Round(time.Millisecond))

	b.WriteString("## Inputs\n\n")
	b.WriteString("| Assay | Features | Samples | Zero-variance rows | All-zero rows |\n")
	b.WriteString("|---|---|---|---|---|\n")
	matrixRow(&b, "Metabolome", a.Metabolome)
	matrixRow(&b, "Genome", a.Genome)
	b.WriteString("\n")
	if n := len(a.DroppedFeatures); n > 0 {
		fmt.Fprintf(&b, "%d all-zero genomic features were removed before correlating: %s\n\n", n, strings.Join(a.DroppedFeatures, ", "))
	}

	b.WriteString("## Run time\n\n")
	fmt.Fprintf(&b, "%d correlations per run. %s.\n", a.Advisory.Pairs, a.Advisory.Message)
	if a.Advisory.Warning {
		b.WriteString("\n> Large run: consider binning the genomic table to a higher taxonomic level.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Correlation runs\n\n")
	b.WriteString("| Run | Pairs | Invalid pairs | Fingerprint |\n")
	b.WriteString("|---|---|---|---|\n")
	runRow(&b, "target", a.Target, a.TargetFingerprint.Short())
	runRow(&b, "decoy", a.Decoy, a.DecoyFingerprint.Short())
	b.WriteString("\n")
	if a.TargetInvalid > 0 {
		fmt.Fprintf(&b, "%d target pairs involve a constant feature and have no correlation.\n\n", a.TargetInvalid)
	}

	b.WriteString("## Suggested cutoffs\n\n")
	if len(a.Cutoffs) == 0 {
		b.WriteString("No FDR thresholds configured.\n\n")
	} else {
		b.WriteString("| FDR | Negative score <= | Positive score >= |\n")
		b.WriteString("|---|---|---|\n")
		for _, c := range a.Cutoffs {
			fmt.Fprintf(&b, "| %g%% | %s | %s |\n", c.ThresholdPercent, score(c.Negative), score(c.Positive))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Top target associations\n\n")
	var top []correlation.LongRow
	if a.Target != nil {
		top = a.Target.Top(TopAssociations)
	}
	if len(top) == 0 {
		b.WriteString("No valid target correlations.\n")
		return b.String()
	}
	b.WriteString("| Feature | Variable | Estimate | P-value | BH-corrected P-value | R2 |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range top {
		fmt.Fprintf(&b, "| %s | %s | %.3f | %s | %s | %.3f |\n",
			r.Feature, r.Variable, r.Estimate, pvalue(r.PValue), pvalue(r.FDRPValue), r.RSquared)
	}
	return b.String()
}

// HTML renders the Markdown summary as a complete HTML page.
func HTML(a *pipeline.Analysis) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: fmt.Sprintf("Correlation analysis %s", a.ID),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(a)), p, r)
}
