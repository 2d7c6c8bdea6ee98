package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/internal/pipeline"
	"corromics/internal/testkit"
)

func analysis(t *testing.T, cfg testkit.OmicsGeneratorConfig) *pipeline.Analysis {
	t.Helper()
	metabolome, genome, err := testkit.NewOmicsDataGenerator(cfg).Generate()
	require.NoError(t, err)
	analyzer, err := pipeline.NewAnalyzer(pipeline.DefaultOptions(), nil, nil)
	require.NoError(t, err)
	a, err := analyzer.Run(context.Background(), metabolome, genome)
	require.NoError(t, err)
	return a
}

func TestMarkdown(t *testing.T) {
	cfg := testkit.DefaultOmicsConfig()
	cfg.ZeroFeatures, cfg.ConstantFeatures = 1, 1
	a := analysis(t, cfg)

	md := Markdown(a)
	assert.True(t, strings.HasPrefix(md, "# Correlation analysis "+a.ID.String()))
	assert.Contains(t, md, "- Seed: 42")
	assert.Contains(t, md, "| Metabolome | 40 | 24 |")
	assert.Contains(t, md, "| Genome | 7 | 24 |")
	assert.Contains(t, md, "1 all-zero genomic features were removed")
	assert.Contains(t, md, "It will take around 30s to complete the run")
	assert.Contains(t, md, "| target | 280 | 40 |")
	assert.Contains(t, md, "40 target pairs involve a constant feature")
	assert.Contains(t, md, "| 10% |")
	assert.Contains(t, md, "## Top target associations")

	table := md[strings.Index(md, "## Top target associations"):]
	// header, separator and one line per association
	assert.Equal(t, TopAssociations+2, strings.Count(table, "\n")-2)
}

func TestHTML(t *testing.T) {
	cfg := testkit.DefaultOmicsConfig()
	cfg.Metabolites, cfg.GenomicFeatures, cfg.Samples = 6, 2, 8
	a := analysis(t, cfg)

	page := string(HTML(a))
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<title>Correlation analysis ")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<h2")
}
