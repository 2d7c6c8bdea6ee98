package correlation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corromics/domain/core"
)

func TestMelt(t *testing.T) {
	f := newFixture(t, [][]float64{
		{10, 20, 30, 40},
		{5, 5, 5, 5},
	})
	res, err := NewEngine(Options{Workers: 2}, nil).Run(context.Background(), f.combined, f.metabolome, f.genome)
	require.NoError(t, err)

	table := Melt(core.RunTarget, res)
	require.Equal(t, 6, table.Len())
	assert.Equal(t, core.RunTarget, table.Kind)

	assert.Equal(t, "m1", table.Rows[0].Feature)
	assert.Equal(t, "g1", table.Rows[0].Variable)
	assert.Equal(t, "m3", table.Rows[2].Feature)
	assert.Equal(t, "g2", table.Rows[3].Variable)

	assert.Equal(t, 3, table.InvalidCount())
	est := table.Estimates()
	assert.InDelta(t, 1, est[0], 1e-12)
	assert.True(t, math.IsNaN(est[5]))
}

func TestLongTable_FilterAndTop(t *testing.T) {
	table := &LongTable{Kind: core.RunTarget, Rows: []LongRow{
		{Feature: "a", Variable: "x", Record: Record{Estimate: 0.9, Valid: true}},
		{Feature: "b", Variable: "x", Record: Record{Estimate: -0.7, Valid: true}},
		{Feature: "c", Variable: "x", Record: Record{Estimate: 0.1, Valid: true}},
		{Feature: "d", Variable: "x", Record: InvalidRecord()},
	}}

	kept := table.Filter(-0.5, 0.5)
	require.Equal(t, 2, kept.Len())
	assert.Equal(t, "a", kept.Rows[0].Feature)
	assert.Equal(t, "b", kept.Rows[1].Feature)

	positiveOnly := table.Filter(math.NaN(), 0.5)
	require.Equal(t, 1, positiveOnly.Len())
	assert.Equal(t, "a", positiveOnly.Rows[0].Feature)

	top := table.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Feature)
	assert.Equal(t, "b", top[1].Feature)
	assert.Len(t, table.Top(10), 3)
}
