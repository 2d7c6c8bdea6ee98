package omics

import (
	"github.com/montanaflynn/stats"
)

// RowProfile summarizes one feature across samples.
type RowProfile struct {
	Feature      string  `json:"feature"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	ZeroVariance bool    `json:"zero_variance"`
	AllZero      bool    `json:"all_zero"`
}

// MatrixSummary aggregates the row profiles of a matrix.
type MatrixSummary struct {
	Name              string  `json:"name"`
	Features          int     `json:"features"`
	Samples           int     `json:"samples"`
	ZeroVarianceRows  int     `json:"zero_variance_rows"`
	AllZeroRows       int     `json:"all_zero_rows"`
	MedianFeatureMean float64 `json:"median_feature_mean"`
}

// ProfileRow computes the summary statistics of row i.
func (m *FeatureMatrix) ProfileRow(i int) RowProfile {
	row := stats.Float64Data(m.data.RawRowView(i))

	mean, _ := stats.Mean(row)
	stdDev, _ := stats.StandardDeviation(row)
	min, _ := stats.Min(row)
	max, _ := stats.Max(row)
	median, _ := stats.Median(row)

	return RowProfile{
		Feature:      m.features[i],
		Mean:         mean,
		StdDev:       stdDev,
		Min:          min,
		Max:          max,
		Median:       median,
		ZeroVariance: min == max,
		AllZero:      min == 0 && max == 0,
	}
}

// Summarize profiles every row.
func (m *FeatureMatrix) Summarize() MatrixSummary {
	s := MatrixSummary{Name: m.name, Features: m.Rows(), Samples: m.Cols()}
	means := make([]float64, 0, m.Rows())
	for i := 0; i < m.Rows(); i++ {
		p := m.ProfileRow(i)
		if p.ZeroVariance {
			s.ZeroVarianceRows++
		}
		if p.AllZero {
			s.AllZeroRows++
		}
		means = append(means, p.Mean)
	}
	s.MedianFeatureMean, _ = stats.Median(means)
	return s
}
