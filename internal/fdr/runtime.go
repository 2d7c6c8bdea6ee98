package fdr

// Advisory is an informational wall-clock estimate for a correlation run.
type Advisory struct {
	Pairs    int64  `json:"pairs"`
	Estimate string `json:"estimate"`
	Message  string `json:"message"`
	Warning  bool   `json:"warning"`
}

var runTimeSteps = []struct {
	maxPairs int64
	estimate string
	message  string
	warning  bool
}{
	{50_000, "30s", "It will take around 30s to complete the run", false},
	{100_000, "1 min", "It will take around 1 min to complete the run", false},
	{500_000, "2 mins", "It will take around 2 mins to complete the run", false},
	{1_000_000, "4 mins", "It will take around 4 mins to complete the run", false},
	{5_000_000, "12 mins", "It will take around 12 mins to complete the run", true},
	{10_000_000, "20 mins", "It will take around 20 mins to complete the run. Go get a coffee.", true},
}

// EstimateRunTime looks up the expected run time for metabolites x features pairs.
func EstimateRunTime(metabolites, features int) Advisory {
	pairs := int64(metabolites) * int64(features)
	for _, s := range runTimeSteps {
		if pairs <= s.maxPairs {
			return Advisory{Pairs: pairs, Estimate: s.estimate, Message: s.message, Warning: s.warning}
		}
	}
	return Advisory{
		Pairs:    pairs,
		Estimate: "> 20 mins",
		Message:  "The run time might exceed 20 mins for correlations",
		Warning:  true,
	}
}
