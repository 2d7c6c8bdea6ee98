package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"corromics/internal/fdr"
)

func newEstimateCmd() *cobra.Command {
	var metabolites, features int

	cmd := &cobra.Command{
		Use:     "estimate",
		Short:   "Estimate how long a correlation run takes",
		Example: `  corromics estimate --metabolites 2500 --features 400`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if metabolites < 0 || features < 0 {
				return fmt.Errorf("--metabolites and --features cannot be negative")
			}
			adv := fdr.EstimateRunTime(metabolites, features)
			fmt.Fprintf(cmd.OutOrStdout(), "%d correlations per run. %s.\n", adv.Pairs, adv.Message)
			if adv.Warning {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: consider binning the genomic table to a higher taxonomic level.")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&metabolites, "metabolites", 0, "number of metabolite features")
	cmd.Flags().IntVar(&features, "features", 0, "number of genomic features")
	_ = cmd.MarkFlagRequired("metabolites")
	_ = cmd.MarkFlagRequired("features")
	return cmd
}
