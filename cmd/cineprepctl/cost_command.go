package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CinePrep/cineprep/internal/service"
)

func newCostCommand() *cobra.Command {
	var tokens int
	var analyses int
	var models []string

	cmd := &cobra.Command{
		Use:         "cost",
		Short:       "Estimate the LLM cost of lore analyses",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokens <= 0 {
				return fmt.Errorf("--tokens must be positive")
			}
			if analyses <= 0 {
				return fmt.Errorf("--analyses must be positive")
			}

			rows := make([][]string, 0, len(models))
			for _, model := range models {
				perAnalysis := service.CalculateCost(tokens, model)
				rows = append(rows, []string{
					model,
					fmt.Sprintf("%.6f", perAnalysis),
					fmt.Sprintf("%.2f", perAnalysis*float64(analyses)),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Model", "Per analysis (USD)", fmt.Sprintf("%d analyses (USD)", analyses)},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&tokens, "tokens", 3000, "Total tokens of one analysis")
	cmd.Flags().IntVar(&analyses, "analyses", 1000, "Number of analyses to project")
	cmd.Flags().StringSliceVar(&models, "model", []string{"qwen-turbo", "qwen-plus", "qwen-max"}, "Models to price")
	return cmd
}
