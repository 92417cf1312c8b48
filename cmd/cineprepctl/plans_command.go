package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/internal/repository"
	"github.com/CinePrep/cineprep/internal/service"
)

func newPlansCommand(ctx *commandContext) *cobra.Command {
	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect and seed subscription plans",
	}

	plansCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the plans and their monthly quotas",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(_ *config.Config, db *sql.DB) error {
				svc := service.NewPlanService(repository.NewPlanRepository(db), ctx.logger())
				plans, err := svc.List(commandCtx(cmd))
				if err != nil {
					return err
				}
				if len(plans) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No plans found, run `cineprepctl plans seed`")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPlans(plans))
				return nil
			})
		},
	})

	plansCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create or update the free, pro and premium plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(_ *config.Config, db *sql.DB) error {
				svc := service.NewPlanService(repository.NewPlanRepository(db), ctx.logger())
				plans, err := svc.SeedDefaults(commandCtx(cmd))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d plans\n", len(plans))
				fmt.Fprintln(cmd.OutOrStdout(), renderPlans(plans))
				return nil
			})
		},
	})

	return plansCmd
}

func renderPlans(plans []*domain.Plan) string {
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			p.Slug,
			p.Name,
			fmt.Sprintf("$%.2f", float64(p.PriceMonthly)/100),
			quotaLabel(p.MaxAnalysesPerMonth),
			quotaLabel(p.MaxAudioGenerationsMonth),
		})
	}
	return renderTable(
		[]string{"Slug", "Name", "Price", "Analyses/mo", "Audio/mo"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func quotaLabel(limit int) string {
	if limit == domain.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(limit)
}
