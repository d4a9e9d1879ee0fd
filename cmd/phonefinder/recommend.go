package main

import (
	"github.com/spf13/cobra"

	"phonefinder/internal/app"
	"phonefinder/internal/config"
	"phonefinder/internal/model"
)

func newRecommendCmd(cfg *config.Config) *cobra.Command {
	var (
		flags intentFlags
		topN  int
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the top phones for an intent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags.apply(cfg)

			raw, err := flags.rawIntent()
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Service.Recommend(ctx, &model.RecommendRequest{
				Intent: raw,
				Text:   flags.text,
				TopN:   topN,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&topN, "top", "n", 0, "number of picks (default from RECOMMEND_TOP_N)")
	return cmd
}
