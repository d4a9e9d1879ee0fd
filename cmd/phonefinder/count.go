package main

import (
	"github.com/spf13/cobra"

	"phonefinder/internal/app"
	"phonefinder/internal/config"
	"phonefinder/internal/model"
)

func newCountCmd(cfg *config.Config) *cobra.Command {
	var flags intentFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the normalized intent and how many phones match it",
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

			resp, err := a.Service.Count(ctx, &model.IntentRequest{Intent: raw, Text: flags.text})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	flags.register(cmd)
	return cmd
}
