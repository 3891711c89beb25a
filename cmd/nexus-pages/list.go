package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/saturnines/nexus-pages/pkg/logging"
)

func registerListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "prints every pull request as one JSON object per line",
		Args:  cobra.NoArgs,
		RunE:  listRun,
	}
	listCmd.Flags().IntP("limit", "n", 0, "stop after this many pull requests (0 for all); overrides the config")
	rootCmd.AddCommand(listCmd)
}

func listRun(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	limit := s.endpoint.Limit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}

	prs, err := s.mapper.Collect(cmd.Context(), s.sequence, limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, pr := range prs {
		if err := enc.Encode(pr); err != nil {
			return err
		}
	}

	logging.Info().Int("count", len(prs)).Int("limit", limit).Msg("listed pull requests")
	return nil
}
