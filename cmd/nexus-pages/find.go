package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saturnines/nexus-pages/pkg/pullrequest"
)

func registerFindCmd(rootCmd *cobra.Command) {
	findCmd := &cobra.Command{
		Use:   "find",
		Short: "prints the first pull request matching the filters and stops paging",
		Args:  cobra.NoArgs,
		RunE:  findRun,
	}
	findCmd.Flags().String("title", "", "case-insensitive title substring")
	findCmd.Flags().String("author", "", "exact author")
	findCmd.Flags().String("source-branch", "", "exact source branch")
	rootCmd.AddCommand(findCmd)
}

func findRun(cmd *cobra.Command, _ []string) error {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	branch, _ := cmd.Flags().GetString("source-branch")
	if title == "" && author == "" && branch == "" {
		return fmt.Errorf("at least one of --title, --author or --source-branch is required")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	title = strings.ToLower(title)
	pr, ok, err := s.mapper.Find(cmd.Context(), s.sequence, func(pr pullrequest.PullRequest) bool {
		return strings.Contains(strings.ToLower(pr.Title), title) &&
			(author == "" || pr.Author == author) &&
			(branch == "" || pr.SourceBranch == branch)
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no pull request matched")
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(pr)
}
