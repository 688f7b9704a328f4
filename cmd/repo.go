package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	repoQuery string
	repoLimit int
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Get repo information",
}

var repoListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects by query",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return repoListRun(cmd.Context(), s, repoQuery, repoLimit)
	},
}

func init() {
	repoListCmd.Flags().StringVar(&repoQuery, "query", "state:active", "Project query")
	repoListCmd.Flags().IntVar(&repoLimit, "limit", 10, "Maximum number of projects")

	repoCmd.AddCommand(repoListCmd)
	rootCmd.AddCommand(repoCmd)
}

func repoListRun(ctx context.Context, s *session, query string, limit int) error {
	projects, err := s.api.ListProjects(ctx, query, limit)
	if err != nil {
		return err
	}

	table := s.ui.Table([]string{"Repo", "Browse"})
	for _, p := range projects {
		if err := table.Append([]string{p.Name, p.BrowseURL()}); err != nil {
			return err
		}
	}
	return table.Render()
}
