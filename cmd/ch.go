package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/spf13/cobra"

	"github.com/joescharf/gr/internal/changes"
	"github.com/joescharf/gr/internal/gerrit"
	"github.com/joescharf/gr/internal/models"
	"github.com/joescharf/gr/internal/output"
)

var (
	listQuery string
	listLimit int
	listSelf  bool

	viewLimit int
	viewJSON  bool

	diffRevision string
	diffStat     bool
)

var chCmd = &cobra.Command{
	Use:   "ch",
	Short: "Manage changes",
	Long:  "List, inspect, review, merge and check out changes on the review server.",
}

var chListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List open changes",
	Long: `List open changes where you are reviewer or owner.

Use --self to list only the changes you own, or --query for any search expression.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		q := listQuery
		if listSelf {
			q = changes.QueryOwned
		}
		return changeListRun(cmd.Context(), s, q, listLimit)
	},
}

var chViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View change details, files and latest messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		if viewJSON {
			return changeViewJSONRun(cmd.Context(), s, args[0])
		}
		return changeViewRun(cmd.Context(), s, args[0], viewLimit)
	},
}

var chDiffCmd = &cobra.Command{
	Use:   "diff <id>",
	Short: "Show the diff of a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeDiffRun(cmd.Context(), s, args[0], diffRevision, diffStat)
	},
}

var chCommentsCmd = &cobra.Command{
	Use:   "comments <id>",
	Short: "List inline comments of a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeCommentsRun(cmd.Context(), s, args[0])
	},
}

func init() {
	chListCmd.Flags().StringVarP(&listQuery, "query", "q", changes.QueryMine, "Change search query")
	chListCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum number of changes")
	chListCmd.Flags().BoolVar(&listSelf, "self", false, "Only changes owned by you")

	chViewCmd.Flags().IntVar(&viewLimit, "limit", 4, "Number of latest messages to show")
	chViewCmd.Flags().BoolVar(&viewJSON, "json", false, "Print the raw change detail as JSON")

	chDiffCmd.Flags().StringVar(&diffRevision, "revision-id", "current", "Revision (patch set) to diff")
	chDiffCmd.Flags().BoolVar(&diffStat, "stat", false, "Show per-file insertions and deletions only")

	chCmd.AddCommand(chListCmd)
	chCmd.AddCommand(chViewCmd)
	chCmd.AddCommand(chDiffCmd)
	chCmd.AddCommand(chCommentsCmd)
	rootCmd.AddCommand(chCmd)
}

// paint colors a cell according to its tone.
func paint(c changes.Cell) string {
	switch c.Tone {
	case changes.TonePositive:
		return output.Green(c.Text)
	case changes.ToneNegative:
		return output.Red(c.Text)
	case changes.ToneInfo:
		return output.Cyan(c.Text)
	default:
		return c.Text
	}
}

func changeListRun(ctx context.Context, s *session, query string, limit int) error {
	list, err := s.api.QueryChanges(ctx, query, limit, gerrit.OptionDetailedLabels)
	if err != nil {
		return err
	}

	table := s.ui.Table([]string{"Id", "Subject", "Status", "Owner", "Project", "Branch", "Updated", "Size", "CR", "V"})
	for i := range list {
		c := &list[i]
		owner, err := s.names.Name(ctx, c.Owner.AccountID)
		if err != nil {
			return fmt.Errorf("resolve owner of change %d: %w", c.Number, err)
		}
		if owner == "" {
			owner = fmt.Sprintf("#%d", c.Owner.AccountID)
		}

		if err := table.Append([]string{
			fmt.Sprintf("%d", c.Number),
			changes.Truncate(c.Subject, changes.MaxColumnWidth),
			paint(changes.ListStatus(c)),
			owner,
			c.Project,
			changes.Truncate(c.Branch, changes.MaxColumnWidth),
			output.RelativeTime(c.Updated.Time),
			output.Delta(c.Insertions, c.Deletions),
			paint(changes.CodeReviewCell(c.Labels[models.LabelCodeReview])),
			paint(changes.VerifiedCell(c.Labels[models.LabelVerified])),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func changeViewRun(ctx context.Context, s *session, id string, limit int) error {
	c, err := s.api.ChangeDetail(ctx, id)
	if err != nil {
		return err
	}
	u := s.ui

	u.Printf("%s %s %s\n", paint(changes.ViewStatus(c)), id, c.Subject)
	u.Printf("%s %s\n", output.Bold("Updated"), output.RelativeTime(c.Updated.Time))
	u.Printf("%s %s | %s\n", output.Bold("Repo | Branch"), c.Project, c.Branch)

	for _, name := range changes.LabelNames(c) {
		var votes []string
		for _, cell := range changes.VoteCells(c.Labels[name]) {
			votes = append(votes, paint(cell))
		}
		u.Printf("%s %s\n", output.Bold(name+":"), strings.Join(votes, ", "))
	}

	files, err := s.api.Files(ctx, id, "current")
	if err != nil {
		return err
	}
	u.Println(output.Bold("Files:"))
	table := u.Table([]string{"", "File", "Comments", "Delta"})
	for _, row := range changes.FileRows(files) {
		if err := table.Append([]string{
			row.Status,
			output.Blue(row.Path),
			row.Comments,
			output.Delta(row.Inserted, row.Deleted),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	u.Printf("\n%s\n", output.Bold(fmt.Sprintf("Last %d messages:", limit)))
	for _, m := range changes.LastMessages(c.Messages, limit) {
		u.Printf("  %s %s\n", output.Bold(m.Author.Name), output.RelativeTime(m.Date.Time))
		for _, line := range strings.Split(m.Message, "\n") {
			u.Printf("    %s\n", line)
		}
	}
	return nil
}

func changeViewJSONRun(ctx context.Context, s *session, id string) error {
	raw, err := s.api.ChangeDetailRaw(ctx, id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	return s.ui.Highlight(string(data)+"\n", "json")
}

func changeDiffRun(ctx context.Context, s *session, id, revision string, stat bool) error {
	patch, err := s.api.Patch(ctx, id, revision)
	if err != nil {
		return err
	}
	if !stat {
		return s.ui.Highlight(string(patch), "diff")
	}

	files, _, err := gitdiff.Parse(bytes.NewReader(patch))
	if err != nil {
		return fmt.Errorf("parse patch: %w", err)
	}
	table := s.ui.Table([]string{"", "File", "Delta"})
	var added, deleted int
	for _, f := range files {
		var a, d int
		for _, frag := range f.TextFragments {
			a += int(frag.LinesAdded)
			d += int(frag.LinesDeleted)
		}
		added += a
		deleted += d
		if err := table.Append([]string{diffStatus(f), diffName(f), output.Delta(a, d)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	s.ui.Printf("%d files changed, %s\n", len(files), output.Delta(added, deleted))
	return nil
}

func diffStatus(f *gitdiff.File) string {
	switch {
	case f.IsNew:
		return "A"
	case f.IsDelete:
		return "D"
	case f.IsRename:
		return "R"
	case f.IsCopy:
		return "C"
	}
	return "M"
}

func diffName(f *gitdiff.File) string {
	switch {
	case f.IsRename:
		return f.OldName + " → " + f.NewName
	case f.IsDelete:
		return f.OldName
	}
	return f.NewName
}

func changeCommentsRun(ctx context.Context, s *session, id string) error {
	comments, err := s.api.Comments(ctx, id)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(comments))
	for path := range comments {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		s.ui.Println(output.Bold(path))
		for _, c := range comments[path] {
			header := fmt.Sprintf("Patchset %d, Line %d:", c.PatchSet, c.Line)
			s.ui.Printf("    %s %s\n", output.Bold(header), c.Message)
		}
	}
	return nil
}
