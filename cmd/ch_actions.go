package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/gr/internal/changes"
	"github.com/joescharf/gr/internal/gerrit"
	"github.com/joescharf/gr/internal/models"
)

var (
	mergeForce        bool
	mergeDeleteBranch bool

	reviewVote     = models.CodeReviewPlusOne
	reviewRevision string

	commentVote     models.CodeReview
	commentRevision string

	checkoutScheme string

	createBranch    string
	createReviewers []string
)

var chMergeCmd = &cobra.Command{
	Use:   "merge <id>",
	Short: "Submit a change",
	Long: `Submit a change by id.

--force approves the change with Code-Review +2 before submitting.
--delete-branch checks out the target branch and deletes the merged local branch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeMergeRun(cmd.Context(), s, args[0], mergeForce, mergeDeleteBranch)
	},
}

var chReviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Vote Code-Review on a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeReviewRun(cmd.Context(), s, args[0], reviewVote, reviewRevision)
	},
}

var chCommentCmd = &cobra.Command{
	Use:   "comment <id> <message>",
	Short: "Comment on a change, optionally with a Code-Review vote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		var vote *models.CodeReview
		if cmd.Flags().Changed("cr") {
			vote = &commentVote
		}
		return changeCommentRun(cmd.Context(), s, args[0], args[1], vote, commentRevision)
	},
}

var chAbandonCmd = &cobra.Command{
	Use:   "abandon <id>",
	Short: "Abandon a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeAbandonRun(cmd.Context(), s, args[0])
	},
}

var chRebaseCmd = &cobra.Command{
	Use:   "rebase <id>",
	Short: "Rebase a change onto its target branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeRebaseRun(cmd.Context(), s, args[0])
	},
}

var chCheckoutCmd = &cobra.Command{
	Use:   "checkout <id>",
	Short: "Fetch a change into a new local branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeCheckoutRun(cmd.Context(), s, args[0], checkoutScheme)
	},
}

var chAddReviewersCmd = &cobra.Command{
	Use:     "add-reviewers <id> <user>...",
	Aliases: []string{"add_reviewers"},
	Short:   "Add reviewers to a change",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeAddReviewersRun(cmd.Context(), s, args[0], args[1:])
	},
}

var chCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Push HEAD for review on a target branch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession()
		if err != nil {
			return err
		}
		return changeCreateRun(s, createBranch, createReviewers)
	},
}

func init() {
	chMergeCmd.Flags().BoolVar(&mergeForce, "force", false, "Approve with Code-Review +2 before submitting")
	chMergeCmd.Flags().BoolVar(&mergeDeleteBranch, "delete-branch", false, "Check out the target branch and delete the merged branch")

	chReviewCmd.Flags().Var(&reviewVote, "cr", "Code-Review vote: +1, +2, -1 or 0")
	chReviewCmd.Flags().StringVar(&reviewRevision, "revision-id", "current", "Revision (patch set) to review")

	chCommentCmd.Flags().Var(&commentVote, "cr", "Code-Review vote to post with the comment: +1, +2, -1 or 0")
	chCommentCmd.Flags().StringVar(&commentRevision, "revision-id", "current", "Revision (patch set) to comment on")

	chCheckoutCmd.Flags().StringVar(&checkoutScheme, "scheme", "ssh", "Download scheme (ssh, http, anonymous http)")

	chCreateCmd.Flags().StringVar(&createBranch, "branch", "master", "Target branch")
	chCreateCmd.Flags().StringSliceVar(&createReviewers, "reviewers", nil, "Reviewers to add (repeatable or comma separated)")

	chCmd.AddCommand(chMergeCmd)
	chCmd.AddCommand(chReviewCmd)
	chCmd.AddCommand(chCommentCmd)
	chCmd.AddCommand(chAbandonCmd)
	chCmd.AddCommand(chRebaseCmd)
	chCmd.AddCommand(chCheckoutCmd)
	chCmd.AddCommand(chAddReviewersCmd)
	chCmd.AddCommand(chCreateCmd)
}

func changeMergeRun(ctx context.Context, s *session, id string, force, deleteBranch bool) error {
	if s.ui.DryRun {
		if force {
			s.ui.DryRunMsg("Would vote Code-Review %s on change %s", models.CodeReviewPlusTwo, id)
		}
		s.ui.DryRunMsg("Would submit change %s", id)
		if deleteBranch {
			s.ui.DryRunMsg("Would check out the target branch and delete the merged branch")
		}
		return nil
	}

	if force {
		vote := models.CodeReviewPlusTwo
		if _, err := s.api.SetReview(ctx, id, "current", gerrit.NewReviewInput("", &vote)); err != nil {
			return err
		}
		s.ui.VerboseLog("Approved change %s with Code-Review %s", id, vote)
	}

	c, err := s.api.Submit(ctx, id)
	if err != nil {
		return err
	}
	s.ui.Println(changes.Title(c.Status))

	if !deleteBranch {
		return nil
	}

	var src string
	if c.Source != nil {
		src = c.Source.Branch.Name
	}
	if src == "" {
		if src, err = s.git.CurrentBranch(); err != nil {
			return err
		}
	}
	if src == c.Branch {
		return fmt.Errorf("refusing to delete %s: it is the target branch", src)
	}

	if err := s.git.Checkout(c.Branch); err != nil {
		return err
	}
	if err := s.git.DeleteBranch(src, true); err != nil {
		return err
	}
	s.ui.Success("Deleted branch %s", src)
	return nil
}

func changeReviewRun(ctx context.Context, s *session, id string, vote models.CodeReview, revision string) error {
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would vote Code-Review %s on change %s", vote, id)
		return nil
	}
	res, err := s.api.SetReview(ctx, id, revision, gerrit.NewReviewInput("", &vote))
	if err != nil {
		return err
	}
	s.ui.Printf("%s %s\n", models.LabelCodeReview, changes.Signed(res.Labels[models.LabelCodeReview]))
	return nil
}

func changeCommentRun(ctx context.Context, s *session, id, message string, vote *models.CodeReview, revision string) error {
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would comment on change %s: %s", id, message)
		return nil
	}
	if _, err := s.api.SetReview(ctx, id, revision, gerrit.NewReviewInput(message, vote)); err != nil {
		return err
	}
	s.ui.Success("Commented on change %s", id)
	return nil
}

func changeAbandonRun(ctx context.Context, s *session, id string) error {
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would abandon change %s", id)
		return nil
	}
	c, err := s.api.Abandon(ctx, id)
	if err != nil {
		return err
	}
	s.ui.Println(changes.Title(c.Status))
	return nil
}

func changeRebaseRun(ctx context.Context, s *session, id string) error {
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would rebase change %s", id)
		return nil
	}
	if _, err := s.api.Rebase(ctx, id); err != nil {
		return err
	}
	s.ui.Println("Rebased")
	return nil
}

func changeCheckoutRun(ctx context.Context, s *session, id, scheme string) error {
	found, err := s.api.QueryChanges(ctx, changes.ChangeQuery(id), 0,
		gerrit.OptionDownloadCommands, gerrit.OptionCurrentRevision)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("change id %s not found", id)
	}

	fetch, err := changes.FetchCommand(&found[0], scheme)
	if err != nil {
		return err
	}
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would run: %s", fetch)
		return nil
	}

	s.ui.Printf("Running: %s\n", fetch)
	out, err := s.git.RunShell(fetch)
	if err != nil {
		return err
	}
	s.ui.VerboseLog("%s", out)
	return nil
}

// changeAddReviewersRun adds reviewers one at a time. A failure stops the loop and
// leaves the reviewers already added in place.
func changeAddReviewersRun(ctx context.Context, s *session, id string, reviewers []string) error {
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would add reviewers %v to change %s", reviewers, id)
		return nil
	}
	for _, r := range reviewers {
		if err := s.api.AddReviewer(ctx, id, r); err != nil {
			return err
		}
		s.ui.VerboseLog("Added reviewer %s", r)
	}
	s.ui.Println("Added")
	return nil
}

func changeCreateRun(s *session, branch string, reviewers []string) error {
	refspec := changes.CreateRefSpec(branch, reviewers)
	if s.ui.DryRun {
		s.ui.DryRunMsg("Would run: git push origin %s", refspec)
		return nil
	}
	out, err := s.git.Push("origin", refspec)
	if err != nil {
		return err
	}
	if out != "" {
		s.ui.Println(out)
	}
	s.ui.Success("Pushed HEAD for review on %s", branch)
	return nil
}
