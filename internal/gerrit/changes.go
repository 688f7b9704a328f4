package gerrit

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joescharf/gr/internal/models"
)

// Query options accepted by the changes endpoint.
const (
	OptionDetailedLabels   = "DETAILED_LABELS"
	OptionDownloadCommands = "DOWNLOAD_COMMANDS"
	OptionCurrentRevision  = "CURRENT_REVISION"
)

func changePath(id string, parts ...string) string {
	p := "changes/" + url.PathEscape(id)
	if len(parts) > 0 {
		p += "/" + strings.Join(parts, "/")
	}
	return p
}

func revisionPath(id, revision string, parts ...string) string {
	if revision == "" {
		revision = "current"
	}
	return changePath(id, append([]string{"revisions", url.PathEscape(revision)}, parts...)...)
}

// QueryChanges lists changes matching q. A limit of zero leaves the service default.
func (c *Client) QueryChanges(ctx context.Context, q string, limit int, options ...string) ([]models.Change, error) {
	query := url.Values{}
	query.Set("q", q)
	if limit > 0 {
		query.Set("n", strconv.Itoa(limit))
	}
	for _, o := range options {
		query.Add("o", o)
	}
	var changes []models.Change
	if err := c.Get(ctx, "changes/", query, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// ChangeDetail returns a change with labels, votes and messages.
func (c *Client) ChangeDetail(ctx context.Context, id string) (*models.Change, error) {
	var change models.Change
	if err := c.Get(ctx, changePath(id, "detail"), nil, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// ChangeDetailRaw returns the detail response as a generic JSON value.
func (c *Client) ChangeDetailRaw(ctx context.Context, id string) (any, error) {
	var raw any
	if err := c.Get(ctx, changePath(id, "detail"), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Submit merges a change.
func (c *Client) Submit(ctx context.Context, id string) (*models.Change, error) {
	return c.changeAction(ctx, id, "submit")
}

// Abandon abandons a change.
func (c *Client) Abandon(ctx context.Context, id string) (*models.Change, error) {
	return c.changeAction(ctx, id, "abandon")
}

// Rebase rebases a change onto its target branch.
func (c *Client) Rebase(ctx context.Context, id string) (*models.Change, error) {
	return c.changeAction(ctx, id, "rebase")
}

func (c *Client) changeAction(ctx context.Context, id, action string) (*models.Change, error) {
	var change models.Change
	if err := c.Post(ctx, changePath(id, action), nil, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// ReviewInput is the body of a review post.
type ReviewInput struct {
	Message string                       `json:"message,omitempty"`
	Labels  map[string]models.CodeReview `json:"labels,omitempty"`
}

// NewReviewInput builds a review carrying message and, when cr is non-nil, a Code-Review vote.
func NewReviewInput(message string, cr *models.CodeReview) ReviewInput {
	in := ReviewInput{Message: message}
	if cr != nil {
		in.Labels = map[string]models.CodeReview{models.LabelCodeReview: *cr}
	}
	return in
}

// SetReview posts a review on a revision ("current" when revision is empty).
func (c *Client) SetReview(ctx context.Context, id, revision string, in ReviewInput) (*models.ReviewResult, error) {
	var result models.ReviewResult
	if err := c.Post(ctx, revisionPath(id, revision, "review"), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Comments returns the published inline comments of a change keyed by file path.
func (c *Client) Comments(ctx context.Context, id string) (map[string][]models.Comment, error) {
	comments := map[string][]models.Comment{}
	if err := c.Get(ctx, changePath(id, "comments"), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Patch returns the decoded unified diff of a revision.
func (c *Client) Patch(ctx context.Context, id, revision string) ([]byte, error) {
	text, err := c.GetText(ctx, revisionPath(id, revision, "patch"), nil)
	if err != nil {
		return nil, err
	}
	patch, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	return patch, nil
}

// Files lists the files touched by a revision.
func (c *Client) Files(ctx context.Context, id, revision string) (map[string]models.FileInfo, error) {
	files := map[string]models.FileInfo{}
	if err := c.Get(ctx, revisionPath(id, revision, "files")+"/", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// AddReviewer adds one reviewer (username, email or group) to a change.
func (c *Client) AddReviewer(ctx context.Context, id, reviewer string) error {
	body := map[string]string{"reviewer": reviewer}
	return c.Post(ctx, changePath(id, "reviewers"), body, nil)
}
