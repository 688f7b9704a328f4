package gerrit

import (
	"context"
	"net/url"
	"strconv"

	"github.com/joescharf/gr/internal/models"
)

// AccountName returns the display name of an account.
func (c *Client) AccountName(ctx context.Context, accountID int) (string, error) {
	var name string
	if err := c.Get(ctx, "accounts/"+strconv.Itoa(accountID)+"/name", nil, &name); err != nil {
		return "", err
	}
	return name, nil
}

// ListProjects lists projects matching a project query such as "state:active".
func (c *Client) ListProjects(ctx context.Context, query string, limit int) ([]models.Project, error) {
	q := url.Values{}
	q.Set("query", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var projects []models.Project
	if err := c.Get(ctx, "projects/", q, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
