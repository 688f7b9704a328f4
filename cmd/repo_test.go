package cmd

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoList(t *testing.T) {
	s, f, _, out := testSession(t, map[string]http.HandlerFunc{
		"GET /a/projects/": reply(`[
			{"name": "core", "web_links": [{"name": "browse", "url": "https://git.example.com/core"}]},
			{"name": "tools"}
		]`),
	})

	require.NoError(t, repoListRun(context.Background(), s, "state:active", 5))
	assert.Equal(t, "limit=5&query=state%3Aactive", f.requests[0].Query)

	got := out.String()
	assert.Contains(t, got, "core")
	assert.Contains(t, got, "https://git.example.com/core")
	assert.Contains(t, got, "tools")
}
