package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodeReview(t *testing.T) {
	tests := []struct {
		in   string
		want CodeReview
	}{
		{"+1", CodeReviewPlusOne},
		{"1", CodeReviewPlusOne},
		{"+2", CodeReviewPlusTwo},
		{"-1", CodeReviewMinusOne},
		{"0", CodeReviewZero},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCodeReview(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCodeReview_Invalid(t *testing.T) {
	for _, in := range []string{"-2", "+3", "lgtm", ""} {
		_, err := ParseCodeReview(in)
		assert.Error(t, err, in)
	}
}

func TestCodeReview_WireString(t *testing.T) {
	assert.Equal(t, "+1", CodeReviewPlusOne.String())
	assert.Equal(t, "+2", CodeReviewPlusTwo.String())
	assert.Equal(t, "-1", CodeReviewMinusOne.String())
	assert.Equal(t, "0", CodeReviewZero.String())

	data, err := json.Marshal(map[string]CodeReview{LabelCodeReview: CodeReviewPlusTwo})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Code-Review":"+2"}`, string(data))
}

func TestCodeReview_FlagValue(t *testing.T) {
	var cr CodeReview
	require.NoError(t, cr.Set("-1"))
	assert.Equal(t, CodeReviewMinusOne, cr)
	assert.Equal(t, "vote", cr.Type())
	assert.Error(t, cr.Set("+5"))
}

func TestTimestamp_Unmarshal(t *testing.T) {
	var c Change
	require.NoError(t, json.Unmarshal([]byte(`{"_number":7,"updated":"2024-03-01 10:20:30.123000000"}`), &c))
	assert.Equal(t, 7, c.Number)
	want := time.Date(2024, 3, 1, 10, 20, 30, 123000000, time.UTC)
	assert.True(t, want.Equal(c.Updated.Time))
}

func TestChange_IsMergeable(t *testing.T) {
	no := false
	assert.True(t, (&Change{}).IsMergeable())
	assert.False(t, (&Change{Mergeable: &no}).IsMergeable())
}

func TestVote_EmbedsAccount(t *testing.T) {
	var l Label
	require.NoError(t, json.Unmarshal([]byte(`{"all":[{"_account_id":3,"username":"alice","value":-1},{"_account_id":4}]}`), &l))
	require.Len(t, l.All, 2)
	assert.Equal(t, "alice", l.All[0].Username)
	assert.Equal(t, []int{-1, 0}, l.Values())
}

func TestFileInfo_StatusCode(t *testing.T) {
	assert.Equal(t, "M", FileInfo{}.StatusCode())
	assert.Equal(t, "A", FileInfo{Status: "A"}.StatusCode())
}

func TestProject_BrowseURL(t *testing.T) {
	assert.Equal(t, "", Project{}.BrowseURL())
	p := Project{WebLinks: []WebLink{{Name: "browse", URL: "https://x/1"}, {URL: "https://x/2"}}}
	assert.Equal(t, "https://x/1", p.BrowseURL())
}
