// Package changes holds the presentation rules for changes: vote aggregation,
// truncation, file ordering and the refspecs and fetch commands derived from them.
package changes

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joescharf/gr/internal/models"
)

// MaxColumnWidth is the width past which subjects and branches are truncated.
const MaxColumnWidth = 32

const ellipsis = "..."

// Tone is the semantic color of a rendered cell.
type Tone int

const (
	ToneNone Tone = iota
	TonePositive
	ToneNegative
	ToneInfo
)

// Cell is a rendered value plus the tone it should be painted with.
type Cell struct {
	Text string
	Tone Tone
}

// Truncate shortens s to max-3 runes plus an ellipsis when it has max or more runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) < max {
		return s
	}
	return string(r[:max-len(ellipsis)]) + ellipsis
}

// Title returns s in title case ("MERGED" -> "Merged").
func Title(s string) string {
	return cases.Title(language.Und).String(s)
}

// Signed formats n with an explicit sign.
func Signed(n int) string {
	return fmt.Sprintf("%+d", n)
}

// CodeReviewCell aggregates Code-Review votes: the minimum if any vote is negative,
// otherwise the maximum if any is positive, otherwise blank.
func CodeReviewCell(label models.Label) Cell {
	values := label.Values()
	if len(values) == 0 {
		return Cell{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	switch {
	case lo < 0:
		return Cell{Text: Signed(lo), Tone: ToneNegative}
	case hi > 0:
		return Cell{Text: Signed(hi), Tone: TonePositive}
	}
	return Cell{}
}

// VerifiedCell renders "X" if any Verified vote is negative, else "V" if any is positive.
func VerifiedCell(label models.Label) Cell {
	var pos bool
	for _, v := range label.Values() {
		if v < 0 {
			return Cell{Text: "X", Tone: ToneNegative}
		}
		if v > 0 {
			pos = true
		}
	}
	if pos {
		return Cell{Text: "V", Tone: TonePositive}
	}
	return Cell{}
}

// ListStatus is the Status column of the change list.
func ListStatus(c *models.Change) Cell {
	if c.IsMergeable() {
		return Cell{Text: "-"}
	}
	return Cell{Text: "Merge Conflict", Tone: ToneNegative}
}

// ViewStatus is the status badge of a single change. Without a mergeable flag the
// server status is shown, otherwise Active or Merge Conflict.
func ViewStatus(c *models.Change) Cell {
	if c.Mergeable == nil {
		return Cell{Text: Title(c.Status), Tone: TonePositive}
	}
	if *c.Mergeable {
		return Cell{Text: "Active", Tone: ToneInfo}
	}
	return Cell{Text: "Merge Conflict", Tone: ToneNegative}
}

// VoteCells returns one cell per non-zero vote, "+1 alice" style, in server order.
func VoteCells(label models.Label) []Cell {
	var cells []Cell
	for _, v := range label.All {
		if v.Value == 0 {
			continue
		}
		tone := TonePositive
		if v.Value < 0 {
			tone = ToneNegative
		}
		cells = append(cells, Cell{Text: Signed(v.Value) + " " + v.Username, Tone: tone})
	}
	return cells
}

// LabelNames returns the label names of c in alphabetical order.
func LabelNames(c *models.Change) []string {
	names := make([]string, 0, len(c.Labels))
	for name := range c.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileRow is one row of the file table of a change.
type FileRow struct {
	Status   string
	Path     string
	Comments string
	Inserted int
	Deleted  int
}

// FileRows drops the commit message pseudo-file and sorts paths case-insensitively.
func FileRows(files map[string]models.FileInfo) []FileRow {
	rows := make([]FileRow, 0, len(files))
	for path, info := range files {
		if path == models.CommitMsgPath {
			continue
		}
		rows = append(rows, FileRow{
			Status:   info.StatusCode(),
			Path:     path,
			Inserted: info.LinesInserted,
			Deleted:  info.LinesDeleted,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := strings.ToLower(rows[i].Path), strings.ToLower(rows[j].Path)
		if a != b {
			return a < b
		}
		return rows[i].Path < rows[j].Path
	})
	return rows
}

// LastMessages returns the last n messages in chronological order.
func LastMessages(msgs []models.Message, n int) []models.Message {
	if n <= 0 {
		return nil
	}
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// QueryMine and QueryOwned are the default change list queries.
const (
	QueryMine  = "is:open (reviewer:self OR owner:self)"
	QueryOwned = "is:open owner:self"
)

// ChangeQuery returns "change:<id>".
func ChangeQuery(id string) string {
	return "change:" + id
}

// CreateRefSpec builds the push refspec that opens a change for review on branch.
func CreateRefSpec(branch string, reviewers []string) string {
	spec := "HEAD:refs/for/" + branch
	var opts []string
	for _, r := range reviewers {
		if r = strings.TrimSpace(r); r != "" {
			opts = append(opts, "r="+r)
		}
	}
	if len(opts) > 0 {
		spec += "%" + strings.Join(opts, ",")
	}
	return spec
}

// FetchCommand returns the "Branch" download command of the current revision for scheme.
func FetchCommand(c *models.Change, scheme string) (string, error) {
	rev, ok := c.Revisions[c.CurrentRevision]
	if !ok {
		// Only the current revision is requested, so any single entry is it.
		for _, r := range c.Revisions {
			rev, ok = r, true
			break
		}
	}
	if !ok {
		return "", fmt.Errorf("change %d has no revisions", c.Number)
	}

	fetch, ok := rev.Fetch[scheme]
	if !ok {
		schemes := make([]string, 0, len(rev.Fetch))
		for s := range rev.Fetch {
			schemes = append(schemes, s)
		}
		sort.Strings(schemes)
		return "", fmt.Errorf("no %q download scheme (available: %s)", scheme, strings.Join(schemes, ", "))
	}
	cmd, ok := fetch.Commands["Branch"]
	if !ok || cmd == "" {
		return "", fmt.Errorf("no Branch command for %q download scheme", scheme)
	}
	return cmd, nil
}
