package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Label names used by the review service.
const (
	LabelCodeReview = "Code-Review"
	LabelVerified   = "Verified"
)

// CommitMsgPath is the synthetic file the service reports for the commit message.
const CommitMsgPath = "/COMMIT_MSG"

// Change is a proposed code revision tracked by the review service.
type Change struct {
	ID              string              `json:"id"`
	Number          int                 `json:"_number"`
	Subject         string              `json:"subject"`
	Status          string              `json:"status"`
	Mergeable       *bool               `json:"mergeable,omitempty"`
	Owner           Account             `json:"owner"`
	Project         string              `json:"project"`
	Branch          string              `json:"branch"`
	Topic           string              `json:"topic,omitempty"`
	Updated         Timestamp           `json:"updated"`
	Insertions      int                 `json:"insertions"`
	Deletions       int                 `json:"deletions"`
	Labels          map[string]Label    `json:"labels,omitempty"`
	CurrentRevision string              `json:"current_revision,omitempty"`
	Revisions       map[string]Revision `json:"revisions,omitempty"`
	Messages        []Message           `json:"messages,omitempty"`
	Source          *ChangeSource       `json:"source,omitempty"`
}

// IsMergeable reports whether the change can be merged. A missing flag counts as mergeable.
func (c *Change) IsMergeable() bool {
	return c.Mergeable == nil || *c.Mergeable
}

// ChangeSource describes where a submitted change came from.
type ChangeSource struct {
	Branch struct {
		Name string `json:"name"`
	} `json:"branch"`
}

// Label is a named review dimension and the votes cast on it.
type Label struct {
	All []Vote `json:"all,omitempty"`
}

// Values returns the vote values in the order the service returned them.
func (l Label) Values() []int {
	values := make([]int, 0, len(l.All))
	for _, v := range l.All {
		values = append(values, v.Value)
	}
	return values
}

// Vote is a signed value attributed to an account on a label.
type Vote struct {
	Account
	Value int `json:"value,omitempty"`
}

// Revision is a patch set of a change.
type Revision struct {
	Number int                      `json:"_number"`
	Ref    string                   `json:"ref,omitempty"`
	Fetch  map[string]FetchCommands `json:"fetch,omitempty"`
}

// FetchCommands holds the download commands offered for one scheme (ssh, http, ...).
type FetchCommands struct {
	URL      string            `json:"url"`
	Ref      string            `json:"ref"`
	Commands map[string]string `json:"commands,omitempty"`
}

// Message is a change message posted by a reviewer or the service.
type Message struct {
	ID      string    `json:"id"`
	Author  Account   `json:"author"`
	Date    Timestamp `json:"date"`
	Message string    `json:"message"`
}

// FileInfo describes one file touched by a revision.
type FileInfo struct {
	Status        string `json:"status,omitempty"`
	LinesInserted int    `json:"lines_inserted,omitempty"`
	LinesDeleted  int    `json:"lines_deleted,omitempty"`
	Size          int64  `json:"size,omitempty"`
	SizeDelta     int64  `json:"size_delta,omitempty"`
}

// StatusCode returns the one-letter file status, "M" when the service omits it.
func (f FileInfo) StatusCode() string {
	if f.Status == "" {
		return "M"
	}
	return f.Status
}

// Comment is an inline comment on a file.
type Comment struct {
	ID       string    `json:"id"`
	Author   Account   `json:"author"`
	PatchSet int       `json:"patch_set"`
	Line     int       `json:"line,omitempty"`
	Message  string    `json:"message"`
	Updated  Timestamp `json:"updated"`
}

// ReviewResult is the response of posting a review.
type ReviewResult struct {
	Labels map[string]int `json:"labels,omitempty"`
}

// timestampLayout is the UTC format the service uses for all timestamps.
const timestampLayout = "2006-01-02 15:04:05.999999999"

// Timestamp is a UTC time in the service's wire format.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02 15:04:05.000000000"))
}
