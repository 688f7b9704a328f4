package models

// Project is a repository hosted by the review service.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	State       string    `json:"state,omitempty"`
	Description string    `json:"description,omitempty"`
	WebLinks    []WebLink `json:"web_links,omitempty"`
}

// WebLink is a browser link attached to a project.
type WebLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BrowseURL returns the first web link, or "" when the project has none.
func (p Project) BrowseURL() string {
	if len(p.WebLinks) == 0 {
		return ""
	}
	return p.WebLinks[0].URL
}
