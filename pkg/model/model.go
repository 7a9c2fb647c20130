// Package model defines the records exchanged with the repository and
// execution services.
//
// All types are immutable snapshots: the client never mutates a [Job] or
// [Execution] in place, it replaces the whole value on every poll. JSON
// field names follow the services' camelCase wire format.
package model

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Reserved tags. A notebook whose inputs contain [TagStart] has no real
// predecessor; an output of [TagEnd] is terminal and consumed by nothing.
// Neither tag ever creates a dependency edge.
const (
	TagStart = "/START"
	TagEnd   = "/END"
)

// ShortIDLength is the number of characters shown for content hashes.
const ShortIDLength = 7

// ShortID truncates a content hash for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// IsReservedTag reports whether tag is one of the sentinel tags.
func IsReservedTag(tag string) bool {
	return tag == TagStart || tag == TagEnd
}

// Notebook is a notebook file at a given commit together with the
// resource tags it reads and writes.
type Notebook struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Inputs   []string `json:"inputs"`
	Outputs  []string `json:"outputs"`
	CommitID string   `json:"commitId"`
	FetchURL string   `json:"fetchUrl,omitempty"`
}

// Name returns the last path segment.
func (n Notebook) Name() string {
	if i := strings.LastIndex(n.Path, "/"); i >= 0 {
		return n.Path[i+1:]
	}
	return n.Path
}

// Committer identifies the author of a commit.
type Committer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Commit is a repository commit and the notebooks it touched.
type Commit struct {
	ID          string     `json:"id"`
	Message     string     `json:"message"`
	CommittedAt UnixTime   `json:"committedAt"`
	Committer   Committer  `json:"committer"`
	Created     []Notebook `json:"created"`
	Updated     []Notebook `json:"updated"`
	Deleted     []Notebook `json:"deleted"`
}

// UnmarshalJSON accepts both the nested committer object and the flat
// committerName/committerEmail fields emitted by older service versions.
func (c *Commit) UnmarshalJSON(data []byte) error {
	type plain Commit
	var wire struct {
		plain
		CommitterName  string `json:"committerName"`
		CommitterEmail string `json:"committerEmail"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*c = Commit(wire.plain)
	if c.Committer.Name == "" {
		c.Committer.Name = wire.CommitterName
	}
	if c.Committer.Email == "" {
		c.Committer.Email = wire.CommitterEmail
	}
	return nil
}

// Title returns the first line of the commit message.
func (c Commit) Title() string {
	title, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(title)
}

// Body returns the commit message without its first line.
func (c Commit) Body() string {
	_, body, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(body)
}

// HasChanges reports whether the commit created, updated or deleted any notebook.
func (c Commit) HasChanges() bool {
	return len(c.Created)+len(c.Updated)+len(c.Deleted) > 0
}

// Repository is a source repository known to the repository service.
type Repository struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Name derives a short "owner/repo" name from the repository URI.
// SSH style URIs (git@host:owner/repo.git) and URLs are both accepted.
// The raw URI is returned when nothing better can be derived.
func (r Repository) Name() string {
	uri := strings.TrimSuffix(strings.TrimSpace(r.URI), ".git")
	if uri == "" {
		return r.ID
	}

	var path string
	if u, err := url.Parse(uri); err == nil && u.Host != "" {
		path = u.Path
	} else if _, after, ok := strings.Cut(uri, ":"); ok {
		path = after
	} else {
		path = uri
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	if parts[0] != "" {
		return parts[0]
	}
	return uri
}
