// Package export reconstructs each project's full nested record from the
// relational store (a multi-way in-memory join) and assembles the JSON
// documents the target tracker imports.
//
// The whole package follows one sparse-output policy: a field is present
// only when its underlying relation or value is non-empty. Joins that find
// nothing, codes missing from a translation table, and dangling foreign
// keys all simply leave their field out; nothing is null-filled.
package export

// Version is one project version in the output document.
type Version struct {
	Name        string `json:"name"`
	Released    string `json:"released,omitempty"`
	ReleaseDate string `json:"releasedate,omitempty"`
}

// CustomField is a translated custom field value.
type CustomField struct {
	FieldName string `json:"fieldName"`
	FieldType string `json:"fieldType"`
	Value     string `json:"value"`
}

// Comment is one issue comment, author already resolved.
type Comment struct {
	Body    string `json:"body"`
	Author  string `json:"author"`
	Created string `json:"created"`
}

// Attachment is one issue attachment. URI points at the original instance's
// attachment store; the importer downloads from there.
type Attachment struct {
	Name     string `json:"name"`
	Attacher string `json:"attacher"`
	Created  string `json:"created"`
	URI      string `json:"uri"`
}

// HistoryItem is one field change within a history group. Only the
// human-readable string forms are surfaced; the raw old/new values are not.
type HistoryItem struct {
	FieldType  string `json:"fieldType"`
	Field      string `json:"field"`
	FromString string `json:"fromString,omitempty"`
	ToString   string `json:"toString,omitempty"`
}

// HistoryGroup is one change-history entry: who, when, and what changed.
type HistoryGroup struct {
	Author  string        `json:"author"`
	Created string        `json:"created"`
	Items   []HistoryItem `json:"items,omitempty"`
}

// Issue is the denormalized record for one issue, built once from the
// store and never written back.
type Issue struct {
	Key              string        `json:"key"`
	Priority         string        `json:"priority,omitempty"`
	Status           string        `json:"status,omitempty"`
	Resolution       string        `json:"resolution,omitempty"`
	Reporter         string        `json:"reporter,omitempty"`
	Assignee         string        `json:"assignee,omitempty"`
	IssueType        string        `json:"issueType,omitempty"`
	Created          string        `json:"created,omitempty"`
	Updated          string        `json:"updated,omitempty"`
	Summary          string        `json:"summary,omitempty"`
	Description      string        `json:"description,omitempty"`
	Environment      string        `json:"environment,omitempty"`
	AffectedVersions []string      `json:"affectedVersions,omitempty"`
	FixedVersions    []string      `json:"fixedVersions,omitempty"`
	Components       []string      `json:"components,omitempty"`
	Labels           []string      `json:"labels,omitempty"`
	CustomFields     []CustomField `json:"customFieldValues,omitempty"`
	Comments         []Comment     `json:"comments,omitempty"`
	Attachments      []Attachment  `json:"attachments,omitempty"`
	Voters           []string      `json:"voters,omitempty"`
	Watchers         []string      `json:"watchers,omitempty"`
	History          []HistoryGroup `json:"history,omitempty"`
}

// Project aggregates a project's versions, components, and issues.
type Project struct {
	Name        string    `json:"name"`
	Key         string    `json:"key"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Versions    []Version `json:"versions,omitempty"`
	Components  []string  `json:"components,omitempty"`
	Issues      []Issue   `json:"issues,omitempty"`
}

// User is one record in the users document. Groups and Active are always
// present; the importer needs them even when empty or false.
type User struct {
	Name     string   `json:"name"`
	Groups   []string `json:"groups"`
	Active   bool     `json:"active"`
	Email    string   `json:"email,omitempty"`
	Fullname string   `json:"fullname,omitempty"`
}

// projectsDoc and usersDoc are the top-level shapes of the output files.
type projectsDoc struct {
	Projects []Project `json:"projects"`
}

type usersDoc struct {
	Users []User `json:"users"`
}
