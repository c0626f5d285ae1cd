package export

import (
	"fmt"
	"net/url"

	"github.com/sievetools/jirasieve/internal/entity"
	"github.com/sievetools/jirasieve/internal/fieldmap"
	"github.com/sievetools/jirasieve/internal/translate"
)

// Association type discriminators used in the dump. The discriminator value
// alone determines the relation an association record expresses.
const (
	assocIssueVersion    = "IssueVersion"
	assocIssueFixVersion = "IssueFixVersion"
	assocIssueComponent  = "IssueComponent"
	assocVoteIssue       = "VoteIssue"
	assocWatchIssue      = "WatchIssue"
)

// Config carries the fixed collaborator assumptions of the join logic,
// resolved from configuration so they are swappable without touching it.
type Config struct {
	AttachmentBaseURL     string
	UTCOffset             string
	ProjectType           string
	ExcludedLabels        []string
	ExcludedHistoryFields []string
}

type assocKey struct {
	typ string
	id  string
}

// Engine performs the per-project and per-issue joins against the store.
// All grouping maps are built once up front; after New the engine only
// reads, so building every project from one Engine is safe and idempotent.
type Engine struct {
	store    *entity.Store
	resolver *translate.Resolver
	fields   *fieldmap.Map
	cfg      Config

	versionNames   map[string]string
	componentNames map[string]string

	nodeSinks map[assocKey][]string // (associationType, sourceNodeId) -> sinkNodeIds
	userNames map[assocKey][]string // (associationType, sinkNodeId) -> sourceNames

	versionsByProject   map[string][]*entity.Record
	componentsByProject map[string][]*entity.Record
	issuesByProject     map[string][]*entity.Record

	labelsByIssue   map[string][]*entity.Record
	fieldsByIssue   map[string][]*entity.Record
	commentsByIssue map[string][]*entity.Record
	filesByIssue    map[string][]*entity.Record
	groupsByIssue   map[string][]*entity.Record
	itemsByGroup    map[string][]*entity.Record

	excludedLabels        map[string]struct{}
	excludedHistoryFields map[string]struct{}
}

// New builds an Engine over a fully parsed store. The store and resolver
// are read-only from here on.
func New(store *entity.Store, resolver *translate.Resolver, fields *fieldmap.Map, cfg Config) *Engine {
	e := &Engine{
		store:    store,
		resolver: resolver,
		fields:   fields,
		cfg:      cfg,

		versionNames:   make(map[string]string),
		componentNames: make(map[string]string),
		nodeSinks:      make(map[assocKey][]string),
		userNames:      make(map[assocKey][]string),

		versionsByProject:   groupBy(store, "Version", "project"),
		componentsByProject: groupBy(store, "Component", "project"),
		issuesByProject:     groupBy(store, "Issue", "project"),

		labelsByIssue:   groupBy(store, "Label", "issue"),
		fieldsByIssue:   groupBy(store, "CustomFieldValue", "issue"),
		commentsByIssue: groupBy(store, "Action", "issue"),
		filesByIssue:    groupBy(store, "FileAttachment", "issue"),
		groupsByIssue:   groupBy(store, "ChangeGroup", "issue"),
		itemsByGroup:    groupBy(store, "ChangeItem", "group"),

		excludedLabels:        toSet(cfg.ExcludedLabels),
		excludedHistoryFields: toSet(cfg.ExcludedHistoryFields),
	}

	for id, r := range store.Index("Version") {
		e.versionNames[id] = r.Field("name")
	}
	for id, r := range store.Index("Component") {
		e.componentNames[id] = r.Field("name")
	}
	for _, r := range store.Records("NodeAssociation") {
		k := assocKey{r.Field("associationType"), r.Field("sourceNodeId")}
		e.nodeSinks[k] = append(e.nodeSinks[k], r.Field("sinkNodeId"))
	}
	for _, r := range store.Records("UserAssociation") {
		k := assocKey{r.Field("associationType"), r.Field("sinkNodeId")}
		e.userNames[k] = append(e.userNames[k], r.Field("sourceName"))
	}
	return e
}

func groupBy(store *entity.Store, tag, field string) map[string][]*entity.Record {
	m := make(map[string][]*entity.Record)
	for _, r := range store.Records(tag) {
		if key := r.Field(field); key != "" {
			m[key] = append(m[key], r)
		}
	}
	return m
}

func toSet(values []string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Projects builds the denormalized record for every Project in the dump,
// in source order.
func (e *Engine) Projects() []Project {
	var out []Project
	for _, rec := range e.store.Records("Project") {
		out = append(out, e.buildProject(rec))
	}
	return out
}

func (e *Engine) buildProject(rec *entity.Record) Project {
	p := Project{
		Name:        rec.Field("name"),
		Key:         rec.Field("key"),
		Type:        e.cfg.ProjectType,
		Description: rec.Field("description"),
	}

	for _, v := range e.versionsByProject[rec.ID()] {
		ver := Version{Name: v.Field("name")}
		if v.Field("released") == "true" {
			ver.Released = "true"
		}
		if rd := v.Field("releasedate"); rd != "" {
			ver.ReleaseDate = e.date(rd)
		}
		p.Versions = append(p.Versions, ver)
	}

	for _, c := range e.componentsByProject[rec.ID()] {
		p.Components = append(p.Components, c.Field("name"))
	}

	for _, i := range e.issuesByProject[rec.ID()] {
		p.Issues = append(p.Issues, e.buildIssue(i, p.Key))
	}
	return p
}

func (e *Engine) buildIssue(rec *entity.Record, projectKey string) Issue {
	id := rec.ID()
	issue := Issue{
		Key:         rec.Field("key"),
		Priority:    translate.Priority(rec.Field("priority")),
		Status:      translate.Status(rec.Field("status")),
		Resolution:  translate.Resolution(rec.Field("resolution")),
		IssueType:   translate.IssueType(rec.Field("type")),
		Created:     e.date(rec.Field("created")),
		Updated:     e.date(rec.Field("updated")),
		Summary:     rec.Field("summary"),
		Description: rec.Field("description"),
		Environment: rec.Field("environment"),
	}
	if name := rec.Field("reporter"); name != "" {
		issue.Reporter = e.resolver.Resolve(name)
	}
	if name := rec.Field("assignee"); name != "" {
		issue.Assignee = e.resolver.Resolve(name)
	}

	issue.AffectedVersions = e.joinNames(assocIssueVersion, id, e.versionNames)
	issue.FixedVersions = e.joinNames(assocIssueFixVersion, id, e.versionNames)
	issue.Components = e.joinNames(assocIssueComponent, id, e.componentNames)
	issue.Labels = e.labels(id)
	issue.CustomFields = e.customFields(id)
	issue.Comments = e.comments(id)
	issue.Attachments = e.attachments(id, projectKey, issue.Key)
	issue.Voters = e.associatedUsers(assocVoteIssue, id)
	issue.Watchers = e.associatedUsers(assocWatchIssue, id)
	issue.History = e.history(id)
	return issue
}

// joinNames follows NodeAssociation links from an issue to the named
// target collection. Sinks missing from the target are dangling references
// and are silently dropped.
func (e *Engine) joinNames(assocType, issueID string, names map[string]string) []string {
	var out []string
	for _, sink := range e.nodeSinks[assocKey{assocType, issueID}] {
		if name, ok := names[sink]; ok && name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (e *Engine) labels(issueID string) []string {
	var out []string
	for _, r := range e.labelsByIssue[issueID] {
		label := r.Field("label")
		if label == "" {
			continue
		}
		if _, skip := e.excludedLabels[label]; skip {
			continue
		}
		out = append(out, label)
	}
	return out
}

func (e *Engine) customFields(issueID string) []CustomField {
	var out []CustomField
	for _, r := range e.fieldsByIssue[issueID] {
		f, ok := e.fields.Lookup(r.Field("customfield"))
		if !ok {
			// Unrecognized field IDs are dropped silently.
			continue
		}
		value := firstField(r, "stringvalue", "textvalue", "numbervalue", "datevalue")
		if value == "" {
			continue
		}
		out = append(out, CustomField{FieldName: f.Name, FieldType: f.Type, Value: value})
	}
	return out
}

func (e *Engine) comments(issueID string) []Comment {
	var out []Comment
	for _, r := range e.commentsByIssue[issueID] {
		// Action records cover worklogs too; only comments are exported.
		if r.Has("type") && r.Field("type") != "comment" {
			continue
		}
		var author string
		if name := r.Field("author"); name != "" {
			author = e.resolver.Resolve(name)
		}
		out = append(out, Comment{
			Body:    r.Field("body"),
			Author:  author,
			Created: e.date(r.Field("created")),
		})
	}
	return out
}

func (e *Engine) attachments(issueID, projectKey, issueKey string) []Attachment {
	var out []Attachment
	for _, r := range e.filesByIssue[issueID] {
		name := r.Field("filename")
		var attacher string
		if a := r.Field("author"); a != "" {
			attacher = e.resolver.Resolve(a)
		}
		out = append(out, Attachment{
			Name:     name,
			Attacher: attacher,
			Created:  e.date(r.Field("created")),
			URI: fmt.Sprintf("%s/%s/%s/%s/%s",
				e.cfg.AttachmentBaseURL, projectKey, issueKey, r.ID(), url.PathEscape(name)),
		})
	}
	return out
}

// associatedUsers resolves voter/watcher names, deduplicating after
// resolution so collapsed placeholder identities appear once. Order is
// first occurrence.
func (e *Engine) associatedUsers(assocType, issueID string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, name := range e.userNames[assocKey{assocType, issueID}] {
		if name == "" {
			continue
		}
		resolved := e.resolver.Resolve(name)
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	return out
}

func (e *Engine) history(issueID string) []HistoryGroup {
	var out []HistoryGroup
	for _, g := range e.groupsByIssue[issueID] {
		hg := HistoryGroup{
			Created: e.date(g.Field("created")),
		}
		if name := g.Field("author"); name != "" {
			hg.Author = e.resolver.Resolve(name)
		}
		for _, item := range e.itemsByGroup[g.ID()] {
			if _, skip := e.excludedHistoryFields[item.Field("field")]; skip {
				continue
			}
			hg.Items = append(hg.Items, HistoryItem{
				FieldType:  item.Field("fieldtype"),
				Field:      item.Field("field"),
				FromString: item.Field("oldstring"),
				ToString:   item.Field("newstring"),
			})
		}
		out = append(out, hg)
	}
	return out
}

func (e *Engine) date(ts string) string {
	return translate.NormalizeDate(ts, e.cfg.UTCOffset)
}

func firstField(r *entity.Record, names ...string) string {
	for _, n := range names {
		if v := r.Field(n); v != "" {
			return v
		}
	}
	return ""
}
