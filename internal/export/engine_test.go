package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sievetools/jirasieve/internal/entity"
	"github.com/sievetools/jirasieve/internal/fieldmap"
	"github.com/sievetools/jirasieve/internal/translate"
)

func testConfig() Config {
	return Config{
		AttachmentBaseURL:     "https://attachments.example.com",
		UTCOffset:             "-0600",
		ProjectType:           "software",
		ExcludedLabels:        []string{"enhancement", "bug", "test", "patch"},
		ExcludedHistoryFields: []string{"Waiting On", "Workflow"},
	}
}

func newTestEngine(t *testing.T, dump string, activeUsers ...string) *Engine {
	t.Helper()
	store, err := entity.Parse(strings.NewReader(dump))
	require.NoError(t, err)

	active := make(map[string]struct{}, len(activeUsers))
	for _, u := range activeUsers {
		active[u] = struct{}{}
	}
	resolver := translate.NewResolver(active, nil, "import")
	return New(store, resolver, fieldmap.Builtin(), testConfig())
}

// jsonKeys marshals v and returns the set of top-level keys actually
// emitted, which is how the sparse-output policy is observable.
func jsonKeys(t *testing.T, v interface{}) map[string]bool {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	keys := make(map[string]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys
}

func TestMinimalIssueScenario(t *testing.T) {
	dump := `<entity-engine-xml>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="5" project="10010" key="CLJ-1" priority="1" status="6" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-02 00:00:00.0"
         summary="bug"/>
</entity-engine-xml>`
	e := newTestEngine(t, dump, "alice")

	projects := e.Projects()
	require.Len(t, projects, 1)
	p := projects[0]
	assert.Equal(t, "Clojure", p.Name)
	assert.Equal(t, "CLJ", p.Key)
	assert.Equal(t, "software", p.Type)

	require.Len(t, p.Issues, 1)
	issue := p.Issues[0]
	assert.Equal(t, "CLJ-1", issue.Key)
	assert.Equal(t, "Blocker", issue.Priority)
	assert.Equal(t, "Closed", issue.Status)
	assert.Equal(t, "alice", issue.Reporter)
	assert.Equal(t, "Bug", issue.IssueType)
	assert.Equal(t, "2015-01-01T00:00:00.0-0600", issue.Created)
	assert.Equal(t, "2015-01-02T00:00:00.0-0600", issue.Updated)
	assert.Equal(t, "bug", issue.Summary)

	// Exactly the mandatory fields and nothing else.
	keys := jsonKeys(t, issue)
	want := []string{"key", "priority", "status", "reporter", "issueType", "created", "updated", "summary"}
	assert.Len(t, keys, len(want))
	for _, k := range want {
		assert.True(t, keys[k], "missing field %s", k)
	}
}

func TestFixVersionJoin(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <Version id="200" project="10010" name="1.0"/>
  <Version id="201" project="10010" name="1.1"/>
  <NodeAssociation sourceNodeId="100" sinkNodeId="200" associationType="IssueFixVersion"/>
  <NodeAssociation sourceNodeId="100" sinkNodeId="201" associationType="IssueVersion"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	assert.Equal(t, []string{"1.0"}, issue.FixedVersions)
	assert.Equal(t, []string{"1.1"}, issue.AffectedVersions)
}

func TestDanglingAssociationIsDropped(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <NodeAssociation sourceNodeId="100" sinkNodeId="999" associationType="IssueFixVersion"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	assert.False(t, jsonKeys(t, issue)["fixedVersions"])
}

func TestLabelStopSet(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <Label id="1" issue="100" label="bug"/>
  <Label id="2" issue="100" label="security"/>
  <Label id="3" issue="100" label="patch"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	assert.Equal(t, []string{"security"}, issue.Labels)
}

func TestUnknownPriorityOmitted(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="9" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	keys := jsonKeys(t, issue)
	assert.False(t, keys["priority"])
	assert.True(t, keys["status"])
}

func TestComponentsAndVersionsOnProject(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure" description="the language"/>
  <Version id="200" project="10010" name="1.0" released="true" releasedate="2015-03-01 10:15:00.0"/>
  <Version id="201" project="10010" name="1.1"/>
  <Version id="300" project="99" name="other-project"/>
  <Component id="400" project="10010" name="reader"/>
  <Component id="401" project="10010" name="compiler"/>
</root>`
	e := newTestEngine(t, dump)

	p := e.Projects()[0]
	assert.Equal(t, "the language", p.Description)
	require.Len(t, p.Versions, 2)
	assert.Equal(t, Version{Name: "1.0", Released: "true", ReleaseDate: "2015-03-01T10:15:00.0-0600"}, p.Versions[0])
	assert.Equal(t, Version{Name: "1.1"}, p.Versions[1])
	assert.Equal(t, []string{"reader", "compiler"}, p.Components)

	// No issues: the field stays out of the document entirely.
	assert.False(t, jsonKeys(t, p)["issues"])
}

func TestIssueComponentJoin(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <Component id="400" project="10010" name="reader"/>
  <NodeAssociation sourceNodeId="100" sinkNodeId="400" associationType="IssueComponent"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	assert.Equal(t, []string{"reader"}, e.Projects()[0].Issues[0].Components)
}

func TestCustomFields(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <CustomFieldValue id="1" issue="100" customfield="10010" stringvalue="Code and Test"/>
  <CustomFieldValue id="2" issue="100" customfield="77777" stringvalue="dropped"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	require.Len(t, issue.CustomFields, 1)
	assert.Equal(t, CustomField{FieldName: "Patch", FieldType: "select", Value: "Code and Test"}, issue.CustomFields[0])
}

func TestCommentsResolveAuthors(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <Action id="7" issue="100" author="alice" type="comment" created="2015-01-03 12:00:00.0">
    <body>looks good</body>
  </Action>
  <Action id="8" issue="100" author="ghost" type="comment" created="2015-01-04 12:00:00.0">
    <body>me too</body>
  </Action>
  <Action id="9" issue="100" author="alice" type="worklog" created="2015-01-05 12:00:00.0">
    <body>3h spent</body>
  </Action>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	require.Len(t, issue.Comments, 2)
	assert.Equal(t, Comment{Body: "looks good", Author: "alice", Created: "2015-01-03T12:00:00.0-0600"}, issue.Comments[0])
	assert.Equal(t, "import", issue.Comments[1].Author)
}

func TestAttachments(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <FileAttachment id="9000" issue="100" filename="fix v2.patch" author="alice"
                  created="2015-01-05 09:00:00.0" mimetype="text/plain"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	require.Len(t, issue.Attachments, 1)
	a := issue.Attachments[0]
	assert.Equal(t, "fix v2.patch", a.Name)
	assert.Equal(t, "alice", a.Attacher)
	assert.Equal(t, "2015-01-05T09:00:00.0-0600", a.Created)
	assert.Equal(t, "https://attachments.example.com/CLJ/CLJ-1/9000/fix%20v2.patch", a.URI)
}

func TestVotersAndWatchersDeduplicate(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <UserAssociation sourceName="alice" sinkNodeId="100" associationType="VoteIssue"/>
  <UserAssociation sourceName="ghost1" sinkNodeId="100" associationType="VoteIssue"/>
  <UserAssociation sourceName="ghost2" sinkNodeId="100" associationType="VoteIssue"/>
  <UserAssociation sourceName="alice" sinkNodeId="100" associationType="WatchIssue"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	// Both stale voters collapse into one placeholder entry.
	assert.Equal(t, []string{"alice", "import"}, issue.Voters)
	assert.Equal(t, []string{"alice"}, issue.Watchers)
}

func TestHistoryExcludesWorkflowFields(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
  <ChangeGroup id="50" issue="100" author="alice" created="2015-02-01 08:00:00.0"/>
  <ChangeItem id="60" group="50" fieldtype="jira" field="status"
              oldvalue="1" newvalue="6" oldstring="Open" newstring="Closed"/>
  <ChangeItem id="61" group="50" fieldtype="custom" field="Waiting On"
              oldstring="x" newstring="y"/>
  <ChangeItem id="62" group="50" fieldtype="jira" field="Workflow"
              oldstring="classic" newstring="new"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	require.Len(t, issue.History, 1)
	hg := issue.History[0]
	assert.Equal(t, "alice", hg.Author)
	assert.Equal(t, "2015-02-01T08:00:00.0-0600", hg.Created)
	require.Len(t, hg.Items, 1)
	item := hg.Items[0]
	assert.Equal(t, "status", item.Field)
	assert.Equal(t, "Open", item.FromString)
	assert.Equal(t, "Closed", item.ToString)

	// Raw code values are intentionally not surfaced.
	keys := jsonKeys(t, item)
	assert.False(t, keys["oldvalue"])
	assert.False(t, keys["newvalue"])
}

func TestSparseIssueHasNoEmptyCollections(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	keys := jsonKeys(t, e.Projects()[0].Issues[0])
	for _, k := range []string{"attachments", "comments", "labels", "voters", "watchers", "history", "components", "fixedVersions", "affectedVersions", "customFieldValues"} {
		assert.False(t, keys[k], "expected %s to be absent", k)
	}
}

func TestStaleReporterCollapsesToPlaceholder(t *testing.T) {
	dump := `<root>
  <Project id="10010" key="CLJ" name="Clojure"/>
  <Issue id="100" project="10010" key="CLJ-1" priority="1" status="1" type="1"
         reporter="oldtimer" assignee="alice" created="2015-01-01 00:00:00.0" updated="2015-01-01 00:00:00.0" summary="s"/>
</root>`
	e := newTestEngine(t, dump, "alice")

	issue := e.Projects()[0].Issues[0]
	assert.Equal(t, "import", issue.Reporter)
	assert.Equal(t, "alice", issue.Assignee)
}
