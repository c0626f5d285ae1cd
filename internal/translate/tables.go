// Package translate maps the compact codes in a JIRA backup dump to the
// human-readable labels the import documents carry, normalizes dump
// timestamps, and resolves author names against the active-users set.
package translate

// JIRA stores priority, status, type, and resolution as small numeric codes.
// The tables below are fixed at process start and never mutated; an unknown
// code translates to "" and the caller omits the field.

var priorityNames = map[string]string{
	"1": "Blocker",
	"2": "Critical",
	"3": "Major",
	"4": "Minor",
	"5": "Trivial",
}

// Status code 2 ("Assigned") does not occur in exported dumps.
var statusNames = map[string]string{
	"1": "Open",
	"3": "In Progress",
	"4": "Reopened",
	"5": "Resolved",
	"6": "Closed",
}

var issueTypeNames = map[string]string{
	"1": "Bug",
	"2": "New Feature",
	"3": "Task",
	"4": "Improvement",
}

var resolutionNames = map[string]string{
	"1": "Fixed",
	"2": "Won't Fix",
	"3": "Duplicate",
	"4": "Incomplete",
}

// Priority returns the label for a priority code, or "" if unknown.
func Priority(code string) string { return priorityNames[code] }

// Status returns the label for a status code, or "" if unknown.
func Status(code string) string { return statusNames[code] }

// IssueType returns the label for an issue type code, or "" if unknown.
func IssueType(code string) string { return issueTypeNames[code] }

// Resolution returns the label for a resolution code, or "" if unknown.
func Resolution(code string) string { return resolutionNames[code] }
