package jira

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventIssue(t *testing.T) {
	raw := []byte(`{
		"webhookEvent": "jira:issue_updated",
		"issue": {
			"key": "S2G-123",
			"fields": {
				"summary": "Erro no boleto",
				"description": "Boleto não gerado para a proposta 42",
				"assignee": {"displayName": "Yasmin Costa"},
				"status": {"name": "Em Atendimento"}
			}
		}
	}`)

	event := ParseEvent(raw)
	require.Equal(t, KindIssue, event.Kind)
	require.NotNil(t, event.Issue)
	assert.Equal(t, "S2G-123", event.Issue.Key)
	assert.Equal(t, "Erro no boleto", event.Issue.Summary)
	assert.Equal(t, "Boleto não gerado para a proposta 42", event.Issue.Description)
	assert.Equal(t, "Yasmin Costa", event.Issue.Assignee)
	assert.Equal(t, "Em Atendimento", event.Issue.StatusLabel)
}

func TestParseEventIssueDefaults(t *testing.T) {
	raw := []byte(`{
		"webhookEvent": "jira:issue_created",
		"issue": {"key": "S2G-9", "fields": {}}
	}`)

	event := ParseEvent(raw)
	require.Equal(t, KindIssue, event.Kind)
	assert.Equal(t, PlaceholderTitle, event.Issue.Summary)
	assert.Equal(t, PlaceholderDescription, event.Issue.Description)
	assert.Equal(t, PlaceholderAssignee, event.Issue.Assignee)
	assert.Equal(t, "To Do", event.Issue.StatusLabel)
}

func TestParseEventIssueADFDescription(t *testing.T) {
	// Issue descriptions take only the first text node of the first block.
	raw := []byte(`{
		"webhookEvent": "jira:issue_updated",
		"issue": {
			"key": "S2G-77",
			"fields": {
				"summary": "Endosso travado",
				"description": {
					"type": "doc",
					"version": 1,
					"content": [
						{"type": "paragraph", "content": [
							{"type": "text", "text": "Primeira linha"},
							{"type": "text", "text": "segunda parte"}
						]},
						{"type": "paragraph", "content": [{"type": "text", "text": "Outro parágrafo"}]}
					]
				}
			}
		}
	}`)

	event := ParseEvent(raw)
	require.Equal(t, KindIssue, event.Kind)
	assert.Equal(t, "Primeira linha", event.Issue.Description)
}

func TestParseEventComment(t *testing.T) {
	raw := []byte(`{
		"webhookEvent": "comment_created",
		"issue": {"key": "S2G-123", "fields": {}},
		"comment": {
			"id": "10042",
			"author": {"displayName": "Cliente AVLA"},
			"created": "2025-03-10T14:30:00.000-0300",
			"body": {
				"type": "doc",
				"version": 1,
				"content": [
					{"type": "paragraph", "content": [{"type": "text", "text": "Ainda com erro"}]},
					{"type": "paragraph", "content": [{"type": "text", "text": "segue print"}]}
				]
			}
		}
	}`)

	event := ParseEvent(raw)
	require.Equal(t, KindComment, event.Kind)
	require.NotNil(t, event.Comment)
	assert.Equal(t, "S2G-123", event.Comment.IssueKey)
	assert.Equal(t, "10042", event.Comment.CommentID)
	assert.Equal(t, "Cliente AVLA", event.Comment.Author)
	// Comment bodies join every paragraph.
	assert.Equal(t, "Ainda com erro segue print", event.Comment.Body)
	assert.Equal(t, time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC), event.Comment.Created)
}

func TestParseEventCommentPlainBody(t *testing.T) {
	raw := []byte(`{
		"webhookEvent": "comment_created",
		"issue": {"key": "S2G-123", "fields": {}},
		"comment": {"id": "1", "body": "texto simples"}
	}`)

	event := ParseEvent(raw)
	require.Equal(t, KindComment, event.Kind)
	assert.Equal(t, "texto simples", event.Comment.Body)
	assert.Equal(t, "Jira User", event.Comment.Author)
	assert.False(t, event.Comment.Created.IsZero())
}

func TestParseEventCommentEmptyBody(t *testing.T) {
	raw := []byte(`{
		"webhookEvent": "comment_created",
		"issue": {"key": "S2G-123", "fields": {}},
		"comment": {"id": "1", "body": {"type": "doc", "version": 1, "content": []}}
	}`)

	event := ParseEvent(raw)
	require.Equal(t, KindComment, event.Kind)
	assert.Equal(t, PlaceholderCommentBody, event.Comment.Body)
}

func TestParseEventUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no issue", `{"webhookEvent": "jira:version_released"}`},
		{"issue without key", `{"webhookEvent": "jira:issue_created", "issue": {"fields": {"summary": "Erro boleto"}}}`},
		{"comment event without issue", `{"webhookEvent": "comment_created", "comment": {"id": "1", "body": "x"}}`},
		{"comment event without comment", `{"webhookEvent": "comment_created", "issue": {"key": "S2G-1", "fields": {}}}`},
		{"not json", `{{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := ParseEvent([]byte(tt.raw))
			assert.Equal(t, KindUnrecognized, event.Kind)
			assert.NotEmpty(t, event.Reason)
		})
	}
}

// A keyless issue has nothing to upsert against; classifying it as an issue
// event would insert a fresh NULL-keyed case on every redelivery.
func TestParseEventIssueWithoutKey(t *testing.T) {
	event := ParseEvent([]byte(`{"webhookEvent": "jira:issue_created", "issue": {"fields": {"summary": "Erro boleto"}}}`))

	require.Equal(t, KindUnrecognized, event.Kind)
	assert.Equal(t, "missing issue key", event.Reason)
	assert.Nil(t, event.Issue)
}
