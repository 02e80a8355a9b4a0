// Package jira handles the boundary with the external issue tracker: parsing
// inbound webhook payloads into tagged events and pushing comments back out.
package jira

import (
	"encoding/json"
	"strings"
	"time"
)

// Placeholder values substituted when optional payload fields are missing or
// unparseable. Ingestion degrades to defaults instead of rejecting.
const (
	PlaceholderTitle       = "Sem título"
	PlaceholderDescription = "Sem descrição"
	PlaceholderCommentBody = "Comentário sem texto"
	PlaceholderAssignee    = "Equipe Suporte"
	defaultStatusLabel     = "To Do"
)

// EventKind tags the classified payload variant.
type EventKind int

const (
	KindUnrecognized EventKind = iota
	KindIssue
	KindComment
)

// Event is the result of classifying a webhook payload. Exactly one of Issue
// and Comment is set for the recognized kinds; Reason explains an
// unrecognized payload.
type Event struct {
	Kind    EventKind
	Issue   *IssueEvent
	Comment *CommentEvent
	Reason  string
}

// IssueEvent carries the normalized fields of an issue create/update payload.
type IssueEvent struct {
	Key         string
	Summary     string
	Description string
	Assignee    string
	StatusLabel string
}

// CommentEvent carries the normalized fields of a comment payload.
type CommentEvent struct {
	IssueKey  string
	CommentID string
	Author    string
	Body      string
	Created   time.Time
}

// rawPayload mirrors the loose webhook envelope. Rich-text fields arrive
// either as plain strings or as Atlassian Document Format objects, so they
// are kept raw and unwrapped separately.
type rawPayload struct {
	WebhookEvent string `json:"webhookEvent"`
	Issue        *struct {
		Key    string `json:"key"`
		Fields struct {
			Summary     string          `json:"summary"`
			Description json.RawMessage `json:"description"`
			Assignee    *struct {
				DisplayName string `json:"displayName"`
			} `json:"assignee"`
			Status *struct {
				Name string `json:"name"`
			} `json:"status"`
		} `json:"fields"`
	} `json:"issue"`
	Comment *struct {
		ID     string          `json:"id"`
		Body   json.RawMessage `json:"body"`
		Author *struct {
			DisplayName string `json:"displayName"`
		} `json:"author"`
		Created string `json:"created"`
	} `json:"comment"`
}

// ParseEvent classifies a raw webhook payload into a tagged event. It never
// returns an error: malformed payloads come back as KindUnrecognized with a
// reason, and missing optional fields degrade to placeholders.
func ParseEvent(raw []byte) Event {
	var payload rawPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Event{Kind: KindUnrecognized, Reason: "malformed payload"}
	}

	if strings.Contains(payload.WebhookEvent, "comment") {
		if payload.Comment == nil || payload.Issue == nil {
			return Event{Kind: KindUnrecognized, Reason: "missing comment or issue data"}
		}
		return Event{Kind: KindComment, Comment: parseComment(&payload)}
	}

	if payload.Issue == nil {
		return Event{Kind: KindUnrecognized, Reason: "no issue data"}
	}
	// Without a key there is nothing to upsert against; a keyless issue
	// would mint a duplicate case on every redelivery.
	if payload.Issue.Key == "" {
		return Event{Kind: KindUnrecognized, Reason: "missing issue key"}
	}
	return Event{Kind: KindIssue, Issue: parseIssue(&payload)}
}

func parseIssue(payload *rawPayload) *IssueEvent {
	fields := payload.Issue.Fields

	summary := fields.Summary
	if summary == "" {
		summary = PlaceholderTitle
	}

	description := unwrapRichText(fields.Description, false)
	if description == "" {
		description = PlaceholderDescription
	}

	assignee := PlaceholderAssignee
	if fields.Assignee != nil && fields.Assignee.DisplayName != "" {
		assignee = fields.Assignee.DisplayName
	}

	statusLabel := defaultStatusLabel
	if fields.Status != nil && fields.Status.Name != "" {
		statusLabel = fields.Status.Name
	}

	return &IssueEvent{
		Key:         payload.Issue.Key,
		Summary:     summary,
		Description: description,
		Assignee:    assignee,
		StatusLabel: statusLabel,
	}
}

func parseComment(payload *rawPayload) *CommentEvent {
	comment := payload.Comment

	body := unwrapRichText(comment.Body, true)
	if body == "" {
		body = PlaceholderCommentBody
	}

	author := "Jira User"
	if comment.Author != nil && comment.Author.DisplayName != "" {
		author = comment.Author.DisplayName
	}

	created := time.Now().UTC()
	if comment.Created != "" {
		if parsed, err := parseJiraTime(comment.Created); err == nil {
			created = parsed
		}
	}

	return &CommentEvent{
		IssueKey:  payload.Issue.Key,
		CommentID: comment.ID,
		Author:    author,
		Body:      body,
		Created:   created,
	}
}

// adfNode is the subset of Atlassian Document Format the unwrapper walks:
// top-level paragraph blocks containing text nodes.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// unwrapRichText converts a rich-text field to plain text. Plain JSON strings
// pass through. For ADF objects the behavior mirrors the tracker sync as
// deployed: comments join the text of every paragraph, issue descriptions
// take only the first text node of the first paragraph.
func unwrapRichText(raw json.RawMessage, allParagraphs bool) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	if allParagraphs {
		var parts []string
		for _, block := range doc.Content {
			if block.Type != "paragraph" {
				continue
			}
			for _, node := range block.Content {
				if node.Type == "text" && node.Text != "" {
					parts = append(parts, node.Text)
				}
			}
		}
		return strings.Join(parts, " ")
	}

	if len(doc.Content) > 0 && len(doc.Content[0].Content) > 0 {
		return doc.Content[0].Content[0].Text
	}
	return ""
}

// parseJiraTime accepts both RFC 3339 and Jira's legacy numeric-zone format.
func parseJiraTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05.000-0700", value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
