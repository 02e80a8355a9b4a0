package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client pushes comments to the external tracker's REST API. It is optional:
// without credentials every call is a silent no-op and sync is disabled.
type Client struct {
	baseURL  string
	email    string
	apiToken string
	http     *http.Client
}

// ClientConfig holds the tracker endpoint and basic-auth credentials.
type ClientConfig struct {
	BaseURL  string
	Email    string
	APIToken string
}

// NewClient creates a Client. Any blank credential leaves the client disabled.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		email:    strings.TrimSpace(cfg.Email),
		apiToken: strings.TrimSpace(cfg.APIToken),
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.email != "" && c.apiToken != ""
}

// adfComment is the ADF envelope the comment endpoint expects.
type adfComment struct {
	Body adfDoc `json:"body"`
}

type adfDoc struct {
	Type    string     `json:"type"`
	Version int        `json:"version"`
	Content []adfBlock `json:"content"`
}

type adfBlock struct {
	Type    string    `json:"type"`
	Content []adfText `json:"content"`
}

type adfText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AddComment posts a comment to the given issue, attributed to the helpdesk
// author in the text since the API call itself authenticates as the
// integration user.
func (c *Client) AddComment(ctx context.Context, issueKey, authorName, text string) error {
	if !c.Enabled() {
		return fmt.Errorf("jira sync is not configured")
	}

	payload := adfComment{
		Body: adfDoc{
			Type:    "doc",
			Version: 1,
			Content: []adfBlock{{
				Type: "paragraph",
				Content: []adfText{{
					Type: "text",
					Text: fmt.Sprintf("[Safe2Go - %s] %s", authorName, text),
				}},
			}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	url := fmt.Sprintf("%s/rest/api/3/issue/%s/comment", c.baseURL, issueKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post comment to %s: %w", issueKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("jira rejected comment on %s: status %d: %s", issueKey, resp.StatusCode, string(detail))
	}

	return nil
}
