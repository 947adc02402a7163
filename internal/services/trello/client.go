package trello

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"film2trello/internal/services"
)

const defaultBaseURL = "https://trello.com/1"

// labelConflictMarker is the fragment Trello returns when a label is posted
// to a card that already carries it. The race is benign: a previous partial
// run got there first.
const labelConflictMarker = "label is already on the card"

// API defines the Trello operations the reconciler consumes.
type API interface {
	BoardMembers(ctx context.Context, boardID string) ([]Member, error)
	BoardLists(ctx context.Context, boardID string) ([]List, error)
	ListCards(ctx context.Context, listID string) ([]Card, error)
	CreateCard(ctx context.Context, data CardData) (Card, error)
	UpdateCard(ctx context.Context, cardID string, data CardData) error
	UpdateCardPosition(ctx context.Context, cardID string, position int) error
	CardMembers(ctx context.Context, cardID string) ([]Member, error)
	Member(ctx context.Context, username string) (Member, error)
	AddCardMember(ctx context.Context, cardID, memberID string) error
	CardLabels(ctx context.Context, cardID string) ([]Label, error)
	AddCardLabel(ctx context.Context, cardID string, label Label) error
	CardAttachments(ctx context.Context, cardID string) ([]Attachment, error)
	AttachURL(ctx context.Context, cardID, attachmentURL string) error
	AttachFile(ctx context.Context, cardID, filename, mimeType string, data []byte) error
}

// Client provides access to the Trello REST API.
type Client struct {
	key        string
	token      string
	baseURL    string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// New creates a Trello client.
func New(key, token string, opts ...Option) (*Client, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("trello key required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("trello token required")
	}
	client := &Client{
		key:        key,
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CardURL returns the public URL of a card.
func CardURL(cardID string) string {
	return "https://trello.com/c/" + cardID
}

// BoardMembers lists the members of a board.
func (c *Client) BoardMembers(ctx context.Context, boardID string) ([]Member, error) {
	var members []Member
	err := c.do(ctx, http.MethodGet, "/boards/"+boardID+"/members", nil, nil, &members)
	return members, err
}

// BoardLists lists the columns of a board in board order.
func (c *Client) BoardLists(ctx context.Context, boardID string) ([]List, error) {
	var lists []List
	err := c.do(ctx, http.MethodGet, "/boards/"+boardID+"/lists", nil, nil, &lists)
	return lists, err
}

// ListCards lists the open cards of one column.
func (c *Client) ListCards(ctx context.Context, listID string) ([]Card, error) {
	var cards []Card
	err := c.do(ctx, http.MethodGet, "/lists/"+listID+"/cards", nil, nil, &cards)
	return cards, err
}

// CreateCard creates a new card.
func (c *Client) CreateCard(ctx context.Context, data CardData) (Card, error) {
	var card Card
	err := c.do(ctx, http.MethodPost, "/cards", nil, cardForm(data), &card)
	return card, err
}

// UpdateCard updates card fields; empty CardData fields stay untouched.
func (c *Client) UpdateCard(ctx context.Context, cardID string, data CardData) error {
	return c.do(ctx, http.MethodPut, "/cards/"+cardID, nil, cardForm(data), nil)
}

// UpdateCardPosition moves a card to an absolute position within its list.
func (c *Client) UpdateCardPosition(ctx context.Context, cardID string, position int) error {
	form := url.Values{}
	form.Set("pos", fmt.Sprintf("%d", position))
	return c.do(ctx, http.MethodPut, "/cards/"+cardID, nil, form, nil)
}

// CardMembers lists the members assigned to a card.
func (c *Client) CardMembers(ctx context.Context, cardID string) ([]Member, error) {
	var members []Member
	err := c.do(ctx, http.MethodGet, "/cards/"+cardID+"/members", nil, nil, &members)
	return members, err
}

// Member resolves a username to a member record.
func (c *Client) Member(ctx context.Context, username string) (Member, error) {
	var member Member
	err := c.do(ctx, http.MethodGet, "/members/"+username, nil, nil, &member)
	return member, err
}

// AddCardMember assigns a member to a card.
func (c *Client) AddCardMember(ctx context.Context, cardID, memberID string) error {
	form := url.Values{}
	form.Set("value", memberID)
	return c.do(ctx, http.MethodPost, "/cards/"+cardID+"/members", nil, form, nil)
}

// CardLabels lists the labels on a card.
func (c *Client) CardLabels(ctx context.Context, cardID string) ([]Label, error) {
	var labels []Label
	err := c.do(ctx, http.MethodGet, "/cards/"+cardID+"/labels", nil, nil, &labels)
	return labels, err
}

// AddCardLabel adds a label to a card. A "label is already on the card"
// conflict is swallowed.
func (c *Client) AddCardLabel(ctx context.Context, cardID string, label Label) error {
	query := url.Values{}
	query.Set("name", label.Name)
	query.Set("color", label.Color)
	err := c.do(ctx, http.MethodPost, "/cards/"+cardID+"/labels", query, nil, nil)
	var apiErr *apiError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.body, labelConflictMarker) {
		return nil
	}
	return err
}

// CardAttachments lists the attachments of a card.
func (c *Client) CardAttachments(ctx context.Context, cardID string) ([]Attachment, error) {
	var attachments []Attachment
	err := c.do(ctx, http.MethodGet, "/cards/"+cardID+"/attachments", nil, nil, &attachments)
	return attachments, err
}

// AttachURL adds a URL attachment to a card.
func (c *Client) AttachURL(ctx context.Context, cardID, attachmentURL string) error {
	form := url.Values{}
	form.Set("url", attachmentURL)
	return c.do(ctx, http.MethodPost, "/cards/"+cardID+"/attachments", nil, form, nil)
}

// AttachFile uploads a file attachment to a card as multipart form data.
func (c *Client) AttachFile(ctx context.Context, cardID, filename, mimeType string, data []byte) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write multipart body: %w", err)
	}
	if mimeType != "" {
		if err := writer.WriteField("mimeType", mimeType); err != nil {
			return fmt.Errorf("write multipart field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	endpoint, err := c.endpoint("/cards/"+cardID+"/attachments", nil)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, nil)
}

func cardForm(data CardData) url.Values {
	form := url.Values{}
	if data.Name != "" {
		form.Set("name", data.Name)
	}
	if data.Desc != "" {
		form.Set("desc", data.Desc)
	}
	if data.IDList != "" {
		form.Set("idList", data.IDList)
	}
	if data.Pos != "" {
		form.Set("pos", data.Pos)
	}
	return form
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("parse trello url: %w", err)
	}
	params := url.Values{}
	for name, values := range query {
		params[name] = values
	}
	params.Set("key", c.key)
	params.Set("token", c.token)
	endpoint.RawQuery = params.Encode()
	return endpoint.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query, form url.Values, out any) error {
	endpoint, err := c.endpoint(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrRemoteService, "", fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrRemoteService, "", &apiError{
			method: req.Method,
			path:   req.URL.Path,
			status: resp.StatusCode,
			body:   strings.TrimSpace(string(detail)),
		})
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode trello response: %w", err)
	}
	return nil
}

// apiError preserves the response body so callers can recognize tolerated
// conflicts. Credentials never appear here: they travel in the query string,
// which is not part of the message.
type apiError struct {
	method string
	path   string
	status int
	body   string
}

func (e *apiError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%s %s returned %d", e.method, e.path, e.status)
	}
	return fmt.Sprintf("%s %s returned %d: %s", e.method, e.path, e.status, e.body)
}
