package workflow_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"film2trello/internal/fetch"
	"film2trello/internal/services/trello"
)

// fakeFetcher serves canned HTML pages and raw bodies.
type fakeFetcher struct {
	t      *testing.T
	pages  map[string]fakePage
	bodies map[string][]byte
}

type fakePage struct {
	resolvedURL string
	html        string
}

func newFakeFetcher(t *testing.T) *fakeFetcher {
	t.Helper()
	return &fakeFetcher{
		t:      t,
		pages:  make(map[string]fakePage),
		bodies: make(map[string][]byte),
	}
}

func (f *fakeFetcher) addPage(requestedURL, resolvedURL, html string) {
	f.pages[requestedURL] = fakePage{resolvedURL: resolvedURL, html: html}
}

func (f *fakeFetcher) Page(ctx context.Context, url string) (*fetch.Page, error) {
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("fake fetcher has no page for %q", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.html))
	if err != nil {
		f.t.Fatalf("parse fixture for %q: %v", url, err)
	}
	return &fetch.Page{RequestedURL: url, URL: page.resolvedURL, Document: doc}, nil
}

func (f *fakeFetcher) Bytes(ctx context.Context, url string) ([]byte, error) {
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("fake fetcher has no body for %q", url)
	}
	return body, nil
}

func (f *fakeFetcher) Body(ctx context.Context, url string) (io.ReadCloser, error) {
	data, err := f.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

var _ fetch.Client = (*fakeFetcher)(nil)

// fakeBoard implements trello.API in memory and records every write. Writes
// are guarded because label and attachment syncs run concurrently.
type fakeBoard struct {
	mu sync.Mutex

	members         []trello.Member
	lists           []trello.List
	cards           map[string][]trello.Card
	cardMembers     map[string][]trello.Member
	cardLabels      map[string][]trello.Label
	cardAttachments map[string][]trello.Attachment

	created       []trello.CardData
	updated       map[string][]trello.CardData
	addedMembers  map[string][]string
	addedLabels   map[string][]trello.Label
	attachedURLs  map[string][]string
	attachedFiles map[string][]string
	positions     map[string]int
	positionOrder []string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		cards:           make(map[string][]trello.Card),
		cardMembers:     make(map[string][]trello.Member),
		cardLabels:      make(map[string][]trello.Label),
		cardAttachments: make(map[string][]trello.Attachment),
		updated:         make(map[string][]trello.CardData),
		addedMembers:    make(map[string][]string),
		addedLabels:     make(map[string][]trello.Label),
		attachedURLs:    make(map[string][]string),
		attachedFiles:   make(map[string][]string),
		positions:       make(map[string]int),
	}
}

func (b *fakeBoard) BoardMembers(ctx context.Context, boardID string) ([]trello.Member, error) {
	return b.members, nil
}

func (b *fakeBoard) BoardLists(ctx context.Context, boardID string) ([]trello.List, error) {
	return b.lists, nil
}

func (b *fakeBoard) ListCards(ctx context.Context, listID string) ([]trello.Card, error) {
	return b.cards[listID], nil
}

func (b *fakeBoard) CreateCard(ctx context.Context, data trello.CardData) (trello.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, data)
	card := trello.Card{
		ID:     fmt.Sprintf("created%d", len(b.created)),
		Name:   data.Name,
		Desc:   data.Desc,
		IDList: data.IDList,
	}
	b.cards[data.IDList] = append(b.cards[data.IDList], card)
	return card, nil
}

func (b *fakeBoard) UpdateCard(ctx context.Context, cardID string, data trello.CardData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated[cardID] = append(b.updated[cardID], data)
	return nil
}

func (b *fakeBoard) UpdateCardPosition(ctx context.Context, cardID string, position int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions[cardID] = position
	b.positionOrder = append(b.positionOrder, cardID)
	return nil
}

func (b *fakeBoard) CardMembers(ctx context.Context, cardID string) ([]trello.Member, error) {
	return b.cardMembers[cardID], nil
}

func (b *fakeBoard) Member(ctx context.Context, username string) (trello.Member, error) {
	for _, member := range b.members {
		if member.Username == username {
			return member, nil
		}
	}
	return trello.Member{}, fmt.Errorf("fake board has no member %q", username)
}

func (b *fakeBoard) AddCardMember(ctx context.Context, cardID, memberID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addedMembers[cardID] = append(b.addedMembers[cardID], memberID)
	return nil
}

func (b *fakeBoard) CardLabels(ctx context.Context, cardID string) ([]trello.Label, error) {
	return b.cardLabels[cardID], nil
}

func (b *fakeBoard) AddCardLabel(ctx context.Context, cardID string, label trello.Label) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addedLabels[cardID] = append(b.addedLabels[cardID], label)
	return nil
}

func (b *fakeBoard) CardAttachments(ctx context.Context, cardID string) ([]trello.Attachment, error) {
	return b.cardAttachments[cardID], nil
}

func (b *fakeBoard) AttachURL(ctx context.Context, cardID, attachmentURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attachedURLs[cardID] = append(b.attachedURLs[cardID], attachmentURL)
	return nil
}

func (b *fakeBoard) AttachFile(ctx context.Context, cardID, filename, mimeType string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attachedFiles[cardID] = append(b.attachedFiles[cardID], filename)
	return nil
}

var _ trello.API = (*fakeBoard)(nil)

func (b *fakeBoard) writeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := len(b.created) + len(b.positionOrder)
	for _, updates := range b.updated {
		count += len(updates)
	}
	for _, ids := range b.addedMembers {
		count += len(ids)
	}
	for _, labels := range b.addedLabels {
		count += len(labels)
	}
	for _, urls := range b.attachedURLs {
		count += len(urls)
	}
	for _, files := range b.attachedFiles {
		count += len(files)
	}
	return count
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func posterBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 6))); err != nil {
		t.Fatalf("encode poster fixture: %v", err)
	}
	return buf.Bytes()
}

func labelNames(labels []trello.Label) []string {
	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = label.Name
	}
	return names
}

func filmPageHTML(title, canonical, extra string) string {
	return fmt.Sprintf(`<html>
<head>
<title>%s | ČSFD.cz</title>
<link rel="canonical" href="%s">
</head>
<body>
<div class="film-header-name"><h1>%s</h1></div>
%s
</body>
</html>`, title, canonical, title, extra)
}
