package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"film2trello/internal/progress"
	"film2trello/internal/services"
	"film2trello/internal/services/trello"
	"film2trello/internal/workflow"
)

const (
	filmInputURL  = "https://www.csfd.cz/film/6178-vynalez-zkazy/"
	filmIDURL     = "https://www.csfd.cz/film/6178/"
	filmTargetURL = "https://www.csfd.cz/film/6178-vynalez-zkazy/prehled/"
	kviffURL      = "https://kviff.tv/katalog/vynalez-zkazy"
	posterURL     = "https://image.pmgstatic.com/files/posters/w420/6178.jpg"
	filmTitle     = "Vynález zkázy (1958)"
)

func vynalezZkazyFetcher(t *testing.T) *fakeFetcher {
	t.Helper()
	extra := `<div class="film-posters">
<img srcset="//image.pmgstatic.com/files/posters/w330/6178.jpg 330w, //image.pmgstatic.com/files/posters/w420/6178.jpg 420w">
</div>
<div class="origin">Československo, 1958, 83 min</div>
<a href="` + kviffURL + `">KVIFF.TV</a>`

	fetcher := newFakeFetcher(t)
	fetcher.addPage(filmIDURL, filmTargetURL, filmPageHTML(filmTitle, filmTargetURL, extra))
	fetcher.bodies[posterURL] = posterBytes(t)
	return fetcher
}

func authorizedBoard() *fakeBoard {
	board := newFakeBoard()
	board.members = []trello.Member{{ID: "member1", Username: "honza"}}
	board.lists = []trello.List{{ID: "inbox", Name: "Inbox"}, {ID: "archive", Name: "Archiv"}}
	return board
}

func TestProcessMessageCreatesCard(t *testing.T) {
	fetcher := vynalezZkazyFetcher(t)
	board := authorizedBoard()
	processor := workflow.New(fetcher, board, discardLogger())

	var steps []string
	reporter := progress.Func(func(message string) { steps = append(steps, message) })

	cardURL, err := processor.ProcessMessage(context.Background(),
		reporter, "honza", "check this out: "+filmInputURL, "board1")
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}
	if cardURL != "https://trello.com/c/created1" {
		t.Errorf("cardURL = %q", cardURL)
	}

	if len(board.created) != 1 {
		t.Fatalf("created = %+v, want one card", board.created)
	}
	created := board.created[0]
	if created.Name != filmTitle || created.Desc != filmTargetURL ||
		created.IDList != "inbox" || created.Pos != "top" {
		t.Errorf("created card = %+v", created)
	}

	if got := board.addedMembers["created1"]; len(got) != 1 || got[0] != "member1" {
		t.Errorf("addedMembers = %v, want [member1]", got)
	}

	names := labelNames(board.addedLabels["created1"])
	if len(names) != 2 {
		t.Fatalf("added labels = %v, want two", names)
	}
	for _, want := range []string{"1.5h", "KVIFF.TV"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("added labels = %v, missing %q", names, want)
		}
	}

	urls := board.attachedURLs["created1"]
	if len(urls) != 2 {
		t.Fatalf("attached urls = %v, want two", urls)
	}
	for _, want := range []string{filmTargetURL, kviffURL} {
		found := false
		for _, url := range urls {
			if url == want {
				found = true
			}
		}
		if !found {
			t.Errorf("attached urls = %v, missing %q", urls, want)
		}
	}

	if got := board.attachedFiles["created1"]; len(got) != 1 || got[0] != "poster.jpg" {
		t.Errorf("attached files = %v, want [poster.jpg]", got)
	}

	if len(steps) == 0 {
		t.Fatal("expected progress steps")
	}
	if steps[0] != "Figuring out ČSFD.cz URL…" {
		t.Errorf("first step = %q", steps[0])
	}
	if last := steps[len(steps)-1]; last != "Done! This is your card: "+cardURL {
		t.Errorf("last step = %q", last)
	}
}

func TestProcessMessageSecondRunOnlyMovesCard(t *testing.T) {
	fetcher := vynalezZkazyFetcher(t)
	board := authorizedBoard()
	board.cards["inbox"] = []trello.Card{{
		ID:   "card1",
		Name: filmTitle,
		Desc: filmTargetURL,
	}}
	board.cardMembers["card1"] = []trello.Member{{ID: "member1", Username: "honza"}}
	board.cardLabels["card1"] = []trello.Label{
		{Name: "1.5h", Color: "yellow"},
		{Name: "KVIFF.TV", Color: "black"},
	}
	board.cardAttachments["card1"] = []trello.Attachment{
		{Name: filmTargetURL, URL: filmTargetURL},
		{Name: kviffURL, URL: kviffURL},
		{Name: "poster.jpg", URL: "https://trello.com/poster.jpg", Previews: []trello.Preview{{}}},
	}
	processor := workflow.New(fetcher, board, discardLogger())

	_, err := processor.ProcessMessage(context.Background(),
		nil, "honza", filmInputURL, "board1")
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if len(board.created) != 0 {
		t.Errorf("created = %+v, want none", board.created)
	}
	updates := board.updated["card1"]
	if len(updates) != 1 || updates[0].Pos != "top" || updates[0].IDList != "inbox" {
		t.Errorf("updates = %+v, want one move to top of inbox", updates)
	}
	if board.writeCount() != 1 {
		t.Errorf("writeCount = %d, want only the move", board.writeCount())
	}
}

func TestProcessMessageFindsCardInArchive(t *testing.T) {
	fetcher := vynalezZkazyFetcher(t)
	board := authorizedBoard()
	board.cards["archive"] = []trello.Card{{
		ID:   "old1",
		Name: filmTitle,
		Desc: filmTargetURL,
	}}
	board.cardMembers["old1"] = []trello.Member{{ID: "member1", Username: "honza"}}
	board.cardLabels["old1"] = []trello.Label{
		{Name: "1.5h", Color: "yellow"},
		{Name: "KVIFF.TV", Color: "black"},
	}
	board.cardAttachments["old1"] = []trello.Attachment{
		{Name: filmTargetURL, URL: filmTargetURL},
		{Name: kviffURL, URL: kviffURL},
		{Name: "poster.jpg", URL: "https://trello.com/poster.jpg", Previews: []trello.Preview{{}}},
	}
	processor := workflow.New(fetcher, board, discardLogger())

	_, err := processor.ProcessMessage(context.Background(),
		nil, "honza", filmInputURL, "board1")
	if err != nil {
		t.Fatalf("ProcessMessage returned error: %v", err)
	}

	if len(board.created) != 0 {
		t.Errorf("created = %+v, want the archived card reused", board.created)
	}
	updates := board.updated["old1"]
	if len(updates) != 1 || updates[0].IDList != "inbox" {
		t.Errorf("updates = %+v, want a move back to the inbox", updates)
	}
}

func TestProcessMessageUnauthorizedUser(t *testing.T) {
	fetcher := vynalezZkazyFetcher(t)
	board := authorizedBoard()
	processor := workflow.New(fetcher, board, discardLogger())

	_, err := processor.ProcessMessage(context.Background(),
		nil, "stranger", filmInputURL, "board1")
	if !errors.Is(err, services.ErrUserNotAuthorized) {
		t.Fatalf("err = %v, want ErrUserNotAuthorized", err)
	}
	if !strings.Contains(err.Error(), "stranger") {
		t.Errorf("err = %v, want the username mentioned", err)
	}
	if board.writeCount() != 0 {
		t.Errorf("writeCount = %d, want no board writes", board.writeCount())
	}
}

func TestProcessMessageNoFilmURL(t *testing.T) {
	board := authorizedBoard()
	processor := workflow.New(newFakeFetcher(t), board, discardLogger())

	_, err := processor.ProcessMessage(context.Background(),
		nil, "honza", "hello there", "board1")
	if !errors.Is(err, services.ErrNoFilmURL) {
		t.Fatalf("err = %v, want ErrNoFilmURL", err)
	}
	if board.writeCount() != 0 {
		t.Errorf("writeCount = %d, want no board writes", board.writeCount())
	}
}

func TestProcessMessageKviffPageWithoutLink(t *testing.T) {
	fetcher := newFakeFetcher(t)
	fetcher.bodies[kviffURL] = []byte("<html><body>nothing here</body></html>")
	board := authorizedBoard()
	processor := workflow.New(fetcher, board, discardLogger())

	_, err := processor.ProcessMessage(context.Background(),
		nil, "honza", kviffURL, "board1")
	if !errors.Is(err, services.ErrKviffLinkMissing) {
		t.Fatalf("err = %v, want ErrKviffLinkMissing", err)
	}
	if board.writeCount() != 0 {
		t.Errorf("writeCount = %d, want no board writes", board.writeCount())
	}
}
