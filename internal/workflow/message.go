package workflow

import (
	"context"
	"fmt"

	"film2trello/internal/csfd"
	"film2trello/internal/progress"
	"film2trello/internal/services"
	"film2trello/internal/services/trello"
)

// ProcessMessage takes a message text, finds the film it talks about and
// makes sure the board has an up-to-date card for it at the top of the
// inbox. It reports one human-readable line per step and returns the card
// URL.
func (p *Processor) ProcessMessage(ctx context.Context, reporter progress.Reporter, username, messageText, boardID string) (string, error) {
	if reporter == nil {
		reporter = progress.Logger(p.logger)
	}

	reporter.Step("Figuring out ČSFD.cz URL…")
	filmURL, err := csfd.ResolveFilmURL(ctx, p.fetcher, messageText)
	if err != nil {
		return "", err
	}

	reporter.Step("Scraping information from ČSFD.cz…")
	film, err := p.scrapeFilm(ctx, filmURL)
	if err != nil {
		return "", err
	}

	reporter.Step(fmt.Sprintf("Checking if user %q is allowed to the board", username))
	boardMembers, err := p.board.BoardMembers(ctx, boardID)
	if err != nil {
		return "", fmt.Errorf("list board members: %w", err)
	}
	if trello.NotInMembers(username, boardMembers) {
		return "", services.Wrap(services.ErrUserNotAuthorized, fmt.Sprintf("user %q", username), nil)
	}

	reporter.Step("Analyzing columns, assuming first is inbox and last is archive")
	lists, err := p.board.BoardLists(ctx, boardID)
	if err != nil {
		return "", fmt.Errorf("list board columns: %w", err)
	}
	inboxID, archiveID, err := trello.WorkingListIDs(lists)
	if err != nil {
		return "", err
	}

	reporter.Step("Checking if the card already exists")
	var cards []trello.Card
	for _, listID := range []string{inboxID, archiveID} {
		listCards, err := p.board.ListCards(ctx, listID)
		if err != nil {
			return "", fmt.Errorf("list cards: %w", err)
		}
		cards = append(cards, listCards...)
	}

	cardID := trello.FindCardID(cards, film.Title, film.URL)
	cardData := trello.CardData{
		Name:   film.Title,
		Desc:   film.URL,
		IDList: inboxID,
		Pos:    "top",
	}
	if cardID != "" {
		reporter.Step("Card already exists, updating: " + trello.CardURL(cardID))
		if err := p.board.UpdateCard(ctx, cardID, cardData); err != nil {
			return "", fmt.Errorf("update card: %w", err)
		}
	} else {
		reporter.Step("Card does not exist, creating")
		card, err := p.board.CreateCard(ctx, cardData)
		if err != nil {
			return "", fmt.Errorf("create card: %w", err)
		}
		cardID = card.ID
		reporter.Step("Card created: " + trello.CardURL(cardID))
	}

	reporter.Step("Updating members")
	if err := p.syncMembers(ctx, cardID, username); err != nil {
		return "", err
	}

	reporter.Step("Updating labels")
	if err := p.syncLabels(ctx, cardID, film); err != nil {
		return "", err
	}

	reporter.Step("Updating attachments")
	if err := p.syncAttachments(ctx, cardID, film); err != nil {
		return "", err
	}

	cardURL := trello.CardURL(cardID)
	reporter.Step("Done! This is your card: " + cardURL)
	return cardURL, nil
}
