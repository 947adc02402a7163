package workflow

import (
	"context"
	"fmt"
	"sort"

	"film2trello/internal/csfd"
	"film2trello/internal/services/trello"
)

// inboxEntry pairs a card with the sort key derived from its re-scraped
// film.
type inboxEntry struct {
	cardID string
	key    trello.InboxSortKey
}

// ProcessInbox sweeps the inbox column: cards untouched for too long move to
// the archive, the rest get their labels and attachments refreshed from
// ČSFD.cz and end up ordered by runtime, availability and name.
func (p *Processor) ProcessInbox(ctx context.Context, boardID string) error {
	lists, err := p.board.BoardLists(ctx, boardID)
	if err != nil {
		return fmt.Errorf("list board columns: %w", err)
	}
	inboxID, archiveID, err := trello.WorkingListIDs(lists)
	if err != nil {
		return err
	}

	cards, err := p.board.ListCards(ctx, inboxID)
	if err != nil {
		return fmt.Errorf("list inbox cards: %w", err)
	}

	cutoff := p.now().Add(-p.archiveAfter)
	var entries []inboxEntry
	for _, card := range cards {
		logger := p.logger.With("card", card.Name, "url", trello.CardURL(card.ID))

		if !card.DateLastActivity.IsZero() && card.DateLastActivity.Before(cutoff) {
			logger.Info("archiving stale card", "last_activity", card.DateLastActivity)
			err := p.board.UpdateCard(ctx, card.ID, trello.CardData{IDList: archiveID})
			if err != nil {
				return fmt.Errorf("archive card: %w", err)
			}
			continue
		}

		filmURL := csfd.FindCSFDURL(card.Desc)
		if filmURL == "" {
			logger.Info("card description carries no film URL, skipping")
			continue
		}

		logger.Info("refreshing card", "film_url", filmURL)
		film, err := p.scrapeFilm(ctx, filmURL)
		if err != nil {
			return fmt.Errorf("refresh card %q: %w", card.Name, err)
		}
		err = p.board.UpdateCard(ctx, card.ID, trello.CardData{
			Name: film.Title,
			Desc: film.URL,
		})
		if err != nil {
			return fmt.Errorf("update card: %w", err)
		}
		if err := p.syncLabels(ctx, card.ID, film); err != nil {
			return err
		}
		if err := p.syncAttachments(ctx, card.ID, film); err != nil {
			return err
		}

		entries = append(entries, inboxEntry{
			cardID: card.ID,
			key:    trello.NewInboxSortKey(card, film.Durations),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].key.Less(entries[j].key)
	})
	for position, entry := range entries {
		if err := p.board.UpdateCardPosition(ctx, entry.cardID, position+1); err != nil {
			return fmt.Errorf("reorder card: %w", err)
		}
	}

	p.logger.Info("inbox sweep finished", "cards", len(entries))
	return nil
}
