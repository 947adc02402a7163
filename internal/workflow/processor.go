package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"film2trello/internal/csfd"
	"film2trello/internal/fetch"
	"film2trello/internal/images"
	"film2trello/internal/services/trello"
)

// defaultArchiveAfter is how long a card may sit in the inbox before the
// sweep gives up on it.
const defaultArchiveAfter = 2 * 365 * 24 * time.Hour

// posterFilename is the name under which poster thumbnails are uploaded.
const posterFilename = "poster.jpg"

// maxSyncWorkers caps the concurrent Trello writes per sync step.
const maxSyncWorkers = 4

// Processor runs the pipeline against one board.
type Processor struct {
	fetcher      fetch.Client
	board        trello.API
	logger       *slog.Logger
	archiveAfter time.Duration
	now          func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithArchiveAfterDays overrides how old an inbox card must be before the
// sweep archives it.
func WithArchiveAfterDays(days int) Option {
	return func(p *Processor) {
		if days > 0 {
			p.archiveAfter = time.Duration(days) * 24 * time.Hour
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Processor.
func New(fetcher fetch.Client, board trello.API, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	processor := &Processor{
		fetcher:      fetcher,
		board:        board,
		logger:       logger,
		archiveAfter: defaultArchiveAfter,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(processor)
	}
	return processor
}

func (p *Processor) scrapeFilm(ctx context.Context, filmURL string) (csfd.Film, error) {
	pages, err := csfd.LoadPages(ctx, p.fetcher, p.logger, filmURL)
	if err != nil {
		return csfd.Film{}, err
	}
	film, err := csfd.ScrapeFilm(pages)
	if err != nil {
		return csfd.Film{}, err
	}
	p.logger.Info("scraped film",
		"title", film.Title,
		"url", film.URL,
		"durations", film.Durations,
		"series", film.IsSeries,
		"kviff", film.KviffURL != "")
	return film, nil
}

func (p *Processor) syncMembers(ctx context.Context, cardID, username string) error {
	cardMembers, err := p.board.CardMembers(ctx, cardID)
	if err != nil {
		return fmt.Errorf("list card members: %w", err)
	}
	if !trello.NotInMembers(username, cardMembers) {
		return nil
	}
	member, err := p.board.Member(ctx, username)
	if err != nil {
		return fmt.Errorf("look up member %q: %w", username, err)
	}
	if err := p.board.AddCardMember(ctx, cardID, member.ID); err != nil {
		return fmt.Errorf("add card member: %w", err)
	}
	return nil
}

// desiredLabels computes the full label set a film's card should carry.
func desiredLabels(film csfd.Film) []trello.Label {
	labels := trello.DurationLabels(film.Durations)
	if film.KviffURL != "" {
		labels = append(labels, trello.KviffLabel)
	}
	if film.IsSeries {
		labels = append(labels, trello.SeriesLabel)
	}
	return labels
}

func (p *Processor) syncLabels(ctx context.Context, cardID string, film csfd.Film) error {
	existing, err := p.board.CardLabels(ctx, cardID)
	if err != nil {
		return fmt.Errorf("list card labels: %w", err)
	}
	missing := trello.MissingLabels(existing, desiredLabels(film))
	if len(missing) == 0 {
		return nil
	}
	workers := pool.New().WithContext(ctx).WithMaxGoroutines(maxSyncWorkers)
	for _, label := range missing {
		label := label
		workers.Go(func(ctx context.Context) error {
			return p.board.AddCardLabel(ctx, cardID, label)
		})
	}
	if err := workers.Wait(); err != nil {
		return fmt.Errorf("add card labels: %w", err)
	}
	return nil
}

func (p *Processor) syncAttachments(ctx context.Context, cardID string, film csfd.Film) error {
	existing, err := p.board.CardAttachments(ctx, cardID)
	if err != nil {
		return fmt.Errorf("list card attachments: %w", err)
	}

	var urls []string
	for _, url := range []string{film.URL, film.KviffURL} {
		if url != "" {
			urls = append(urls, url)
		}
	}
	missing := trello.MissingAttachedURLs(existing, urls)
	if len(missing) > 0 {
		workers := pool.New().WithContext(ctx).WithMaxGoroutines(maxSyncWorkers)
		for _, url := range missing {
			url := url
			workers.Go(func(ctx context.Context) error {
				return p.board.AttachURL(ctx, cardID, url)
			})
		}
		if err := workers.Wait(); err != nil {
			return fmt.Errorf("attach urls: %w", err)
		}
	}

	if film.PosterURL == "" || trello.HasPoster(existing) {
		return nil
	}
	return p.attachPoster(ctx, cardID, film.PosterURL)
}

func (p *Processor) attachPoster(ctx context.Context, cardID, posterURL string) error {
	data, err := p.fetcher.Bytes(ctx, posterURL)
	if err != nil {
		return fmt.Errorf("download poster: %w", err)
	}
	thumbnail, err := images.Thumbnail(data)
	if err != nil {
		return fmt.Errorf("make poster thumbnail: %w", err)
	}
	if err := p.board.AttachFile(ctx, cardID, posterFilename, "image/jpeg", thumbnail); err != nil {
		return fmt.Errorf("upload poster: %w", err)
	}
	return nil
}
