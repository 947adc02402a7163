package csfd

import (
	"context"
	"log/slog"

	"film2trello/internal/fetch"
)

// Pages holds the up-to-three related detail pages one film resolves to.
// Film is the page the input URL leads to, Target the page actually tracked
// after episode/season redirection, Parent the series overview. Any of the
// three may be the same fetched page.
type Pages struct {
	Film   *fetch.Page
	Target *fetch.Page
	Parent *fetch.Page
}

// Film is the fact record extracted from one resolved page graph. It is
// recomputed on every run and never persisted.
type Film struct {
	URL       string
	Title     string
	PosterURL string
	KviffURL  string
	Durations []int
	IsSeries  bool
}

// LoadPages fetches the film page, its target page and its parent page,
// reusing already fetched pages whenever the URLs coincide. The cache lives
// for a single call; repeated runs always re-fetch.
func LoadPages(ctx context.Context, client fetch.Client, logger *slog.Logger, filmURL string) (*Pages, error) {
	cache := newPageCache()

	filmPage, err := client.Page(ctx, filmURL)
	if err != nil {
		return nil, err
	}
	cache.add(filmPage)

	targetURL, err := ParseTargetURL(filmPage)
	if err != nil {
		return nil, err
	}
	targetPage, ok := cache.get(targetURL)
	if !ok {
		logger.Info("different target URL, scraping", "url", targetURL)
		targetPage, err = client.Page(ctx, targetURL)
		if err != nil {
			return nil, err
		}
		cache.add(targetPage)
	}

	parentURL := ParentURL(filmPage.URL)
	parentPage, ok := cache.get(parentURL)
	if !ok {
		logger.Info("different parent URL, scraping", "url", parentURL)
		parentPage, err = client.Page(ctx, parentURL)
		if err != nil {
			return nil, err
		}
		cache.add(parentPage)
	}

	return &Pages{Film: filmPage, Target: targetPage, Parent: parentPage}, nil
}

// ScrapeFilm extracts the film facts from a resolved page graph. Title,
// poster and durations come from the target page; the KVIFF.TV availability
// link lives on the parent (series overview) page.
func ScrapeFilm(pages *Pages) (Film, error) {
	title, err := ParseTitle(pages.Target.Document)
	if err != nil {
		return Film{}, err
	}
	return Film{
		URL:       pages.Target.URL,
		Title:     title,
		PosterURL: ParsePosterURL(pages.Target.Document),
		KviffURL:  ParseKviffURL(pages.Parent),
		Durations: ParseDurations(pages.Target.Document),
		IsSeries:  IsSeries(pages.Target.Document),
	}, nil
}

// pageCache maps both the requested and the resolved URL of every fetched
// page, so a URL reached through any role is never fetched twice in one run.
type pageCache struct {
	pages map[string]*fetch.Page
}

func newPageCache() *pageCache {
	return &pageCache{pages: make(map[string]*fetch.Page)}
}

func (c *pageCache) add(page *fetch.Page) {
	c.pages[page.RequestedURL] = page
	c.pages[page.URL] = page
}

func (c *pageCache) get(url string) (*fetch.Page, bool) {
	page, ok := c.pages[url]
	return page, ok
}
