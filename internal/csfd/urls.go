package csfd

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strings"

	"film2trello/internal/fetch"
	"film2trello/internal/services"
)

var (
	csfdURLRe  = regexp.MustCompile(`https?://(?:www\.)?csfd\.cz/[^\s"'<>]+`)
	kviffURLRe = regexp.MustCompile(`https?://(?:www\.)?kviff\.tv/katalog/[^\s"'<>]+`)
	filmIDRe   = regexp.MustCompile(`csfd\.cz/film/(\d+)`)

	// A season segment is a second id-slug path element under /film/.
	seasonSegmentRe = regexp.MustCompile(`(/film/\d+[^/]*)/\d+-[^/]+/`)
)

// FindCSFDURL returns the first ČSFD.cz URL embedded in text, or "".
func FindCSFDURL(text string) string {
	return csfdURLRe.FindString(text)
}

// FindKviffURL returns the first KVIFF.TV catalog URL embedded in text, or "".
func FindKviffURL(text string) string {
	return kviffURLRe.FindString(text)
}

// NormalizeURL reduces any ČSFD.cz film URL to its canonical id-only form,
// e.g. https://www.csfd.cz/film/988751/. Normalizing an already canonical URL
// yields the same URL.
func NormalizeURL(url string) (string, error) {
	match := filmIDRe.FindStringSubmatch(url)
	if match == nil {
		return "", services.Wrap(services.ErrNoFilmURL, fmt.Sprintf("not a ČSFD.cz film URL: %q", url), nil)
	}
	return fmt.Sprintf("https://www.csfd.cz/film/%s/", match[1]), nil
}

// ParentURL strips the season segment from a detail URL, yielding the series
// overview URL. URLs without a season segment are returned unchanged, so the
// transform is idempotent.
func ParentURL(url string) string {
	return seasonSegmentRe.ReplaceAllString(url, "$1/")
}

// ResolveFilmURL turns free-form message text into a canonical ČSFD.cz film
// URL. A KVIFF.TV catalog link takes precedence: its page is scanned line by
// line for an embedded ČSFD.cz URL. Otherwise a directly pasted ČSFD.cz URL
// is used.
func ResolveFilmURL(ctx context.Context, client fetch.Client, text string) (string, error) {
	if kviffURL := FindKviffURL(text); kviffURL != "" {
		return sniffKviffPage(ctx, client, kviffURL)
	}
	if csfdURL := FindCSFDURL(text); csfdURL != "" {
		return NormalizeURL(csfdURL)
	}
	return "", services.Wrap(services.ErrNoFilmURL, "", nil)
}

func sniffKviffPage(ctx context.Context, client fetch.Client, kviffURL string) (string, error) {
	body, err := client.Body(ctx, kviffURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	// Line-by-line keeps memory bounded; catalog pages are large.
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if match := csfdURLRe.FindString(scanner.Text()); match != "" {
			return NormalizeURL(match)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan %s: %w", kviffURL, err)
	}
	return "", services.Wrap(services.ErrKviffLinkMissing, strings.TrimSpace(kviffURL), nil)
}
