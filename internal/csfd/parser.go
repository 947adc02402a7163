package csfd

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"film2trello/internal/fetch"
	"film2trello/internal/services"
)

// Kind classifies what a detail page represents.
type Kind int

const (
	KindFilm Kind = iota
	KindShow
	KindSeason
	KindEpisode
)

var (
	titleYearRe   = regexp.MustCompile(`\((\d{4})\)\s*$`)
	moreSuffixRe  = regexp.MustCompile(`\s*\(více\)\s*$`)
	runtimeLineRe = regexp.MustCompile(`Minutáž:([^\n]*)`)
	minutesRe     = regexp.MustCompile(`(\d+)\s*min`)
	digitsRe      = regexp.MustCompile(`\d+`)
	filmPathRe    = regexp.MustCompile(`^\d+`)
)

// ParseTitle reads the film title from the page <title>. The localized title
// must carry a trailing parenthesized release year. When the page lists a
// differing original title, both forms are rendered: "Loc / Orig (Year)".
func ParseTitle(doc *goquery.Document) (string, error) {
	text := doc.Find("title").First().Text()
	name := strings.TrimSpace(strings.SplitN(text, "|", 2)[0])

	match := titleYearRe.FindStringSubmatch(name)
	if match == nil {
		return "", services.Wrap(services.ErrYearMissing, fmt.Sprintf("page title %q", name), nil)
	}
	year := match[1]
	name = strings.TrimSpace(titleYearRe.ReplaceAllString(name, ""))

	original := strings.TrimSpace(doc.Find(".film-names li").First().Text())
	original = strings.TrimSpace(moreSuffixRe.ReplaceAllString(original, ""))
	if original != "" && original != name {
		return fmt.Sprintf("%s / %s (%s)", name, original, year), nil
	}
	return fmt.Sprintf("%s (%s)", name, year), nil
}

// ParsePosterURL picks the largest candidate from the poster srcset and
// forces an explicit https scheme. Pages without a poster yield "".
func ParsePosterURL(doc *goquery.Document) string {
	srcset, ok := doc.Find(".film-posters img").First().Attr("srcset")
	if !ok {
		return ""
	}

	bestURL := ""
	bestWidth := -1
	tokens := strings.Fields(srcset)
	for i := 0; i+1 < len(tokens); i += 2 {
		candidate := strings.TrimSuffix(tokens[i], ",")
		widthDigits := digitsRe.FindString(tokens[i+1])
		width, err := strconv.Atoi(widthDigits)
		if err != nil {
			continue
		}
		if width > bestWidth {
			bestWidth = width
			bestURL = candidate
		}
	}
	if bestURL == "" {
		return ""
	}
	return forceHTTPS(bestURL)
}

// ParseDurations reads runtimes in minutes from the page metadata block. A
// structured "Minutáž:" phrase wins and contributes every listed number;
// otherwise all standalone "N min" occurrences are collected in document
// order. Duplicates are kept.
func ParseDurations(doc *goquery.Document) []int {
	block := doc.Find(".origin").First().Text()

	if line := runtimeLineRe.FindStringSubmatch(block); line != nil {
		return allInts(digitsRe.FindAllString(line[1], -1))
	}

	var durations []int
	for _, match := range minutesRe.FindAllStringSubmatch(block, -1) {
		if minutes, err := strconv.Atoi(match[1]); err == nil {
			durations = append(durations, minutes)
		}
	}
	return durations
}

// ParseKviffURL returns the first KVIFF.TV catalog link on the page, or "".
func ParseKviffURL(page *fetch.Page) string {
	href, ok := page.Document.Find(`a[href*="kviff.tv/katalog/"]`).First().Attr("href")
	if !ok {
		return ""
	}
	return absolutize(page.URL, href)
}

// ParseKind classifies the page from its header badge text.
func ParseKind(doc *goquery.Document) Kind {
	badge := strings.ToLower(doc.Find(".film-header-name .type").Text())
	switch {
	case strings.Contains(badge, "epizoda"):
		return KindEpisode
	case strings.Contains(badge, "série"):
		return KindSeason
	case strings.Contains(badge, "seriál"):
		return KindShow
	default:
		return KindFilm
	}
}

// IsSeries reports whether the page represents a show rather than a
// standalone film.
func IsSeries(doc *goquery.Document) bool {
	return ParseKind(doc) != KindFilm
}

// ParseTargetURL determines which detail page should actually be tracked.
// Episode pages redirect to their season (or show) overview via the header
// navigation link. Show pages with a seasons listing redirect to the first
// season. Anything else tracks its own canonical overview.
func ParseTargetURL(page *fetch.Page) (string, error) {
	doc := page.Document

	switch ParseKind(doc) {
	case KindEpisode:
		href, ok := doc.Find(`.film-header-name a[href*="/film/"]`).First().Attr("href")
		if !ok {
			return "", services.Wrap(services.ErrOverviewLinkMissing, page.URL, nil)
		}
		return overviewURL(absolutize(page.URL, href))
	case KindShow:
		if href, ok := seasonsListing(doc).First().Attr("href"); ok {
			return overviewURL(absolutize(page.URL, href))
		}
	}

	canonical, err := canonicalURL(page)
	if err != nil {
		return "", err
	}
	return overviewURL(canonical)
}

// seasonsListing selects links of the page section that lists seasons.
func seasonsListing(doc *goquery.Document) *goquery.Selection {
	var links *goquery.Selection
	doc.Find("section.box").EachWithBreak(func(_ int, section *goquery.Selection) bool {
		heading := strings.TrimSpace(section.Find(".box-header h3").First().Text())
		if strings.HasPrefix(heading, "Série") {
			links = section.Find(`a[href*="/film/"]`)
			return false
		}
		return true
	})
	if links == nil {
		return doc.Find("nothing")
	}
	return links
}

// canonicalURL reads the page's own overview URL from the canonical link or
// the open-graph meta tag.
func canonicalURL(page *fetch.Page) (string, error) {
	if href, ok := page.Document.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		return absolutize(page.URL, href), nil
	}
	if content, ok := page.Document.Find(`meta[property="og:url"]`).First().Attr("content"); ok {
		return absolutize(page.URL, content), nil
	}
	return "", services.Wrap(services.ErrOverviewLinkMissing, page.URL, nil)
}

// overviewURL normalizes a detail URL to its overview tab: scheme, host, the
// /film/ id-slug segments, and a trailing prehled/.
func overviewURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse detail URL %q: %w", rawURL, err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 || segments[0] != "film" {
		return "", services.Wrap(services.ErrOverviewLinkMissing, rawURL, nil)
	}
	kept := []string{"film"}
	for _, segment := range segments[1:] {
		if !filmPathRe.MatchString(segment) {
			break
		}
		kept = append(kept, segment)
	}
	if len(kept) < 2 {
		return "", services.Wrap(services.ErrOverviewLinkMissing, rawURL, nil)
	}

	parsed.Path = "/" + strings.Join(kept, "/") + "/prehled/"
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

func absolutize(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func forceHTTPS(rawURL string) string {
	switch {
	case strings.HasPrefix(rawURL, "//"):
		return "https:" + rawURL
	case strings.HasPrefix(rawURL, "http://"):
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	default:
		return rawURL
	}
}

func allInts(values []string) []int {
	var ints []int
	for _, value := range values {
		if number, err := strconv.Atoi(value); err == nil {
			ints = append(ints, number)
		}
	}
	return ints
}
