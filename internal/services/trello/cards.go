package trello

import (
	"strings"

	"film2trello/internal/services"
)

// KviffLabel marks films currently streamable on KVIFF.TV.
var KviffLabel = Label{Name: "KVIFF.TV", Color: "black"}

// SeriesLabel marks cards tracking a show rather than a standalone film.
var SeriesLabel = Label{Name: "seriál", Color: "sky"}

// AvailabilityLabels are the label names that mean a film can be watched
// right now. The inbox sweep sorts such cards ahead of the rest.
var AvailabilityLabels = []string{"KVIFF.TV", "AEROVOD", "STASH"}

// durationBrackets maps each bracket to its label color, ordered by length.
var durationBrackets = []Label{
	{Name: "20m", Color: "blue"},
	{Name: "30m", Color: "sky"},
	{Name: "45m", Color: "green"},
	{Name: "1h", Color: "lime"},
	{Name: "1.5h", Color: "yellow"},
	{Name: "2h", Color: "orange"},
	{Name: "2.5h", Color: "red"},
	{Name: "3+h", Color: "purple"},
}

// DurationBracket maps a runtime in minutes to its categorical label name.
// Above one hour the runtime first rounds down to the nearest ten minutes.
func DurationBracket(minutes int) string {
	switch {
	case minutes <= 20:
		return "20m"
	case minutes <= 30:
		return "30m"
	case minutes <= 45:
		return "45m"
	case minutes <= 60:
		return "1h"
	}
	rounded := minutes / 10 * 10
	switch {
	case rounded <= 90:
		return "1.5h"
	case rounded <= 120:
		return "2h"
	case rounded <= 150:
		return "2.5h"
	default:
		return "3+h"
	}
}

// DurationLabels maps runtimes to their bracket labels, in input order and
// without duplicates.
func DurationLabels(durations []int) []Label {
	seen := make(map[string]bool)
	var labels []Label
	for _, duration := range durations {
		name := DurationBracket(duration)
		if seen[name] {
			continue
		}
		seen[name] = true
		labels = append(labels, bracketLabel(name))
	}
	return labels
}

func bracketLabel(name string) Label {
	for _, label := range durationBrackets {
		if label.Name == name {
			return label
		}
	}
	return Label{Name: name}
}

// FindCardID returns the id of the first card matching the film, or "". A
// card matches when the film title is a substring of its name or the film
// URL is a substring of its description. The heuristic can false-positive on
// short generic titles; it is a compatibility choice, not a unique key.
func FindCardID(cards []Card, title, filmURL string) string {
	for _, card := range cards {
		if strings.Contains(card.Name, title) || strings.Contains(card.Desc, filmURL) {
			return card.ID
		}
	}
	return ""
}

// WorkingListIDs returns the inbox and archive list ids. By convention the
// first list in board order is the inbox and the last is the archive; a
// board with fewer than two lists cannot satisfy the convention.
func WorkingListIDs(lists []List) (inboxID, archiveID string, err error) {
	if len(lists) < 2 {
		return "", "", services.Wrap(services.ErrConfiguration,
			"board must have at least two lists (first is inbox, last is archive)", nil)
	}
	return lists[0].ID, lists[len(lists)-1].ID, nil
}

// NotInMembers reports whether username is absent from members. The match is
// case-sensitive and exact.
func NotInMembers(username string, members []Member) bool {
	for _, member := range members {
		if member.Username == username {
			return false
		}
	}
	return true
}

// MissingLabels returns the desired labels not yet present on the card,
// compared by name.
func MissingLabels(existing, desired []Label) []Label {
	present := make(map[string]bool, len(existing))
	for _, label := range existing {
		present[label.Name] = true
	}
	var missing []Label
	for _, label := range desired {
		if present[label.Name] {
			continue
		}
		present[label.Name] = true
		missing = append(missing, label)
	}
	return missing
}

// MissingAttachedURLs returns the URLs not yet attached to the card. Only
// attachments whose name equals their URL count: that is what distinguishes
// a plain URL attachment from an uploaded file.
func MissingAttachedURLs(existing []Attachment, urls []string) []string {
	attached := make(map[string]bool, len(existing))
	for _, attachment := range existing {
		if attachment.Name == attachment.URL {
			attached[attachment.URL] = true
		}
	}
	var missing []string
	for _, url := range urls {
		if attached[url] {
			continue
		}
		attached[url] = true
		missing = append(missing, url)
	}
	return missing
}

// HasPoster reports whether any attachment carries preview thumbnails,
// meaning a poster file has already been uploaded.
func HasPoster(attachments []Attachment) bool {
	for _, attachment := range attachments {
		if len(attachment.Previews) > 0 {
			return true
		}
	}
	return false
}

// InboxSortKey orders inbox cards for the sweep: shortest runtime first,
// immediately watchable films before the rest, then alphabetically.
type InboxSortKey struct {
	MinDuration int
	Unavailable int
	Name        string
}

// noDurationSentinel pushes cards with unknown runtime behind every card
// with a known one.
const noDurationSentinel = 1000

// NewInboxSortKey builds the sort key for a card given the runtimes scraped
// for its film.
func NewInboxSortKey(card Card, durations []int) InboxSortKey {
	key := InboxSortKey{MinDuration: noDurationSentinel, Name: card.Name}
	for _, duration := range durations {
		if duration > 0 && duration < key.MinDuration {
			key.MinDuration = duration
		}
	}
	if !HasAvailabilityLabel(card.Labels) {
		key.Unavailable = 1
	}
	return key
}

// Less compares two sort keys field by field.
func (k InboxSortKey) Less(other InboxSortKey) bool {
	if k.MinDuration != other.MinDuration {
		return k.MinDuration < other.MinDuration
	}
	if k.Unavailable != other.Unavailable {
		return k.Unavailable < other.Unavailable
	}
	return k.Name < other.Name
}

// HasAvailabilityLabel reports whether any of the card's labels marks the
// film as immediately watchable.
func HasAvailabilityLabel(labels []Label) bool {
	for _, label := range labels {
		name := strings.ToUpper(label.Name)
		for _, available := range AvailabilityLabels {
			if name == available {
				return true
			}
		}
	}
	return false
}
