package trello

import "time"

// Member is a Trello user, either of a board or of a card.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// List is one column of a board, in board order.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label is a name+color pair attached to a card.
type Label struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Preview is one of the thumbnail renditions Trello generates for file
// attachments. URL attachments have none.
type Preview struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Attachment is a card attachment. URL attachments carry their URL as the
// name; file attachments carry a filename and preview thumbnails.
type Attachment struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Previews []Preview `json:"previews"`
}

// Card is a work item on the board.
type Card struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Desc             string    `json:"desc"`
	IDList           string    `json:"idList"`
	Labels           []Label   `json:"labels"`
	DateLastActivity time.Time `json:"dateLastActivity"`
}

// CardData carries the mutable card fields for create and update calls.
// Empty fields are left untouched by updates.
type CardData struct {
	Name   string
	Desc   string
	IDList string
	Pos    string
}
