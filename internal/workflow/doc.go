// Package workflow drives the film-to-board pipeline: it resolves a film URL
// out of free-form text, scrapes the film pages, and reconciles the board so
// that a card for the film exists with the right list, members, labels and
// attachments. It also runs the periodic inbox sweep.
package workflow
