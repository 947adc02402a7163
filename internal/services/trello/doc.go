// Package trello provides the subset of the Trello REST API the pipeline
// needs, plus the pure reconciliation helpers (card matching, duration
// brackets, label and attachment diffing) the reconciler runs on.
//
// This is deliberately not a general Trello client: only the calls the
// create-or-update flow issues are implemented, and the one tolerated
// conflict ("label is already on the card") is handled where it occurs.
package trello
