// Package csfd resolves and scrapes ČSFD.cz film detail pages.
//
// The package covers three concerns: turning free-form text into a canonical
// film URL (possibly via a KVIFF.TV catalog page), resolving the page graph
// around one film (the page itself, the tracked target after episode/season
// redirection, and the series parent) with a run-scoped fetch cache, and
// pure extraction of film facts (title, poster, runtimes, availability link,
// series classification) from parsed documents.
package csfd
