// Command film2trello syncs films from ČSFD.cz and KVIFF.TV links into a
// Trello board. It can run as a Telegram bot, save a single link, or sweep
// the board's inbox column.
package main
