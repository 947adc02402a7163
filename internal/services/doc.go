// Package services defines the shared error taxonomy for the pipeline.
//
// Sentinel errors classify terminal run outcomes (no URL found, missing
// year, unauthorized user, remote failure) so front-ends can pick the right
// user-facing message with errors.Is. Redact strips configured secrets from
// any error text before it reaches a bot reply or the terminal.
package services
