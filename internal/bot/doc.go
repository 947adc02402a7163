// Package bot runs the Telegram front-end. Only configured users may talk
// to it; every film link they send is routed through the workflow pipeline
// while the bot keeps editing its reply with the current step.
package bot
