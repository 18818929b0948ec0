// Package tui holds the pieces shared by the projector and companion
// terminal interfaces: key maps, the activity log, the status bar message
// and clipboard helpers.
//
// The interfaces themselves live in the display and companion
// subpackages. Neither touches reconciler or controller state directly;
// user intents are posted to the UI loop and results come back as tea
// messages sent through the running program.
package tui
