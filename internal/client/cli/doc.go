// Package cli provides the interactive Fitly wardrobe command-line client.
//
// It wires the session store, the wardrobe service and the image uploader
// into an interactive REPL. The command set switches with the auth state:
// signed-out users can only register or sign in; signed-in users manage
// their wardrobe.
//
// Key features:
//   - Register / Login / Logout
//   - Add items with an optional photo picked from a local directory
//   - List the wardrobe, newest first
//   - Ping the backend for a quick connectivity check
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
