// Package google provides OAuth2 configuration and token management for the
// Google Calendar sink.
//
// The OAuth client is read from a credentials.json downloaded from the Google
// Cloud console. Tokens are stored per account on disk, optionally encrypted
// with AES-256-GCM, and refreshed tokens are written back so a push never asks
// for consent twice.
//
// The TokenProvider interface lets the web app, the CLI and the MCP server
// share one token source while tests plug in their own.
package google
