// Package cli provides the interactive countrybook command-line client.
//
// It wires configuration, durable client state, the remote gateways and the
// client stores, then runs a REPL on top of them. On start the full country
// list is loaded; every query afterwards prints "Showing N countries".
//
// Key features:
//   - Signup / Login / Logout, password reset, profile editing
//   - Country queries: search by name, region, language, independence
//   - Favorites (add, remove, status), guarded country detail view
//   - Theme switching and JSON export to a file or S3
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See NewApp and runREPL for details.
package cli
