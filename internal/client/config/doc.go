// Package config loads runtime configuration for the Fitly client.
//
// Sources & precedence
//
//  1. Struct defaults (envDefault tags).
//  2. Optional .env file (selected via -e or -env-file, ./.env otherwise).
//  3. Environment variables.
//  4. Command-line flags, which override everything.
//
// Supported flags
//
//	-a string   backend endpoint URL
//	-k string   anonymous access key
//	-b string   image bucket name
//	-e string   path to a .env file
//
// The backend endpoint URL and the anonymous access key have no default and
// are mandatory: Load returns a config-kind error when either is missing and
// the process must not start.
package config
