// Package config loads and merges gitguard configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GITGUARD_AUTO, GITGUARD_USE_AI, GITGUARD_DEBUG,
//     AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT, AZURE_OPENAI_API_VERSION)
//  3. Repository-local file (<root>/.gitguard/config.json or .yaml)
//  4. Global file (~/.gitguard/config.json or .yaml)
//  5. Built-in defaults
//
// An explicit config path replaces the global and local files. Validation
// happens once at load: custom security rule patterns are regex-compiled here
// so a malformed pattern fails startup instead of a scan, and every
// validation failure wraps [ErrInvalid].
package config
