// Package file keeps insight's settings and journal prompts under the
// config directory: config.toml for settings, prompts/*.txt for the
// templates the journal rephraser fills in.
package file
