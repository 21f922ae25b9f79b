// Package config defines resolver settings and provides helpers to load,
// validate and save them in YAML format.
//
// Validate fills in defaults, so a missing or partial file still yields a
// usable Config.
package config
