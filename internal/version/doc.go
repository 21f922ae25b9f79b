// Package version exposes build metadata for the project.
//
// Variables Version, Commit, BuildTime and GitRevision are injected at build
// time via Go ldflags and default to sensible values for local builds.
// Revision falls back to the VCS stamp from runtime/debug when GitRevision
// was not injected, so consumers always get a usable string.
package version
