// Package integration holds end-to-end tests that run the resolver against
// real git repositories created in temporary directories.
//
// Tests that need git are skipped when it is not on PATH.
package integration
