// Package resolver determines the git revision of a package at build time.
//
// The lookup order is fixed: snapshot metadata left by a packaging step,
// then the live git checkout, then nothing. Resolution never fails a build:
// lookup problems are reported as warnings and only sink write errors are
// returned. Run wires settings, the git subprocess and the output format
// together for the CLI.
package resolver
