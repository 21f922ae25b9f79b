// Package snapshot loads VCS snapshot metadata left in a package root by a
// packaging step.
//
// FileRepository decodes the JSON file with exact key matching; the resolver
// creates one per start directory.
package snapshot
