// Package revision contains the core value types for revision resolution.
//
// It defines Snapshot (VCS metadata frozen by a packaging step), Source
// (where a revision came from) and helpers around the dirty marker.
package revision
