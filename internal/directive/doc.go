// Package directive renders resolver output for a build pipeline.
//
// CargoEmitter produces the line-oriented cargo build-script protocol:
//
//	cargo:rerun-if-changed=<path>
//	cargo:rustc-env=<NAME>=<value>
//	cargo:warning=<message>
//
// LdflagsEmitter produces a single -X flag for go build.
package directive
