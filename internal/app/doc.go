// Package app contains the core application logic. It wires the profile,
// the provenance store, the calculation plugins and the local engine
// together and runs the two-step workflow, decoupled from any specific
// entrypoint like a CLI.
package app
