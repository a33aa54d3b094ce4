// Package app wires application dependencies for the CLI.
//
// LoadConfig reads settings from a TOML or YAML file, a .env file and
// OLMKIT_* environment variables. NewWire builds the pickle store, relay
// client and high-level services from the result and exposes them via the
// Wire struct for commands to use.
package app
