// Package commands defines the olmkit CLI and wires dependencies for subcommands.
//
// Commands
//
//   - version               Print the library version
//   - account create        Create the local account
//   - account keys          Print identity and one-time keys as JSON
//   - account generate      Add one-time keys to the pool
//   - account publish       Publish keys to a relay
//   - account fingerprint   Print the identity fingerprint
//   - send                  Encrypt and send a message
//   - recv                  Fetch and decrypt queued messages
//   - sha256                Hash input with SHA-256 (base64 output)
//   - verify                Check an Ed25519 signature
//
// # Implementation
//
// The root command loads configuration and builds the dependency graph
// (store, services, relay client) before any subcommand that needs it runs.
// Commands that only hash or verify skip the wiring.
package commands
