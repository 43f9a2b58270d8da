// Package cli provides the interactive taskkeeper command-line client.
//
// It wires configuration, the HTTP API client and a REPL. Typical flow:
// restore a saved session (if a token file is configured), start a
// background connectivity watcher and execute user commands until exit.
//
// Commands:
//   - register / login / logout / whoami
//   - list, show <id>, add, edit <id>, done <id>, delete <id>
//
// A session token rejected by the server (expired or otherwise invalid) is
// dropped and the user is asked to log in again.
package cli
