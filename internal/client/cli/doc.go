// Package cli provides the farmkeeper command-line client.
//
// It wires configuration, local storage, the endpoint registry, the shared
// HTTP client and the session services, and exposes them as a cobra command
// tree. Every command first runs the bootstrap sequence (load endpoint,
// restore session). The "shell" command starts an interactive REPL that
// additionally prompts for credentials when the server rejects the session.
//
// Typical flow:
//
//	farmkeeper endpoint set 192.168.1.20
//	farmkeeper login farmer@example.com
//	farmkeeper whoami
//	farmkeeper profile update --location Riga
//	farmkeeper logout
package cli
