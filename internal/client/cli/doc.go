// Package cli provides the interactive scansync command-line client.
//
// It wires configuration, local storage, the document service client and the
// upload engine behind a read-eval-print loop. Typical flow: restore the
// stored session or prompt for credentials, pick a department and a folder,
// create documents from image files and upload them.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
