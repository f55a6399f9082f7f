// Package cmd implements the taskclient command line.
//
// Every command that touches tasks runs against a session: a client
// connected to the configured server backend. Plain invocations open a
// session for the duration of the command; the shell command keeps one
// session open and runs each input line against it.
package cmd
