// Package tui implements the live status view behind the watch command.
//
// The view renders the client's status store as a table and redraws on
// every event published on the client's bus, plus a periodic tick so that
// evictions and quiet periods are reflected. Keys send stop and idle
// requests through the client.
package tui
