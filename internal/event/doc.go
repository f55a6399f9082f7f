// Package event provides a small synchronous publish/subscribe bus used to
// fan task status out of the client.
//
// The client publishes every status update it ingests, every start and stop
// it issues, every record the status store evicts, and the outcome of each
// wait. Observers such as the live status view subscribe without the client
// knowing about them.
package event
