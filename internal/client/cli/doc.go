// Package cli provides the foodlog command-line client.
//
// Commands are built with cobra over an App, which wires the local store, the
// server client, the sync queue and the entity repositories. Every change is
// written locally first; commands print whether the server already confirmed
// it or it waits in the queue.
//
// Typical flow: register or login once, then log food and weight entries,
// online or not. `foodlog sync` pushes queued changes and `foodlog watch`
// keeps syncing in the background until interrupted.
package cli
