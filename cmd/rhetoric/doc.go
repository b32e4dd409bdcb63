// Package main hosts the rhetoric CLI entrypoint and command graph.
//
// Each invocation loads configuration once, opens the store, and hands the
// work to internal/pipeline. Commands only parse flags and render outcomes;
// anything that touches the network or the database lives in internal
// packages.
package main
