// Package main hosts the boostd CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the daemon loop, one-shot sweeps,
// processed-set maintenance, and configuration scaffolding. It centralizes
// configuration resolution so subcommands can focus on user experience
// instead of wiring.
package main
