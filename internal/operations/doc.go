// Package operations orchestrates one cleansing run as a sequence of
// steps: load, profile, clean, report. Each step validates its inputs,
// executes against a shared RunState, and records its own status so
// observers (logs, WebSocket clients, metrics) can follow progress.
//
// A run is strictly linear and synchronous: one uploaded file, four steps,
// no branching back. Runs share nothing; every Execute call operates on
// its own RunState.
package operations
