// Package app is the composition root: it owns the application's logger,
// loads the grid definition, builds the dependency engine, and runs either
// the order-only mode or the concurrent executor.
package app
