// Package toposort is the incremental dependency-ordering engine. It
// maintains a directed graph of nodes and "depends-on" edges and surfaces
// nodes in topological order as their predecessors complete: callers add
// nodes, call Prepare once to validate acyclicity, then loop pulling ready
// batches with GetReady, performing their own work, and reporting back
// with Done or Remove until IsActive turns false.
//
// The engine never executes caller work and never blocks; every operation
// is a bounded synchronous computation. A Sorter holds no internal lock,
// so all mutating calls on one instance must be externally serialized.
// Independent instances, including those produced by Clone, share no
// mutable state and may be driven concurrently.
package toposort
