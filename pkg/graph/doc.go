// Package graph defines the reliability block diagram model: components
// (leaf nodes carrying a failure model) and gates (AND / OR / K-out-of-N
// combinators) connected by ordered parent→child edges into a single tree
// rooted at one node.
//
// The graph is the input to every other package in this module. Layout
// ([pkg/layout]) treats it as read-only; the organization overlay
// ([pkg/organize]) derives modified copies via [Graph.Clone]; only the
// persistence layer ([pkg/store]) mutates a graph, by replaying events
// through the mutation methods defined here.
//
// # Ordering
//
// Child order is semantically significant: it is the left-to-right (AND)
// or top-to-bottom (OR/KOON) display order of a gate's children. All
// mutation methods preserve it, and [Graph.ReorderChildren] is the only
// operation that changes it wholesale.
package graph
