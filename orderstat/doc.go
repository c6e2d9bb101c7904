// Package orderstat provides an order-statistics sequence: a balanced tree
// indexed by position rather than by key.
//
// Every element may carry a mark. Subtrees keep both their size and their
// mark count, so the following run in O(log n):
//
//   - InsertAt / Delete / At: positional edits and lookups
//   - Rank: position of an element from its handle
//   - MarkedRank / MarkedPrefix: how many marked elements precede a position
//   - Search: first position satisfying a monotone predicate (binary search
//     by comparator)
//
// The collection stages use it for pass-counts (filter), comparator order
// with stable tie-breaks (sort) and per-group member order (group).
package orderstat
