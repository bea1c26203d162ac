// Package layout converts a reliability block diagram into absolute 2-D
// geometry: one box per visible node, connector and rail line segments,
// and per-gate hit areas.
//
// The algorithm is a classic two-pass tree walk. A post-order measure
// pass computes the bounding box of every visible subtree, memoized per
// node; a pre-order place pass then assigns positions using those sizes.
// AND gates chain their children horizontally with series connectors;
// OR and KOON gates stack them vertically between a pair of rails.
//
// [Compute] is a pure function: the same graph and collapse set always
// produce the same [Result], and the input graph is never modified. All
// per-call state (size memo, anchor map, cycle guard) lives in the pass
// structs, so concurrent calls over the same graph do not interfere.
package layout
