// Package organize implements the interactive attach-and-reorder session
// used when a new component is being added to a diagram.
//
// [Build] derives a speculative copy of the graph with a placeholder
// component spliced in under the chosen gate (creating a virtual gate
// above a leaf when needed), leaving the base graph untouched. The
// derived graph is laid out like any other; a [Session] then tracks the
// explicit child order under the organization gate while the user drags,
// and [BuildPayload] turns the final order into the mutation request
// sent to the persistence layer. Cancelling the session is free: the
// derived graph is simply discarded.
package organize
