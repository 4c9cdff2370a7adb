// Package annotation implements the metadata model attached to handlers:
// ordered, mergeable option lists with tri-state inherit and apply flags,
// deferred attribute references resolved against a live instance, and the
// per-handler registry those lists are stored in.
//
// Precedence runs front to back. Registry.Annotate prepends, so the most
// recently applied decorator sits at index 0 and wins per key when options
// are folded with MergeRecursive.
package annotation
