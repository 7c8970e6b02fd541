// Package flatten converts schemas and documents into flat dotted-path
// fields for tabular storage. Schema and Record walk the same naming
// policy, so the column names derived from a consolidated schema always
// cover the fields a conforming document produces.
package flatten

import "strconv"

const (
	// DefaultMaxDepth caps structural descent when the caller passes none.
	DefaultMaxDepth = 10

	// maxObjectElems is how many elements of an object array expand to
	// per-index fields before the expansion switches to count/truncated
	// markers.
	maxObjectElems = 10

	// maxPrimitiveElems is the largest uniform primitive array that still
	// expands per-index; longer arrays summarize instead.
	maxPrimitiveElems = 5

	// previewLen bounds the textual preview emitted when a subtree is cut
	// off at max depth; mixedPreviewLen bounds the serialization of a
	// mixed-kind array.
	previewLen      = 100
	mixedPreviewLen = 200
)

// Root base names for documents that are not objects at the top level.
const (
	rootArrayName  = "item"
	rootScalarName = "value"
)

func childPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func indexPath(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

func suffixPath(prefix, suffix string) string {
	return prefix + "_" + suffix
}

func clampText(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
