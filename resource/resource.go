// Package resource resolves opaque resource locators into structured
// references the stream coordinator can act on.
package resource

// Recognized resource and sub-resource types.
const (
	// TypeStreamKey identifies a renderable stream by its stream key.
	TypeStreamKey = "stream-key"
	// TypeSceneViewState identifies a saved scene view state refinement.
	TypeSceneViewState = "scene-view-state"
	// TypeSuppliedID is a repeatable query qualifier used for supplied-id
	// lookups.
	TypeSuppliedID = "supplied-id"
)

// ID is a typed resource identifier.
type ID struct {
	Type string
	ID   string
}

// QueryValue is a single query qualifier attached to a locator. Repeated
// keys of the same type accumulate in occurrence order.
type QueryValue struct {
	Type  string
	Value string
}

// Resource is a fully resolved resource reference: the top-level resource,
// an optional sub-resource refinement, and ordered query qualifiers.
//
// Identity for reconnection purposes is (Resource.Type, Resource.ID);
// SubResource and Queries refine a view of the same underlying stream.
type Resource struct {
	Resource    ID
	SubResource *ID
	Queries     []QueryValue
}

// SameStream reports whether other addresses the same underlying stream,
// ignoring sub-resource and query refinements.
func (r *Resource) SameStream(other *Resource) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Resource == other.Resource
}

// Equal reports whether other is the same resource reference, including
// sub-resource and query refinements.
func (r *Resource) Equal(other *Resource) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Resource != other.Resource {
		return false
	}
	switch {
	case r.SubResource == nil && other.SubResource != nil:
		return false
	case r.SubResource != nil && other.SubResource == nil:
		return false
	case r.SubResource != nil && *r.SubResource != *other.SubResource:
		return false
	}
	if len(r.Queries) != len(other.Queries) {
		return false
	}
	for i := range r.Queries {
		if r.Queries[i] != other.Queries[i] {
			return false
		}
	}
	return true
}

// SceneViewStateID returns the scene view state refinement, whether it was
// supplied as a sub-path or a query parameter, and whether one is present.
func (r *Resource) SceneViewStateID() (string, bool) {
	if r.SubResource != nil && r.SubResource.Type == TypeSceneViewState {
		return r.SubResource.ID, true
	}
	return "", false
}

// SuppliedIDs returns the supplied-id query values in occurrence order.
func (r *Resource) SuppliedIDs() []string {
	var ids []string
	for _, q := range r.Queries {
		if q.Type == TypeSuppliedID {
			ids = append(ids, q.Value)
		}
	}
	return ids
}
