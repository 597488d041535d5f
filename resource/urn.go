package resource

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vertexvis/stream-go/errors"
)

const (
	// Scheme is the locator URI scheme.
	Scheme = "urn"
	// Namespace is the URN namespace all locators must carry.
	Namespace = "vertexvis"
)

// subResourcePaths maps URN sub-path segments to sub-resource types.
var subResourcePaths = map[string]string{
	"scene-view-states": TypeSceneViewState,
}

// subResourceQueries maps query keys to sub-resource types. A sub-resource
// may be supplied either as a path segment or as a query parameter; both
// forms resolve to the same SubResource.
var subResourceQueries = map[string]string{
	TypeSceneViewState: TypeSceneViewState,
}

// FromURN resolves a locator of the form
//
//	urn:vertexvis:<resource-type>:<id>[/<sub-path>/<id>][?<query>]
//
// into a Resource. It fails with a KindInvalidResourceLocator error when the
// scheme is not "urn", the namespace is not "vertexvis", or the resource
// type is unrecognized.
func FromURN(urn string) (*Resource, error) {
	u, err := url.Parse(urn)
	if err != nil {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q", urn), err)
	}
	if u.Scheme != Scheme {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: scheme must be %q", urn, Scheme), nil)
	}

	// The URN body is opaque to net/url; split off path-style sub-resource
	// segments before decomposing the colon-separated body.
	body := u.Opaque
	segments := strings.Split(body, "/")
	parts := strings.Split(segments[0], ":")
	if len(parts) != 3 {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: expected urn:%s:<type>:<id>", urn, Namespace), nil)
	}
	namespace, resourceType, id := parts[0], parts[1], parts[2]
	if namespace != Namespace {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: unknown namespace %q", urn, namespace), nil)
	}
	if resourceType != TypeStreamKey {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: unknown resource type %q", urn, resourceType), nil)
	}
	if id == "" {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: missing resource id", urn), nil)
	}

	resource := &Resource{Resource: ID{Type: resourceType, ID: id}}

	if len(segments) > 1 {
		sub, err := parseSubPath(urn, segments[1:])
		if err != nil {
			return nil, err
		}
		resource.SubResource = sub
	}

	queries, sub, err := parseQuery(urn, u.RawQuery)
	if err != nil {
		return nil, err
	}
	resource.Queries = queries
	if sub != nil {
		if resource.SubResource != nil && *resource.SubResource != *sub {
			return nil, errors.NewInvalidResourceLocator(
				fmt.Sprintf("invalid resource locator %q: conflicting sub-resources", urn), nil)
		}
		resource.SubResource = sub
	}

	return resource, nil
}

func parseSubPath(urn string, segments []string) (*ID, error) {
	if len(segments) != 2 {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: expected /<sub-path>/<id>", urn), nil)
	}
	subType, ok := subResourcePaths[segments[0]]
	if !ok {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: unknown sub-resource path %q", urn, segments[0]), nil)
	}
	if segments[1] == "" {
		return nil, errors.NewInvalidResourceLocator(
			fmt.Sprintf("invalid resource locator %q: missing sub-resource id", urn), nil)
	}
	return &ID{Type: subType, ID: segments[1]}, nil
}

// parseQuery decomposes the raw query by hand instead of via url.Values so
// that occurrence order of repeated keys survives resolution.
func parseQuery(urn, rawQuery string) ([]QueryValue, *ID, error) {
	if rawQuery == "" {
		return nil, nil, nil
	}

	var (
		queries []QueryValue
		sub     *ID
	)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			return nil, nil, errors.NewInvalidResourceLocator(
				fmt.Sprintf("invalid resource locator %q: malformed query", urn), err)
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, nil, errors.NewInvalidResourceLocator(
				fmt.Sprintf("invalid resource locator %q: malformed query", urn), err)
		}

		if subType, ok := subResourceQueries[key]; ok {
			if sub != nil {
				return nil, nil, errors.NewInvalidResourceLocator(
					fmt.Sprintf("invalid resource locator %q: repeated %s query", urn, key), nil)
			}
			sub = &ID{Type: subType, ID: value}
			continue
		}
		queries = append(queries, QueryValue{Type: key, Value: value})
	}
	return queries, sub, nil
}

// String re-serializes the resource as a URN. Sub-resources always render in
// path form; query qualifiers keep their occurrence order.
func (r *Resource) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s:%s:%s", Scheme, Namespace, r.Resource.Type, r.Resource.ID)
	if r.SubResource != nil {
		for path, subType := range subResourcePaths {
			if subType == r.SubResource.Type {
				fmt.Fprintf(&b, "/%s/%s", path, r.SubResource.ID)
				break
			}
		}
	}
	for i, q := range r.Queries {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		fmt.Fprintf(&b, "%s=%s", url.QueryEscape(q.Type), url.QueryEscape(q.Value))
	}
	return b.String()
}
