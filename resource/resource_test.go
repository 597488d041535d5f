package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	base := func() *Resource {
		return &Resource{
			Resource:    ID{Type: TypeStreamKey, ID: "key-1"},
			SubResource: &ID{Type: TypeSceneViewState, ID: "svs-1"},
			Queries:     []QueryValue{{Type: TypeSuppliedID, Value: "part-1"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Resource)
		want   bool
	}{
		{name: "identical", mutate: func(*Resource) {}, want: true},
		{
			name:   "different id",
			mutate: func(r *Resource) { r.Resource.ID = "key-2" },
			want:   false,
		},
		{
			name:   "different sub-resource",
			mutate: func(r *Resource) { r.SubResource.ID = "svs-2" },
			want:   false,
		},
		{
			name:   "missing sub-resource",
			mutate: func(r *Resource) { r.SubResource = nil },
			want:   false,
		},
		{
			name:   "different query value",
			mutate: func(r *Resource) { r.Queries[0].Value = "part-2" },
			want:   false,
		},
		{
			name:   "extra query",
			mutate: func(r *Resource) { r.Queries = append(r.Queries, QueryValue{Type: TypeSuppliedID, Value: "part-2"}) },
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.mutate(b)
			assert.Equal(t, tt.want, a.Equal(b))
			assert.Equal(t, tt.want, b.Equal(a))
		})
	}
}

func TestEqualNil(t *testing.T) {
	r := &Resource{Resource: ID{Type: TypeStreamKey, ID: "key-1"}}
	var nilRes *Resource
	assert.False(t, r.Equal(nil))
	assert.False(t, nilRes.Equal(r))
	assert.True(t, nilRes.Equal(nil))
}
