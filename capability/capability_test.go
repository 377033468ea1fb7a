package capability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet(RelationFilters, JSONFilters)
	assert.True(t, s.Has(RelationFilters))
	assert.True(t, s.Has(JSONFilters))
	assert.False(t, s.Has(ScalarListFilters))

	s2 := s.With(ScalarListFilters)
	assert.True(t, s2.Has(ScalarListFilters))
	assert.False(t, s.Has(ScalarListFilters), "With must not modify the receiver")

	assert.Equal(t, []string{"json_filters", "relation_filters"}, s.Names())
	assert.Equal(t, "{json_filters,relation_filters}", s.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    Set
		wantErr bool
	}{
		{name: "empty", in: nil, want: Set{}},
		{name: "single", in: []string{"relation_filters"}, want: NewSet(RelationFilters)},
		{name: "case and spaces", in: []string{" JSON_Filters ", ""}, want: NewSet(JSONFilters)},
		{name: "all", in: []string{"all"}, want: All()},
		{name: "unknown", in: []string{"fulltext"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownCapability))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAll(t *testing.T) {
	all := All()
	for c := range names {
		assert.True(t, all.Has(c), c.String())
	}
	assert.Equal(t, "capability(1024)", Capability(1024).String())
}
