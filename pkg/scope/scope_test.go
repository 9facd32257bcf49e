package scope_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/scope"
)

func TestScope_OrderAndOverwrite(t *testing.T) {
	t.Parallel()

	s := scope.New()
	s.Set("quantity", 2.0)
	s.Set("unit", "cups")
	s.Set("quantity", 3.0)

	assert.Equal(t, []string{"quantity", "unit"}, s.Keys())
	value, ok := s.Get("quantity")
	require.True(t, ok)
	assert.InDelta(t, 3.0, value, 0)
	assert.Equal(t, 2, s.Len())

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestScope_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := scope.Of("a", 1.0)
	clone := s.Clone()
	clone.Set("b", 2.0)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestScope_MarshalJSONKeepsOrder(t *testing.T) {
	t.Parallel()

	s := scope.New()
	s.Set("zeta", "z")
	s.Set("alpha", []any{1.0, true})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":"z","alpha":[1,true]}`, string(data))
	assert.Equal(t, `{"zeta":"z","alpha":[1,true]}`, string(data))
}

func TestScope_NilSafe(t *testing.T) {
	t.Parallel()

	var s *scope.Scope
	_, ok := s.Get("x")
	assert.False(t, ok)
	assert.Zero(t, s.Len())
	assert.Nil(t, s.Keys())
}
