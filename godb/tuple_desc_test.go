package godb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTupleDescRejectsEmpty(t *testing.T) {
	_, err := NewTupleDesc(nil, nil)
	require.Error(t, err)
	assert.Equal(t, DbError, err.(GoDBError).Code)
}

func TestNewTupleDescShortNames(t *testing.T) {
	td, err := NewTupleDesc([]DBType{IntType, StringType, IntType}, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "a", td.Fields[0].Fname)
	assert.Equal(t, "", td.Fields[1].Fname)
	assert.Equal(t, "", td.Fields[2].Fname)
}

func TestTupleDescFixedLen(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 10})
	td, err := NewTupleDesc([]DBType{IntType, StringType, IntType}, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 4+14+4, td.fixedLen())
}

func TestTupleDescEqualsIgnoresNames(t *testing.T) {
	td1, _ := NewTupleDesc([]DBType{IntType, StringType}, []string{"x", "y"})
	td2, _ := NewTupleDesc([]DBType{IntType, StringType}, []string{"p", "q"})
	td3, _ := NewTupleDesc([]DBType{StringType, IntType}, []string{"x", "y"})
	assert.True(t, td1.equals(td2))
	assert.False(t, td1.equals(td3))
}

func TestTupleDescMerge(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 10})
	left, _ := NewTupleDesc([]DBType{IntType}, []string{"a"})
	right, _ := NewTupleDesc([]DBType{StringType, IntType}, []string{"b", "c"})
	merged := left.merge(right)
	assert.Equal(t, 3, merged.numFields())
	assert.Equal(t, merged.fixedLen(), left.fixedLen()+right.fixedLen())
}
