package godb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTupleWriteReadRoundTrip(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 16})
	td, err := NewTupleDesc([]DBType{IntType, StringType}, []string{"id", "name"})
	require.NoError(t, err)

	tup := &Tuple{Desc: *td, Fields: []Field{IntField{Value: 42}, StringField{Value: "hello"}}}
	buf := &bytes.Buffer{}
	require.NoError(t, tup.writeTo(buf))
	assert.Equal(t, td.fixedLen(), buf.Len())

	parsed, err := readTupleFrom(bytes.NewReader(buf.Bytes()), td)
	require.NoError(t, err)
	assert.True(t, tup.equals(parsed))
}

func TestTupleWriteRejectsSchemaMismatch(t *testing.T) {
	withConfig(t, DefaultConfig())
	td, _ := NewTupleDesc([]DBType{IntType}, []string{"a"})
	tup := &Tuple{Desc: *td, Fields: []Field{StringField{Value: "oops"}}}
	err := tup.writeTo(&bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, DbError, err.(GoDBError).Code)
}

func TestTupleEqualsIgnoresRid(t *testing.T) {
	td, _ := NewTupleDesc([]DBType{IntType}, []string{"a"})
	a := &Tuple{Desc: *td, Fields: []Field{IntField{Value: 1}}, Rid: &RecordId{PID: NewHeapPageId(1, 0), SlotNumber: 0}}
	b := &Tuple{Desc: *td, Fields: []Field{IntField{Value: 1}}}
	assert.True(t, a.equals(b))
}

func TestJoinTuples(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 16})
	leftDesc, _ := NewTupleDesc([]DBType{IntType}, []string{"a"})
	rightDesc, _ := NewTupleDesc([]DBType{StringType}, []string{"b"})
	left := &Tuple{Desc: *leftDesc, Fields: []Field{IntField{Value: 1}}}
	right := &Tuple{Desc: *rightDesc, Fields: []Field{StringField{Value: "x"}}}
	joined := joinTuples(left, right)
	require.Equal(t, 2, len(joined.Fields))
	assert.Equal(t, int32(1), joined.Fields[0].(IntField).Value)
	assert.Equal(t, "x", joined.Fields[1].(StringField).Value)
}

func TestContentKeyMatchesEqualTuples(t *testing.T) {
	td, _ := NewTupleDesc([]DBType{IntType, IntType}, []string{"a", "b"})
	t1 := &Tuple{Desc: *td, Fields: []Field{IntField{Value: 1}, IntField{Value: 2}}}
	t2 := &Tuple{Desc: *td, Fields: []Field{IntField{Value: 1}, IntField{Value: 2}}}
	t3 := &Tuple{Desc: *td, Fields: []Field{IntField{Value: 1}, IntField{Value: 3}}}

	k1, err := t1.contentKey()
	require.NoError(t, err)
	k2, err := t2.contentKey()
	require.NoError(t, err)
	k3, err := t3.contentKey()
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
