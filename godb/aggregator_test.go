package godb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeAll(t *testing.T, agg Aggregator, desc *TupleDesc, rows []struct {
	group string
	val   int32
}) {
	t.Helper()
	for _, r := range rows {
		fields := []Field{StringField{Value: r.group}, IntField{Value: r.val}}
		require.NoError(t, agg.merge(&Tuple{Desc: *desc, Fields: fields}))
	}
}

func drainResult(t *testing.T, op Operator) []*Tuple {
	t.Helper()
	tid := NewTransactionID()
	require.NoError(t, op.open(tid))
	var out []*Tuple
	for {
		ok, err := op.hasNext()
		require.NoError(t, err)
		if !ok {
			break
		}
		tup, err := op.next()
		require.NoError(t, err)
		out = append(out, tup)
	}
	require.NoError(t, op.close())
	return out
}

func TestIntegerAggregatorAvgGrouped(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 16})
	td, _ := NewTupleDesc([]DBType{StringType, IntType}, []string{"g", "v"})
	agg := NewIntegerAggregator(0, td, 1, Avg)

	rows := []struct {
		group string
		val   int32
	}{
		{"a", 1}, {"a", 3}, {"a", 5},
		{"b", 20},
	}
	mergeAll(t, agg, td, rows)

	it, err := agg.iterator()
	require.NoError(t, err)
	out := drainResult(t, it)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Fields[0].(StringField).Value)
	assert.Equal(t, int32(3), out[0].Fields[1].(IntField).Value)
	assert.Equal(t, "b", out[1].Fields[0].(StringField).Value)
	assert.Equal(t, int32(20), out[1].Fields[1].(IntField).Value)
}

func TestIntegerAggregatorUngroupedSum(t *testing.T) {
	withConfig(t, DefaultConfig())
	td, _ := NewTupleDesc([]DBType{IntType}, []string{"v"})
	agg := NewIntegerAggregator(NoGrouping, td, 0, Sum)
	for _, v := range []int32{1, 2, 3, 4} {
		require.NoError(t, agg.merge(&Tuple{Desc: *td, Fields: []Field{IntField{Value: v}}}))
	}
	it, err := agg.iterator()
	require.NoError(t, err)
	out := drainResult(t, it)
	require.Len(t, out, 1)
	assert.Equal(t, int32(10), out[0].Fields[0].(IntField).Value)
	assert.Equal(t, 1, agg.tupleDesc().numFields())
}

func TestIntegerAggregatorUngroupedCount(t *testing.T) {
	withConfig(t, DefaultConfig())
	td, _ := NewTupleDesc([]DBType{IntType}, []string{"v"})
	agg := NewIntegerAggregator(NoGrouping, td, 0, Count)
	for _, v := range []int32{7, 2, 9, 1, 5} {
		require.NoError(t, agg.merge(&Tuple{Desc: *td, Fields: []Field{IntField{Value: v}}}))
	}
	it, err := agg.iterator()
	require.NoError(t, err)
	out := drainResult(t, it)
	require.Len(t, out, 1)
	assert.Equal(t, int32(5), out[0].Fields[0].(IntField).Value)
	assert.Equal(t, 1, agg.tupleDesc().numFields())
}

func TestIntegerAggregatorScAvg(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 16})
	td, _ := NewTupleDesc([]DBType{StringType, IntType, IntType}, []string{"g", "v", "c"})
	agg := NewIntegerAggregator(0, td, 1, ScAvg)

	type row struct {
		group string
		val   int32
		cnt   int32
	}
	rows := []row{
		{"1", 2, 1}, {"1", 4, 2}, {"1", 6, 3},
		{"2", 1, 1},
	}
	for _, r := range rows {
		tup := &Tuple{Desc: *td, Fields: []Field{StringField{Value: r.group}, IntField{Value: r.val}, IntField{Value: r.cnt}}}
		require.NoError(t, agg.merge(tup))
	}

	it, err := agg.iterator()
	require.NoError(t, err)
	out := drainResult(t, it)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].Fields[0].(StringField).Value)
	assert.Equal(t, int32(2), out[0].Fields[1].(IntField).Value)
	assert.Equal(t, "2", out[1].Fields[0].(StringField).Value)
	assert.Equal(t, int32(1), out[1].Fields[1].(IntField).Value)
}

func TestIntegerAggregatorAvgOfEmptyGroupErrors(t *testing.T) {
	withConfig(t, DefaultConfig())
	td, _ := NewTupleDesc([]DBType{IntType}, []string{"v"})
	agg := NewIntegerAggregator(NoGrouping, td, 0, Avg)
	_, err := agg.resultFields("", &intAggState{min: maxInt32, max: minInt32})
	require.Error(t, err)
	assert.Equal(t, AggregateError, err.(GoDBError).Code)
}

func TestStringAggregatorOnlySupportsCount(t *testing.T) {
	withConfig(t, DefaultConfig())
	td, _ := NewTupleDesc([]DBType{StringType}, []string{"v"})
	_, err := NewStringAggregator(NoGrouping, td, 0, Sum)
	require.Error(t, err)
	assert.Equal(t, InvalidAggregateOp, err.(GoDBError).Code)
}

func TestStringAggregatorCountGrouped(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 16})
	td, _ := NewTupleDesc([]DBType{StringType, StringType}, []string{"g", "v"})
	agg, err := NewStringAggregator(0, td, 1, Count)
	require.NoError(t, err)

	values := []struct{ g, v string }{
		{"a", "x"}, {"a", "y"}, {"b", "z"},
	}
	for _, r := range values {
		tup := &Tuple{Desc: *td, Fields: []Field{StringField{Value: r.g}, StringField{Value: r.v}}}
		require.NoError(t, agg.merge(tup))
	}
	it, err := agg.iterator()
	require.NoError(t, err)
	out := drainResult(t, it)
	require.Len(t, out, 2)
	assert.Equal(t, int32(2), out[0].Fields[1].(IntField).Value)
	assert.Equal(t, int32(1), out[1].Fields[1].(IntField).Value)
}

func TestAggregateOperatorDrainsChildOnce(t *testing.T) {
	withConfig(t, DefaultConfig())
	f, _ := newTestHeapFile(t, "aggregate-op")
	tid := NewTransactionID()
	seedHeapFile(t, f, tid, [][2]int32{{1, 10}, {1, 20}, {2, 30}})

	td := f.Descriptor()
	agg := NewIntegerAggregator(0, td, 1, Sum)
	aggOp := NewAggregate(NewSeqScan(f, ""), agg)
	out := collectAll(t, aggOp, tid)
	require.Len(t, out, 2)
	assert.Equal(t, int32(30), out[0].Fields[1].(IntField).Value)
	assert.Equal(t, int32(30), out[1].Fields[1].(IntField).Value)
}
