package godb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeapFile(t *testing.T, name string) (*HeapFile, *BufferPool) {
	t.Helper()
	catalog := NewSimpleCatalog()
	bp, err := NewBufferPool(100, catalog)
	require.NoError(t, err)
	td := intPairDesc(t)
	f, err := NewHeapFileInMemory(name, td, bp, catalog)
	require.NoError(t, err)
	return f, bp
}

func TestHeapFileInsertFillsFirstPageThenAppends(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 128})
	f, _ := newTestHeapFile(t, "overflow")
	tid := NewTransactionID()

	numSlots, _ := slotLayout(PageSize(), intPairDesc(t).fixedLen())
	for i := 0; i < numSlots; i++ {
		tup := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: int32(i)}, IntField{Value: int32(i)}}}
		require.NoError(t, f.InsertTuple(tid, tup))
	}
	assert.Equal(t, int32(1), f.NumPages())

	overflow := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: 999}, IntField{Value: 999}}}
	require.NoError(t, f.InsertTuple(tid, overflow))
	assert.Equal(t, int32(2), f.NumPages())
	require.NotNil(t, overflow.Rid)
	assert.Equal(t, int32(1), overflow.Rid.PID.PageNo())
}

func TestHeapFileDeleteThenInsertReusesPage(t *testing.T) {
	withConfig(t, DefaultConfig())
	f, bp := newTestHeapFile(t, "reuse")
	tid := NewTransactionID()

	var first *Tuple
	for i := 0; i < 5; i++ {
		tup := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: int32(i)}, IntField{Value: int32(i)}}}
		require.NoError(t, f.InsertTuple(tid, tup))
		if i == 0 {
			first = tup
		}
	}
	require.NoError(t, bp.FlushAllPages())

	require.NoError(t, f.DeleteTuple(tid, first))
	require.NoError(t, bp.FlushAllPages())
	assert.Equal(t, int32(1), f.NumPages())

	replacement := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: 100}, IntField{Value: 100}}}
	require.NoError(t, f.InsertTuple(tid, replacement))
	require.NotNil(t, replacement.Rid)
	assert.Equal(t, first.Rid.SlotNumber, replacement.Rid.SlotNumber)
}

func TestHeapFileScanRewind(t *testing.T) {
	withConfig(t, DefaultConfig())
	f, _ := newTestHeapFile(t, "scan")
	tid := NewTransactionID()
	for i := 0; i < 3; i++ {
		tup := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: int32(i)}, IntField{Value: int32(i)}}}
		require.NoError(t, f.InsertTuple(tid, tup))
	}

	scan := f.NewScan(tid)
	require.NoError(t, scan.open(f))

	count := 0
	for {
		ok, err := scan.hasNext(f)
		require.NoError(t, err)
		if !ok {
			break
		}
		_, err = scan.next(f)
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)

	require.NoError(t, scan.rewind(f))
	ok, err := scan.hasNext(f)
	require.NoError(t, err)
	assert.True(t, ok)

	scan.close()
	ok, err = scan.hasNext(f)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeapFileScanDoesNotSnapshotTheTable(t *testing.T) {
	withConfig(t, Config{PageSize: 4096, StringLength: 128})
	f, bp := newTestHeapFile(t, "no-snapshot")
	tid := NewTransactionID()

	numSlots, _ := slotLayout(PageSize(), intPairDesc(t).fixedLen())
	var firstTuple *Tuple
	for i := 0; i < numSlots; i++ {
		tup := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: int32(i)}, IntField{Value: int32(i)}}}
		require.NoError(t, f.InsertTuple(tid, tup))
		if i == 0 {
			firstTuple = tup
		}
	}
	require.NoError(t, bp.FlushAllPages())
	assert.Equal(t, int32(1), f.NumPages())

	scan := f.NewScan(tid)
	require.NoError(t, scan.open(f))

	// Drain page 0 entirely: the scan has now visited it in full.
	for i := 0; i < numSlots; i++ {
		ok, err := scan.hasNext(f)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = scan.next(f)
		require.NoError(t, err)
	}

	// Mutate the file with the scan still open: insert a tuple that lands
	// on a brand new page 1 since page 0 is full, then delete from the
	// already-visited page 0.
	inserted := &Tuple{Desc: *f.Descriptor(), Fields: []Field{IntField{Value: 999}, IntField{Value: 999}}}
	require.NoError(t, f.InsertTuple(tid, inserted))
	assert.Equal(t, int32(2), f.NumPages())
	require.NoError(t, f.DeleteTuple(tid, firstTuple))

	// The insert into the unvisited page 1 must be observed.
	ok, err := scan.hasNext(f)
	require.NoError(t, err)
	require.True(t, ok)
	tup, err := scan.next(f)
	require.NoError(t, err)
	assert.Equal(t, int32(999), tup.Fields[0].(IntField).Value)

	ok, err = scan.hasNext(f)
	require.NoError(t, err)
	assert.False(t, ok)
	scan.close()

	// A fresh scan over the file reflects the delete: the removed tuple
	// never reappears once its page has been left behind.
	fresh := f.NewScan(NewTransactionID())
	require.NoError(t, fresh.open(f))
	var values []int32
	for {
		ok, err := fresh.hasNext(f)
		require.NoError(t, err)
		if !ok {
			break
		}
		tup, err := fresh.next(f)
		require.NoError(t, err)
		values = append(values, tup.Fields[0].(IntField).Value)
	}
	fresh.close()
	assert.NotContains(t, values, int32(0))
	assert.Contains(t, values, int32(999))
}

func TestHeapFileNumPagesEmpty(t *testing.T) {
	withConfig(t, DefaultConfig())
	f, _ := newTestHeapFile(t, "empty")
	assert.Equal(t, int32(0), f.NumPages())
}
