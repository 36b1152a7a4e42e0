package godb

import "fmt"

// PageId is the stable identity of a page. HeapPageId is its only
// implementation; the buffer pool and HeapFile use HeapPageId directly
// rather than this interface.
type PageId interface {
	TableID() int32
	PageNo() int32
}

// HeapPageId identifies a page of a HeapFile by the file's table id and a
// zero-based, dense page number within that file.
type HeapPageId struct {
	tableID int32
	pageNo  int32
}

// NewHeapPageId constructs a HeapPageId. tableID is conventionally derived
// from the owning HeapFile's absolute path (see HeapFile.TableID);
// pageNumber is zero-based and dense over the file.
func NewHeapPageId(tableID int32, pageNumber int32) HeapPageId {
	return HeapPageId{tableID: tableID, pageNo: pageNumber}
}

func (p HeapPageId) TableID() int32 { return p.tableID }
func (p HeapPageId) PageNo() int32  { return p.pageNo }

func (p HeapPageId) String() string {
	return fmt.Sprintf("HeapPageId{table=%d, page=%d}", p.tableID, p.pageNo)
}

// RecordId addresses a tuple by the page it lives on and its slot within
// that page. It is assigned when a tuple is inserted and invalidated
// (conceptually; nothing prevents stale reuse by the caller) when deleted.
type RecordId struct {
	PID        HeapPageId
	SlotNumber int32
}

func (r RecordId) String() string {
	return fmt.Sprintf("RecordId{%s, slot=%d}", r.PID, r.SlotNumber)
}
