package godb

// HeapFile is an unordered collection of tuples backed by a backingStore:
// a byte file (or in-memory buffer) whose length is always a multiple of
// PageSize(). Page k lives at byte offset k*PageSize(). Everything a
// BufferPool needs to treat it as cacheable storage is the DBFile
// interface in buffer_pool.go.

import (
	"github.com/cespare/xxhash/v2"
	"github.com/sasha-s/go-deadlock"
)

// HeapFile is the on-disk (or in-memory) representation of one table.
type HeapFile struct {
	store   backingStore
	td      *TupleDesc
	tableID int32
	bp      *BufferPool

	// appendMu serializes InsertTuple's scan-for-a-free-slot-then-append
	// sequence, the one place two callers racing on the same file could
	// otherwise both conclude the file is full and append two new pages
	// for what should have been a single one.
	appendMu deadlock.Mutex
}

// NewHeapFile opens (creating if necessary) fromFile as a HeapFile of
// schema td, registers it with bp under a tableID derived from its
// absolute path, and registers that schema with bp's catalog.
func NewHeapFile(fromFile string, td *TupleDesc, bp *BufferPool, catalog *SimpleCatalog) (*HeapFile, error) {
	store, err := openOSFileStore(fromFile)
	if err != nil {
		return nil, newErr(PageReadError, "opening heap file %s: %v", fromFile, err)
	}
	return newHeapFile(store, td, bp, catalog)
}

// NewHeapFileInMemory is the in-memory counterpart of NewHeapFile, for
// tests that want a HeapFile without touching disk. name only affects
// the derived table id.
func NewHeapFileInMemory(name string, td *TupleDesc, bp *BufferPool, catalog *SimpleCatalog) (*HeapFile, error) {
	return newHeapFile(newMemStore(name), td, bp, catalog)
}

func newHeapFile(store backingStore, td *TupleDesc, bp *BufferPool, catalog *SimpleCatalog) (*HeapFile, error) {
	tableID := int32(xxhash.Sum64String(store.Name()) & 0x7fffffff)
	if err := catalog.Register(tableID, td); err != nil {
		return nil, err
	}
	f := &HeapFile{
		store:   store,
		td:      td,
		tableID: tableID,
		bp:      bp,
	}
	bp.RegisterFile(f)
	return f, nil
}

// TableID implements DBFile.
func (f *HeapFile) TableID() int32 { return f.tableID }

// Descriptor implements DBFile.
func (f *HeapFile) Descriptor() *TupleDesc { return f.td }

// NumPages implements DBFile: ceil(fileLength / PageSize).
func (f *HeapFile) NumPages() int32 {
	size, err := f.store.Size()
	if err != nil {
		return 0
	}
	ps := int64(PageSize())
	return int32((size + ps - 1) / ps)
}

// ReadPage implements DBFile: seek to pageNo*PageSize, read exactly
// PageSize bytes, and parse a HeapPage.
func (f *HeapFile) ReadPage(pageNo int32) (*HeapPage, error) {
	if pageNo < 0 || pageNo >= f.NumPages() {
		return nil, newErr(InvalidPageId, "page %d out of range for table %d with %d pages", pageNo, f.tableID, f.NumPages())
	}
	buf := make([]byte, PageSize())
	off := int64(pageNo) * int64(PageSize())
	if _, err := readFullAt(f.store, buf, off); err != nil {
		return nil, newErr(PageReadError, "reading page %d of table %d: %v", pageNo, f.tableID, err)
	}
	pid := NewHeapPageId(f.tableID, pageNo)
	return NewHeapPageFromBytes(pid, f.td, buf)
}

// WritePage implements DBFile: seek to page.id.PageNo*PageSize and write
// page.GetPageData() in full. Durability beyond that (fsync) is the
// caller's responsibility.
func (f *HeapFile) WritePage(page *HeapPage) error {
	data, err := page.GetPageData()
	if err != nil {
		return err
	}
	off := int64(page.id.PageNo()) * int64(PageSize())
	if _, err := f.store.WriteAt(data, off); err != nil {
		return newErr(PageWriteError, "writing page %d of table %d: %v", page.id.PageNo(), f.tableID, err)
	}
	return nil
}

// readFullAt reads exactly len(p) bytes from s at off, treating a short
// read as an error rather than silently returning fewer bytes.
func readFullAt(s backingStore, p []byte, off int64) (int, error) {
	total := 0
	for total < len(p) {
		n, err := s.ReadAt(p[total:], off+int64(total))
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, newErr(PageReadError, "short read at offset %d", off)
		}
	}
	return total, nil
}

// InsertTuple inserts t append-on-full: scan pages in ascending order
// for the first with a free slot; if none has one,
// append a fresh empty page to the store and insert into that. Exactly
// one page ends up dirtied with t inserted and its RecordId assigned.
// The scan-then-append sequence runs under appendMu as a single
// exclusive section, so two concurrent inserts against a full file
// can't both observe "no free slot" and each append their own page.
func (f *HeapFile) InsertTuple(tid TransactionID, t *Tuple) error {
	f.appendMu.Lock()
	defer f.appendMu.Unlock()

	n := f.NumPages()
	for i := int32(0); i < n; i++ {
		pid := NewHeapPageId(f.tableID, i)
		page, err := f.bp.GetPage(tid, pid, ReadWrite)
		if err != nil {
			return err
		}
		if page.GetNumEmptySlots() == 0 {
			continue
		}
		if err := page.InsertTuple(t); err != nil {
			return err
		}
		page.MarkDirty(true, tid)
		return nil
	}

	// No existing page has room: append a new empty page to the backing
	// store directly (bypassing the buffer pool for the append itself,
	// since the page doesn't exist yet), then fetch it through the pool
	// like any other page so the insert participates in normal caching.
	newPid := NewHeapPageId(f.tableID, n)
	empty := NewHeapPage(newPid, f.td)
	if err := f.WritePage(empty); err != nil {
		return err
	}
	page, err := f.bp.GetPage(tid, newPid, ReadWrite)
	if err != nil {
		return err
	}
	if err := page.InsertTuple(t); err != nil {
		return err
	}
	page.MarkDirty(true, tid)
	return nil
}

// DeleteTuple fetches t.Rid's page READ_WRITE and delegates to
// HeapPage.DeleteTuple, marking the page dirty on success.
func (f *HeapFile) DeleteTuple(tid TransactionID, t *Tuple) error {
	if t.Rid == nil {
		return newErr(DbError, "tuple has no RecordId, cannot delete")
	}
	page, err := f.bp.GetPage(tid, t.Rid.PID, ReadWrite)
	if err != nil {
		return err
	}
	if err := page.DeleteTuple(t); err != nil {
		return err
	}
	page.MarkDirty(true, tid)
	return nil
}

// heapFileScanState holds the {CLOSED, OPEN(pagePos, pageIter)} state
// machine for scans: CLOSED is pageIter == nil.
type heapFileScanState struct {
	tid      TransactionID
	pagePos  int32
	pageIter func() (*Tuple, error)
	peeked   *Tuple
}

// NewScan opens a scan iterator over f under tid, in the initial CLOSED
// state. Call open() before hasNext()/next().
func (f *HeapFile) NewScan(tid TransactionID) *heapFileScanState {
	return &heapFileScanState{tid: tid}
}

func (s *heapFileScanState) open(f *HeapFile) error {
	s.pagePos = 0
	return s.loadPage(f, s.pagePos)
}

func (s *heapFileScanState) loadPage(f *HeapFile, pageNo int32) error {
	pid := NewHeapPageId(f.tableID, pageNo)
	page, err := f.bp.GetPage(s.tid, pid, ReadOnly)
	if err != nil {
		return err
	}
	s.pageIter = page.Iterator()
	return nil
}

// hasNext reports whether a further call to next will succeed, advancing
// through pages (and re-testing, since a page may legally be empty) as
// needed. It never mutates past the boundary it reports.
func (s *heapFileScanState) hasNext(f *HeapFile) (bool, error) {
	if s.pageIter == nil {
		return false, nil
	}
	for {
		t, err := s.peek()
		if err != nil {
			return false, err
		}
		if t != nil {
			return true, nil
		}
		if s.pagePos >= f.NumPages()-1 {
			return false, nil
		}
		s.pagePos++
		if err := s.loadPage(f, s.pagePos); err != nil {
			return false, err
		}
	}
}

// peek pulls a tuple from pageIter into s.peeked (if not already holding
// one) so hasNext can answer without consuming it from next's view.
func (s *heapFileScanState) peek() (*Tuple, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	t, err := s.pageIter()
	if err != nil {
		return nil, err
	}
	s.peeked = t
	return t, nil
}

func (s *heapFileScanState) next(f *HeapFile) (*Tuple, error) {
	ok, err := s.hasNext(f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(NoSuchElementError, "heap file scan exhausted")
	}
	t := s.peeked
	s.peeked = nil
	return t, nil
}

func (s *heapFileScanState) rewind(f *HeapFile) error {
	s.peeked = nil
	return s.open(f)
}

func (s *heapFileScanState) close() {
	s.pageIter = nil
	s.peeked = nil
}
