package godb

// HeapPage is a slotted page: an LSB-first occupancy bitmap header
// followed by numSlots fixed-size tuple slots, followed by zero padding
// out to PageSize. It is the one piece of
// this module where getting the byte layout exactly right matters more
// than anything else -- every other component only ever sees HeapPage
// through insertTuple/deleteTuple/iterator/getPageData.

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/sasha-s/go-deadlock"
)

// HeapPage holds one page's worth of tuples for a HeapFile of schema td.
type HeapPage struct {
	id          HeapPageId
	td          *TupleDesc
	tupleSize   int
	numSlots    int
	headerBytes int

	header []byte
	tuples []*Tuple

	oldDataMu sync.Mutex
	oldData   []byte

	stateMu    deadlock.Mutex
	dirty      bool
	dirtierTid TransactionID
}

// slotLayout computes numSlots and headerBytes for a tuple of size
// tupleSize bytes on a page of pageSize bytes, per:
//
//	numSlots    = floor((pageSize*8) / (tupleSize*8 + 1))
//	headerBytes = ceil(numSlots / 8)
func slotLayout(pageSize, tupleSize int) (numSlots, headerBytes int) {
	numSlots = (pageSize * 8) / (tupleSize*8 + 1)
	headerBytes = (numSlots + 7) / 8
	return
}

// NewHeapPage constructs a fresh, all-empty page of the given id and schema.
func NewHeapPage(id HeapPageId, td *TupleDesc) *HeapPage {
	tupleSize := td.fixedLen()
	numSlots, headerBytes := slotLayout(PageSize(), tupleSize)
	p := &HeapPage{
		id:          id,
		td:          td,
		tupleSize:   tupleSize,
		numSlots:    numSlots,
		headerBytes: headerBytes,
		header:      make([]byte, headerBytes),
		tuples:      make([]*Tuple, numSlots),
	}
	p.refreshBeforeImage()
	return p
}

// NewHeapPageFromBytes parses a page of schema td out of exactly
// PageSize() bytes of data, as produced by a prior GetPageData call.
func NewHeapPageFromBytes(id HeapPageId, td *TupleDesc, data []byte) (*HeapPage, error) {
	if len(data) != PageSize() {
		return nil, newErr(FormatError, "page data is %d bytes, want %d", len(data), PageSize())
	}
	tupleSize := td.fixedLen()
	numSlots, headerBytes := slotLayout(PageSize(), tupleSize)

	p := &HeapPage{
		id:          id,
		td:          td,
		tupleSize:   tupleSize,
		numSlots:    numSlots,
		headerBytes: headerBytes,
		header:      make([]byte, headerBytes),
		tuples:      make([]*Tuple, numSlots),
	}
	copy(p.header, data[:headerBytes])

	r := bytes.NewReader(data[headerBytes:])
	slotBuf := make([]byte, tupleSize)
	for i := 0; i < numSlots; i++ {
		if _, err := io.ReadFull(r, slotBuf); err != nil {
			return nil, newErr(FormatError, "reading slot %d: %v", i, err)
		}
		if !p.slotUsed(i) {
			continue
		}
		t, err := readTupleFrom(bytes.NewReader(slotBuf), td)
		if err != nil {
			return nil, newErr(FormatError, "parsing slot %d: %v", i, err)
		}
		rid := RecordId{PID: id, SlotNumber: int32(i)}
		t.Rid = &rid
		p.tuples[i] = t
	}

	p.oldData = append([]byte(nil), data...)
	return p, nil
}

// slotUsed reports whether bit i of the header is set. Bit i lives in
// byte i/8 at LSB-counted position i%8 -- getting this backwards breaks
// round-trip compatibility with anything that wrote the header first.
func (p *HeapPage) slotUsed(i int) bool {
	return p.header[i/8]&(1<<uint(i%8)) != 0
}

func (p *HeapPage) setSlotUsed(i int, used bool) {
	mask := byte(1 << uint(i%8))
	if used {
		p.header[i/8] |= mask
	} else {
		p.header[i/8] &^= mask
	}
}

// GetNumEmptySlots returns the number of unoccupied slots on the page.
func (p *HeapPage) GetNumEmptySlots() int {
	n := 0
	for i := 0; i < p.numSlots; i++ {
		if !p.slotUsed(i) {
			n++
		}
	}
	return n
}

// InsertTuple stores t in the page's first free slot, in ascending slot
// order, and sets t.Rid to address it. It fails with a DbError if t's
// schema doesn't match the page's, or PageFull (also a DbError) if every
// slot is occupied.
func (p *HeapPage) InsertTuple(t *Tuple) error {
	if !t.Desc.equals(p.td) {
		return newErr(DbError, "tuple schema does not match page schema")
	}
	for i := 0; i < p.numSlots; i++ {
		if p.slotUsed(i) {
			continue
		}
		p.setSlotUsed(i, true)
		p.tuples[i] = t
		rid := RecordId{PID: p.id, SlotNumber: int32(i)}
		t.Rid = &rid
		return nil
	}
	return newErr(DbError, "page %s is full", p.id)
}

// DeleteTuple removes the tuple identified by t.Rid from the page. The
// slot's bit is cleared; the slot's in-memory tuple is left as-is (the
// next serialize writes the slot as zeros, like any unoccupied slot, and
// insertTuple only ever reads the header bit before overwriting a slot).
func (p *HeapPage) DeleteTuple(t *Tuple) error {
	if t.Rid == nil {
		return newErr(DbError, "tuple has no RecordId, cannot delete")
	}
	rid := t.Rid
	if rid.PID != p.id {
		return newErr(DbError, "tuple's RecordId names page %s, not %s", rid.PID, p.id)
	}
	slot := int(rid.SlotNumber)
	if slot < 0 || slot >= p.numSlots || !p.slotUsed(slot) {
		return newErr(DbError, "slot %d on page %s is not occupied", slot, p.id)
	}
	p.setSlotUsed(slot, false)
	return nil
}

// GetPageData serializes the page to exactly PageSize() bytes: the header
// verbatim, then each slot (field-serialized tuple bytes if occupied,
// zeros if not), then zero padding to PageSize().
func (p *HeapPage) GetPageData() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, PageSize()))
	buf.Write(p.header)
	zeroSlot := make([]byte, p.tupleSize)
	for i := 0; i < p.numSlots; i++ {
		if p.slotUsed(i) {
			if err := p.tuples[i].writeTo(buf); err != nil {
				return nil, err
			}
			continue
		}
		buf.Write(zeroSlot)
	}
	pad := PageSize() - buf.Len()
	if pad < 0 {
		return nil, newErr(FormatError, "page %s serialized to %d bytes, larger than PageSize %d", p.id, buf.Len(), PageSize())
	}
	buf.Write(make([]byte, pad))
	return buf.Bytes(), nil
}

// Iterator returns a function yielding the page's occupied tuples in
// ascending slot order. It is a snapshot of occupancy taken now, not a
// live view: concurrent modification of the same page while iterating is
// undefined, callers are expected to hold the appropriate page
// permission for the duration.
func (p *HeapPage) Iterator() func() (*Tuple, error) {
	occupied := make([]bool, p.numSlots)
	for s := range occupied {
		occupied[s] = p.slotUsed(s)
	}
	i := 0
	return func() (*Tuple, error) {
		for i < p.numSlots {
			if occupied[i] {
				t := p.tuples[i]
				i++
				return t, nil
			}
			i++
		}
		return nil, nil
	}
}

// MarkDirty sets or clears the page's dirty bit. Clearing it also clears
// the dirtier; setting it records tid as the dirtier. The pair is always
// observed together under stateMu so a reader never sees dirty=true with a
// stale dirtier from a previous transaction.
func (p *HeapPage) MarkDirty(dirty bool, tid TransactionID) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.dirty = dirty
	if dirty {
		p.dirtierTid = tid
	} else {
		p.dirtierTid = TransactionID{}
	}
}

// IsDirty reports the page's dirty bit and, if set, the dirtying
// transaction.
func (p *HeapPage) IsDirty() (bool, TransactionID) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.dirty, p.dirtierTid
}

// refreshBeforeImage snapshots the page's current serialized bytes as its
// "before image", used by recovery-adjacent collaborators that want to
// diff a page against its state as of the last checkpoint. It is not used
// by the core itself.
func (p *HeapPage) refreshBeforeImage() {
	data, err := p.GetPageData()
	if err != nil {
		return
	}
	p.oldDataMu.Lock()
	defer p.oldDataMu.Unlock()
	p.oldData = data
}

// BeforeImage returns a HeapPage parsed from the snapshot taken at the
// last refreshBeforeImage (construction time, or an explicit refresh).
func (p *HeapPage) BeforeImage() (*HeapPage, error) {
	p.oldDataMu.Lock()
	snapshot := append([]byte(nil), p.oldData...)
	p.oldDataMu.Unlock()
	return NewHeapPageFromBytes(p.id, p.td, snapshot)
}

func (p *HeapPage) String() string {
	return fmt.Sprintf("HeapPage{%s, slots=%d, empty=%d}", p.id, p.numSlots, p.GetNumEmptySlots())
}
