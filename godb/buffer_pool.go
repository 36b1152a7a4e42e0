package godb

// BufferPool is the one piece of external infrastructure the core is
// written against rather than implemented by: a page cache that the rest
// of the package reaches through to get at a HeapFile's pages. It
// exposes three operations: fetch a page under a permission, flush a
// dirty page, and (via an injected Catalog) resolve a table id to a
// schema.
//
// Clean pages live in a capacity-bounded ristretto cache and can be
// evicted at any time. Dirty pages live in a plain map that nothing ever
// removes from except an explicit flush or DiscardPage -- this is how "never evict a
// dirty page" is satisfied without writing a custom eviction policy.

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
)

// Permission is the access mode a caller requests when fetching a page.
type Permission int

const (
	ReadOnly Permission = iota
	ReadWrite
)

// DBFile is what the buffer pool needs from a table's backing storage: a
// stable table id, page-addressable I/O, and its own schema. HeapFile is
// the only implementation.
type DBFile interface {
	TableID() int32
	Descriptor() *TupleDesc
	NumPages() int32
	ReadPage(pageNo int32) (*HeapPage, error)
	WritePage(page *HeapPage) error
}

// BufferPool caches pages fetched from registered DBFiles on behalf of
// transactions.
type BufferPool struct {
	mu deadlock.Mutex

	capacity int
	clean    *ristretto.Cache[uint64, *HeapPage]
	dirty    map[HeapPageId]*HeapPage
	files    map[int32]DBFile

	catalog Catalog
}

// cacheKey packs a HeapPageId into the uint64 ristretto wants as a key.
func cacheKey(pid HeapPageId) uint64 {
	return uint64(uint32(pid.TableID()))<<32 | uint64(uint32(pid.PageNo()))
}

// NewBufferPool creates a pool that caches up to approximately numPages
// clean pages. numPages is advisory: ristretto sizes itself by a cost
// budget, so it is used directly as the MaxCost with a per-page cost of 1.
func NewBufferPool(numPages int, catalog Catalog) (*BufferPool, error) {
	clean, err := ristretto.NewCache(&ristretto.Config[uint64, *HeapPage]{
		NumCounters: int64(numPages) * 10,
		MaxCost:     int64(numPages),
		BufferItems: 64,
	})
	if err != nil {
		return nil, newErr(DbError, "creating page cache: %v", err)
	}
	return &BufferPool{
		capacity: numPages,
		clean:    clean,
		dirty:    make(map[HeapPageId]*HeapPage),
		files:    make(map[int32]DBFile),
		catalog:  catalog,
	}, nil
}

// RegisterFile makes f's pages reachable through GetPage(tid, pid, perm)
// for pid.TableID() == f.TableID().
func (bp *BufferPool) RegisterFile(f DBFile) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.files[f.TableID()] = f
}

// GetPage fetches pid under the requested permission, consulting the dirty
// map, then the clean cache, then finally the backing DBFile. A page
// fetched ReadWrite is moved into the dirty map by GetPage itself, so the
// clean cache can no longer evict it; GetPage does not set the page's
// dirty bit, which the caller does via MarkDirty once it has actually
// made a change.
func (bp *BufferPool) GetPage(tid TransactionID, pid HeapPageId, perm Permission) (*HeapPage, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if p, ok := bp.dirty[pid]; ok {
		return p, nil
	}
	key := cacheKey(pid)
	if p, ok := bp.clean.Get(key); ok {
		if perm == ReadWrite {
			if err := bp.admitDirty(tid, pid); err != nil {
				return nil, err
			}
			bp.dirty[pid] = p
			bp.clean.Del(key)
		}
		return p, nil
	}

	f, ok := bp.files[pid.TableID()]
	if !ok {
		return nil, newErr(InvalidPageId, "no registered file for table id %d", pid.TableID())
	}
	logger.Debug("buffer pool page fault", zap.String("page", pid.String()))
	p, err := f.ReadPage(pid.PageNo())
	if err != nil {
		return nil, err
	}
	if perm == ReadWrite {
		if err := bp.admitDirty(tid, pid); err != nil {
			return nil, err
		}
		bp.dirty[pid] = p
	} else {
		bp.clean.Set(key, p, 1)
		bp.clean.Wait()
	}
	return p, nil
}

// admitDirty checks whether tid can bring one more page into the dirty
// map without exceeding the pool's capacity. The dirty map has no
// eviction (NO-STEAL), so once it is full the only way to make room is an
// explicit flush; a transaction that hits this limit cannot proceed and
// must abort.
func (bp *BufferPool) admitDirty(tid TransactionID, pid HeapPageId) error {
	if len(bp.dirty) < bp.capacity {
		return nil
	}
	logger.Warn("transaction aborted: buffer pool is full of dirty pages",
		zap.String("tid", tid.String()), zap.String("page", pid.String()))
	return newErr(TransactionAbortedError, "buffer pool has no room for page %s: all %d cached pages are dirty", pid, bp.capacity)
}

// FlushPage writes pid's page back to its DBFile if it is dirty, clears
// the dirty bit, and moves it into the clean cache where it becomes
// eligible for eviction again. Flushing a page that isn't dirty is a
// no-op.
func (bp *BufferPool) FlushPage(pid HeapPageId) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.flushPageLocked(pid)
}

func (bp *BufferPool) flushPageLocked(pid HeapPageId) error {
	p, ok := bp.dirty[pid]
	if !ok {
		return nil
	}
	f, ok := bp.files[pid.TableID()]
	if !ok {
		return newErr(InvalidPageId, "no registered file for table id %d", pid.TableID())
	}
	if err := f.WritePage(p); err != nil {
		return err
	}
	p.MarkDirty(false, TransactionID{})
	delete(bp.dirty, pid)
	bp.clean.Set(cacheKey(pid), p, 1)
	bp.clean.Wait()
	logger.Debug("buffer pool flushed page", zap.String("page", pid.String()))
	return nil
}

// FlushAllPages flushes every currently dirty page. It is a testing and
// shutdown convenience; the core never calls it implicitly.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	n := len(bp.dirty)
	logger.Info("flushing all dirty pages", zap.Int("count", n), zap.String("bytes", humanize.Bytes(uint64(n)*uint64(PageSize()))))
	for pid := range bp.dirty {
		if err := bp.flushPageLocked(pid); err != nil {
			return err
		}
	}
	return nil
}

// GetTupleDesc delegates to the injected Catalog.
func (bp *BufferPool) GetTupleDesc(tableID int32) (*TupleDesc, error) {
	return bp.catalog.GetTupleDesc(tableID)
}

// DiscardPage drops pid from both the dirty map and the clean cache
// without writing it back, e.g. for aborting a transaction's writes under
// the module's FORCE/NO-STEAL posture (dirty pages are never on disk until
// flushed, so discarding them is always safe).
func (bp *BufferPool) DiscardPage(pid HeapPageId) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	delete(bp.dirty, pid)
	bp.clean.Del(cacheKey(pid))
}
