package godb

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dsnet/golib/memfile"
)

// backingStore is the byte stream a HeapFile is built on. An *os.File
// wrapped in osFileStore satisfies it for real tables; a
// *memfile.File (github.com/dsnet/golib/memfile) wrapped in memStore
// satisfies it for fast, no-disk-I/O tests. Anything that can do
// positioned reads/writes and report/extend its own length qualifies.
type backingStore interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Size() (int64, error)
	Close() error
	Name() string
}

// osFileStore adapts *os.File to backingStore.
type osFileStore struct {
	f    *os.File
	name string
}

// openOSFileStore opens (creating if necessary) path as a backingStore.
func openOSFileStore(path string) (*osFileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	abs := path
	if a, err := filepath.Abs(path); err == nil {
		abs = a
	}
	return &osFileStore{f: f, name: abs}, nil
}

func (s *osFileStore) ReadAt(p []byte, off int64) (int, error)  { return s.f.ReadAt(p, off) }
func (s *osFileStore) WriteAt(p []byte, off int64) (int, error) { return s.f.WriteAt(p, off) }
func (s *osFileStore) Truncate(size int64) error                { return s.f.Truncate(size) }
func (s *osFileStore) Close() error                              { return s.f.Close() }
func (s *osFileStore) Name() string                              { return s.name }

func (s *osFileStore) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// memStore adapts an in-memory *memfile.File to backingStore, so tests can
// build and scan a HeapFile without touching disk.
type memStore struct {
	f    *memfile.File
	name string
}

// newMemStore wraps an empty in-memory file under the given logical name
// (used only to derive a stable table id; nothing is actually opened).
func newMemStore(name string) *memStore {
	return &memStore{f: memfile.New(nil), name: name}
}

func (s *memStore) ReadAt(p []byte, off int64) (int, error)  { return s.f.ReadAt(p, off) }
func (s *memStore) WriteAt(p []byte, off int64) (int, error) { return s.f.WriteAt(p, off) }
func (s *memStore) Truncate(size int64) error                { return s.f.Truncate(size) }
func (s *memStore) Close() error                              { return nil }
func (s *memStore) Name() string                              { return s.name }

func (s *memStore) Size() (int64, error) {
	return int64(len(s.f.Bytes())), nil
}
