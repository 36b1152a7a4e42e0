package godb

// SeqScan is the leaf operator wrapping a HeapFile's scan state machine.
type SeqScan struct {
	baseOp
	file  *HeapFile
	alias string
	scan  *heapFileScanState
}

// NewSeqScan returns a scan of file. alias is recorded but not applied:
// output tuples carry the file's own TupleDesc, field names unchanged,
// since there is no qualified-name resolution stage.
func NewSeqScan(file *HeapFile, alias string) *SeqScan {
	return &SeqScan{file: file, alias: alias}
}

func (s *SeqScan) tupleDesc() *TupleDesc { return s.file.Descriptor() }

func (s *SeqScan) open(tid TransactionID) error {
	if !s.doOpen(tid) {
		return nil
	}
	s.scan = s.file.NewScan(tid)
	return s.scan.open(s.file)
}

func (s *SeqScan) hasNext() (bool, error) {
	if !s.isOpen() {
		return false, nil
	}
	return s.scan.hasNext(s.file)
}

func (s *SeqScan) next() (*Tuple, error) {
	if !s.isOpen() {
		return nil, newErr(NoSuchElementError, "scan is not open")
	}
	return s.scan.next(s.file)
}

func (s *SeqScan) rewind() error {
	if !s.isOpen() {
		return newErr(DbError, "cannot rewind a closed operator")
	}
	return s.scan.rewind(s.file)
}

func (s *SeqScan) close() error {
	if !s.doClose() {
		return nil
	}
	s.scan.close()
	s.scan = nil
	return nil
}

