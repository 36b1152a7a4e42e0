package godb

import (
	"strconv"
	"sync/atomic"
)

// TransactionID is an opaque handle for the caller driving a pull chain.
// The core threads it through page fetches and dirty-marking but never
// inspects or schedules on it -- there is no lock manager here, only the
// contract that every mutation is attributed to one.
type TransactionID struct {
	id uint64
}

var nextTID uint64

// NewTransactionID mints a fresh, process-unique transaction handle.
func NewTransactionID() TransactionID {
	return TransactionID{id: atomic.AddUint64(&nextTID, 1)}
}

func (t TransactionID) String() string {
	return "tid:" + strconv.FormatUint(t.id, 10)
}
