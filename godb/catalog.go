package godb

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Catalog is the one operation the core consumes from the real catalog:
// looking up a table's schema by id. A HeapPage never calls this directly
// -- only the BufferPool does, when it has to construct a page from bytes
// it just read and needs to know the tuple shape to parse.
type Catalog interface {
	GetTupleDesc(tableID int32) (*TupleDesc, error)
}

// SimpleCatalog is a minimal, in-memory Catalog: a registry of table id to
// TupleDesc. Production catalogs additionally track names, indexes, and
// statistics; none of that is part of this core.
type SimpleCatalog struct {
	descs    map[int32]*TupleDesc
	tableIDs mapset.Set[int32]
}

// NewSimpleCatalog returns an empty catalog.
func NewSimpleCatalog() *SimpleCatalog {
	return &SimpleCatalog{
		descs:    make(map[int32]*TupleDesc),
		tableIDs: mapset.NewSet[int32](),
	}
}

// Register associates tableID with td. It is an error to register the same
// table id twice with a different schema.
func (c *SimpleCatalog) Register(tableID int32, td *TupleDesc) error {
	if existing, ok := c.descs[tableID]; ok && !existing.equals(td) {
		return newErr(DbError, "table id %d already registered with a different schema", tableID)
	}
	c.descs[tableID] = td
	c.tableIDs.Add(tableID)
	return nil
}

// GetTupleDesc implements Catalog.
func (c *SimpleCatalog) GetTupleDesc(tableID int32) (*TupleDesc, error) {
	td, ok := c.descs[tableID]
	if !ok {
		return nil, newErr(DbError, "no such table id %d", tableID)
	}
	return td, nil
}

// Contains reports whether tableID has been registered.
func (c *SimpleCatalog) Contains(tableID int32) bool {
	return c.tableIDs.Contains(tableID)
}
