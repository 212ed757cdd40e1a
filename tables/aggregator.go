package tables

import (
	"fmt"
	"sort"
)

// TableMetrics accumulates the counters of one table. Counters only grow.
type TableMetrics struct {
	Table        string
	Messages     int64
	InitialLoads int64
	Inserts      int64
	Updates      int64
	Deletes      int64

	ids map[int64]struct{}
}

func newTableMetrics(table string) *TableMetrics {
	return &TableMetrics{Table: table, ids: make(map[int64]struct{})}
}

// Snapshot returns the current counters with the id set reduced to its size.
func (m *TableMetrics) Snapshot() Snapshot {
	return Snapshot{
		Table:        m.Table,
		Messages:     m.Messages,
		InitialLoads: m.InitialLoads,
		Inserts:      m.Inserts,
		Updates:      m.Updates,
		Deletes:      m.Deletes,
		DistinctIDs:  len(m.ids),
	}
}

// Snapshot is a point-in-time copy of a table's counters.
type Snapshot struct {
	Table        string
	Messages     int64
	InitialLoads int64
	Inserts      int64
	Updates      int64
	Deletes      int64
	DistinctIDs  int
}

// String renders the counters the way the run summary prints them.
func (s Snapshot) String() string {
	return fmt.Sprintf("messages: %d, initial loads: %d, inserts: %d, updates: %d, deletes: %d, ids: %d",
		s.Messages, s.InitialLoads, s.Inserts, s.Updates, s.Deletes, s.DistinctIDs)
}

// Fields returns the counters as structured log fields.
func (s Snapshot) Fields() map[string]interface{} {
	return map[string]interface{}{
		"table":         s.Table,
		"messages":      s.Messages,
		"initial_loads": s.InitialLoads,
		"inserts":       s.Inserts,
		"updates":       s.Updates,
		"deletes":       s.Deletes,
		"ids":           s.DistinctIDs,
	}
}

// Aggregator holds the per-table metrics of one run. Tables are created on
// first use and never removed. It is owned by a single consume loop and is
// not safe for concurrent use.
type Aggregator struct {
	tables map[string]*TableMetrics
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{tables: make(map[string]*TableMetrics)}
}

func (a *Aggregator) table(name string) *TableMetrics {
	m, ok := a.tables[name]
	if !ok {
		m = newTableMetrics(name)
		a.tables[name] = m
	}
	return m
}

// RecordMessage counts one accepted record for table.
func (a *Aggregator) RecordMessage(table string) {
	a.table(table).Messages++
}

// RecordOperation counts op for table.
func (a *Aggregator) RecordOperation(table string, op Operation) {
	m := a.table(table)
	switch op {
	case OperationInitialLoad:
		m.InitialLoads++
	case OperationDelete:
		m.Deletes++
	case OperationInsert:
		m.Inserts++
	case OperationUpdate:
		m.Updates++
	}
}

// RecordID adds id to table's distinct id set.
func (a *Aggregator) RecordID(table string, id int64) {
	a.table(table).ids[id] = struct{}{}
}

// Tables returns the number of tables seen.
func (a *Aggregator) Tables() int {
	return len(a.tables)
}

// Summary returns a snapshot per table, sorted by table name.
func (a *Aggregator) Summary() []Snapshot {
	out := make([]Snapshot, 0, len(a.tables))
	for _, m := range a.tables {
		out = append(out, m.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}
