package tables

// Filters restricts a run to selected tables and source systems. An empty
// set admits everything.
type Filters struct {
	tables  map[string]struct{}
	sources map[string]struct{}
}

// NewFilters builds filters from the configured lists. Empty entries are ignored.
func NewFilters(tables, sources []string) Filters {
	return Filters{tables: toSet(tables), sources: toSet(sources)}
}

// IncludesTable reports whether records of table are processed.
func (f Filters) IncludesTable(table string) bool {
	if len(f.tables) == 0 {
		return true
	}
	_, ok := f.tables[table]
	return ok
}

// IncludesSource reports whether a record from source is processed. With a
// non-empty source filter, records without a source are excluded.
func (f Filters) IncludesSource(source string, present bool) bool {
	if len(f.sources) == 0 {
		return true
	}
	if !present {
		return false
	}
	_, ok := f.sources[source]
	return ok
}

// FiltersSources reports whether a source filter is configured.
func (f Filters) FiltersSources() bool {
	return len(f.sources) > 0
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
