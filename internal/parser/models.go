package parser

// Table is a column-major view of an exported log. Every column holds
// exactly Rows cells; missing trailing cells are stored as "".
// A Table is never mutated after ParseLogTable returns it.
type Table struct {
	Columns     []string // Header names in source order, duplicates disambiguated
	Rows        int
	ParseErrors []string // Non-fatal problems found while reading

	cells [][]string
	index map[string]int
}

func newTable(header []string) *Table {
	t := &Table{
		Columns:     make([]string, len(header)),
		ParseErrors: make([]string, 0),
		cells:       make([][]string, len(header)),
		index:       make(map[string]int, len(header)),
	}
	for i, name := range header {
		name = uniqueName(name, t.index)
		t.Columns[i] = name
		t.index[name] = i
	}
	return t
}

// Has reports whether a column with exactly this name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Column returns the cells of the named column. The slice must not be modified.
func (t *Table) Column(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cells[i], true
}

// ColumnAt returns the cells of the i-th column.
func (t *Table) ColumnAt(i int) []string {
	return t.cells[i]
}

func (t *Table) appendRow(record []string) {
	for i := range t.cells {
		cell := ""
		if i < len(record) {
			cell = record[i]
		}
		t.cells[i] = append(t.cells[i], cell)
	}
	t.Rows++
}
