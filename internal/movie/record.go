package movie

import (
	"strconv"
	"strings"
)

// IDColumn is the identity column every dataset must carry.
const IDColumn = "id"

// Record is one movie row keyed by column name. Absent keys read as blank.
type Record map[string]string

// Get returns the value of field, or "" when the record has no such field.
func (r Record) Get(field string) string {
	return r[field]
}

// Set stores value under field.
func (r Record) Set(field, value string) {
	r[field] = value
}

// ID returns the trimmed id value.
func (r Record) ID() string {
	return strings.TrimSpace(r[IDColumn])
}

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether r and other hold the same values for columns.
func (r Record) Equal(other Record, columns []string) bool {
	for _, column := range columns {
		if r.Get(column) != other.Get(column) {
			return false
		}
	}
	return true
}

// Dataset is an ordered sequence of records sharing one column schema.
type Dataset struct {
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether the schema contains column.
func (d *Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// EnsureColumns appends the given columns to the schema when absent and
// returns the ones that were added. Existing records read them as blank.
func (d *Dataset) EnsureColumns(columns ...string) []string {
	var added []string
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" || d.HasColumn(column) {
			continue
		}
		d.Columns = append(d.Columns, column)
		added = append(added, column)
	}
	return added
}

// Clone deep-copies the dataset.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
	}
	for i, record := range d.Records {
		out.Records[i] = record.Clone()
	}
	return out
}

// Dedupe drops records whose id repeats an earlier record, keeping the first
// occurrence, and returns the number removed. Ids are compared after
// ParseID normalization, so "27205" and "27205.0" collapse. Records with a
// blank id are never collapsed.
func (d *Dataset) Dedupe() int {
	seen := make(map[string]struct{}, len(d.Records))
	kept := d.Records[:0]
	removed := 0
	for _, record := range d.Records {
		id := dedupeKey(record.ID())
		if id != "" {
			if _, dup := seen[id]; dup {
				removed++
				continue
			}
			seen[id] = struct{}{}
		}
		kept = append(kept, record)
	}
	clear(d.Records[len(kept):])
	d.Records = kept
	return removed
}

func dedupeKey(id string) string {
	if n, ok := ParseID(id); ok {
		return strconv.FormatInt(n, 10)
	}
	return id
}
