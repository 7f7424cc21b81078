package movie

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"moviedata/internal/fileutil"
)

// ErrMissingIDColumn reports a CSV header without an id column.
var ErrMissingIDColumn = errors.New("dataset has no id column")

const utf8BOM = "\ufeff"

// ReadCSV parses a header row followed by records. Short rows are padded
// with blanks; extra cells beyond the header are ignored.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read csv header: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("read csv header: column %d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("read csv header: duplicate column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	if _, ok := seen[IDColumn]; !ok {
		return nil, ErrMissingIDColumn
	}

	ds := &Dataset{Columns: columns}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(ds.Records)+2, err)
		}
		record := make(Record, len(columns))
		for i, column := range columns {
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		ds.Records = append(ds.Records, record)
	}
	return ds, nil
}

// WriteCSV serializes the dataset with a header row in schema order.
func WriteCSV(w io.Writer, ds *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(ds.Columns))
	for i, record := range ds.Records {
		for j, column := range ds.Columns {
			row[j] = record.Get(column)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadCSV reads a dataset from path.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()
	ds, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// SaveCSV writes the dataset to path atomically.
func SaveCSV(path string, ds *Dataset) error {
	var buf strings.Builder
	if err := WriteCSV(&buf, ds); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("save dataset: %w", err)
	}
	return nil
}
