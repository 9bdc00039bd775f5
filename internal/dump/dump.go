// Package dump persists one expression result as a JSON, CSV or Parquet
// file.
//
// Columns follow declaration order and are restricted to those populated in
// at least one row. An empty result keeps the entity's full column list so
// the file still carries a header or schema.
package dump

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
)

// Error reports a failed dump. Op is "encode" or "write".
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dump %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Write encodes r in d's format and writes it to dir/<name>.<ext>,
// replacing any existing file. It returns the path written.
func Write(dir string, d *ir.Dump, r result.ExpressionResult) (string, error) {
	if dir == "" {
		dir = "."
	}
	name := d.Filename()
	path := filepath.Join(dir, name)
	if !filepath.IsLocal(name) || filepath.Base(name) != name {
		return "", &Error{Path: path, Op: "write", Err: fmt.Errorf("%q escapes the dump directory", name)}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, d.Format, r); err != nil {
		return "", &Error{Path: path, Op: "encode", Err: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", &Error{Path: path, Op: "write", Err: err}
	}
	return path, nil
}

// Encode writes r to buf in the given format.
func Encode(buf *bytes.Buffer, format ir.DumpFormat, r result.ExpressionResult) error {
	switch format {
	case ir.DumpJSON:
		return encodeJSON(buf, r)
	case ir.DumpCSV:
		return encodeCSV(buf, r)
	case ir.DumpParquet:
		return encodeParquet(buf, r)
	default:
		return fmt.Errorf("unsupported dump format %v", format)
	}
}

// encodeJSON writes {"<entity>": [rows...]} with two-space indentation.
// Unset columns are omitted from each row.
func encodeJSON(buf *bytes.Buffer, r result.ExpressionResult) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	buf.Write(out)
	buf.WriteByte('\n')
	return nil
}

func encodeCSV(buf *bytes.Buffer, r result.ExpressionResult) error {
	cols, rows := grid(r)
	w := csv.NewWriter(buf)
	if err := w.Write(cols); err != nil {
		return err
	}
	for _, row := range rows {
		line := make([]string, len(row))
		for i, c := range row {
			line[i] = c.Text
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// encodeParquet writes one row group of nullable UTF-8 columns. Unset cells
// are nulls.
func encodeParquet(buf *bytes.Buffer, r result.ExpressionResult) error {
	cols, rows := grid(r)

	fields := make([]arrow.Field, len(cols))
	for i, name := range cols {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builders := make([]*array.StringBuilder, len(cols))
	for i := range cols {
		builders[i] = array.NewStringBuilder(memory.DefaultAllocator)
	}
	for _, row := range rows {
		for i, c := range row {
			if !c.Set {
				builders[i].AppendNull()
				continue
			}
			builders[i].Append(c.Text)
		}
	}

	arrays := make([]arrow.Array, len(cols))
	for i := range cols {
		arrays[i] = builders[i].NewArray()
		builders[i].Release()
	}
	record := array.NewRecord(schema, arrays, int64(len(rows)))
	defer record.Release()
	for i := range arrays {
		arrays[i].Release()
	}

	props := parquet.NewWriterProperties()
	fw, err := pqarrow.NewFileWriter(schema, buf, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return err
	}
	if err := fw.Write(record); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

// grid returns the dumped column names and, per row, the cells of those
// columns in the same order.
func grid(r result.ExpressionResult) ([]string, [][]result.Cell) {
	cols := result.Columns(r)
	if len(cols) == 0 {
		return ir.FieldNames(r.Kind()), nil
	}
	want := make(map[string]bool, len(cols))
	for _, c := range cols {
		want[c] = true
	}
	all := r.Cells()
	rows := make([][]result.Cell, len(all))
	for i, row := range all {
		kept := make([]result.Cell, 0, len(cols))
		for _, c := range row {
			if want[c.Name] {
				kept = append(kept, c)
			}
		}
		rows[i] = kept
	}
	return cols, rows
}
