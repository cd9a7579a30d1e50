package query

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/hugr-lab/filterql/schema"
)

// Schema returns the Arrow schema of the selected fields.
func Schema(fields []*schema.Field) *arrow.Schema {
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		dt := f.DataType
		if dt == nil {
			dt = schema.DataTypeOf(f.Type)
		}
		out[i] = arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable}
	}
	return arrow.NewSchema(out, nil)
}

// RecordReader converts *sql.Rows into Arrow record batches.
// Not safe for concurrent use.
type RecordReader struct {
	rows      *sql.Rows
	schema    *arrow.Schema
	builder   *array.RecordBuilder
	batchSize int

	cur  arrow.RecordBatch
	err  error
	done bool
}

// NewRecordReader wraps rows, whose columns must match s in order.
// The reader closes rows when released.
func NewRecordReader(rows *sql.Rows, s *arrow.Schema, mem memory.Allocator, batchSize int) *RecordReader {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &RecordReader{
		rows:      rows,
		schema:    s,
		builder:   array.NewRecordBuilder(mem, s),
		batchSize: batchSize,
	}
}

// Schema returns the schema of every batch.
func (r *RecordReader) Schema() *arrow.Schema {
	return r.schema
}

// Next reads the next batch. It returns false at the end of the rows or on
// error; check Err afterwards.
func (r *RecordReader) Next() bool {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
	if r.done {
		return false
	}

	n := r.schema.NumFields()
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}

	count := 0
	for count < r.batchSize && r.rows.Next() {
		if err := r.rows.Scan(dest...); err != nil {
			return r.fail(fmt.Errorf("failed to scan row: %w", err))
		}
		for i, v := range values {
			if err := appendValue(r.builder.Field(i), v); err != nil {
				return r.fail(fmt.Errorf("column %s: %w", r.schema.Field(i).Name, err))
			}
		}
		count++
	}
	if count < r.batchSize {
		r.done = true
		if err := r.rows.Err(); err != nil {
			return r.fail(err)
		}
	}
	if count == 0 {
		return false
	}
	r.cur = r.builder.NewRecordBatch()
	return true
}

func (r *RecordReader) fail(err error) bool {
	r.err = err
	r.done = true
	return false
}

// RecordBatch returns the current batch. Valid until the next call to Next.
func (r *RecordReader) RecordBatch() arrow.RecordBatch {
	return r.cur
}

// Err returns the error that stopped iteration, if any.
func (r *RecordReader) Err() error {
	return r.err
}

// Release frees the current batch and the builder and closes the rows.
func (r *RecordReader) Release() {
	if r.cur != nil {
		r.cur.Release()
		r.cur = nil
	}
	if r.builder != nil {
		r.builder.Release()
		r.builder = nil
	}
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.StringBuilder:
		b.Append(toString(v))
	case *array.BooleanBuilder:
		val, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot convert %T to bool", v)
		}
		b.Append(val)
	case *array.Int64Builder:
		val, err := toInt64(v)
		if err != nil {
			return err
		}
		b.Append(val)
	case *array.Float64Builder:
		val, err := toFloat64(v)
		if err != nil {
			return err
		}
		b.Append(val)
	case *array.Date32Builder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("cannot convert %T to date", v)
		}
		b.Append(arrow.Date32FromTime(t))
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("cannot convert %T to timestamp", v)
		}
		ts, err := arrow.TimestampFromTime(t.UTC(), b.Type().(*arrow.TimestampType).Unit)
		if err != nil {
			return err
		}
		b.Append(ts)
	default:
		return fmt.Errorf("unsupported arrow builder %T", b)
	}
	return nil
}

// toString renders driver values as text. 16-byte values are UUIDs.
func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		if len(val) == 16 {
			if id, err := uuid.FromBytes(val); err == nil {
				return id.String()
			}
		}
		return string(val)
	case uuid.UUID:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Len() == 16 && rv.Type().Elem().Kind() == reflect.Uint8 {
		var id uuid.UUID
		reflect.Copy(reflect.ValueOf(id[:]), rv)
		return id.String()
	}
	return fmt.Sprint(v)
}

func toInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", val)
		}
		return int64(val), nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("value %v is not an integer", val)
		}
		return int64(val), nil
	case string:
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to int64", v)
}

func toFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case interface{ Float64() float64 }:
		return val.Float64(), nil
	case string:
		return strconv.ParseFloat(val, 64)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
	return float64(n), nil
}
