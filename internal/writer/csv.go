package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

type column struct {
	name  string
	index int
}

// datasetColumns lists the writable columns of a row struct in field
// order, taking names from the parquet tag the way the parquet encoder
// does. Fields tagged "-" are skipped.
func datasetColumns(t reflect.Type) []column {
	cols := make([]column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("parquet"); ok {
			name = strings.Split(tag, ",")[0]
			if name == "-" {
				continue
			}
			if name == "" {
				name = f.Name
			}
		}
		cols = append(cols, column{name: sanitizeName(name), index: i})
	}
	return cols
}

func columnIndex(t reflect.Type, name string) (int, bool) {
	for _, c := range datasetColumns(t) {
		if c.name == name {
			return c.index, true
		}
	}
	return 0, false
}

// fieldString renders one struct field as a CSV cell. Nil pointers come
// out empty, matching how missing values read back from parquet.
func fieldString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return ""
		}
		return fieldString(v.Elem())
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprint(v.Interface())
	}
}

func writeCSV[T any](path string, rows []T) error {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("cannot encode rows of type %T as csv", zero)
	}
	cols := datasetColumns(t)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		v := reflect.ValueOf(row)
		for i, c := range cols {
			record[i] = fieldString(v.Field(c.index))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write csv file: %w", err)
	}
	return nil
}
