package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoRows       = errors.New("no rows to write")
	ErrTargetExists = errors.New("output target already exists")
)

const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// Directory name pyarrow gives partitions whose value is missing.
const hiveDefaultPartition = "__HIVE_DEFAULT_PARTITION__"

// Options controls how WriteDataset lays a dataset out on disk.
// Compression applies to Parquet only. PartitionBy names a single
// column; the empty string writes one flat file.
type Options struct {
	Format      string
	Compression string
	Overwrite   bool
	PartitionBy string
}

// WriteDataset writes rows as the dataset named stem under dir and
// returns the path it wrote.
//
// Without partitioning the dataset is a single {dir}/{stem}.{ext} file.
// With PartitionBy set it is a {dir}/{stem}/ directory holding one
// {column}={value}/{stem}.{ext} file per distinct value; the partition
// column stays in the files, so every part file is readable on its own.
//
// An existing target is removed first when Overwrite is set and is an
// error otherwise.
func WriteDataset[T any](dir, stem string, rows []T, opts Options) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("dataset %s: %w", stem, ErrNoRows)
	}

	format, err := resolveFormat(opts.Format)
	if err != nil {
		return "", err
	}
	if format == FormatParquet {
		if _, err := resolveCodec(opts.Compression); err != nil {
			return "", err
		}
	}

	write := func(path string, part []T) error {
		if format == FormatCSV {
			return writeCSV(path, part)
		}
		return writeParquet(path, part, opts.Compression)
	}

	if opts.PartitionBy == "" {
		target := filepath.Join(dir, stem+"."+format)
		if err := prepareTarget(target, opts.Overwrite); err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := write(target, rows); err != nil {
			return "", err
		}
		logrus.Infof("Wrote %d rows to %s", len(rows), target)
		return target, nil
	}

	column := sanitizeName(opts.PartitionBy)
	groups, err := partitionRows(rows, column)
	if err != nil {
		return "", err
	}

	root := filepath.Join(dir, stem)
	if err := prepareTarget(root, opts.Overwrite); err != nil {
		return "", err
	}
	for _, g := range groups {
		partDir := filepath.Join(root, column+"="+partitionDirValue(g.value))
		if err := os.MkdirAll(partDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create partition directory: %w", err)
		}
		if err := write(filepath.Join(partDir, stem+"."+format), g.rows); err != nil {
			return "", err
		}
	}
	logrus.Infof("Wrote %d rows to %s partitioned by %s (%d partitions)", len(rows), root, column, len(groups))
	return root, nil
}

func resolveFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatParquet:
		return FormatParquet, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

func prepareTarget(target string, overwrite bool) error {
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat output target: %w", err)
	}
	if !overwrite {
		return fmt.Errorf("%s: %w", target, ErrTargetExists)
	}
	logrus.Infof("Overwrite enabled, removing existing output %s", target)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to remove existing output: %w", err)
	}
	return nil
}

type partition[T any] struct {
	value string
	rows  []T
}

// partitionRows groups rows by the named column, keeping input order
// inside each group. Groups come back sorted by value.
func partitionRows[T any](rows []T, column string) ([]partition[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot partition rows of type %T", zero)
	}
	idx, ok := columnIndex(t, column)
	if !ok {
		return nil, fmt.Errorf("unknown partition column %q", column)
	}

	byValue := make(map[string][]T)
	values := make([]string, 0, 8)
	for _, row := range rows {
		v := fieldString(reflect.ValueOf(row).Field(idx))
		if _, seen := byValue[v]; !seen {
			values = append(values, v)
		}
		byValue[v] = append(byValue[v], row)
	}
	slices.Sort(values)

	groups := make([]partition[T], 0, len(values))
	for _, v := range values {
		groups = append(groups, partition[T]{value: v, rows: byValue[v]})
	}
	return groups, nil
}

func partitionDirValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return hiveDefaultPartition
	}
	value = strings.ReplaceAll(value, "/", "_")
	value = strings.ReplaceAll(value, `\`, "_")
	return strings.ReplaceAll(value, " ", "_")
}

var nameSanitizer = strings.NewReplacer(
	" ", "_", "/", "_", `\`, "_",
	"(", "", ")", "", "[", "", "]", "", "{", "", "}", "",
	":", "_", ";", "_", ",", "_", ".", "_",
)

// sanitizeName normalizes a column name the way the dataset files spell
// them: trimmed, punctuation collapsed to underscores, lowercased.
func sanitizeName(name string) string {
	return strings.ToLower(nameSanitizer.Replace(strings.TrimSpace(name)))
}
