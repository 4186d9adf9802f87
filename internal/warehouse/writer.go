// DataLake - Song Play Analytics Star Schema Pipeline
// Copyright 2026 HvyD
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/HvyD/DataLake

// Package warehouse persists the star-schema tables as Parquet datasets.
//
// Each table is written under <root>/analytics/<table>. Tables with partition
// keys are laid out hive-style, one key=value directory level per key, with
// the partition columns also retained inside the files. Every write is a full
// replace: the table directory is removed before new files land, so a run's
// output never mixes with a previous run's.
package warehouse

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/HvyD/DataLake/internal/logging"
	"github.com/HvyD/DataLake/internal/metrics"
)

const (
	analyticsPrefix = "analytics"
	partFileName    = "part-00000.parquet"

	// nullPartition names the partition directory for rows whose partition
	// column is null, following the hive convention.
	nullPartition = "__HIVE_DEFAULT_PARTITION__"
)

// ErrUnknownPartitionColumn reports a partition key that is not a column of
// the table being written. This is a configuration-level fault and fails the
// run before any file is touched.
var ErrUnknownPartitionColumn = errors.New("partition key is not a table column")

// Writer writes tables under a common output root.
type Writer struct {
	root string
}

// NewWriter returns a writer rooted at the given output path.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// TableDir returns the directory a table is written to.
func (w *Writer) TableDir(table string) string {
	return filepath.Join(w.root, analyticsPrefix, table)
}

// WriteTable writes rows as a Parquet dataset, partitioned by the given keys
// in order. With no keys the table is a single file in the table directory.
// The table directory is replaced wholesale. Returns the number of rows
// written.
func WriteTable[T any](w *Writer, table string, rows []T, partitionKeys ...string) (int, error) {
	schema := parquet.SchemaOf(new(T))
	extract, err := partitionExtractors[T](schema, partitionKeys)
	if err != nil {
		return 0, fmt.Errorf("table %s: %w", table, err)
	}

	dir := w.TableDir(table)
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("replacing table %s: %w", table, err)
	}
	// An empty table still materializes as an empty directory.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", table, err)
	}

	groups := make(map[string][]T)
	for _, row := range rows {
		p := extract(row)
		groups[p] = append(groups[p], row)
	}

	// Deterministic directory creation order.
	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := writePart(filepath.Join(dir, p), schema, groups[p]); err != nil {
			return 0, fmt.Errorf("table %s: %w", table, err)
		}
	}

	metrics.RowsWritten.WithLabelValues(table).Add(float64(len(rows)))
	logging.Info().
		Str("table", table).
		Int("rows", len(rows)).
		Int("partitions", len(groups)).
		Str("path", dir).
		Msg("table written")
	return len(rows), nil
}

// writePart writes one partition's rows to part-00000.parquet in dir.
func writePart[T any](dir string, schema *parquet.Schema, rows []T) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, partFileName))
	if err != nil {
		return err
	}

	pw := parquet.NewGenericWriter[T](f, schema, parquet.Compression(&parquet.Snappy))
	if _, err := pw.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dir, err)
	}
	if err := pw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing %s: %w", dir, err)
	}
	return f.Close()
}

// partitionExtractors resolves the partition keys against the table schema and
// returns a function mapping a row to its relative partition path. An empty
// key list yields the empty path.
func partitionExtractors[T any](schema *parquet.Schema, keys []string) (func(T) string, error) {
	if len(keys) == 0 {
		return func(T) string { return "" }, nil
	}

	columns := make(map[string]struct{})
	for _, f := range schema.Fields() {
		columns[f.Name()] = struct{}{}
	}

	indices := make([][]int, len(keys))
	rt := reflect.TypeOf(*new(T))
	for i, key := range keys {
		if _, ok := columns[key]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPartitionColumn, key)
		}
		idx, ok := fieldIndexForColumn(rt, key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPartitionColumn, key)
		}
		indices[i] = idx
	}

	return func(row T) string {
		rv := reflect.ValueOf(row)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = key + "=" + partitionValue(rv.FieldByIndex(indices[i]))
		}
		return filepath.Join(parts...)
	}, nil
}

// fieldIndexForColumn finds the struct field carrying the named parquet
// column.
func fieldIndexForColumn(rt reflect.Type, column string) ([]int, bool) {
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag := f.Tag.Get("parquet")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		if name == column {
			return f.Index, true
		}
	}
	return nil, false
}

// partitionValue renders a partition column value as a directory segment.
// Strings are path-escaped; null pointers map to the hive default partition.
func partitionValue(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nullPartition
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return url.PathEscape(v.String())
	}
	return fmt.Sprintf("%v", v.Interface())
}
