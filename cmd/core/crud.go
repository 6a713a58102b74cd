package core

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/wstrucke/scs/store"
)

// PrintTable renders header+rows with the teacher's two-space tabwriter
// convention (cmd/vm's List), shared by every noun's list verb.
func PrintTable(header []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0) //nolint:mnd
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	_ = w.Flush()
}

// ListRecords loads every record from fs and renders it as a table, one row
// per record in ToFields() order.
func ListRecords[T any, PT interface {
	*T
	store.Record
}](fs *store.FileStore[T, PT], header []string) error {
	items, err := store.List(fs)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(items))
	for i := range items {
		rows = append(rows, PT(&items[i]).ToFields())
	}
	PrintTable(header, rows)
	return nil
}

// ShowRecord prints one record as aligned "field: value" lines.
func ShowRecord[T any, PT interface {
	*T
	store.Record
}](fs *store.FileStore[T, PT], key string, header []string) error {
	item, err := store.Get(fs, key)
	if err != nil {
		return err
	}
	fields := PT(&item).ToFields()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0) //nolint:mnd
	for i, h := range header {
		if i < len(fields) {
			_, _ = fmt.Fprintf(w, "%s:\t%s\n", h, fields[i])
		}
	}
	return w.Flush()
}

// DeleteRecord removes a record by key. Callers needing cascade handling
// (§3 lifecycle rules) call the repo cascade methods instead.
func DeleteRecord[T any, PT interface {
	*T
	store.Record
}](fs *store.FileStore[T, PT], key string) error {
	return store.Delete(fs, key)
}
