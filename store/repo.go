package store

import (
	"github.com/wstrucke/scs/errs"
)

// List returns every record in kind-order (file order).
func List[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT]) ([]T, error) {
	return fs.Load()
}

// Exists reports whether a record with the given key is present.
func Exists[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT], key string) (bool, error) {
	records, err := fs.Load()
	if err != nil {
		return false, err
	}
	for i := range records {
		if PT(&records[i]).Key() == key {
			return true, nil
		}
	}
	return false, nil
}

// Get loads a single record by key, returning MissingReferenceError if absent.
func Get[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT], key string) (T, error) {
	var zero T
	records, err := fs.Load()
	if err != nil {
		return zero, err
	}
	for i := range records {
		if PT(&records[i]).Key() == key {
			return records[i], nil
		}
	}
	return zero, errs.MissingReferencef("%s", key)
}

// Create appends a new record, rejecting a pre-existing key (I1, ConflictError).
func Create[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT], rec T) error {
	records, err := fs.Load()
	if err != nil {
		return err
	}
	key := PT(&rec).Key()
	for i := range records {
		if PT(&records[i]).Key() == key {
			return errs.Conflictf("%s already exists", key)
		}
	}
	if err := PT(&rec).Validate(); err != nil {
		return err
	}
	records = append(records, rec)
	return fs.Save(records)
}

// Update replaces the record matching key with rec (rec's key may differ from
// key only if the caller has already reconciled back-references; most callers
// keep them equal).
func Update[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT], key string, rec T) error {
	records, err := fs.Load()
	if err != nil {
		return err
	}
	if err := PT(&rec).Validate(); err != nil {
		return err
	}
	found := false
	for i := range records {
		if PT(&records[i]).Key() == key {
			records[i] = rec
			found = true
			break
		}
	}
	if !found {
		return errs.MissingReferencef("%s", key)
	}
	return fs.Save(records)
}

// Delete removes the record matching key. Cascade/back-reference handling
// (lifecycle rules in §3) is the caller's responsibility.
func Delete[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT], key string) error {
	records, err := fs.Load()
	if err != nil {
		return err
	}
	out := records[:0]
	found := false
	for i := range records {
		if PT(&records[i]).Key() == key {
			found = true
			continue
		}
		out = append(out, records[i])
	}
	if !found {
		return errs.MissingReferencef("%s", key)
	}
	return fs.Save(out)
}

// Mutate performs a generic read-modify-write: fn receives the full slice and
// returns the replacement slice to persist. Used for bulk operations like
// cascading deletes across a single file.
func Mutate[T any, PT interface {
	*T
	Record
}](fs *FileStore[T, PT], fn func([]T) ([]T, error)) error {
	records, err := fs.Load()
	if err != nil {
		return err
	}
	out, err := fn(records)
	if err != nil {
		return err
	}
	return fs.Save(out)
}
