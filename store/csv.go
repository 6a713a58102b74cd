package store

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/wstrucke/scs/utils"
)

// FileStore is a generic CSV-flat-file backed store for one entity kind.
// T is the record struct; PT is its pointer type, constrained to implement
// Record. This "curiously recurring pointer" pattern lets New() construct a
// zero-value *T generically while giving callers a concretely-typed T back
// from List/Load instead of the Record interface.
type FileStore[T any, PT interface {
	*T
	Record
}] struct {
	Path string
}

// NewFileStore creates a FileStore bound to path. The file need not exist yet;
// Load treats a missing file as zero records.
func NewFileStore[T any, PT interface {
	*T
	Record
}](path string) *FileStore[T, PT] {
	return &FileStore[T, PT]{Path: path}
}

// Load reads and parses every record in the file, enforcing I1 (unique keys).
func (s *FileStore[T, PT]) Load() ([]T, error) {
	f, err := os.Open(s.Path) //nolint:gosec // store-managed path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close() //nolint:errcheck

	var records []T
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) //nolint:mnd
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var rec T
		pt := PT(&rec)
		if err := pt.FromFields(strings.Split(line, ",")); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.Path, lineNo, err)
		}
		if err := pt.Validate(); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.Path, lineNo, err)
		}
		key := pt.Key()
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%s:%d: duplicate key %q (I1 violation)", s.Path, lineNo, key)
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return records, nil
}

// Save validates every field (rejecting embedded commas/newlines per §4.1)
// and atomically rewrites the whole file.
func (s *FileStore[T, PT]) Save(records []T) error {
	seen := make(map[string]struct{}, len(records))
	var b strings.Builder
	for i := range records {
		pt := PT(&records[i])
		key := pt.Key()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate key %q on save (I1 violation)", key)
		}
		seen[key] = struct{}{}
		fields := pt.ToFields()
		for idx, f := range fields {
			if err := utils.ValidField(fmt.Sprintf("field[%d]", idx), f); err != nil {
				return fmt.Errorf("record %q: %w", key, err)
			}
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return utils.AtomicWriteFile(s.Path, []byte(b.String()), 0o640) //nolint:mnd
}
