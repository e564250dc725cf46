package journal

import "github.com/seqlab/biolapse/internal/logic/course"

// Lazy defers opening the database until the first record. An invocation
// that never records anything never creates the file, and an unopenable
// database surfaces as a per-record error instead of blocking the whole
// invocation up front. The session state machine already treats record
// failures as non-fatal, so a corrupt journal degrades to logged errors
// while captures keep landing on disk.
type Lazy struct {
	path string
	j    *Journal
}

// NewLazy returns a journal handle that opens path on first use.
func NewLazy(path string) *Lazy {
	return &Lazy{path: path}
}

// Record opens the database if needed and appends one capture row. An open
// failure is returned to the caller and retried on the next record.
func (l *Lazy) Record(rec course.Capture) error {
	if l.j == nil {
		j, err := Open(l.path)
		if err != nil {
			return err
		}
		l.j = j
	}
	return l.j.Record(rec)
}

// Close releases the database handle if one was ever opened.
func (l *Lazy) Close() error {
	if l.j == nil {
		return nil
	}
	return l.j.Close()
}
