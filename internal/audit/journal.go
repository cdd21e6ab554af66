// Package audit keeps the install journal: an append-only JSONL file in
// which every record carries the hash of its predecessor.
package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/jsonutil"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// ErrChainBroken is returned by Verify when a record does not link to the
// one before it or its hash does not match its content.
var ErrChainBroken = errors.New("journal hash chain broken")

// FileAppender appends journal records to a JSONL file.
type FileAppender struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileAppender creates a FileAppender writing to path.
func NewFileAppender(path string) *FileAppender {
	return &FileAppender{path: path, now: time.Now}
}

// Path returns the journal file location.
func (a *FileAppender) Path() string { return a.path }

// Append stamps rec with the current time and chain hashes and appends it.
func (a *FileAppender) Append(rec model.JournalRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	if err := lockFile(file); err != nil {
		return fmt.Errorf("lock journal: %w", err)
	}
	defer unlockFile(file)

	prevHash, err := lastRecordHash(file)
	if err != nil {
		return fmt.Errorf("get last record hash: %w", err)
	}

	rec.Timestamp = a.now().UTC()
	rec.PrevHash = prevHash
	rec.RecordHash = ""
	hash, err := computeRecordHash(rec)
	if err != nil {
		return fmt.Errorf("compute record hash: %w", err)
	}
	rec.RecordHash = hash

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal journal record: %w", err)
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return nil
}

// Records returns every well-formed record in file order. A missing
// journal has no records.
func (a *FileAppender) Records() ([]model.JournalRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := os.Open(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	var out []model.JournalRecord
	err = scan(file, func(rec model.JournalRecord) { out = append(out, rec) })
	return out, err
}

// Verify recomputes every record hash and checks the chain links.
func (a *FileAppender) Verify() error {
	records, err := a.Records()
	if err != nil {
		return err
	}
	var prev model.HashValue
	for i, rec := range records {
		if rec.PrevHash != prev {
			return fmt.Errorf("%w: record %d links to %q, expected %q", ErrChainBroken, i, rec.PrevHash, prev)
		}
		want := rec.RecordHash
		rec.RecordHash = ""
		got, err := computeRecordHash(rec)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%w: record %d hash mismatch", ErrChainBroken, i)
		}
		prev = want
	}
	return nil
}

// ForInstall returns the records that belong to one install run.
func (a *FileAppender) ForInstall(installID string) ([]model.JournalRecord, error) {
	records, err := a.Records()
	if err != nil {
		return nil, err
	}
	var out []model.JournalRecord
	for _, rec := range records {
		if rec.InstallID == installID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func lastRecordHash(file *os.File) (model.HashValue, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek to start: %w", err)
	}
	var last model.HashValue
	err := scan(file, func(rec model.JournalRecord) { last = rec.RecordHash })
	return last, err
}

func scan(r io.Reader, fn func(model.JournalRecord)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var rec model.JournalRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue // skip malformed lines
		}
		fn(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan journal: %w", err)
	}
	return nil
}

// computeRecordHash hashes the canonical form of rec with RecordHash unset.
func computeRecordHash(rec model.JournalRecord) (model.HashValue, error) {
	rec.RecordHash = ""
	data, err := jsonutil.CanonicalMarshal(rec)
	if err != nil {
		return "", fmt.Errorf("canonical marshal: %w", err)
	}
	sum := sha256.Sum256(data)
	return model.HashValue(hex.EncodeToString(sum[:])), nil
}
