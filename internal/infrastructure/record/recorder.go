// Package record writes the per-run directory: the JSON-lines run record
// and failure screenshots.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"apply-agent/internal/application/port/output"
	"apply-agent/internal/domain/entity"
)

var _ output.RunRecorder = (*JSONLRecorder)(nil)

const recordFile = "record.jsonl"

// JSONLRecorder appends one JSON object per run entry to
// <root>/<timestamp>_<site>/record.jsonl.
type JSONLRecorder struct {
	mu   sync.Mutex
	dir  string
	file *os.File
}

func NewJSONLRecorder(root, site string, now time.Time) (*JSONLRecorder, error) {
	name := fmt.Sprintf("%s_%s", now.Format("2006-01-02_15-04-05"), sanitize(site))
	dir := filepath.Join(root, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(dir, recordFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}

	return &JSONLRecorder{dir: dir, file: file}, nil
}

func (r *JSONLRecorder) Dir() string {
	return r.dir
}

func (r *JSONLRecorder) Record(entry entity.RunEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal run entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return fmt.Errorf("run record is closed")
	}
	if _, err := r.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write run entry: %w", err)
	}
	return nil
}

func (r *JSONLRecorder) SaveScreenshot(name string, shot *entity.Screenshot) (string, error) {
	if shot == nil || len(shot.Data) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}

	ext := shot.Format
	if ext == "" {
		ext = "png"
	}
	if ext == "jpeg" {
		ext = "jpg"
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s.%s", sanitize(name), ext))
	if err := os.WriteFile(path, shot.Data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadRecord loads a record file back into entries.
func ReadRecord(path string) ([]entity.RunEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}

	var entries []entity.RunEntry
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e entity.RunEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("run record line %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
