package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// record is the on-disk form of a linked account. Fields this version does not
// know about are kept in extra and written back untouched.
type record struct {
	Platform string
	Username string
	extra    map[string]json.RawMessage
}

func (r *record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["platform"]; ok {
		if err := json.Unmarshal(raw, &r.Platform); err != nil {
			return fmt.Errorf("platform: %w", err)
		}
		delete(fields, "platform")
	}
	if raw, ok := fields["username"]; ok {
		if err := json.Unmarshal(raw, &r.Username); err != nil {
			return fmt.Errorf("username: %w", err)
		}
		delete(fields, "username")
	}
	if len(fields) > 0 {
		r.extra = fields
	}
	return nil
}

func (r record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.extra)+2)
	for k, v := range r.extra {
		out[k] = v
	}
	out["platform"] = r.Platform
	out["username"] = r.Username
	return json.Marshal(out)
}

// readStore loads the whole mapping from path. A missing file is an empty store.
func readStore(path string) (map[string]record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, path, err)
	}

	records := map[string]record{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrPersistence, path, err)
	}
	// a literal null decodes to a nil map
	if records == nil {
		return map[string]record{}, nil
	}
	for id, rec := range records {
		p, err := ParsePlatform(rec.Platform)
		if err != nil || strings.TrimSpace(rec.Username) == "" {
			slog.Warn("Skipping unusable account record", "path", path, "owner", id, "platform", rec.Platform, "username", rec.Username)
			delete(records, id)
			continue
		}
		rec.Platform = string(p)
		records[id] = rec
	}
	return records, nil
}

// writeStore replaces path with the serialised mapping. The data goes to a temp
// file in the same directory first so a crash never leaves a half-written store.
func writeStore(path string, records map[string]record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrPersistence, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrPersistence, path, err)
	}
	return nil
}
