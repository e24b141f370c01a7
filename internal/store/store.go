// Package store persists flat records and raw payloads as pretty-printed
// JSON artifacts under the data directory, and reads them back wholesale
// for aggregation. An interrupted run leaves a partial artifact set; the
// load side treats gaps as absent data, never as an error.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lmarchal/worklens/internal/aggregate"
)

type Store struct {
	Dir    string
	Logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Store {
	return &Store{Dir: dir, Logger: logger}
}

// SaveRecords writes one artifact per (tester, window-end) pair:
// <dir>/<endDate>/data_<trigram>-<endDate>.json.
func (s *Store) SaveRecords(endDate, trigram string, records any) error {
	folder := filepath.Join(s.Dir, endDate)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}

	path := filepath.Join(folder, fmt.Sprintf("data_%s-%s.json", trigram, endDate))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	s.Logger.Info("records saved", "path", path)
	return nil
}

// SavePayload writes one raw-payload artifact per (project, query kind)
// pair: <dir>/<project>_<queryKind>.json.
func (s *Store) SavePayload(project, queryKind string, payload any) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var data []byte
	var err error
	if raw, ok := payload.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err = json.Indent(&buf, raw, "", "    "); err == nil {
			data = buf.Bytes()
		}
	} else {
		data, err = json.MarshalIndent(payload, "", "    ")
	}
	if err != nil {
		return err
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.json", project, queryKind))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	s.Logger.Info("payload saved", "path", path)
	return nil
}

// LoadRecords walks every window subdirectory in order and concatenates the
// record arrays found there. Unreadable files are skipped with a warning.
func (s *Store) LoadRecords() ([]aggregate.Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	sort.Strings(folders)

	var all []aggregate.Record
	for _, folder := range folders {
		files, err := os.ReadDir(filepath.Join(s.Dir, folder))
		if err != nil {
			s.Logger.Warn("skipping unreadable folder", "folder", folder, "error", err)
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			path := filepath.Join(s.Dir, folder, f.Name())
			records, err := readRecordArray(path)
			if err != nil {
				s.Logger.Warn("skipping unreadable artifact", "path", path, "error", err)
				continue
			}
			all = append(all, records...)
		}
	}
	return all, nil
}

// LoadPayload reads one raw-payload artifact back. A missing artifact
// returns (nil, nil): absent data, not an error.
func (s *Store) LoadPayload(project, queryKind string) (json.RawMessage, error) {
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.json", project, queryKind))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func readRecordArray(path string) ([]aggregate.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var records []aggregate.Record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
