package outbox

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// statusFileName is dot-prefixed so the watcher never picks it up as a message.
const statusFileName = ".msgsend-status.json"

// Status summarizes what the dispatcher has done with the outbox.
type Status struct {
	Sent      int64     `json:"sent"`
	Failed    int64     `json:"failed"`
	LastFile  string    `json:"last_file,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusStore persists Status as a JSON file.
type StatusStore struct {
	dir string
}

// NewStatusStore creates a store keeping its file in dir.
func NewStatusStore(dir string) *StatusStore {
	return &StatusStore{dir: dir}
}

// Load returns the saved status, or a zero Status if none was saved yet.
func (s *StatusStore) Load() (Status, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Status{}, nil
		}
		return Status{}, err
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Save writes st to a temp file and renames it into place.
func (s *StatusStore) Save(st Status) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path())
}

// Path returns the full path to the status file.
func (s *StatusStore) Path() string {
	return filepath.Join(s.dir, statusFileName)
}
