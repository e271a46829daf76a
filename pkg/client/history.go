package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// maxHistoryItems caps the log so the stored blob cannot grow unbounded.
const maxHistoryItems = 50

// HistoryItem is one analysis session kept in the local log.
type HistoryItem struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Text      string         `json:"text"`
	Result    AnalysisResult `json:"result"`
}

// Store persists the history log as a single serialized blob under one
// well-known key.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStore keeps the blob in one file on disk.
type FileStore struct {
	Path string
}

func (f *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f *FileStore) Save(data []byte) error {
	return os.WriteFile(f.Path, data, 0o600)
}

// History is a capped, newest-first log of analysis sessions,
// de-duplicated by session id. Reads never fail the caller: a corrupted
// blob yields an empty log, and invalid entries are dropped and the
// stored blob healed on the next load.
type History struct {
	store Store
}

func NewHistory(store Store) *History {
	return &History{store: store}
}

// All returns the valid entries, newest first.
func (h *History) All() []HistoryItem {
	data, err := h.store.Load()
	if err != nil || len(data) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		// critically corrupted blob; start over rather than crash the caller
		return nil
	}

	valid := make([]HistoryItem, 0, len(entries))
	for _, raw := range entries {
		item, ok := decodeItem(raw)
		if !ok {
			continue
		}
		valid = append(valid, item)
	}

	// heal the stored blob when invalid entries were dropped
	if len(valid) != len(entries) {
		h.persist(valid)
	}

	return valid
}

// Save adds the item at the top, or updates it in place when the same
// session id already exists.
func (h *History) Save(item HistoryItem) error {
	history := h.All()

	updated := false
	for i := range history {
		if history[i].ID == item.ID {
			history[i] = item
			updated = true
			break
		}
	}
	if !updated {
		history = append([]HistoryItem{item}, history...)
	}

	if len(history) > maxHistoryItems {
		history = history[:maxHistoryItems]
	}

	return h.persist(history)
}

// Delete removes the entry with the given session id, if present.
func (h *History) Delete(id string) error {
	history := h.All()
	kept := history[:0]
	for _, item := range history {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return h.persist(kept)
}

func (h *History) persist(items []HistoryItem) error {
	if items == nil {
		items = []HistoryItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return h.store.Save(data)
}

// rawHistoryItem mirrors HistoryItem with pointers so entries from older
// schemas or corrupted writes are detectable.
type rawHistoryItem struct {
	ID        *string `json:"id"`
	Timestamp *int64  `json:"timestamp"`
	Text      *string `json:"text"`
	Result    *struct {
		Tier1   *TierReport `json:"tier1"`
		Tier2   *TierReport `json:"tier2"`
		Insight *Insight    `json:"insight"`
	} `json:"result"`
}

func decodeItem(raw json.RawMessage) (HistoryItem, bool) {
	var probe rawHistoryItem
	if err := json.Unmarshal(raw, &probe); err != nil {
		return HistoryItem{}, false
	}
	if probe.ID == nil || *probe.ID == "" || probe.Timestamp == nil || probe.Text == nil {
		return HistoryItem{}, false
	}
	if probe.Result == nil || probe.Result.Tier1 == nil || probe.Result.Tier2 == nil || probe.Result.Insight == nil {
		return HistoryItem{}, false
	}

	var item HistoryItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return HistoryItem{}, false
	}
	return item, true
}
