package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"scenestudio/internal/storage"
)

// historyFileName is the key the snapshot lives under inside the file store.
const historyFileName = "generationHistory.json"

// FileRepository keeps the history snapshot as a JSON file in local storage.
type FileRepository struct {
	store *storage.FileStore
}

func NewFileRepository(store *storage.FileStore) *FileRepository {
	return &FileRepository{store: store}
}

// Load reads the snapshot. A missing file means no history yet; unparseable
// content is an error so the caller can discard it.
func (r *FileRepository) Load(ctx context.Context) ([]Entry, error) {
	data, err := r.store.Read(ctx, historyFileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("history: decode snapshot: %w", err)
	}
	return entries, nil
}

// Save overwrites the snapshot with the given entries.
func (r *FileRepository) Save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history: encode snapshot: %w", err)
	}
	if _, err := r.store.Write(ctx, historyFileName, data); err != nil {
		return err
	}
	return nil
}

var _ Repository = (*FileRepository)(nil)
