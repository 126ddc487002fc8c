package transcripts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileStore persists transcripts as directories with meta.json + messages.jsonl.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a FileStore rooted at baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (fs *FileStore) transcriptDir(id string) string {
	return filepath.Join(fs.baseDir, id)
}

func (fs *FileStore) metaPath(id string) string {
	return filepath.Join(fs.transcriptDir(id), "meta.json")
}

func (fs *FileStore) messagesPath(id string) string {
	return filepath.Join(fs.transcriptDir(id), "messages.jsonl")
}

// Create initialises a transcript directory for a conversation id.
func (fs *FileStore) Create(id string) (*Transcript, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	now := time.Now()
	t := &Transcript{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusActive,
	}

	if err := os.MkdirAll(fs.transcriptDir(id), 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	if err := fs.writeMeta(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get reads transcript metadata by ID.
func (fs *FileStore) Get(id string) (*Transcript, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.readMeta(id)
}

// List returns all transcripts sorted by UpdatedAt descending.
func (fs *FileStore) List() ([]*Transcript, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list transcripts dir: %w", err)
	}

	var list []*Transcript
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		t, err := fs.readMeta(entry.Name())
		if err != nil {
			continue // skip corrupted transcripts
		}
		list = append(list, t)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})

	return list, nil
}

// UpdateMeta atomically rewrites a transcript's meta.json.
func (fs *FileStore) UpdateMeta(t *Transcript) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	t.UpdatedAt = time.Now()
	return fs.writeMeta(t)
}

// Delete removes a transcript and its messages.
func (fs *FileStore) Delete(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := fs.readMeta(id); err != nil {
		return err
	}
	if err := os.RemoveAll(fs.transcriptDir(id)); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

// AppendMessage appends a message to the transcript's JSONL file and updates meta.
func (fs *FileStore) AppendMessage(id string, msg Message) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	f, err := os.OpenFile(fs.messagesPath(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open messages file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	t, err := fs.readMeta(id)
	if err != nil {
		return err
	}
	t.MessageCount++
	t.UpdatedAt = time.Now()
	return fs.writeMeta(t)
}

// LoadMessages reads all messages from a transcript's JSONL file.
func (fs *FileStore) LoadMessages(id string) ([]Message, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	f, err := os.Open(fs.messagesPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open messages file: %w", err)
	}
	defer f.Close()

	var messages []Message
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue // skip corrupted lines
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	return messages, nil
}

// writeMeta atomically writes meta.json using a temp file + rename.
func (fs *FileStore) writeMeta(t *Transcript) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	path := fs.metaPath(t.ID)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write meta tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename meta: %w", err)
	}
	return nil
}

// readMeta reads a transcript's meta.json.
func (fs *FileStore) readMeta(id string) (*Transcript, error) {
	data, err := os.ReadFile(fs.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("conversation not found: %s", id)
		}
		return nil, fmt.Errorf("read meta: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal meta: %w", err)
	}
	return &t, nil
}
