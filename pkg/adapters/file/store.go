package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/hostline/pkg/domain"
)

// DefaultDir is where conversations are kept when no directory is given.
var DefaultDir = filepath.Join(".hostline", "conversations")

// Store implements ports.ConversationStore on the local filesystem, one JSON
// document per conversation.
type Store struct {
	Dir string
}

// New creates a Store rooted at dir, or DefaultDir when dir is empty.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", errors.New("conversation id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid conversation id %q", id)
	}
	return filepath.Join(s.Dir, id+".json"), nil
}

// Save writes the conversation to a temp file in the same directory, syncs it
// and renames it over the previous snapshot.
func (s *Store) Save(_ context.Context, conv *domain.Conversation) error {
	dest, err := s.path(conv.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create conversation directory: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".tmp-"+conv.ID+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("replace conversation %s: %w", conv.ID, err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename conversation %s: %w", conv.ID, err)
	}
	return nil
}

// Load reads a conversation back from disk.
func (s *Store) Load(_ context.Context, id string) (*domain.Conversation, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("read conversation %s: %w", id, err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Delete removes the conversation file. Unknown ids are ignored.
func (s *Store) Delete(_ context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

// List returns the stored conversation ids in sorted order.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}
