// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps folders and files in process. Used for local runs
// (FILESTORE=memory) and tests.
type MemoryStore struct {
	mu      sync.Mutex
	folders map[string]Folder
	objects map[string]File

	// FailUploads makes every Upload fail, for exercising error paths
	FailUploads bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		folders: make(map[string]Folder),
		objects: make(map[string]File),
	}
}

func (m *MemoryStore) FindFolder(ctx context.Context, name string) (Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.folders[name]
	if !ok {
		return Folder{}, ErrFolderNotFound
	}
	return f, nil
}

func (m *MemoryStore) EnsureFolder(ctx context.Context, name string) (Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.folders[name]; ok {
		return f, nil
	}
	f := Folder{ID: name, Name: name, Link: "memory://" + name + "/"}
	m.folders[name] = f
	return f, nil
}

func (m *MemoryStore) Upload(ctx context.Context, folder Folder, f File) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUploads {
		return Object{}, fmt.Errorf("failed to upload %s: store unavailable", f.Name)
	}
	if _, ok := m.folders[folder.ID]; !ok {
		return Object{}, ErrFolderNotFound
	}

	key := ObjectKey(folder, f.Name)
	m.objects[key] = f
	return Object{Key: key, Name: f.Name, ContentType: f.ContentType, Size: int64(len(f.Body))}, nil
}

func (m *MemoryStore) DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "memory://" + key, nil
}

// Objects returns the stored files keyed by object key
func (m *MemoryStore) Objects() map[string]File {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]File, len(m.objects))
	for k, v := range m.objects {
		out[k] = v
	}
	return out
}

// Folders returns the names of all folders
func (m *MemoryStore) Folders() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.folders))
	for name := range m.folders {
		names = append(names, name)
	}
	return names
}
