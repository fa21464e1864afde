// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrFolderNotFound = errors.New("folder not found")

const folderPrefix = "CLAIM_"

// Folder is a claim's attachment folder
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"`
}

// File is an upload received from a client
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Object is a stored file
type Object struct {
	Key         string
	Name        string
	ContentType string
	Size        int64
}

// Store keeps claim folders and the files uploaded into them
type Store interface {
	// FindFolder returns ErrFolderNotFound when the folder does not exist
	FindFolder(ctx context.Context, name string) (Folder, error)
	// EnsureFolder looks the folder up and creates it when missing
	EnsureFolder(ctx context.Context, name string) (Folder, error)
	Upload(ctx context.Context, folder Folder, f File) (Object, error)
	DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// FolderName returns the folder name of a claim number
func FolderName(claimNumber string) string {
	return folderPrefix + strings.TrimSpace(claimNumber)
}

// ObjectKey builds a unique key for a file inside a folder. The random
// prefix keeps two uploads with the same name apart.
func ObjectKey(folder Folder, fileName string) string {
	return folder.ID + "/" + uuid.NewString()[:8] + "_" + SanitizeName(fileName)
}

// SanitizeName strips directories and characters unsafe in object keys
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\x00' || r < 0x20:
			continue
		case r == ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
