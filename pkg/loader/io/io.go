package io

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// IOFileLoader loads files directly from the local filesystem with caching.
type IOFileLoader struct {
	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewIOFileLoader creates a new filesystem-based file loader.
func NewIOFileLoader() *IOFileLoader {
	return &IOFileLoader{
		cache: make(map[string][]byte),
	}
}

// GetFileBytes reads the file content from the filesystem. Results are cached.
func (l *IOFileLoader) GetFileBytes(ctx context.Context, file loader.DocumentFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := os.ReadFile(file.FilePath)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// DirSource discovers supported documents in a single local directory.
// Subdirectories are not traversed.
type DirSource struct {
	dir    string
	loader loader.FileLoader
}

// NewDirSource creates a DirSource reading files through l.
func NewDirSource(dir string, l loader.FileLoader) *DirSource {
	return &DirSource{dir: dir, loader: l}
}

// ListDocuments returns the supported documents of the directory sorted by
// file name. A missing directory yields no documents.
func (s *DirSource) ListDocuments(ctx context.Context) ([]loader.DocumentFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	files := make([]loader.DocumentFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file, ok := loader.NewDocumentFile(loader.NewDocumentFileParams{
			FilePath: filepath.Join(s.dir, entry.Name()),
			Name:     entry.Name(),
			Loader:   s.loader,
		})
		if !ok {
			continue
		}
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	for i := range files {
		files[i].ID = strconv.Itoa(i + 1)
	}
	return files, nil
}
