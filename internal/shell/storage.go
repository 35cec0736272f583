package shell

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	storageDirMode  = 0o700
	storageFileMode = 0o600
)

// Response is a cached asset.
type Response struct {
	Path        string `yaml:"path"`
	ContentType string `yaml:"content_type"`
	Body        []byte `yaml:"-"`
}

// Storage keeps one directory per cache name and one body/meta file pair
// per cached path.
type Storage struct {
	root string
	mu   sync.RWMutex
}

func NewStorage(root string) *Storage {
	return &Storage{root: filepath.Clean(root)}
}

func (s *Storage) Open(ctx context.Context, name string) (*Cache, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.dirForName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, storageDirMode); err != nil {
		return nil, fmt.Errorf("create cache %q: %w", name, err)
	}

	return &Cache{name: name, dir: dir, mu: &s.mu}, nil
}

// Lookup opens an existing cache without creating it.
func (s *Storage) Lookup(ctx context.Context, name string) (*Cache, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	dir, err := s.dirForName(name)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat cache %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, false, fmt.Errorf("cache %q is not a directory", name)
	}

	return &Cache{name: name, dir: dir, mu: &s.mu}, true, nil
}

func (s *Storage) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list caches: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

func (s *Storage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := s.dirForName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete cache %q: %w", name, err)
	}

	return nil
}

func (s *Storage) dirForName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("cache name is empty")
	}
	if trimmed != filepath.Base(trimmed) || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid cache name %q", name)
	}

	return filepath.Join(s.root, trimmed), nil
}

type Cache struct {
	name string
	dir  string
	mu   *sync.RWMutex
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) Put(ctx context.Context, resp Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := yaml.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", resp.Path, err)
	}

	body, metaPath := c.pathsFor(resp.Path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.WriteFile(body, resp.Body, storageFileMode); err != nil {
		return fmt.Errorf("write cache entry %q: %w", resp.Path, err)
	}
	if err := os.WriteFile(metaPath, meta, storageFileMode); err != nil {
		return fmt.Errorf("write cache entry meta %q: %w", resp.Path, err)
	}

	return nil
}

func (c *Cache) Match(ctx context.Context, path string) (Response, bool, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, false, err
	}

	body, metaPath := c.pathsFor(path)

	c.mu.RLock()
	defer c.mu.RUnlock()

	meta, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Response{}, false, nil
		}
		return Response{}, false, fmt.Errorf("read cache entry meta %q: %w", path, err)
	}

	var resp Response
	if err := yaml.Unmarshal(meta, &resp); err != nil {
		return Response{}, false, fmt.Errorf("decode cache entry %q: %w", path, err)
	}

	resp.Body, err = os.ReadFile(body)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Response{}, false, nil
		}
		return Response{}, false, fmt.Errorf("read cache entry %q: %w", path, err)
	}

	return resp, true, nil
}

func (c *Cache) pathsFor(path string) (body string, meta string) {
	sum := sha256.Sum256([]byte(path))
	base := filepath.Join(c.dir, hex.EncodeToString(sum[:]))
	return base + ".body", base + ".yaml"
}
