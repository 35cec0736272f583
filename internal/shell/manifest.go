package shell

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Manifest lists the app shell assets served offline.
type Manifest struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Assets  []string `yaml:"assets"`

	literals []string
	patterns []glob.Glob
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shell manifest: %w", err)
	}

	return ParseManifest(data)
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode shell manifest: %w", err)
	}

	if err := m.compile(); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *Manifest) compile() error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return errors.New("shell manifest name is empty")
	}
	if strings.ContainsAny(m.Name, `/\`) {
		return fmt.Errorf("invalid shell manifest name %q", m.Name)
	}
	if len(m.Assets) == 0 {
		return errors.New("shell manifest lists no assets")
	}

	m.literals = m.literals[:0]
	m.patterns = m.patterns[:0]
	seen := map[string]bool{}

	for i, raw := range m.Assets {
		asset := NormalizePath(raw)
		m.Assets[i] = asset

		if isPattern(asset) {
			g, err := glob.Compile(asset, '/')
			if err != nil {
				return fmt.Errorf("compile asset pattern %q: %w", raw, err)
			}
			m.patterns = append(m.patterns, g)
			continue
		}

		if !seen[asset] {
			seen[asset] = true
			m.literals = append(m.literals, asset)
		}
	}

	return nil
}

// NormalizePath turns relative manifest entries into absolute URL paths.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "." {
		return "/"
	}
	p = strings.TrimPrefix(p, "./")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func isPattern(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// CacheName changes whenever the version or the asset list changes.
func (m *Manifest) CacheName() string {
	sum := sha256.Sum256([]byte(strings.Join(m.Assets, "\n")))
	name := m.Name
	if m.Version != "" {
		name += "-" + m.Version
	}
	return name + "-" + hex.EncodeToString(sum[:])[:8]
}

// Precache returns the literal asset paths fetched on install.
func (m *Manifest) Precache() []string {
	return append([]string(nil), m.literals...)
}

// Matches reports whether a request path belongs to the app shell.
func (m *Manifest) Matches(p string) bool {
	for _, literal := range m.literals {
		if literal == p {
			return true
		}
	}
	for _, pattern := range m.patterns {
		if pattern.Match(p) {
			return true
		}
	}
	return false
}
