// Package content bundles the default chapter and discovers chapter scripts on disk
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lixenwraith/vi-novel/script"
)

const (
	// DefaultAssetsDir is scanned for chapter scripts when no path is given
	DefaultAssetsDir = "./assets"
	// DefaultChapter is the embedded chapter played when nothing else is selected
	DefaultChapter = "cafe"
)

// ScriptExtensions lists the file extensions recognized as chapter scripts
var ScriptExtensions = []string{".yaml", ".yml"}

//go:embed chapters/*.yaml
var chapters embed.FS

// Manager discovers and loads chapter scripts
// Embedded chapters are always available; files in the assets directory shadow them by name
type Manager struct {
	dir   string
	files map[string]string // chapter name → path
}

// NewManager creates a manager scanning dir; empty dir uses DefaultAssetsDir
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultAssetsDir
	}
	return &Manager{dir: dir, files: make(map[string]string)}
}

// Dir returns the scanned assets directory
func (m *Manager) Dir() string {
	return m.dir
}

// Discover scans the assets directory for chapter scripts
// A missing directory is not an error; hidden files are skipped
func (m *Manager) Discover() error {
	m.files = make(map[string]string)

	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		log.Printf("Assets directory '%s' does not exist, using embedded chapters", m.dir)
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read assets directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if strings.HasPrefix(fileName, ".") {
			continue
		}
		if name, ok := chapterName(fileName); ok {
			p := filepath.Join(m.dir, fileName)
			m.files[name] = p
			log.Printf("Discovered chapter: %s", p)
		}
	}

	log.Printf("Discovered %d chapter file(s) in %s", len(m.files), m.dir)
	return nil
}

// Chapters returns every known chapter name, embedded and discovered, sorted
func (m *Manager) Chapters() []string {
	seen := make(map[string]bool)
	for _, name := range Embedded() {
		seen[name] = true
	}
	for name := range m.files {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves ref and returns the parsed script
// ref may be empty (default chapter), a path to a script file, or a chapter name
func (m *Manager) Load(ref string) (*script.Script, error) {
	if ref == "" {
		ref = DefaultChapter
	}

	if _, ok := chapterName(ref); ok {
		if _, err := os.Stat(ref); err == nil {
			return script.LoadFile(ref)
		}
	}

	if p, ok := m.files[ref]; ok {
		return script.LoadFile(p)
	}

	s, err := LoadEmbedded(ref)
	if err != nil {
		return nil, fmt.Errorf("chapter %q not found in %s or embedded: %w", ref, m.dir, err)
	}
	return s, nil
}

// Embedded lists the chapters compiled into the binary
func Embedded() []string {
	entries, err := fs.ReadDir(chapters, "chapters")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := chapterName(entry.Name()); ok {
			names = append(names, name)
		}
	}
	return names
}

// LoadEmbedded parses an embedded chapter by name
func LoadEmbedded(name string) (*script.Script, error) {
	data, err := chapters.ReadFile(path.Join("chapters", name+".yaml"))
	if err != nil {
		return nil, err
	}
	return script.Parse(data)
}

// Default returns the embedded default chapter
func Default() (*script.Script, error) {
	return LoadEmbedded(DefaultChapter)
}

func chapterName(fileName string) (string, bool) {
	ext := filepath.Ext(fileName)
	for _, e := range ScriptExtensions {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(filepath.Base(fileName), ext), true
		}
	}
	return "", false
}
