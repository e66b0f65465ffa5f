package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const skillFileName = "SKILL.md"

// Discovery handles skill discovery from the source root
type Discovery struct {
	sourceDir string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSourceDir sets a custom source root
func WithSourceDir(dir string) Option {
	return func(d *Discovery) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve source directory %q", dir)
		}
		d.sourceDir = abs
		return nil
	}
}

// WithExecutableDir uses the directory containing the running binary as the
// source root. This is the default when no option is given.
func WithExecutableDir() Option {
	return func(d *Discovery) error {
		exe, err := os.Executable()
		if err != nil {
			return errors.Wrap(err, "failed to locate executable")
		}
		resolved, err := filepath.EvalSymlinks(exe)
		if err != nil {
			return errors.Wrap(err, "failed to resolve executable path")
		}
		d.sourceDir = filepath.Dir(resolved)
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{}

	if len(opts) == 0 {
		if err := WithExecutableDir()(d); err != nil {
			return nil, err
		}
	} else {
		for _, opt := range opts {
			if err := opt(d); err != nil {
				return nil, err
			}
		}
	}

	return d, nil
}

// SourceDir returns the source root being scanned
func (d *Discovery) SourceDir() string {
	return d.sourceDir
}

// ListSkills scans the source root and returns all valid skills sorted by
// name. A subdirectory is a skill iff it directly contains SKILL.md. The
// scan is fresh on every call; nothing is cached.
func (d *Discovery) ListSkills() ([]Skill, error) {
	entries, err := os.ReadDir(d.sourceDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read source directory %s", d.sourceDir)
	}

	var found []Skill
	for _, entry := range entries {
		entryPath := filepath.Join(d.sourceDir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		descriptorPath := filepath.Join(entryPath, skillFileName)
		if _, err := os.Stat(descriptorPath); err != nil {
			continue
		}

		found = append(found, Skill{
			Name:        entry.Name(),
			Path:        entryPath,
			Description: loadDescription(descriptorPath),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})

	return found, nil
}

// GetSkill returns a specific skill by its directory name
func (d *Discovery) GetSkill(name string) (Skill, error) {
	all, err := d.ListSkills()
	if err != nil {
		return Skill{}, err
	}

	for _, skill := range all {
		if skill.Name == name {
			return skill, nil
		}
	}

	return Skill{}, errors.Errorf("skill '%s' not found in %s", name, d.sourceDir)
}

// loadDescription extracts the description from SKILL.md frontmatter.
// The descriptor's presence alone makes a directory a skill; missing or
// malformed frontmatter just leaves the description empty.
func loadDescription(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return ""
	}

	description, _ := metaData["description"].(string)
	return description
}
