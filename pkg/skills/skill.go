// Package skills discovers skill directories in a source repository.
// A skill is any immediate subdirectory of the source root that contains
// a SKILL.md descriptor file. The descriptor may carry YAML frontmatter
// with a description that is surfaced in listings.
package skills

// Skill represents a discovered skill directory
type Skill struct {
	Name        string // Directory base name, unique within the source root
	Path        string // Absolute path to the skill directory
	Description string // Optional description from SKILL.md frontmatter
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
