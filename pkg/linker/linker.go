// Package linker creates and removes the symbolic links that install
// skills into the host application's skills directory. It owns the
// installation status model and the safety rules around link ownership:
// only links that point back into the source repository are ever removed.
package linker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/skillctl/skillctl/pkg/logger"
	"github.com/skillctl/skillctl/pkg/skills"
)

// Sentinel errors for the conditions callers dispatch on
var (
	// ErrSkillNotFound indicates the requested skill has no source directory
	ErrSkillNotFound = errors.New("skill not found")
	// ErrTargetExists indicates the target path is occupied by an entry not
	// owned by this repository and force was not given
	ErrTargetExists = errors.New("target already exists")
	// ErrTargetIsSymlink indicates the target directory itself is a symbolic
	// link. This is fatal: mutating through it risks corrupting whatever
	// structure the link points at.
	ErrTargetIsSymlink = errors.New("target directory is a symbolic link")
	// ErrNoSkillsSpecified indicates a named batch operation got an empty list
	ErrNoSkillsSpecified = errors.New("no skills specified")
)

// Status classifies the target path of a single skill
type Status int

const (
	// StatusNotInstalled means nothing occupies the target path
	StatusNotInstalled Status = iota
	// StatusInstalled means the target is a symlink pointing at the skill's
	// source directory
	StatusInstalled
	// StatusOccupied means something else occupies the target path: a real
	// file or directory, or a symlink pointing elsewhere (broken included)
	StatusOccupied
)

// String returns a human-readable status label
func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusOccupied:
		return "conflict"
	default:
		return "not installed"
	}
}

// Linker installs and uninstalls skills by managing symlinks in the
// target directory
type Linker struct {
	targetDir string
}

// Option is a function that configures a Linker
type Option func(*Linker) error

// WithTargetDir sets a custom target directory
func WithTargetDir(dir string) Option {
	return func(l *Linker) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve target directory %q", dir)
		}
		l.targetDir = abs
		return nil
	}
}

// New creates a Linker. The default target is ~/.claude/skills.
func New(opts ...Option) (*Linker, error) {
	l := &Linker{}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	if l.targetDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get user home directory")
		}
		l.targetDir = filepath.Join(homeDir, ".claude", "skills")
	}

	return l, nil
}

// TargetDir returns the directory links are created in
func (l *Linker) TargetDir() string {
	return l.targetDir
}

// TargetPath returns the link path for a skill
func (l *Linker) TargetPath(skill skills.Skill) string {
	return filepath.Join(l.targetDir, skill.Name)
}

// Resolve classifies the target path of a skill. It is side-effect-free.
// Ownership is decided by exact string comparison of the link value
// against the skill's source path; a symlink that resolves anywhere else
// counts as occupied, never as installed.
func (l *Linker) Resolve(skill skills.Skill) Status {
	target := l.TargetPath(skill)

	fi, err := os.Lstat(target)
	if err != nil {
		return StatusNotInstalled
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		dest, err := os.Readlink(target)
		if err == nil && dest == skill.Path {
			return StatusInstalled
		}
	}

	return StatusOccupied
}

// IsInstalled reports whether the skill is installed by this repository
func (l *Linker) IsInstalled(skill skills.Skill) bool {
	return l.Resolve(skill) == StatusInstalled
}

// EnsureTargetDir creates the target directory (and parents) if missing.
// It fails with ErrTargetIsSymlink if the target directory path itself is
// a symbolic link; batch operations call this before touching any skill.
func (l *Linker) EnsureTargetDir() error {
	fi, err := os.Lstat(l.targetDir)
	if err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return errors.Wrapf(ErrTargetIsSymlink, "%s", l.targetDir)
	}

	if err := os.MkdirAll(l.targetDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create target directory %s", l.targetDir)
	}

	return nil
}

// Install links a single skill into the target directory. Already
// installed skills are a no-op reported as skipped. An occupied target is
// an error unless force is set, in which case the occupant is removed and
// replaced.
func (l *Linker) Install(ctx context.Context, skill skills.Skill, force bool) (Outcome, error) {
	log := logger.G(ctx).WithFields(map[string]interface{}{
		"skill":  skill.Name,
		"target": l.TargetPath(skill),
	})

	if _, err := os.Stat(skill.Path); err != nil {
		log.WithError(err).Warn("skill source directory missing")
		return OutcomeFailed, errors.Wrapf(ErrSkillNotFound, "%s", skill.Name)
	}

	target := l.TargetPath(skill)

	switch l.Resolve(skill) {
	case StatusInstalled:
		log.Debug("skill already installed")
		return OutcomeAlreadyInstalled, nil
	case StatusOccupied:
		if !force {
			log.Warn("target path occupied")
			return OutcomeFailed, errors.Wrapf(ErrTargetExists, "%s", target)
		}
		if err := os.RemoveAll(target); err != nil {
			log.WithError(err).Error("failed to remove occupant")
			return OutcomeFailed, errors.Wrapf(err, "failed to remove %s", target)
		}
		log.Info("removed existing occupant")
	}

	if err := os.Symlink(skill.Path, target); err != nil {
		log.WithError(err).Error("failed to create symlink")
		return OutcomeFailed, errors.Wrapf(err, "failed to link %s", skill.Name)
	}

	log.Info("skill installed")
	return OutcomeInstalled, nil
}

// Uninstall removes the symlink for a single skill. It never deletes a
// target it does not own: non-symlink entries and symlinks pointing
// outside the source repository are left untouched and reported as
// skipped.
func (l *Linker) Uninstall(ctx context.Context, skill skills.Skill) (Outcome, error) {
	target := l.TargetPath(skill)
	log := logger.G(ctx).WithFields(map[string]interface{}{
		"skill":  skill.Name,
		"target": target,
	})

	fi, err := os.Lstat(target)
	if err != nil {
		log.Debug("skill not installed")
		return OutcomeNotInstalled, nil
	}

	if fi.Mode()&os.ModeSymlink == 0 {
		log.Warn("target is not a symlink, leaving it alone")
		return OutcomeNotSymlink, nil
	}

	dest, err := os.Readlink(target)
	if err != nil || dest != skill.Path {
		log.WithField("dest", dest).Warn("symlink points elsewhere, leaving it alone")
		return OutcomeForeignLink, nil
	}

	if err := os.Remove(target); err != nil {
		log.WithError(err).Error("failed to remove symlink")
		return OutcomeFailed, errors.Wrapf(err, "failed to unlink %s", skill.Name)
	}

	log.Info("skill uninstalled")
	return OutcomeRemoved, nil
}

// InstallAll installs every skill in the list. Per-skill failures are
// counted and the batch continues.
func (l *Linker) InstallAll(ctx context.Context, list []skills.Skill, force bool, notify EventFunc) (Result, error) {
	if err := l.EnsureTargetDir(); err != nil {
		return Result{}, err
	}

	var res Result
	for _, skill := range list {
		outcome, err := l.Install(ctx, skill, force)
		res.record(outcome, err)
		emit(notify, skill, outcome, err)
	}

	return res, nil
}

// InstallNamed installs the named skills from the list. Names with no
// matching skill are counted as errors; the batch continues.
func (l *Linker) InstallNamed(ctx context.Context, list []skills.Skill, names []string, force bool, notify EventFunc) (Result, error) {
	if len(names) == 0 {
		return Result{}, ErrNoSkillsSpecified
	}

	if err := l.EnsureTargetDir(); err != nil {
		return Result{}, err
	}

	byName := make(map[string]skills.Skill, len(list))
	for _, skill := range list {
		byName[skill.Name] = skill
	}

	var res Result
	for _, name := range names {
		skill, ok := byName[name]
		if !ok {
			err := errors.Wrapf(ErrSkillNotFound, "%s", name)
			res.record(OutcomeFailed, err)
			emit(notify, skills.Skill{Name: name}, OutcomeFailed, err)
			continue
		}

		outcome, err := l.Install(ctx, skill, force)
		res.record(outcome, err)
		emit(notify, skill, outcome, err)
	}

	return res, nil
}

// UninstallAll removes every link in the list that this repository owns
func (l *Linker) UninstallAll(ctx context.Context, list []skills.Skill, notify EventFunc) (Result, error) {
	if err := l.EnsureTargetDir(); err != nil {
		return Result{}, err
	}

	var res Result
	for _, skill := range list {
		outcome, err := l.Uninstall(ctx, skill)
		res.record(outcome, err)
		emit(notify, skill, outcome, err)
	}

	return res, nil
}

// UninstallNamed removes the named skills from the list
func (l *Linker) UninstallNamed(ctx context.Context, list []skills.Skill, names []string, notify EventFunc) (Result, error) {
	if len(names) == 0 {
		return Result{}, ErrNoSkillsSpecified
	}

	if err := l.EnsureTargetDir(); err != nil {
		return Result{}, err
	}

	byName := make(map[string]skills.Skill, len(list))
	for _, skill := range list {
		byName[skill.Name] = skill
	}

	var res Result
	for _, name := range names {
		skill, ok := byName[name]
		if !ok {
			err := errors.Wrapf(ErrSkillNotFound, "%s", name)
			res.record(OutcomeFailed, err)
			emit(notify, skills.Skill{Name: name}, OutcomeFailed, err)
			continue
		}

		outcome, err := l.Uninstall(ctx, skill)
		res.record(outcome, err)
		emit(notify, skill, outcome, err)
	}

	return res, nil
}

func emit(notify EventFunc, skill skills.Skill, outcome Outcome, err error) {
	if notify == nil {
		return
	}
	notify(Event{Skill: skill, Outcome: outcome, Err: err})
}
