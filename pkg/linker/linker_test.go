package linker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillctl/skillctl/pkg/skills"
)

func newTestLinker(t *testing.T) (*Linker, string) {
	t.Helper()
	targetDir := filepath.Join(t.TempDir(), "skills")
	lnk, err := New(WithTargetDir(targetDir))
	require.NoError(t, err)
	require.NoError(t, lnk.EnsureTargetDir())
	return lnk, targetDir
}

func makeSkill(t *testing.T, name string) skills.Skill {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte("# "+name+"\n"), 0o644))
	return skills.Skill{Name: name, Path: dir}
}

func TestResolve(t *testing.T) {
	lnk, targetDir := newTestLinker(t)
	skill := makeSkill(t, "alpha")
	ctx := context.Background()

	t.Run("not installed", func(t *testing.T) {
		assert.Equal(t, StatusNotInstalled, lnk.Resolve(skill))
		assert.False(t, lnk.IsInstalled(skill))
	})

	t.Run("installed", func(t *testing.T) {
		outcome, err := lnk.Install(ctx, skill, false)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInstalled, outcome)

		assert.Equal(t, StatusInstalled, lnk.Resolve(skill))
		assert.True(t, lnk.IsInstalled(skill))

		_, err = lnk.Uninstall(ctx, skill)
		require.NoError(t, err)
	})

	t.Run("occupied by file", func(t *testing.T) {
		target := filepath.Join(targetDir, skill.Name)
		require.NoError(t, os.WriteFile(target, []byte("foreign"), 0o644))
		defer os.Remove(target)

		assert.Equal(t, StatusOccupied, lnk.Resolve(skill))
	})

	t.Run("occupied by foreign symlink", func(t *testing.T) {
		other := t.TempDir()
		target := filepath.Join(targetDir, skill.Name)
		require.NoError(t, os.Symlink(other, target))
		defer os.Remove(target)

		assert.Equal(t, StatusOccupied, lnk.Resolve(skill))
	})

	t.Run("occupied by broken symlink", func(t *testing.T) {
		target := filepath.Join(targetDir, skill.Name)
		require.NoError(t, os.Symlink("/non/existent/path", target))
		defer os.Remove(target)

		assert.Equal(t, StatusOccupied, lnk.Resolve(skill))
	})
}

func TestInstall(t *testing.T) {
	ctx := context.Background()

	t.Run("creates symlink", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		outcome, err := lnk.Install(ctx, skill, false)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInstalled, outcome)

		dest, err := os.Readlink(filepath.Join(targetDir, "alpha"))
		require.NoError(t, err)
		assert.Equal(t, skill.Path, dest)
	})

	t.Run("idempotent", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		_, err := lnk.Install(ctx, skill, false)
		require.NoError(t, err)

		outcome, err := lnk.Install(ctx, skill, false)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyInstalled, outcome)

		dest, err := os.Readlink(filepath.Join(targetDir, "alpha"))
		require.NoError(t, err)
		assert.Equal(t, skill.Path, dest)
	})

	t.Run("missing source", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := skills.Skill{Name: "ghost", Path: filepath.Join(t.TempDir(), "ghost")}

		outcome, err := lnk.Install(ctx, skill, false)
		assert.Equal(t, OutcomeFailed, outcome)
		assert.ErrorIs(t, err, ErrSkillNotFound)

		_, err = os.Lstat(filepath.Join(targetDir, "ghost"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("occupied without force", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		target := filepath.Join(targetDir, "alpha")
		require.NoError(t, os.WriteFile(target, []byte("foreign"), 0o644))

		outcome, err := lnk.Install(ctx, skill, false)
		assert.Equal(t, OutcomeFailed, outcome)
		assert.ErrorIs(t, err, ErrTargetExists)

		// Foreign occupant untouched
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "foreign", string(content))
	})

	t.Run("occupied with force", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		target := filepath.Join(targetDir, "alpha")
		require.NoError(t, os.WriteFile(target, []byte("foreign"), 0o644))

		outcome, err := lnk.Install(ctx, skill, true)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInstalled, outcome)

		dest, err := os.Readlink(target)
		require.NoError(t, err)
		assert.Equal(t, skill.Path, dest)
	})

	t.Run("force replaces foreign directory", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		target := filepath.Join(targetDir, "alpha")
		require.NoError(t, os.MkdirAll(filepath.Join(target, "nested"), 0o755))

		outcome, err := lnk.Install(ctx, skill, true)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInstalled, outcome)

		dest, err := os.Readlink(target)
		require.NoError(t, err)
		assert.Equal(t, skill.Path, dest)
	})
}

func TestUninstall(t *testing.T) {
	ctx := context.Background()

	t.Run("removes owned link", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		_, err := lnk.Install(ctx, skill, false)
		require.NoError(t, err)

		outcome, err := lnk.Uninstall(ctx, skill)
		require.NoError(t, err)
		assert.Equal(t, OutcomeRemoved, outcome)

		_, err = os.Lstat(filepath.Join(targetDir, "alpha"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("leaves foreign symlink", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		other := t.TempDir()
		target := filepath.Join(targetDir, "alpha")
		require.NoError(t, os.Symlink(other, target))

		outcome, err := lnk.Uninstall(ctx, skill)
		require.NoError(t, err)
		assert.Equal(t, OutcomeForeignLink, outcome)

		dest, err := os.Readlink(target)
		require.NoError(t, err)
		assert.Equal(t, other, dest)
	})

	t.Run("leaves real directory", func(t *testing.T) {
		lnk, targetDir := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		target := filepath.Join(targetDir, "alpha")
		require.NoError(t, os.MkdirAll(target, 0o755))

		outcome, err := lnk.Uninstall(ctx, skill)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotSymlink, outcome)

		fi, err := os.Lstat(target)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	})

	t.Run("absent target", func(t *testing.T) {
		lnk, _ := newTestLinker(t)
		skill := makeSkill(t, "alpha")

		outcome, err := lnk.Uninstall(ctx, skill)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotInstalled, outcome)
	})
}

func TestInstallUninstallRoundTrip(t *testing.T) {
	ctx := context.Background()
	lnk, targetDir := newTestLinker(t)
	skill := makeSkill(t, "alpha")

	_, err := lnk.Install(ctx, skill, false)
	require.NoError(t, err)

	_, err = lnk.Uninstall(ctx, skill)
	require.NoError(t, err)

	_, err = os.Lstat(filepath.Join(targetDir, "alpha"))
	assert.True(t, os.IsNotExist(err), "round trip should restore the target to absent")
}

func TestEnsureTargetDir(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		targetDir := filepath.Join(t.TempDir(), "deep", "nested", "skills")
		lnk, err := New(WithTargetDir(targetDir))
		require.NoError(t, err)

		require.NoError(t, lnk.EnsureTargetDir())
		fi, err := os.Stat(targetDir)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())

		// Idempotent
		require.NoError(t, lnk.EnsureTargetDir())
	})

	t.Run("symlinked target directory is fatal", func(t *testing.T) {
		tmpDir := t.TempDir()
		realDir := filepath.Join(tmpDir, "real")
		require.NoError(t, os.MkdirAll(realDir, 0o755))
		linkDir := filepath.Join(tmpDir, "skills")
		require.NoError(t, os.Symlink(realDir, linkDir))

		lnk, err := New(WithTargetDir(linkDir))
		require.NoError(t, err)

		err = lnk.EnsureTargetDir()
		assert.ErrorIs(t, err, ErrTargetIsSymlink)
	})
}

func TestInstallAll(t *testing.T) {
	ctx := context.Background()
	lnk, targetDir := newTestLinker(t)

	alpha := makeSkill(t, "alpha")
	beta := makeSkill(t, "beta")
	list := []skills.Skill{alpha, beta}

	res, err := lnk.InstallAll(ctx, list, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Installed)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Errors)

	// Second run skips everything
	res, err = lnk.InstallAll(ctx, list, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Installed)
	assert.Equal(t, 2, res.Skipped)

	for _, skill := range list {
		dest, err := os.Readlink(filepath.Join(targetDir, skill.Name))
		require.NoError(t, err)
		assert.Equal(t, skill.Path, dest)
	}
}

func TestInstallAllContinuesOnError(t *testing.T) {
	ctx := context.Background()
	lnk, targetDir := newTestLinker(t)

	alpha := makeSkill(t, "alpha")
	beta := makeSkill(t, "beta")

	// Occupy beta's target with a foreign file
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "beta"), []byte("foreign"), 0o644))

	var events []Event
	res, err := lnk.InstallAll(ctx, []skills.Skill{alpha, beta}, false, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Installed)
	assert.Equal(t, 1, res.Errors)
	assert.True(t, res.Failed())

	require.Len(t, events, 2)
	assert.Equal(t, OutcomeInstalled, events[0].Outcome)
	assert.Equal(t, OutcomeFailed, events[1].Outcome)
	assert.ErrorIs(t, events[1].Err, ErrTargetExists)

	// alpha still got installed despite beta failing
	assert.True(t, lnk.IsInstalled(alpha))
}

func TestInstallNamed(t *testing.T) {
	ctx := context.Background()
	lnk, _ := newTestLinker(t)

	alpha := makeSkill(t, "alpha")
	list := []skills.Skill{alpha}

	t.Run("empty names is fatal", func(t *testing.T) {
		_, err := lnk.InstallNamed(ctx, list, nil, false, nil)
		assert.ErrorIs(t, err, ErrNoSkillsSpecified)
	})

	t.Run("unknown name counts as error", func(t *testing.T) {
		res, err := lnk.InstallNamed(ctx, list, []string{"alpha", "ghost"}, false, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Installed)
		assert.Equal(t, 1, res.Errors)
	})
}

func TestUninstallAll(t *testing.T) {
	ctx := context.Background()
	lnk, targetDir := newTestLinker(t)

	alpha := makeSkill(t, "alpha")
	beta := makeSkill(t, "beta")
	list := []skills.Skill{alpha, beta}

	_, err := lnk.InstallAll(ctx, list, false, nil)
	require.NoError(t, err)

	// Replace beta's link with a foreign one to prove ownership safety
	betaTarget := filepath.Join(targetDir, "beta")
	require.NoError(t, os.Remove(betaTarget))
	other := t.TempDir()
	require.NoError(t, os.Symlink(other, betaTarget))

	res, err := lnk.UninstallAll(ctx, list, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Errors)

	// Foreign link survived
	dest, err := os.Readlink(betaTarget)
	require.NoError(t, err)
	assert.Equal(t, other, dest)
}

func TestUninstallNamed(t *testing.T) {
	ctx := context.Background()
	lnk, _ := newTestLinker(t)

	alpha := makeSkill(t, "alpha")
	list := []skills.Skill{alpha}

	t.Run("empty names is fatal", func(t *testing.T) {
		_, err := lnk.UninstallNamed(ctx, list, nil, nil)
		assert.ErrorIs(t, err, ErrNoSkillsSpecified)
	})

	t.Run("not installed counts as skipped", func(t *testing.T) {
		res, err := lnk.UninstallNamed(ctx, list, []string{"alpha"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Removed)
		assert.Equal(t, 1, res.Skipped)
	})
}

func TestBatchAbortsOnSymlinkedTargetDir(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	realDir := filepath.Join(tmpDir, "real")
	require.NoError(t, os.MkdirAll(realDir, 0o755))
	linkDir := filepath.Join(tmpDir, "skills")
	require.NoError(t, os.Symlink(realDir, linkDir))

	lnk, err := New(WithTargetDir(linkDir))
	require.NoError(t, err)

	alpha := makeSkill(t, "alpha")

	res, err := lnk.InstallAll(ctx, []skills.Skill{alpha}, false, nil)
	assert.ErrorIs(t, err, ErrTargetIsSymlink)
	assert.Equal(t, Result{}, res)

	// No mutation happened behind the symlink
	entries, err := os.ReadDir(realDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultTargetDir(t *testing.T) {
	lnk, err := New()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".claude", "skills"), lnk.TargetDir())
}

func TestResult(t *testing.T) {
	t.Run("merge", func(t *testing.T) {
		a := Result{Installed: 1, Skipped: 2}
		b := Result{Removed: 3, Errors: 1}
		a.Merge(b)
		assert.Equal(t, Result{Installed: 1, Removed: 3, Skipped: 2, Errors: 1}, a)
	})

	t.Run("summary", func(t *testing.T) {
		res := Result{Installed: 1, Removed: 2, Skipped: 3, Errors: 4}
		assert.Equal(t, "1 installed, 2 removed, 3 skipped, 4 errors", res.Summary())
	})

	t.Run("failed", func(t *testing.T) {
		assert.False(t, Result{}.Failed())
		assert.True(t, Result{Errors: 1}.Failed())
	})
}

func TestSentinelWrapping(t *testing.T) {
	wrapped := errors.Wrapf(ErrTargetExists, "some/path")
	assert.ErrorIs(t, wrapped, ErrTargetExists)
}
