package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillctl/skillctl/pkg/linker"
	"github.com/skillctl/skillctl/pkg/presenter"
	"github.com/skillctl/skillctl/pkg/tui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Interactively select which skills should be installed",
	Long: `Open an interactive screen seeded with the current installation status.
Toggle skills on or off, then apply to install and uninstall whatever
changed. Cancelling leaves the filesystem untouched.

This is also what runs when skillctl is invoked without arguments.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(ctx context.Context) error {
	discovery, err := newDiscovery()
	if err != nil {
		return err
	}

	list, err := discovery.ListSkills()
	if err != nil {
		return err
	}

	lnk, err := newLinker()
	if err != nil {
		return err
	}

	// Surface a symlinked target directory before opening the screen
	if err := lnk.EnsureTargetDir(); err != nil {
		return err
	}

	installed := make(map[string]bool, len(list))
	for _, skill := range list {
		installed[skill.Name] = lnk.IsInstalled(skill)
	}

	changes, applied, err := tui.Run(list, installed)
	if err != nil {
		return err
	}

	if !applied {
		presenter.Info("Cancelled, no changes made")
		return nil
	}

	if len(changes) == 0 {
		presenter.Info("No changes selected")
		return nil
	}

	var toInstall, toRemove []string
	for _, change := range changes {
		if change.Install {
			toInstall = append(toInstall, change.Skill.Name)
		} else {
			toRemove = append(toRemove, change.Skill.Name)
		}
	}

	var res linker.Result
	if len(toInstall) > 0 {
		r, err := lnk.InstallNamed(ctx, list, toInstall, false, reportEvent)
		if err != nil {
			return err
		}
		res.Merge(r)
	}
	if len(toRemove) > 0 {
		r, err := lnk.UninstallNamed(ctx, list, toRemove, reportEvent)
		if err != nil {
			return err
		}
		res.Merge(r)
	}

	presenter.Info(res.Summary())
	if res.Failed() {
		return errors.Errorf("%d skill(s) could not be updated", res.Errors)
	}
	return nil
}
