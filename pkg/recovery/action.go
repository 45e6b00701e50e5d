// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"

	"github.com/google/shlex"
)

// Actions are the external collaborators that do the actual destructive work.
// Each call is synchronous and returns a final result. Wipes must be
// idempotent: a crash mid-wipe re-arms and re-runs the same wipe.
type Actions interface {
	Install(pkgPath string) error
	WipeData() error
	WipeCache() error
	RunTool(cmdline string) error
}

// ExecActions shells out to configured command lines. Lines are split
// shell-style but no shell is involved.
type ExecActions struct {
	InstallCmd   string
	WipeDataCmd  string
	WipeCacheCmd string
}

var _ Actions = ExecActions{}

func NewExecActions(c Commands) ExecActions {
	return ExecActions{
		InstallCmd:   c.Install,
		WipeDataCmd:  c.WipeData,
		WipeCacheCmd: c.WipeCache,
	}
}

// Install runs the package installer with the package path appended.
func (a ExecActions) Install(pkgPath string) error { return a.run(a.InstallCmd, pkgPath) }
func (a ExecActions) WipeData() error              { return a.run(a.WipeDataCmd) }
func (a ExecActions) WipeCache() error             { return a.run(a.WipeCacheCmd) }

// RunTool runs an arbitrary configured command line.
func (a ExecActions) RunTool(cmdline string) error { return a.run(cmdline) }

func (a ExecActions) run(cmdline string, extra ...string) error {
	if cmdline == "" {
		return errors.New("no command configured")
	}
	argv, err := shlex.Split(cmdline)
	if err != nil || len(argv) == 0 {
		return fmt.Errorf("bad command line %q: %v", cmdline, err)
	}
	argv = append(argv, extra...)
	log.Logf("exec: %q", argv)
	out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
	if len(out) > 0 {
		log.Logf("%s output:\n%s", argv[0], out)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
