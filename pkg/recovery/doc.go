// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package recovery sequences a recovery-mode session: resolve the requested
// action from argv, the boot record, or the one-shot command file; arm the
// boot record so a crash resumes the same action; run the action; finish by
// relaying results to the main system and clearing the armed record; reboot.
//
// The main system talks to this tool through files on the cache partition:
//
//	CACHE:recovery/command - INPUT  - command line, one arg per line
//	CACHE:recovery/log     - OUTPUT - combined log of recovery runs
//	CACHE:recovery/intent  - OUTPUT - intent string passed in
//
// Every scenario must be safely restartable at any point. The boot record is
// armed before any destructive action begins and zeroed only by Finish, once
// the action's effects are durable; until then any reboot lands back here and
// resumes the identical action.
package recovery
