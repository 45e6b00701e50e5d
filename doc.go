// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Recovery-mode tooling for flash-based devices: a crash-safe orchestrator
// that resolves, arms, runs, and reports destructive maintenance actions
// (package install, data/cache wipe, firmware handoff), and a standalone
// atomic flash-partition programmer.
//
// See cmd/recovery and cmd/flash_image for the entry points, pkg/recovery for
// the session state machine, and pkg/flash for the programmer.
package amonra
