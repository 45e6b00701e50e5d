// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package roots

import (
	"os"

	"github.com/u-root/u-root/pkg/mount"
)

// UrootMounter backs a Table with real mount(2) calls.
type UrootMounter struct{}

var _ Mounter = UrootMounter{}

func (UrootMounter) Mount(dev, path, fstype, opts string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}
	_, err := mount.Mount(dev, path, fstype, opts, 0)
	return err
}

func (UrootMounter) Unmount(path string) error {
	return mount.Unmount(path, false, false)
}
