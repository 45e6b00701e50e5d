// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package flash

import (
	"io"
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/hw/ioctl"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
)

// BlockDev is a Partition over an arbitrary block device node, for targets
// that are not in the mtd table (emmc and friends). Block size comes from the
// BLKSSZGET ioctl.
type BlockDev struct {
	DevName string
	Path    string
}

var _ Partition = BlockDev{}

func (b BlockDev) Name() string { return b.DevName }

func (b BlockDev) BlockSize() int64 {
	f, err := os.Open(b.Path)
	if err != nil {
		log.Logf("open %s for BLKSSZGET: %s", b.Path, err)
		return 512
	}
	defer f.Close()
	s, err := ioctl.BlkGetSectorSize(f)
	if err != nil || s == 0 {
		log.Logf("ioctl BLKSSZGET error %s for %s", err, b.Path)
		return 512
	}
	return int64(s)
}

func (b BlockDev) OpenRead() (io.ReadCloser, error) {
	return os.Open(b.Path)
}

func (b BlockDev) OpenWrite() (io.WriteCloser, error) {
	f, err := os.OpenFile(b.Path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &syncOnClose{f: f}, nil
}
