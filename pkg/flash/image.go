// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package flash

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/fileutil"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"

	"github.com/ulikunitz/xz"
)

// OpenImage opens an image file as a seekable stream. An xz-compressed image
// is decompressed into an unlinked scratch file, since the programmer needs
// to seek back to just past the header for its second pass.
func OpenImage(path string) (io.ReadSeekCloser, error) {
	if !fileutil.IsXZ(path) {
		return os.Open(path)
	}
	log.Logf("decompressing %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	xr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("xz %s: %w", path, err)
	}
	tmp, err := os.CreateTemp("", "flashimg")
	if err != nil {
		return nil, err
	}
	// unlink immediately - the fd keeps it alive, nothing can leak
	os.Remove(tmp.Name())
	if _, err = io.Copy(tmp, xr); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	if _, err = tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}
