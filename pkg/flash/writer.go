// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package flash

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
)

// HeaderSize is how much of the image start is treated as the partition's
// self-description: compared for the skip check, zeroed during the body pass,
// written last.
const HeaderSize = 2048

// Program writes an image file into a partition.
//
// The partition's header is what the boot loader inspects to decide whether
// the partition holds a valid, complete image. The body is therefore written
// under a zeroed header first, and the real header only in a final pass over
// the first flash block. An interruption at any point leaves the header
// either zeroed or unchanged from the prior image; the boot loader will not
// trust an incomplete body, and rerunning Program redoes the full sequence.
//
// If the partition's current prefix already equals the image's, nothing is
// written at all.
//
// Any failure is returned to the caller with no partial-success state; retry
// policy (reboot and rerun) belongs to the caller.
func Program(image string, p Partition, deleteOnSuccess bool) error {
	src, err := OpenImage(image)
	if err != nil {
		return fmt.Errorf("opening %s: %w", image, err)
	}
	defer src.Close()

	header := make([]byte, HeaderSize)
	if _, err = io.ReadFull(src, header); err != nil {
		return fmt.Errorf("reading %s header: %w", image, err)
	}

	if headerMatches(p, header) {
		log.Logf("header is the same, not flashing %s", p.Name())
		if deleteOnSuccess {
			if err := os.Remove(image); err != nil {
				log.Logf("removing %s: %s", image, err)
			}
		}
		return nil
	}

	log.Logf("flashing %s from %s", p.Name(), image)

	// Skip the header (we'll come back to it), write everything else.
	out, err := p.OpenWrite()
	if err != nil {
		return fmt.Errorf("writing %s: %w", p.Name(), err)
	}
	if _, err = out.Write(make([]byte, HeaderSize)); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", p.Name(), err)
	}
	if _, err = io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("writing %s body: %w", p.Name(), err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", p.Name(), err)
	}

	// Now come back and write the header last. The whole first flash block
	// must be rewritten as one contiguous pass, so follow the header with
	// the rest of that block.
	out, err = p.OpenWrite()
	if err != nil {
		return fmt.Errorf("re-opening %s: %w", p.Name(), err)
	}
	if _, err = out.Write(header); err != nil {
		out.Close()
		return fmt.Errorf("re-writing %s header: %w", p.Name(), err)
	}
	if _, err = src.Seek(HeaderSize, io.SeekStart); err != nil {
		out.Close()
		return fmt.Errorf("rewinding %s: %w", image, err)
	}
	left := p.BlockSize() - HeaderSize
	for left < 0 {
		left += p.BlockSize()
	}
	if left > 0 {
		if _, err = io.CopyN(out, src, left); err != nil {
			out.Close()
			return fmt.Errorf("padding first block of %s: %w", p.Name(), err)
		}
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", p.Name(), err)
	}

	if deleteOnSuccess {
		if err := os.Remove(image); err != nil {
			log.Logf("removing %s: %s", image, err)
		}
	}
	return nil
}

// headerMatches compares the partition's current prefix to the image header.
// Any read failure means "assume a rewrite is needed" - a retry must never be
// blocked by an unreadable partition.
func headerMatches(p Partition, header []byte) bool {
	in, err := p.OpenRead()
	if err != nil {
		log.Logf("error opening %s: %s", p.Name(), err)
		return false
	}
	defer in.Close()
	check := make([]byte, len(header))
	n, err := io.ReadFull(in, check)
	if n != len(header) {
		log.Logf("error reading %s: %s", p.Name(), err)
		return false
	}
	return bytes.Equal(header, check)
}
