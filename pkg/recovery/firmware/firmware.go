// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package firmware hands a staged firmware image off to the boot loader. The
// boot loader cannot read a filesystem, so the image is written raw into the
// cache partition and the boot record told where to look; the boot loader
// flashes it on the next boot, then cache is reformatted. Each step of the
// chain is independently resumable because the boot record always describes
// what still needs to happen.
package firmware

import (
	"fmt"
	"strings"

	"github.com/packetlss/amonra-bootable-recovery/pkg/bcb"
	"github.com/packetlss/amonra-bootable-recovery/pkg/flash"
	"github.com/packetlss/amonra-bootable-recovery/pkg/log"
	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"

	"gopkg.in/yaml.v3"
)

// Descriptor is where an installed package stages a firmware update.
const Descriptor = "CACHE:recovery/firmware-update.yaml"

// Update describes a staged firmware payload.
type Update struct {
	// Type is what the boot loader should flash: hboot or radio.
	Type string `yaml:"type"`
	// Image is the payload, root-prefixed or a plain filesystem path.
	Image string `yaml:"image"`
}

// CheckStaged reports whether an installed package left a firmware update
// behind. A malformed descriptor is logged and ignored - better to boot the
// main system than to loop on garbage.
func CheckStaged(t *roots.Table) (Update, bool) {
	var upd Update
	f, err := t.Open(Descriptor)
	if err != nil {
		return upd, false
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&upd); err != nil {
		log.Logf("bad firmware descriptor: %s", err)
		return upd, false
	}
	if upd.Type != "hboot" && upd.Type != "radio" {
		log.Logf("unknown firmware type %q, ignoring update", upd.Type)
		return upd, false
	}
	if upd.Image == "" {
		log.Logf("firmware descriptor names no image, ignoring")
		return upd, false
	}
	if strings.ContainsRune(upd.Image, ':') {
		if err := t.EnsureMounted(upd.Image); err != nil {
			log.Logf("mounting %s: %s", upd.Image, err)
			return upd, false
		}
		upd.Image, err = t.Resolve(upd.Image)
		if err != nil {
			log.Logf("resolving firmware image: %s", err)
			return upd, false
		}
	}
	return upd, true
}

// CachePartition locates the raw flash partition behind the CACHE root.
func CachePartition(t *roots.Table) (flash.Partition, error) {
	r, ok := t.Lookup("CACHE")
	if !ok || r.RawPartition == "" {
		return nil, fmt.Errorf("no raw partition configured for CACHE")
	}
	return flash.FindPartition(r.RawPartition)
}

// Install runs the handoff chain. Boot record states, in order:
//
//  1. boot-recovery + --wipe_cache: rebooting reformats cache and restarts
//     the main system (the image write below may have half-filled cache)
//  2. image written raw into the cache partition
//  3. update-<type> + --wipe_cache: rebooting flashes the firmware, then the
//     boot loader rewrites the record back to state 1
//
// The caller must reboot on success without clearing the record; clearing it
// would orphan the staged image.
func Install(upd Update, st bcb.Store, p flash.Partition, t *roots.Table) error {
	log.Msgf("Writing %s firmware image to %s...", upd.Type, p.Name())
	if err := st.Write(bcb.Armed([]string{"--wipe_cache"})); err != nil {
		return fmt.Errorf("arming cache wipe: %w", err)
	}
	if err := flash.Program(upd.Image, p, false); err != nil {
		return fmt.Errorf("writing firmware image: %w", err)
	}
	var rec bcb.Record
	rec.SetCommand("update-" + upd.Type)
	rec.SetRecoveryArgs([]string{"--wipe_cache"})
	if err := st.Write(rec); err != nil {
		return fmt.Errorf("requesting firmware flash: %w", err)
	}
	// gone either way once cache is wiped, but don't leave it to chance
	if err := t.Remove(Descriptor); err != nil {
		log.Logf("removing %s: %s", Descriptor, err)
	}
	return nil
}
