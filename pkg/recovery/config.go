// Copyright (C) 2026 the amonra-bootable-recovery Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package recovery

import (
	"fmt"
	"os"

	"github.com/packetlss/amonra-bootable-recovery/pkg/roots"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the recovery image ships its config.
const DefaultConfigPath = "/etc/recovery.yaml"

// Commands are the external action command lines; the package path is
// appended to Install at run time.
type Commands struct {
	Install   string `yaml:"install"`
	WipeData  string `yaml:"wipe_data"`
	WipeCache string `yaml:"wipe_cache"`
}

// Config adapts the tool to a device. Anything unset falls back to the
// built-in defaults, so a missing file is a working configuration.
type Config struct {
	Misc struct {
		Path   string `yaml:"path"`
		Offset int64  `yaml:"offset"`
	} `yaml:"misc"`
	TmpLog   string                `yaml:"tmplog"`
	Roots    map[string]roots.Root `yaml:"roots"`
	Commands Commands              `yaml:"commands"`
}

func DefaultConfig() *Config {
	c := &Config{}
	c.Misc.Path = "/dev/block/mtdblock0"
	c.TmpLog = DefaultTmpLog
	c.Commands = Commands{
		Install:   "/sbin/install_package",
		WipeData:  "/sbin/format_root DATA:",
		WipeCache: "/sbin/format_root CACHE:",
	}
	return c
}

// LoadConfig reads a device config; an absent file means defaults.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.TmpLog == "" {
		c.TmpLog = DefaultTmpLog
	}
	return c, nil
}
