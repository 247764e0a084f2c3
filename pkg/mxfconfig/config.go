// Package mxfconfig loads the writer/reader flavour and profile settings
// that modulate label choice, fill keys, and partition layout, from YAML.
package mxfconfig

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Flavour selects the wrapping conventions a writer targets.
type Flavour string

// Supported flavours.
const (
	FlavourSMPTE Flavour = "SMPTE"
	FlavourAvid  Flavour = "Avid"
	FlavourAS02  Flavour = "AS02"
	FlavourAS10  Flavour = "AS10"
	FlavourAS11  Flavour = "AS11"
	FlavourD10   Flavour = "D10"
	FlavourRDD9  Flavour = "RDD9"
)

func (f Flavour) valid() bool {
	switch f {
	case FlavourSMPTE, FlavourAvid, FlavourAS02, FlavourAS10, FlavourAS11, FlavourD10, FlavourRDD9:
		return true
	}
	return false
}

// Profile is the set of writer knobs that vary by flavour and deployment,
// loaded from YAML rather than hardcoded.
type Profile struct {
	KAGSize            int     `yaml:"kag_size"`
	MinLLen            int     `yaml:"min_llen"`
	OperationalPattern string  `yaml:"operational_pattern"`
	Flavour            Flavour `yaml:"flavour"`
	PartitionInterval  int64   `yaml:"partition_interval"`
	ReserveMinBytes    int     `yaml:"reserve_min_bytes"`
	Shim               string  `yaml:"shim"`
	LooseChecks        bool    `yaml:"loose_checks"`
	OmitDriveColon     bool    `yaml:"omit_drive_colon"`
	KeepInputOrder     bool    `yaml:"keep_input_order"`
	Deterministic      bool    `yaml:"deterministic"`
}

// DefaultProfile returns SMPTE-flavoured defaults: a 512-byte KAG, 4-byte
// minimum BER length width, OP-1a, no shim.
func DefaultProfile() Profile {
	return Profile{
		KAGSize:            512,
		MinLLen:            4,
		OperationalPattern: "OP1a",
		Flavour:            FlavourSMPTE,
		ReserveMinBytes:    16 * 1024,
	}
}

// Parse loads a Profile from YAML bytes, filling unset fields from
// DefaultProfile and validating the flavour.
func Parse(data []byte) (Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("mxfconfig: parse profile: %w", err)
	}
	if !p.Flavour.valid() {
		return Profile{}, fmt.Errorf("mxfconfig: unknown flavour %q", p.Flavour)
	}
	if p.KAGSize <= 0 {
		return Profile{}, fmt.Errorf("mxfconfig: kag_size must be positive")
	}
	if p.MinLLen < 1 || p.MinLLen > 8 {
		return Profile{}, fmt.Errorf("mxfconfig: min_llen must be in [1,8]")
	}
	return p, nil
}

// IsShimFlavour reports whether p's flavour carries an AS-10/AS-11 shim
// conformance ruleset.
func (p Profile) IsShimFlavour() bool {
	return p.Flavour == FlavourAS10 || p.Flavour == FlavourAS11
}
