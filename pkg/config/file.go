package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// fileParams mirrors the registry's named parameters as plain TOML
// fields so a config file can override any subset of them, except mod,
// which has no file field and is not read from a config file. Fields a
// file omits keep the Registry's built-in defaults.
type fileParams struct {
	Voices     *float64 `toml:"voices"`
	Protocol   *string  `toml:"protocol"`
	DataRate   *float64 `toml:"data_rate"`
	Bend       *float64 `toml:"bend"`
	BendMPE    *float64 `toml:"bend_mpe"`
	ModMPEX    *float64 `toml:"mod_mpe_x"`
	Unison     *bool    `toml:"unison"`
	Glide      *float64 `toml:"glide"`
	Scale      *string  `toml:"scale"`
	MasterTune *float64 `toml:"master_tune"`
}

// LoadFile reads a TOML config file and applies any fields it sets
// onto reg, leaving unset fields at their current (default) value.
func LoadFile(path string, reg *Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	var fp fileParams
	if err := toml.Unmarshal(data, &fp); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	applyFileParams(&fp, reg)
	return nil
}

func applyFileParams(fp *fileParams, reg *Registry) {
	if fp.Voices != nil {
		reg.Set(Voices, *fp.Voices)
	}
	if fp.Protocol != nil {
		reg.Set(Protocol, protocolCode(*fp.Protocol))
	}
	if fp.DataRate != nil {
		reg.Set(DataRate, *fp.DataRate)
	}
	if fp.Bend != nil {
		reg.Set(Bend, *fp.Bend)
	}
	if fp.BendMPE != nil {
		reg.Set(BendMPE, *fp.BendMPE)
	}
	if fp.ModMPEX != nil {
		reg.Set(ModMPEX, *fp.ModMPEX)
	}
	if fp.Unison != nil {
		reg.Set(Unison, boolCode(*fp.Unison))
	}
	if fp.Glide != nil {
		reg.Set(Glide, *fp.Glide)
	}
	if fp.Scale != nil {
		reg.Set(Scale, scaleCode(*fp.Scale))
	}
	if fp.MasterTune != nil {
		reg.Set(MasterTune, *fp.MasterTune)
	}
}

func protocolCode(s string) float64 {
	if s == "mpe" {
		return 1
	}
	return 0
}

func scaleCode(s string) float64 {
	if s == "table" {
		return 1
	}
	return 0
}

func boolCode(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
