// market/instruments.go
package market

// SymbolInfo is the static contract of a tradable symbol.
type SymbolInfo struct {
	Name            string  `json:"name" yaml:"name"`
	TickSize        float64 `json:"tick_size" yaml:"tick_size"`
	TickValue       float64 `json:"tick_value" yaml:"tick_value"`
	Commission      float64 `json:"commission" yaml:"commission"` // per side, per unit of volume
	Digits          int     `json:"digits" yaml:"digits"`
	MinVolume       float64 `json:"min_volume" yaml:"min_volume"`
	MaxVolume       float64 `json:"max_volume" yaml:"max_volume"`
	VolumeStep      float64 `json:"volume_step" yaml:"volume_step"`
	VolumeUnitValue float64 `json:"volume_unit_value" yaml:"volume_unit_value"` // contract size of 1.0 volume
	Slippage        float64 `json:"slippage" yaml:"slippage"`                   // in ticks
}

var Instruments = map[string]SymbolInfo{
	"EUR_USD": {
		Name:            "EUR_USD",
		TickSize:        0.0001,
		TickValue:       1,
		Digits:          4,
		MinVolume:       0.01,
		MaxVolume:       100,
		VolumeStep:      0.01,
		VolumeUnitValue: 100_000,
	},
	"GBP_USD": {
		Name:            "GBP_USD",
		TickSize:        0.0001,
		TickValue:       1,
		Digits:          4,
		MinVolume:       0.01,
		MaxVolume:       100,
		VolumeStep:      0.01,
		VolumeUnitValue: 100_000,
	},
	"USD_JPY": {
		Name:            "USD_JPY",
		TickSize:        0.01,
		TickValue:       1,
		Digits:          2,
		MinVolume:       0.01,
		MaxVolume:       100,
		VolumeStep:      0.01,
		VolumeUnitValue: 100_000,
	},
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (SymbolInfo, bool) {
	info, ok := Instruments[name]
	return info, ok
}

// WithDefaults fills zero fields of info from the catalog entry of the
// same name, if there is one.
func (info SymbolInfo) WithDefaults() SymbolInfo {
	def, ok := Instruments[info.Name]
	if !ok {
		return info
	}
	if info.TickSize == 0 {
		info.TickSize = def.TickSize
	}
	if info.TickValue == 0 {
		info.TickValue = def.TickValue
	}
	if info.Digits == 0 {
		info.Digits = def.Digits
	}
	if info.MinVolume == 0 {
		info.MinVolume = def.MinVolume
	}
	if info.MaxVolume == 0 {
		info.MaxVolume = def.MaxVolume
	}
	if info.VolumeStep == 0 {
		info.VolumeStep = def.VolumeStep
	}
	if info.VolumeUnitValue == 0 {
		info.VolumeUnitValue = def.VolumeUnitValue
	}
	return info
}
