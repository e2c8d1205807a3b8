package model

// ConfigPreset returns one of the server's named configuration presets
// (spec §6 "--config <name>"), or false if name is not recognized. The
// server falls back to "standard" when no preset is given.
func ConfigPreset(name string) (*Configuration, bool) {
	switch name {
	case "", "standard":
		return StandardConfiguration(), true
	case "duel":
		return mustConfig("duel", 2, 2, 8, 8, []Ship{
			{ID: 'A', Length: 4},
			{ID: 'B', Length: 3},
			{ID: 'C', Length: 2},
		}, true), true
	case "large":
		ships := append(StandardShips(), Ship{ID: 'F', Length: 5}, Ship{ID: 'G', Length: 2})
		return mustConfig("large", 2, 4, 16, 16, ships, true), true
	default:
		return nil, false
	}
}

func mustConfig(name string, minP, maxP, w, h uint, ships []Ship, allowAdjacent bool) *Configuration {
	cfg, err := NewConfiguration(name, minP, maxP, w, h, ships, allowAdjacent)
	if err != nil {
		panic(err) // unreachable: preset parameters are known-valid constants
	}
	return cfg
}
