// Package env provides centralized environment variable management.
package env

import (
	"os"
	"strconv"
)

// BotConfig holds the tuning knobs a bot process reads from its
// environment rather than from a flag, per spec §6: "none required;
// EDGE_WEIGHT (float) tunes one heuristic's edge-distance weighting in
// a specific bot variant."
type BotConfig struct {
	// EdgeWeight feeds targeting.Heuristic.EdgeWeight. Zero (the
	// default) disables the edge-distance bonus entirely.
	EdgeWeight float64
}

// LoadBotConfig reads EDGE_WEIGHT from the environment. An unset or
// unparsable value leaves EdgeWeight at its zero default; this is
// deliberately not an error, since the spec does not require the
// variable to be present.
func LoadBotConfig() BotConfig {
	return BotConfig{
		EdgeWeight: getEnvAsFloatOrDefault("EDGE_WEIGHT", 0),
	}
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
