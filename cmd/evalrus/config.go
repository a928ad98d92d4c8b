package main

import (
	"os"

	"sigs.k8s.io/yaml"
)

// Config is the optional .evalrus.yaml file's schema: an ambient
// configuration surface spec.md is silent on but a complete CLI needs
// (see SPEC_FULL.md's AMBIENT STACK note), loaded with sigs.k8s.io/yaml
// the way SnellerInc-sneller's cmd/ tree loads its own YAML config.
// MaxInstrPerSlice is read from the file but nothing uses it: the VM's
// QuickEval always runs in fixed 1024-instruction slices.
type Config struct {
	HeapBlockSize    int    `json:"heapBlockSize"`
	HistoryFile      string `json:"historyFile"`
	MaxInstrPerSlice int    `json:"maxInstrPerSlice"`
}

func defaultConfig() Config {
	return Config{
		HeapBlockSize:    0, // 0 selects heap.DefaultBlockSize
		HistoryFile:      ".evalrus_history",
		MaxInstrPerSlice: 1024,
	}
}

// loadConfig reads path if it exists, overlaying its fields onto the
// defaults; a missing file is not an error (there simply is no config),
// matching the teacher's non-fatal-if-absent posture for optional
// inputs.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
