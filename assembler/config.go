package assembler

import (
	"sync"

	"github.com/xyproto/env/v2"
)

// AssemblerConfig enables the optional range and alignment checks. The zero value is permissive.
type AssemblerConfig struct {
	// StrictImmediates rejects immediates and offsets that do not fit their encoded field.
	StrictImmediates bool `json:"strictImmediates"`
	// StrictAlignment rejects branch and jump offsets that are not a multiple of 2.
	StrictAlignment bool `json:"strictAlignment"`
}

var (
	assemblerConfig AssemblerConfig
	configMutex     sync.RWMutex
)

func GetConfig() AssemblerConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return assemblerConfig
}

func SetConfig(config AssemblerConfig) {
	configMutex.Lock()
	assemblerConfig = config
	configMutex.Unlock()
}

// ConfigFromEnvironment reads RV32IAS_STRICT_IMMEDIATES and RV32IAS_STRICT_ALIGNMENT.
func ConfigFromEnvironment() AssemblerConfig {
	return AssemblerConfig{
		StrictImmediates: env.Bool("RV32IAS_STRICT_IMMEDIATES"),
		StrictAlignment:  env.Bool("RV32IAS_STRICT_ALIGNMENT"),
	}
}
