package autograder

import (
	"encoding/json"
	"fmt"
	"os"
)

const DefaultConfigPath = "source/autograderConfig.json"

// TestCase checks a run of words of the submission's program text, and optionally label addresses.
type TestCase struct {
	Number        int               `json:"number"`
	Name          string            `json:"name"`
	Visibility    string            `json:"visibility"`
	Points        int               `json:"points"`
	Offset        int               `json:"offset"`        // index of the first checked word
	ExpectedWords []string          `json:"expectedWords"` // hex
	Labels        map[string]uint32 `json:"labels,omitempty"`
}

type Config struct {
	AssignmentName   string     `json:"assignmentName"`
	StudentCodePath  string     `json:"studentCodePath"` // a file, or a directory holding one .s/.asm file
	TestCases        []TestCase `json:"testCases"`
	AssemblyPoints   int        `json:"assemblyPoints"` // awarded when the submission assembles
	Mode             string     `json:"mode"`           // only "asm"
	ResultsPath      string     `json:"resultsPath,omitempty"`
	StrictImmediates bool       `json:"strictImmediates"`
	StrictAlignment  bool       `json:"strictAlignment"`
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	conf := new(Config)
	if err := json.Unmarshal(b, conf); err != nil {
		return nil, fmt.Errorf("error unmarshalling %s: %w", path, err)
	}
	if conf.Mode == "" {
		conf.Mode = "asm"
	}
	if conf.ResultsPath == "" {
		conf.ResultsPath = "results/results.json"
	}
	return conf, nil
}

var conf *Config

// GetConfig returns the configuration at DefaultConfigPath, or nil when there is none.
func GetConfig() (*Config, error) {
	if conf == nil {
		c, err := LoadConfig(DefaultConfigPath)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		conf = c
	}

	return conf, nil
}
