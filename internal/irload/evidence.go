package irload

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/verdict-engine/verdict/internal/repair"
)

// LoadEvidence reads a runtime evidence file. Evidence is JSON, one
// array of scenario observations, because it is produced by tooling
// rather than written by hand.
func LoadEvidence(path string) ([]repair.Evidence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load evidence: %w", err)
	}

	var evidence []repair.Evidence
	if err := json.Unmarshal(data, &evidence); err != nil {
		return nil, fmt.Errorf("load evidence: decoding %s: %w", path, err)
	}
	for i, e := range evidence {
		if e.Scenario == "" {
			return nil, fmt.Errorf("load evidence: entry %d has no scenario name", i)
		}
	}
	return evidence, nil
}
