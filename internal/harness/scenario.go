package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
)

// Scenario defines a conformance test scenario: node fixtures per chain and
// the queries to run against them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Chains maps a chain name (mainnet, testnet, devnet) to the state of
	// its fake fullnode. Chains not listed fail to dial.
	Chains map[string]Fixture `yaml:"chains"`

	// Steps run in order, each as one RunEach call.
	Steps []Step `yaml:"steps"`
}

// Fixture is the content of one fake fullnode.
type Fixture struct {
	Latest       uint64               `yaml:"latest"`
	Checkpoints  []CheckpointFixture  `yaml:"checkpoints,omitempty"`
	Transactions []TransactionFixture `yaml:"transactions,omitempty"`
	Balances     []BalanceFixture     `yaml:"balances,omitempty"`
	Names        map[string]byte      `yaml:"names,omitempty"`
}

// CheckpointFixture is a checkpoint whose fields derive from Seq.
type CheckpointFixture struct {
	Seq          uint64 `yaml:"seq"`
	Transactions []byte `yaml:"transactions,omitempty"`
}

// TransactionFixture is a successful programmable transaction.
type TransactionFixture struct {
	Digest          byte   `yaml:"digest"`
	Checkpoint      uint64 `yaml:"checkpoint"`
	Sender          byte   `yaml:"sender"`
	ComputationCost uint64 `yaml:"computation_cost,omitempty"`
	StorageCost     uint64 `yaml:"storage_cost,omitempty"`
	StorageRebate   uint64 `yaml:"storage_rebate,omitempty"`
}

// BalanceFixture is one coin balance held by Owner.
type BalanceFixture struct {
	Owner    byte   `yaml:"owner"`
	CoinType string `yaml:"coin_type"`
	Total    uint64 `yaml:"total"`
	Objects  int    `yaml:"objects,omitempty"`
}

// Step is one query with optional expectations.
type Step struct {
	// Query is program text, expanded as a template before parsing.
	Query string `yaml:"query"`

	// Expect is checked against the step's outcomes. If nil, the step only
	// contributes to the golden snapshot.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected step outcomes.
type Expect struct {
	// Error is the expected error code of the first failing expression.
	Error string `yaml:"error,omitempty"`

	// Rows is the expected total row count.
	Rows *int `yaml:"rows,omitempty"`

	// Contains lists rows that must appear, as column name to cell text.
	Contains []map[string]string `yaml:"contains,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for name := range s.Chains {
		if _, err := chain.Parse(name); err != nil {
			return fmt.Errorf("chains: %w", err)
		}
	}

	for i, step := range s.Steps {
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		if e := step.Expect; e != nil {
			if e.Error != "" && (e.Rows != nil || len(e.Contains) > 0) {
				return fmt.Errorf("steps[%d].expect: error excludes rows and contains", i)
			}
			if e.Rows != nil && *e.Rows < 0 {
				return fmt.Errorf("steps[%d].expect: rows must be non-negative", i)
			}
			for j, row := range e.Contains {
				if len(row) == 0 {
					return fmt.Errorf("steps[%d].expect.contains[%d]: row is empty", i, j)
				}
			}
		}
	}
	return nil
}
