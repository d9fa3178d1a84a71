package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/excavator-go/internal/domain/excavation"
)

type policyFile struct {
	Rules []policyRule `yaml:"rules"`
}

type policyRule struct {
	Pattern string `yaml:"pattern"`
	Ignore  bool   `yaml:"ignore"`
	Tool    string `yaml:"tool"`
	Tier    string `yaml:"tier"`
}

// LoadMaterialPolicy reads a YAML material policy. An empty path yields the
// built-in policy.
//
//	rules:
//	  - pattern: bedrock
//	    ignore: true
//	  - pattern: "*_ore"
//	    tool: pickaxe
//	    tier: stone
func LoadMaterialPolicy(path string) (*excavation.MaterialPolicy, error) {
	if path == "" {
		return excavation.DefaultMaterialPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParseMaterialPolicy(data)
}

// ParseMaterialPolicy decodes a YAML material policy document
func ParseMaterialPolicy(data []byte) (*excavation.MaterialPolicy, error) {
	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	rules := make([]excavation.MaterialRule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		tier, err := excavation.ParseToolTier(r.Tier)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		family := excavation.ToolFamily(r.Tool)
		switch family {
		case excavation.ToolNone, excavation.ToolPickaxe, excavation.ToolShovel, excavation.ToolAxe:
		default:
			return nil, fmt.Errorf("rule %d: unknown tool %q", i, r.Tool)
		}
		rules = append(rules, excavation.MaterialRule{
			Pattern:      r.Pattern,
			Ignore:       r.Ignore,
			ToolFamily:   family,
			RequiredTier: tier,
		})
	}
	return excavation.NewMaterialPolicy(rules)
}
