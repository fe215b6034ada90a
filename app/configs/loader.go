package configs

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"ConverseAI/app/teams"
	"ConverseAI/app/tools"
)

var validate = validator.New()

// Config describes user-defined analysis teams loaded from YAML, for cases
// the built-in finance/medical/legal presets do not cover.
type Config struct {
	Teams map[string]TeamConfig `yaml:"teams" validate:"min=1,dive"`
}

type TeamConfig struct {
	Instructions []string       `yaml:"instructions,omitempty"`
	Members      []MemberConfig `yaml:"members" validate:"min=1,dive"`
}

type MemberConfig struct {
	Key         string   `yaml:"key" validate:"required"`
	Role        string   `yaml:"role,omitempty"`
	System      string   `yaml:"system,omitempty"`
	Rules       []string `yaml:"rules,omitempty"`
	ToolsPreset string   `yaml:"tools_preset,omitempty"`
	Knowledge   bool     `yaml:"knowledge,omitempty"`
	Memory      bool     `yaml:"memory,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read configs file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configs: %w", err)
	}

	for teamName, teamCfg := range c.Teams {
		if err := teamCfg.Validate(); err != nil {
			return fmt.Errorf("team %s: %w", teamName, err)
		}
	}
	return nil
}

func (tc TeamConfig) Validate() error {
	hasLeader := false
	for _, member := range tc.Members {
		if member.Key == "leader" {
			hasLeader = true
			break
		}
	}
	if !hasLeader {
		return fmt.Errorf("team must have a 'leader' member")
	}
	return nil
}

func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// BuildTeam turns a team config into a runnable team wired with the shared
// dependencies.
func (tc TeamConfig) BuildTeam(name, user string, deps teams.Deps) *teams.Team {
	var members []*teams.Member
	for _, mc := range tc.Members {
		member := teams.NewMember(mc.Key, mc.Role, mc.System)
		member.Rules = mc.Rules
		if mc.ToolsPreset != "" {
			member.SetToolkit(tools.NewToolkitFromPreset(mc.ToolsPreset))
		}
		if mc.Knowledge {
			member.AddTools(tools.KnowledgeTools(deps.Rag, deps.Collection))
		}
		if mc.Memory {
			member.AddTools(tools.MemoryTools(deps.DB, user))
		}
		members = append(members, member)
	}
	return teams.NewTeam(name, user, deps.Model, members, tc.Instructions)
}

// BuildTeamByName looks a team up in the config and builds it.
func (c *Config) BuildTeamByName(teamName, user string, deps teams.Deps) (*teams.Team, error) {
	teamCfg, ok := c.Teams[teamName]
	if !ok {
		return nil, fmt.Errorf("team %s not found in configs", teamName)
	}
	return teamCfg.BuildTeam(teamName, user, deps), nil
}
