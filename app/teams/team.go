package teams

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"ConverseAI/app/models"
	"ConverseAI/app/tools"
)

const leaderKey = "leader"

// Member is one specialist in an analysis team: a system prompt, rules and
// a toolkit the model may call while answering.
type Member struct {
	Key     string
	Role    string
	System  string
	Rules   []string
	Toolkit map[string]tools.Tool
}

func NewMember(key, role, system string) *Member {
	return &Member{
		Key:    key,
		Role:   role,
		System: system,
	}
}

func (m *Member) AddTools(list []tools.Tool) {
	if m == nil {
		return
	}
	if m.Toolkit == nil {
		m.Toolkit = map[string]tools.Tool{}
	}
	for _, tool := range list {
		m.Toolkit[tool.Name] = tool
	}
}

func (m *Member) SetToolkit(tk map[string]tools.Tool) {
	if m != nil {
		m.Toolkit = tk
	}
}

func (m *Member) Prompt() string {
	sys := m.System
	if m.Role != "" {
		sys += "\nROLE: " + m.Role
	}
	if len(m.Rules) > 0 {
		sys += "\nRULES:\n" + strings.Join(m.Rules, "\n")
	}
	return sys
}

// Team coordinates members sequentially: every non-leader member analyzes
// the query with its own toolkit, then the leader consolidates all findings
// into the final answer.
type Team struct {
	Name         string
	Members      map[string]*Member
	Order        []string
	Instructions []string

	model models.Interface
	user  string
}

func NewTeam(name, user string, model models.Interface, members []*Member, instructions []string) *Team {
	memberMap := make(map[string]*Member, len(members))
	order := make([]string, 0, len(members))
	for _, member := range members {
		memberMap[member.Key] = member
		order = append(order, member.Key)
	}
	return &Team{
		Name:         name,
		Members:      memberMap,
		Order:        order,
		Instructions: instructions,
		model:        model,
		user:         user,
	}
}

func (t *Team) GetLeader() *Member {
	return t.Members[leaderKey]
}

func (t *Team) GetMember(key string) *Member {
	return t.Members[key]
}

func (t *Team) AddTeamMember(member *Member) {
	if _, exists := t.Members[member.Key]; !exists {
		t.Order = append(t.Order, member.Key)
	}
	t.Members[member.Key] = member
}

func (t *Team) RemoveTeamMember(key string) {
	if _, exists := t.Members[key]; exists {
		delete(t.Members, key)
		for i, k := range t.Order {
			if k == key {
				t.Order = append(t.Order[:i], t.Order[i+1:]...)
				break
			}
		}
	}
}

// Run executes one analysis: each member contributes its findings, then the
// leader produces the consolidated answer. Member failures are logged and
// skipped so one unreachable tool backend cannot sink the whole run.
func (t *Team) Run(ctx context.Context, query string) (string, error) {
	leader := t.GetLeader()
	if leader == nil {
		return "", fmt.Errorf("team %s has no leader", t.Name)
	}

	runID := uuid.New().String()
	log.Printf("🏃 Started run %s for team %s", runID, t.Name)

	var findings strings.Builder
	for _, key := range t.Order {
		if key == leaderKey {
			continue
		}
		member := t.Members[key]

		messages := []models.Message{
			{Role: "system", Content: member.Prompt()},
			{Role: "user", Content: query},
		}
		answer, err := t.model.Process(ctx, t.user, messages, member.Toolkit)
		if err != nil {
			log.Printf("⚠️ Member %s failed during run %s: %v", key, runID, err)
			continue
		}
		findings.WriteString(fmt.Sprintf("\n\n## Findings from %s (%s)\n%s", key, member.Role, answer))
	}

	consolidation := leader.Prompt()
	if len(t.Instructions) > 0 {
		consolidation += "\nINSTRUCTIONS:\n" + strings.Join(t.Instructions, "\n")
	}

	messages := []models.Message{
		{Role: "system", Content: consolidation},
		{Role: "user", Content: fmt.Sprintf("QUERY:\n%s\n\nTEAM FINDINGS:%s", query, findings.String())},
	}
	final, err := t.model.Process(ctx, t.user, messages, leader.Toolkit)
	if err != nil {
		return "", fmt.Errorf("leader consolidation failed: %w", err)
	}
	return final, nil
}
