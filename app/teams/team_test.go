package teams

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ConverseAI/app/models"
	"ConverseAI/app/tools"
)

// scriptedModel answers each Process call with the system prompt's first
// word so tests can tell which member produced which finding.
type scriptedModel struct {
	calls    []string
	failKeys map[string]bool
}

func (m *scriptedModel) Think(_ context.Context, _ []models.Message, _ float64, _ int) (string, error) {
	return "", nil
}

func (m *scriptedModel) Process(_ context.Context, _ string, messages []models.Message, _ map[string]tools.Tool) (string, error) {
	system := messages[0].Content
	key := strings.Fields(system)[0]
	m.calls = append(m.calls, key)
	if m.failKeys[key] {
		return "", fmt.Errorf("member %s unavailable", key)
	}
	if strings.Contains(messages[len(messages)-1].Content, "TEAM FINDINGS:") {
		return "CONSOLIDATED:" + messages[len(messages)-1].Content, nil
	}
	return "answer from " + key, nil
}

func newTestTeam(model models.Interface) *Team {
	a := NewMember("a", "Role A", "a analyzes")
	b := NewMember("b", "Role B", "b analyzes")
	leader := NewMember(leaderKey, "Coordinator", "lead consolidates")
	return NewTeam("test", "tester", model, []*Member{a, b, leader}, []string{"Be brief."})
}

func TestTeamRunConsolidatesFindings(t *testing.T) {
	model := &scriptedModel{}
	team := newTestTeam(model)

	got, err := team.Run(context.Background(), "what is up")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.HasPrefix(got, "CONSOLIDATED:") {
		t.Fatalf("leader answer not returned: %q", got)
	}
	if !strings.Contains(got, "## Findings from a (Role A)") ||
		!strings.Contains(got, "## Findings from b (Role B)") {
		t.Errorf("findings missing from consolidation prompt: %q", got)
	}
	if !strings.Contains(got, "QUERY:\nwhat is up") {
		t.Errorf("query missing from consolidation prompt: %q", got)
	}

	// Members run in declaration order, leader last.
	want := []string{"a", "b", "lead"}
	if len(model.calls) != len(want) {
		t.Fatalf("unexpected calls: %v", model.calls)
	}
	for i := range want {
		if model.calls[i] != want[i] {
			t.Fatalf("unexpected call order: %v", model.calls)
		}
	}
}

func TestTeamRunSkipsFailingMember(t *testing.T) {
	model := &scriptedModel{failKeys: map[string]bool{"a": true}}
	team := newTestTeam(model)

	got, err := team.Run(context.Background(), "query")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Contains(got, "Findings from a") {
		t.Errorf("failed member leaked findings: %q", got)
	}
	if !strings.Contains(got, "Findings from b") {
		t.Errorf("healthy member findings missing: %q", got)
	}
}

func TestTeamRunLeaderFailure(t *testing.T) {
	model := &scriptedModel{failKeys: map[string]bool{"lead": true}}
	team := newTestTeam(model)

	if _, err := team.Run(context.Background(), "query"); err == nil {
		t.Fatal("expected an error when the leader fails")
	}
}

func TestTeamRunWithoutLeader(t *testing.T) {
	team := NewTeam("headless", "tester", &scriptedModel{}, []*Member{NewMember("a", "", "a")}, nil)
	if _, err := team.Run(context.Background(), "query"); err == nil {
		t.Fatal("expected an error for a team without a leader")
	}
}

func TestMemberPrompt(t *testing.T) {
	m := NewMember("x", "Analyst", "Do the analysis.")
	m.Rules = []string{"Rule one.", "Rule two."}

	got := m.Prompt()
	if !strings.Contains(got, "Do the analysis.") ||
		!strings.Contains(got, "ROLE: Analyst") ||
		!strings.Contains(got, "RULES:\nRule one.\nRule two.") {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestAddRemoveTeamMember(t *testing.T) {
	team := newTestTeam(&scriptedModel{})

	team.AddTeamMember(NewMember("c", "", ""))
	if team.GetMember("c") == nil || len(team.Order) != 4 {
		t.Fatalf("member not added: order=%v", team.Order)
	}

	// Re-adding the same key must not duplicate the order entry.
	team.AddTeamMember(NewMember("c", "updated", ""))
	if len(team.Order) != 4 {
		t.Fatalf("duplicate order entry: %v", team.Order)
	}

	team.RemoveTeamMember("c")
	if team.GetMember("c") != nil || len(team.Order) != 3 {
		t.Fatalf("member not removed: order=%v", team.Order)
	}
}

func TestBuildTeamPresets(t *testing.T) {
	deps := Deps{Model: &scriptedModel{}, Collection: "T"}

	for _, kind := range []string{TeamFinance, TeamMedical, TeamLegal} {
		team, err := BuildTeam(kind, "tester", deps)
		if err != nil {
			t.Fatalf("BuildTeam(%s) failed: %v", kind, err)
		}
		if team.GetLeader() == nil {
			t.Errorf("%s team has no leader", kind)
		}
		if len(team.Members) < 3 {
			t.Errorf("%s team too small: %d members", kind, len(team.Members))
		}
	}

	if _, err := BuildTeam("astrology", "tester", deps); err == nil {
		t.Fatal("expected an error for an unknown team type")
	}
	if ValidTeamType("astrology") || !ValidTeamType(TeamFinance) {
		t.Fatal("ValidTeamType misclassified")
	}
}
