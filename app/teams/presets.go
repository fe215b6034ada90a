package teams

import (
	"fmt"

	"ConverseAI/app/models"
	"ConverseAI/app/rag"
	"ConverseAI/app/storage"
	"ConverseAI/app/tools"
)

const (
	TeamFinance = "finance"
	TeamMedical = "medical"
	TeamLegal   = "legal"
)

// Deps carries the shared collaborators every built-in team wires its
// member toolkits from. Constructed once per process and passed down, no
// package-level state.
type Deps struct {
	Model      models.Interface
	Rag        rag.Interface
	DB         storage.Interface
	Collection string
}

// BuildTeam returns one of the built-in analysis teams by name.
func BuildTeam(kind, user string, deps Deps) (*Team, error) {
	switch kind {
	case TeamFinance:
		return NewFinanceTeam(user, deps), nil
	case TeamMedical:
		return NewMedicalTeam(user, deps), nil
	case TeamLegal:
		return NewLegalTeam(user, deps), nil
	default:
		return nil, fmt.Errorf("unknown team type: %s", kind)
	}
}

func ValidTeamType(kind string) bool {
	switch kind {
	case TeamFinance, TeamMedical, TeamLegal:
		return true
	}
	return false
}

func NewFinanceTeam(user string, deps Deps) *Team {
	positiveWeb := NewMember("positive_web", "Web research, positive angle",
		"Handle web search requests and general research and report only the positive findings about the topic. Always include sources.")
	positiveWeb.SetToolkit(tools.NewToolkitFromPreset(tools.PresetWebResearch))

	negativeWeb := NewMember("negative_web", "Web research, negative angle",
		"Handle web search requests and general research and report only the negative findings about the topic. Always include sources.")
	negativeWeb.SetToolkit(tools.NewToolkitFromPreset(tools.PresetWebResearch))

	knowledge := NewMember("knowledge", "Personal knowledge",
		"Handle personal knowledge lookups and give out the most relevant information from the user's own documents.")
	knowledge.AddTools(tools.KnowledgeTools(deps.Rag, deps.Collection))
	knowledge.AddTools(tools.MemoryTools(deps.DB, user))

	market := NewMember("market", "Market data",
		"Handle financial data requests and market analysis.")
	market.Rules = []string{
		"Use tables to display stock prices and fundamentals.",
		"Clearly state the company name and ticker symbol.",
		"Focus on delivering actionable financial insights.",
	}
	market.SetToolkit(tools.NewToolkitFromPreset(tools.PresetMarketData))

	leader := NewMember(leaderKey, "Team coordinator",
		"You lead a reasoning finance team. Collaborators have researched the query from several angles; consolidate their findings into one analysis.")

	return NewTeam(TeamFinance, user, deps.Model, []*Member{positiveWeb, negativeWeb, knowledge, market, leader},
		[]string{
			"Collaborate to provide comprehensive financial and investment insights.",
			"You will be given both positive and negative information about the topic; be unbiased and keep only what serves the user's long term goal.",
			"Consider both fundamental analysis and market sentiment.",
			"Use tables to display data clearly and professionally.",
			"Only output the final consolidated analysis, not individual agent responses.",
		})
}

func NewMedicalTeam(user string, deps Deps) *Team {
	diagnostic := NewMember("diagnostic", "Primary diagnostic reasoning specialist with expertise in differential diagnosis and clinical assessment",
		"Reason carefully about symptoms, differential diagnoses and clinical assessment paths. Cite the medical reasoning behind every conclusion.")
	diagnostic.AddTools(tools.KnowledgeTools(deps.Rag, deps.Collection))

	research := NewMember("research", "Medical literature analysis specialist focused on evidence-based medicine and latest research findings",
		"Search for and summarize current medical evidence relevant to the query. Always include sources.")
	research.SetToolkit(tools.NewToolkitFromPreset(tools.PresetWebResearch))

	pharmacology := NewMember("pharmacology", "Drug interactions, dosing, and pharmaceutical safety specialist",
		"Analyze medications involved in the query: interactions, contraindications and dosing considerations.")
	pharmacology.AddTools(tools.KnowledgeTools(deps.Rag, deps.Collection))

	safety := NewMember("safety", "Risk assessment and patient safety protocols specialist",
		"Flag red-flag symptoms and situations that require immediate professional care.")
	safety.AddTools(tools.MemoryTools(deps.DB, user))

	leader := NewMember(leaderKey, "Team coordinator",
		"You lead a medical analysis team. Consolidate the specialists' findings into a structured clinical overview.")

	return NewTeam(TeamMedical, user, deps.Model, []*Member{diagnostic, research, pharmacology, safety, leader},
		[]string{
			"Medical information is for educational purposes only; always recommend consulting healthcare professionals.",
			"Present differential considerations with their supporting evidence.",
			"Highlight any safety concerns prominently at the top.",
			"Only output the final consolidated analysis, not individual agent responses.",
		})
}

func NewLegalTeam(user string, deps Deps) *Team {
	research := NewMember("research", "Legal research specialist focusing on case law, statutes, regulations, and legal precedents",
		"Research the legal landscape relevant to the query. Always include sources.")
	research.SetToolkit(tools.NewToolkitFromPreset(tools.PresetWebResearch))

	contracts := NewMember("contracts", "Contract review and analysis specialist focusing on terms, conditions, and legal implications",
		"Analyze any contractual aspects of the query: obligations, liabilities and notable clauses.")
	contracts.AddTools(tools.KnowledgeTools(deps.Rag, deps.Collection))

	compliance := NewMember("compliance", "Regulatory compliance specialist covering industry regulations and legal requirements",
		"Identify the regulatory frameworks and compliance requirements that apply.")
	compliance.AddTools(tools.KnowledgeTools(deps.Rag, deps.Collection))

	risk := NewMember("risk", "Legal risk analysis specialist focusing on liability assessment and risk mitigation",
		"Assess legal exposure and propose mitigation strategies.")
	risk.AddTools(tools.MemoryTools(deps.DB, user))

	leader := NewMember(leaderKey, "Team coordinator",
		"You lead a legal analysis team. Consolidate the specialists' findings into a structured legal overview.")

	return NewTeam(TeamLegal, user, deps.Model, []*Member{research, contracts, compliance, risk, leader},
		[]string{
			"Legal information is for educational purposes only - not legal advice; no attorney-client relationship is created.",
			"State jurisdiction assumptions explicitly.",
			"Separate settled law from open questions.",
			"Only output the final consolidated analysis, not individual agent responses.",
		})
}
