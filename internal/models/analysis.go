package models

// TechProfile describes the developer's primary technical direction.
type TechProfile struct {
	PrimaryRole string   `json:"primaryRole"`
	Expertise   []string `json:"expertise"`
	Style       string   `json:"style"`
}

// Skills holds the six 0-100 skill scores rendered by the radar chart.
type Skills struct {
	Frontend      int `json:"frontend"`
	Backend       int `json:"backend"`
	DevOps        int `json:"devops"`
	Algorithms    int `json:"algorithms"`
	Architecture  int `json:"architecture"`
	Documentation int `json:"documentation"`
}

// AIAnalysis is the fixed-shape technical profile produced by the AI
// collaborator (or the deterministic fallback).
type AIAnalysis struct {
	Summary         string      `json:"summary"`
	Highlights      []string    `json:"highlights"`
	TechProfile     TechProfile `json:"techProfile"`
	Skills          Skills      `json:"skills"`
	Insights        []string    `json:"insights"`
	Recommendations []string    `json:"recommendations"`
	Personality     string      `json:"personality"`
}

// AnalysisRequest is the inbound request body of the analysis endpoint.
type AnalysisRequest struct {
	GitHubData *GitHubProfile `json:"githubData"`
}

// AnalysisResponse wraps the analysis for the UI client.
type AnalysisResponse struct {
	Analysis AIAnalysis `json:"analysis"`
}
