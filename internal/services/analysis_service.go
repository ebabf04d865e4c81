package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/config"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

// frontendLanguages classifies a dominant language as frontend-leaning for
// the fallback analysis.
var frontendLanguages = map[string]bool{
	"TypeScript": true,
	"JavaScript": true,
	"Vue":        true,
	"CSS":        true,
	"HTML":       true,
}

const analysisSystemPrompt = `You are a senior technical recruiter and code auditor. Analyze a developer's GitHub data and produce a professional, insightful technical profile.

Dimensions:
1. Tech stack: breadth and depth from language usage
2. Engineering practice: repository structure, commit message quality
3. Development style: commit patterns and habits
4. Community impact: stars, forks, and other recognition
5. Growth potential: activity and signs of learning new technology

Write for a hiring manager: professional but engaging, highlight strengths, mention improvement areas tactfully, and back claims with concrete numbers.`

// analysisContext is the reduced projection of the profile sent to the AI
// collaborator.
type analysisContext struct {
	Username           string               `json:"username"`
	Name               *string              `json:"name"`
	Bio                *string              `json:"bio"`
	TotalRepos         int                  `json:"totalRepos"`
	TotalStars         int                  `json:"totalStars"`
	TotalContributions int                  `json:"totalContributions"`
	TopLanguages       []string             `json:"topLanguages"`
	Repositories       []analysisRepository `json:"repositories"`
}

type analysisRepository struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Language      *string  `json:"language"`
	Stars         int      `json:"stars"`
	CommitCount   int      `json:"commitCount"`
	RecentCommits []string `json:"recentCommits"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools"`
	ToolChoice interface{}   `json:"tool_choice"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// profileToolSchema forces the model to return the fixed analysis shape.
var profileToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"highlights": {"type": "array", "items": {"type": "string"}},
		"techProfile": {
			"type": "object",
			"properties": {
				"primaryRole": {"type": "string"},
				"expertise": {"type": "array", "items": {"type": "string"}},
				"style": {"type": "string"}
			},
			"required": ["primaryRole", "expertise", "style"]
		},
		"skills": {
			"type": "object",
			"properties": {
				"frontend": {"type": "number", "minimum": 0, "maximum": 100},
				"backend": {"type": "number", "minimum": 0, "maximum": 100},
				"devops": {"type": "number", "minimum": 0, "maximum": 100},
				"algorithms": {"type": "number", "minimum": 0, "maximum": 100},
				"architecture": {"type": "number", "minimum": 0, "maximum": 100},
				"documentation": {"type": "number", "minimum": 0, "maximum": 100}
			},
			"required": ["frontend", "backend", "devops", "algorithms", "architecture", "documentation"]
		},
		"insights": {"type": "array", "items": {"type": "string"}},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"personality": {"type": "string"}
	},
	"required": ["summary", "highlights", "techProfile", "skills", "insights", "recommendations", "personality"]
}`)

// AnalysisService calls the AI collaborator to turn a profile into a
// technical narrative. It never fails: any AI-side problem degrades to a
// deterministic fallback derived from the profile alone.
type AnalysisService struct {
	gatewayURL string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAnalysisService(cfg config.AIConfig) *AnalysisService {
	return &AnalysisService{
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Analyze produces the technical profile for the given data.
func (s *AnalysisService) Analyze(ctx context.Context, data *models.GitHubProfile) *models.AIAnalysis {
	if s.apiKey == "" {
		logger.Warn("AI API key not configured, using fallback analysis")
		return FallbackAnalysis(data)
	}

	analysis, err := s.callGateway(ctx, data)
	if err != nil {
		logger.WithError(err).WithField("username", data.User.Login).Warn("AI analysis failed, using fallback")
		return FallbackAnalysis(data)
	}
	return analysis
}

func (s *AnalysisService) callGateway(ctx context.Context, data *models.GitHubProfile) (*models.AIAnalysis, error) {
	contextJSON, err := json.MarshalIndent(buildAnalysisContext(data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis context: %w", err)
	}

	userPrompt := fmt.Sprintf("Analyze the following developer's GitHub data and generate a technical profile:\n\n%s", contextJSON)

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Tools: []chatTool{{
			Type: "function",
			Function: chatFunction{
				Name:        "generate_tech_profile",
				Description: "Generate a structured technical profile analysis",
				Parameters:  profileToolSchema,
			},
		}},
		ToolChoice: map[string]interface{}{
			"type":     "function",
			"function": map[string]string{"name": "generate_tech_profile"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode AI request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AI gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AI gateway returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode AI response: %w", err)
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("AI response contained no choices")
	}

	message := chat.Choices[0].Message
	var arguments string
	if len(message.ToolCalls) > 0 {
		arguments = message.ToolCalls[0].Function.Arguments
	} else if start := strings.Index(message.Content, "{"); start >= 0 {
		// Some models put the JSON in the content instead of a tool call
		end := strings.LastIndex(message.Content, "}")
		if end > start {
			arguments = message.Content[start : end+1]
		}
	}
	if arguments == "" {
		return nil, fmt.Errorf("AI response contained no analysis")
	}

	var analysis models.AIAnalysis
	if err := json.Unmarshal([]byte(arguments), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	return &analysis, nil
}

func buildAnalysisContext(data *models.GitHubProfile) analysisContext {
	ac := analysisContext{
		Username:           data.User.Login,
		Name:               data.User.Name,
		Bio:                data.User.Bio,
		TotalRepos:         data.Stats.TotalRepos,
		TotalStars:         data.Stats.TotalStars,
		TotalContributions: data.Contributions.Total,
		TopLanguages:       languageNames(data.Languages, 5),
	}

	repoLimit := 10
	if len(data.Repositories) < repoLimit {
		repoLimit = len(data.Repositories)
	}
	for _, repo := range data.Repositories[:repoLimit] {
		commitLimit := 5
		if len(repo.RecentCommits) < commitLimit {
			commitLimit = len(repo.RecentCommits)
		}
		messages := make([]string, 0, commitLimit)
		for _, commit := range repo.RecentCommits[:commitLimit] {
			messages = append(messages, commit.Message)
		}
		ac.Repositories = append(ac.Repositories, analysisRepository{
			Name:          repo.Name,
			Description:   repo.Description,
			Language:      repo.Language,
			Stars:         repo.Stars,
			CommitCount:   repo.CommitCount,
			RecentCommits: messages,
		})
	}

	return ac
}

// FallbackAnalysis derives a deterministic technical profile from the data
// alone. The dominant language class picks frontend- or backend-leaning
// default scores.
func FallbackAnalysis(data *models.GitHubProfile) *models.AIAnalysis {
	topLanguage := "JavaScript"
	if len(data.Languages) > 0 {
		topLanguage = data.Languages[0].Name
	}
	isFrontend := frontendLanguages[topLanguage]

	displayName := data.User.Login
	if data.User.Name != nil && *data.User.Name != "" {
		displayName = *data.User.Name
	}

	expertise := languageNames(data.Languages, 3)
	if len(expertise) == 0 {
		expertise = []string{"JavaScript"}
	}

	primaryRole := "Backend Developer"
	frontendScore, backendScore := 45, 70
	if isFrontend {
		primaryRole = "Frontend Developer"
		frontendScore, backendScore = 75, 50
	}

	topProject := "unknown"
	if len(data.Repositories) > 0 {
		topProject = data.Repositories[0].Name
	}

	return &models.AIAnalysis{
		Summary: fmt.Sprintf("%s is an active developer with %d public repositories, working primarily in %s.",
			displayName, data.Stats.TotalRepos, topLanguage),
		Highlights: []string{
			fmt.Sprintf("Works across %s", strings.Join(expertise, ", ")),
			fmt.Sprintf("Earned %d stars across public repositories", data.Stats.TotalStars),
			fmt.Sprintf("%d recorded contributions", data.Contributions.Total),
		},
		TechProfile: models.TechProfile{
			PrimaryRole: primaryRole,
			Expertise:   expertise,
			Style:       "Quality-focused",
		},
		Skills: models.Skills{
			Frontend:      frontendScore,
			Backend:       backendScore,
			DevOps:        40,
			Algorithms:    55,
			Architecture:  50,
			Documentation: 45,
		},
		Insights: []string{
			fmt.Sprintf("Most active project is %s", topProject),
			fmt.Sprintf("Prefers the %s stack", topLanguage),
		},
		Recommendations: []string{
			"Consider adding more detailed documentation to projects",
			"Consider contributing to more open source communities",
		},
		Personality: "Curious technology explorer",
	}
}

func languageNames(languages []models.LanguageUsage, limit int) []string {
	if len(languages) < limit {
		limit = len(languages)
	}
	names := make([]string, 0, limit)
	for _, language := range languages[:limit] {
		names = append(names, language.Name)
	}
	return names
}
