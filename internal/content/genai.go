package content

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for scenario generation.
const DefaultModel = "gemini-2.5-flash"

// APIKeyEnvVars are checked in order when no explicit variable is configured.
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}

// Generator produces a JSON document conforming to schema.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	Name() string
}

// GenAIGenerator calls the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a Gemini-backed generator.
func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

// GenerateJSON requests a JSON response constrained by schema.
func (g *GenAIGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("GenAI returned no text")
	}
	return text, nil
}

// Name returns the generator name.
func (g *GenAIGenerator) Name() string {
	return "genai:" + g.model
}

// LookupAPIKey returns the key from envVar, or from APIKeyEnvVars when envVar is empty.
func LookupAPIKey(envVar string) string {
	if envVar != "" {
		return strings.TrimSpace(os.Getenv(envVar))
	}
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func documentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":   {Type: genai.TypeString, Description: "A unique identifier for the document, e.g. doc-1"},
				"name": {Type: genai.TypeString, Description: `e.g. "Company Picnic Menu"`},
				"sensitivity": {
					Type:        genai.TypeString,
					Enum:        []string{"Public", "Internal", "Confidential"},
					Description: "The sensitivity level of the document.",
				},
			},
			Required: []string{"id", "name", "sensitivity"},
		},
	}
}

func emailSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":          {Type: genai.TypeString, Description: "A unique identifier for the email, e.g. email-1"},
				"sender":      {Type: genai.TypeString, Description: `e.g. "IT Support" or "rewards@a-mazon.com"`},
				"subject":     {Type: genai.TypeString, Description: `e.g. "Urgent Password Reset Required"`},
				"bodyPreview": {Type: genai.TypeString, Description: "A short preview of the email body, max 15 words."},
				"isPhishing":  {Type: genai.TypeBoolean, Description: "True if the email is a phishing attempt."},
			},
			Required: []string{"id", "sender", "subject", "bodyPreview", "isPhishing"},
		},
	}
}

const documentPrompt = `Generate a list of 5 documents for a data security training game. ` +
	`Each document needs a unique id, a name, and a sensitivity level ('Public', 'Internal', or 'Confidential'). ` +
	`Include at least one of each sensitivity level. Document names must be realistic for a corporate environment.`

const emailPrompt = `Generate a list of 5 emails for a phishing detection game. ` +
	`Each email needs a unique id, a sender, a subject, a short body preview, and a boolean "isPhishing" flag. ` +
	`Include 2-3 phishing emails; the rest are legitimate. Make the phishing attempts subtle and realistic.`
