// Package ai turns resolved evolution lines into short prose narratives
// using the Gemini API.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/duynguyendang/digivolve/pkg/evolution"
)

const (
	defaultModel = "gemini-2.0-flash-exp"
	promptPath   = "prompts/lineage_narrative.prompt"
)

type Narrator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	prompt *Prompt // nil falls back to the built-in template
}

func NewNarrator(ctx context.Context, apiKey, modelName string) (*Narrator, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not found")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt, err := LoadPrompt(promptPath)
	if err != nil {
		slog.Warn("narrative prompt not loaded, using built-in prompt", "path", promptPath, "err", err)
		prompt = nil
	}

	if modelName == "" {
		modelName = os.Getenv("GEMINI_MODEL")
	}
	if modelName == "" && prompt != nil {
		modelName = prompt.Config.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7) // Narratives read better with some variety
	if prompt != nil && prompt.Config.Temperature > 0 {
		model.SetTemperature(prompt.Config.Temperature)
	}

	return &Narrator{client: client, model: model, prompt: prompt}, nil
}

func (n *Narrator) Close() error {
	return n.client.Close()
}

// Narrate describes the evolution line in a few sentences. Multiple entries
// (duplicate names in the dataset) are all fed to the prompt.
func (n *Narrator) Narrate(ctx context.Context, entries []evolution.Lineage) (string, error) {
	promptStr := builtinPrompt(entries)
	if n.prompt != nil {
		if s, err := n.prompt.Execute(map[string]interface{}{"entries": lineageBlock(entries)}); err == nil {
			promptStr = s
		}
	}

	resp, err := n.model.GenerateContent(ctx, genai.Text(promptStr))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "No response from AI.", nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

// lineageBlock renders the resolved entries as the data section of a prompt.
func lineageBlock(entries []evolution.Lineage) string {
	var sb strings.Builder
	sb.WriteString("## Evolution Data\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("\n### %s\n", e.Current.Name))
		if e.Current.Stage != nil {
			sb.WriteString(fmt.Sprintf("Stage: %s\n", *e.Current.Stage))
		}
		if e.Current.Attribute != nil {
			sb.WriteString(fmt.Sprintf("Attribute: %s\n", *e.Current.Attribute))
		}
		sb.WriteString(fmt.Sprintf("Evolves from: %s\n", refList(e.Predecessors)))
		sb.WriteString(fmt.Sprintf("Evolves to: %s\n", refList(e.Successors)))
	}
	return sb.String()
}

func builtinPrompt(entries []evolution.Lineage) string {
	return fmt.Sprintf(`You are a Digimon lore expert.
Write a short narrative (2-3 sentences) describing this evolution line for a fan wiki.

%s

Mention the stages the line passes through. Stick to the data provided and do not invent evolutions.`, lineageBlock(entries))
}

func refList(refs []evolution.Ref) string {
	if len(refs) == 0 {
		return "none"
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}
