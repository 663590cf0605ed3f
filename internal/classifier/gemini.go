package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini classifies titles with a generative model. It sends the whole
// batch in one prompt and expects a strict JSON array of booleans back.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a model-backed classifier. Credentials come from the
// environment, same as the rest of the Google clients.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Predict(ctx context.Context, titles []string) ([]bool, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	prompt := "You are a relevance filter for a personal finance pipeline.\n\n" +
		"Task:\n" +
		"- For each email subject below, decide whether it announces a completed\n" +
		"  financial transaction (payment, transfer, top-up, receipt).\n" +
		"- Marketing, OTP, statement and account-security mail is NOT relevant.\n" +
		"- Output STRICT JSON only: a JSON array of booleans, one per subject,\n" +
		"  in the same order.\n" +
		"- Do NOT wrap the response in code fences.\n" +
		"- Output must begin with \"[\" and end with \"]\".\n\n" +
		"Subjects:\n"
	for i, t := range titles {
		prompt += fmt.Sprintf("%d. %s\n", i+1, t)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Predict: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Predict: empty response from model")
	}

	var verdicts []bool
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &verdicts); err != nil {
		return nil, fmt.Errorf("Predict: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	if len(verdicts) != len(titles) {
		return nil, fmt.Errorf("Predict: got %d verdicts for %d subjects", len(verdicts), len(titles))
	}
	return verdicts, nil
}

// cleanModelJSON strips Markdown fences when the model ignores the
// raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
