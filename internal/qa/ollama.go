package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"github.com/tidwall/gjson"
)

// DefaultOllamaModel is used when the ollama backend is selected without a model name
const DefaultOllamaModel = "phi3-mini"

// OllamaModel asks a local Ollama model to extract answer spans as JSON
type OllamaModel struct {
	Client *api.Client
	Model  string

	http *http.Client
}

// NewOllamaModel creates a new Ollama QA client. An empty host falls back to OLLAMA_HOST.
func NewOllamaModel(host string, model string) (*OllamaModel, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid ollama host %q", host)
		}
		hostURL = u
	}
	if model == "" {
		model = DefaultOllamaModel
	}

	httpClient := &http.Client{}
	return &OllamaModel{
		Client: api.NewClient(hostURL, httpClient),
		Model:  model,
		http:   httpClient,
	}, nil
}

// Load checks that the model is present on the server
func (o *OllamaModel) Load(ctx context.Context) error {
	if _, err := o.Client.Show(ctx, &api.ShowRequest{Model: o.Model}); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, o.Model, err)
	}
	return nil
}

// GeneratePrompt creates an extraction prompt for one passage
func (o *OllamaModel) GeneratePrompt(question, passage string, opts Options) string {
	var promptBuilder strings.Builder

	promptBuilder.WriteString("You are an extractive question answering system. ")
	promptBuilder.WriteString("Copy the answer to the question verbatim from the passage; never paraphrase. ")
	promptBuilder.WriteString(fmt.Sprintf("Return up to %d candidate answers, each at most %d characters, ", opts.TopK, opts.MaxAnswerLength))
	promptBuilder.WriteString("with a confidence score between 0 and 1. ")
	promptBuilder.WriteString(`Respond only with JSON of the form {"answers":[{"answer":"...","score":0.0}]}. `)
	promptBuilder.WriteString(`If the passage does not answer the question respond with {"answers":[]}.` + "\n\n")

	promptBuilder.WriteString("Passage:\n")
	promptBuilder.WriteString(passage)
	promptBuilder.WriteString("\n\n")

	promptBuilder.WriteString("Question: " + question + "\n")

	return promptBuilder.String()
}

// Answer generates answer spans for a passage
func (o *OllamaModel) Answer(ctx context.Context, question, passage string, opts Options) ([]Span, error) {
	stream := false
	req := api.GenerateRequest{
		Model:  o.Model,
		Prompt: o.GeneratePrompt(question, passage, opts),
		Format: json.RawMessage(`"json"`),
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0,
		},
	}

	var responseBuilder strings.Builder

	err := o.Client.Generate(ctx, &req, func(resp api.GenerateResponse) error {
		_, err := responseBuilder.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	return parseOllamaSpans(responseBuilder.String(), passage, opts.MaxAnswerLength)
}

// Close drops idle keep-alive connections
func (o *OllamaModel) Close() error {
	o.http.CloseIdleConnections()
	return nil
}

// parseOllamaSpans keeps only answers that occur in the passage, using the
// passage's own casing, clipped to maxLen characters.
func parseOllamaSpans(raw, passage string, maxLen int) ([]Span, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}

	var spans []Span
	for _, item := range gjson.Get(raw, "answers").Array() {
		answer, ok := locate(passage, strings.TrimSpace(item.Get("answer").String()))
		if !ok {
			continue
		}
		if maxLen > 0 {
			if r := []rune(answer); len(r) > maxLen {
				answer = string(r[:maxLen])
			}
		}
		spans = append(spans, Span{Answer: answer, Score: item.Get("score").Float()})
	}
	return spans, nil
}

// locate finds answer in passage, falling back to a case-insensitive match
func locate(passage, answer string) (string, bool) {
	if answer == "" {
		return "", false
	}
	if strings.Contains(passage, answer) {
		return answer, true
	}

	lower := strings.ToLower(passage)
	if len(lower) != len(passage) {
		return "", false
	}
	i := strings.Index(lower, strings.ToLower(answer))
	if i < 0 || i+len(answer) > len(passage) {
		return "", false
	}
	return passage[i : i+len(answer)], true
}
