package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// DefaultHuggingFaceEndpoint is the hosted inference API base URL
	DefaultHuggingFaceEndpoint = "https://api-inference.huggingface.co/models"
	// DefaultHuggingFaceModel is a small extractive QA model fine-tuned on SQuAD
	DefaultHuggingFaceModel = "distilbert-base-uncased-distilled-squad"

	maxResponseSize = 4 << 20
)

// HuggingFaceModel calls a question-answering inference endpoint over HTTP
type HuggingFaceModel struct {
	Client   *http.Client
	Endpoint string
	Model    string
	Token    string
}

// NewHuggingFaceModel creates a client for the given endpoint and model.
// When model is empty the endpoint is used as the full inference URL.
func NewHuggingFaceModel(endpoint, model, token string) (*HuggingFaceModel, error) {
	if endpoint == "" {
		endpoint = DefaultHuggingFaceEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("invalid endpoint %q: must be an http(s) URL", endpoint)
	}

	return &HuggingFaceModel{
		Client:   &http.Client{},
		Endpoint: strings.TrimRight(endpoint, "/"),
		Model:    model,
		Token:    token,
	}, nil
}

type hfInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type hfParameters struct {
	TopK         int `json:"top_k,omitempty"`
	MaxAnswerLen int `json:"max_answer_len,omitempty"`
}

type hfRequest struct {
	Inputs     hfInputs     `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

// URL returns the inference URL requests are sent to
func (h *HuggingFaceModel) URL() string {
	if h.Model == "" {
		return h.Endpoint
	}
	return h.Endpoint + "/" + h.Model
}

// Load sends a probe question so a missing or incompatible model fails fast
func (h *HuggingFaceModel) Load(ctx context.Context) error {
	_, err := h.Answer(ctx, "What is this?", "This is a probe.", Options{TopK: 1})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelUnavailable, h.URL(), err)
	}
	return nil
}

// Answer runs one extractive QA inference
func (h *HuggingFaceModel) Answer(ctx context.Context, question, passage string, opts Options) ([]Span, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: hfInputs{Question: question, Context: passage},
		Parameters: hfParameters{
			TopK:         opts.TopK,
			MaxAnswerLen: opts.MaxAnswerLength,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(data, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		return nil, fmt.Errorf("inference endpoint returned %d: %s", resp.StatusCode, msg)
	}

	return parseHFSpans(data)
}

// Close drops idle keep-alive connections
func (h *HuggingFaceModel) Close() error {
	h.Client.CloseIdleConnections()
	return nil
}

// parseHFSpans accepts either a single answer object or an array of them;
// the endpoint returns a bare object when top_k is 1.
func parseHFSpans(data []byte) ([]Span, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON response")
	}

	result := gjson.ParseBytes(data)
	if msg := result.Get("error"); msg.Exists() {
		return nil, fmt.Errorf("inference error: %s", msg.String())
	}

	var items []gjson.Result
	switch {
	case result.IsArray():
		items = result.Array()
	case result.IsObject():
		items = []gjson.Result{result}
	default:
		return nil, fmt.Errorf("unexpected response type")
	}

	spans := make([]Span, 0, len(items))
	for _, item := range items {
		answer := item.Get("answer")
		if !answer.Exists() {
			return nil, fmt.Errorf("response item missing answer field")
		}
		spans = append(spans, Span{
			Answer: answer.String(),
			Score:  item.Get("score").Float(),
		})
	}
	return spans, nil
}
