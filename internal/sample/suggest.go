package sample

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/avolkov/threadsieve/internal/model"
)

// maxProposalChars truncates long bodies before they reach the prompt.
const maxProposalChars = 300

// Proposer pre-fills labels for a sampled batch. Proposals are always
// pending human confirmation.
type Proposer interface {
	Name() string
	Propose(ctx context.Context, batch []Candidate) ([]model.Label, error)
}

// OpenAIProposer asks a chat model to classify batch items.
type OpenAIProposer struct {
	client *openai.Client
	cfg    model.ProposerConfig
}

// NewOpenAIProposer creates a proposer from configuration.
func NewOpenAIProposer(cfg model.ProposerConfig) (*OpenAIProposer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("proposer API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIProposer{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProposer) Name() string { return "openai" }

// Propose returns one label per batch item. Items the model failed to
// answer for are left empty.
func (p *OpenAIProposer) Propose(ctx context.Context, batch []Candidate) ([]model.Label, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	chatModel := p.cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You label forum posts for a laptop-discussion corpus. " +
					"A post is relevant when it is about laptops or notebook hardware; " +
					"posts about desktops, consoles, handhelds or unrelated topics are irrelevant.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(batch),
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("propose labels: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	return parseProposals(resp.Choices[0].Message.Content, len(batch)), nil
}

func buildPrompt(batch []Candidate) string {
	var b strings.Builder
	b.WriteString("Label each numbered post as `relevant` or `irrelevant`. ")
	b.WriteString("Answer with one line per post in the form `<number>: <label>`.\n\n")
	for i, c := range batch {
		text := c.Text
		if len(text) > maxProposalChars {
			text = text[:maxProposalChars]
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(text, "\n", " "))
	}
	return b.String()
}

func parseProposals(answer string, n int) []model.Label {
	out := make([]model.Label, n)
	for _, line := range strings.Split(answer, "\n") {
		num, rest, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || i < 1 || i > n {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(rest)) {
		case "relevant":
			out[i-1] = model.LabelRelevant
		case "irrelevant":
			out[i-1] = model.LabelIrrelevant
		}
	}
	return out
}
