package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
	"github.com/tjfontaine/wirebridge/internal/ir"
)

// OpenAICounter counts tokens for OpenAI models using tiktoken.
type OpenAICounter struct {
	matcher *ModelMatcher
	// codecCache caches tokenizer codecs by encoding name
	codecCache map[tokenizer.Encoding]tokenizer.Codec
	cacheMu    sync.RWMutex
}

// NewOpenAICounter creates an OpenAI token counter.
func NewOpenAICounter() *OpenAICounter {
	return &OpenAICounter{
		matcher: NewModelMatcher(
			// "o" prefixes cover the o1, o3, o4 reasoning families
			[]string{"gpt-", "o1", "o3", "o4", "text-embedding", "text-davinci"},
			[]string{"davinci", "curie", "babbage", "ada"},
		),
		codecCache: make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

func (c *OpenAICounter) getCodec(model string) (tokenizer.Codec, error) {
	codec, err := tokenizer.ForModel(mapModelName(model))
	if err == nil {
		return codec, nil
	}

	encoding := modelToEncoding(model)

	c.cacheMu.RLock()
	if cached, ok := c.codecCache[encoding]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	codec, err = tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}

	c.cacheMu.Lock()
	c.codecCache[encoding] = codec
	c.cacheMu.Unlock()

	return codec, nil
}

// mapModelName maps a model string to tokenizer.Model
func mapModelName(model string) tokenizer.Model {
	model = strings.ToLower(model)

	switch {
	case model == "gpt-5-mini" || strings.HasPrefix(model, "gpt-5-mini-"):
		return tokenizer.GPT5Mini
	case model == "gpt-5-nano" || strings.HasPrefix(model, "gpt-5-nano-"):
		return tokenizer.GPT5Nano
	case strings.HasPrefix(model, "gpt-5"):
		return tokenizer.GPT5
	case strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-41"):
		return tokenizer.GPT41
	case strings.HasPrefix(model, "gpt-4o"):
		return tokenizer.GPT4o
	case strings.HasPrefix(model, "o1"):
		if strings.Contains(model, "mini") {
			return tokenizer.O1Mini
		}
		if strings.Contains(model, "preview") {
			return tokenizer.O1Preview
		}
		return tokenizer.O1
	case strings.HasPrefix(model, "o3"):
		if strings.Contains(model, "mini") {
			return tokenizer.O3Mini
		}
		return tokenizer.O3
	case strings.HasPrefix(model, "o4"):
		return tokenizer.O4Mini
	case strings.HasPrefix(model, "gpt-4"):
		return tokenizer.GPT4
	case strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.GPT35Turbo
	case strings.HasPrefix(model, "text-embedding"):
		return tokenizer.TextEmbeddingAda002
	case strings.HasPrefix(model, "text-davinci-003"):
		return tokenizer.TextDavinci003
	case strings.HasPrefix(model, "text-davinci-002"):
		return tokenizer.TextDavinci002
	case strings.HasPrefix(model, "text-davinci"):
		return tokenizer.TextDavinci001
	case model == "davinci":
		return tokenizer.Davinci
	case model == "curie":
		return tokenizer.Curie
	case model == "babbage":
		return tokenizer.Babbage
	case model == "ada":
		return tokenizer.Ada
	default:
		return tokenizer.Model(model)
	}
}

// modelToEncoding maps model names to encodings for the fallback path.
// Newer families (gpt-5, gpt-4.1, gpt-4o, o-series) use o200k_base;
// gpt-4 and gpt-3.5 use cl100k_base; legacy completion models use the
// p50k/r50k bases.
func modelToEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-41"),
		strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"),
		strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase
	case strings.HasPrefix(model, "text-davinci"):
		return tokenizer.P50kBase
	case model == "davinci" || model == "curie" || model == "babbage" || model == "ada":
		return tokenizer.R50kBase
	default:
		return tokenizer.O200kBase
	}
}

// Count counts prompt tokens with tiktoken. Per-message overhead follows
// OpenAI's published accounting: 3 tokens per message, 1 per role, plus 3
// for the assistant priming at the end.
func (c *OpenAICounter) Count(ctx context.Context, req *ir.Request) (*Result, error) {
	codec, err := c.getCodec(req.Model)
	if err != nil {
		return nil, err
	}

	tokensPerMessage := 3
	tokensPerRole := 1

	totalTokens := 0
	for _, msg := range req.Messages {
		totalTokens += tokensPerMessage
		totalTokens += tokensPerRole

		for _, part := range msg.Content {
			switch part.Type {
			case ir.ContentText:
				ids, _, _ := codec.Encode(part.Text)
				totalTokens += len(ids)
			case ir.ContentReasoning:
				ids, _, _ := codec.Encode(part.Reasoning)
				totalTokens += len(ids)
			case ir.ContentToolResult:
				if part.ToolResult != nil {
					ids, _, _ := codec.Encode(part.ToolResult.Content)
					totalTokens += len(ids)
				}
				totalTokens += 2 // tool result framing
			}
		}

		for _, tc := range msg.ToolCalls {
			ids, _, _ := codec.Encode(tc.Name)
			totalTokens += len(ids)
			ids, _, _ = codec.Encode(tc.Arguments)
			totalTokens += len(ids)
			totalTokens += 3 // tool call framing
		}
	}

	for _, tool := range req.Tools {
		ids, _, _ := codec.Encode(tool.Name)
		totalTokens += len(ids)
		ids, _, _ = codec.Encode(tool.Description)
		totalTokens += len(ids)
		if tool.Parameters != nil {
			if b, err := json.Marshal(tool.Parameters); err == nil {
				ids, _, _ := codec.Encode(string(b))
				totalTokens += len(ids)
			}
		}
		totalTokens += 7 // tool definition framing
	}

	totalTokens += 3 // assistant priming

	return &Result{
		InputTokens: totalTokens,
		Estimated:   false,
	}, nil
}

// SupportsModel returns true for OpenAI models.
func (c *OpenAICounter) SupportsModel(model string) bool {
	return c.matcher.Matches(model)
}

// CountText counts tokens in a plain string for the given model.
func (c *OpenAICounter) CountText(model, text string) (int, error) {
	codec, err := c.getCodec(model)
	if err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
