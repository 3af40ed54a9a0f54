// Package openaivision is an example bot.Descriptor: it forwards each
// decoded frame to an OpenAI vision-capable chat completion and routes the
// model's text response back as an analysis Message. It exists to exercise
// pipeline.Run end to end in tests/examples; it is never wired as the
// module's default bot (spec.md §9's anti-registry redesign flag — a bot is
// always an explicit argument).
//
// Grounded on C360Studio-semstreams/pkg/embedding.HTTPEmbedder's
// openai.Client construction (BaseURL override, default-config-plus-HTTP-
// client shape), adapted from embeddings to chat completions.
package openaivision

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/satori-video/streams/bot"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// Config configures the OpenAI vision bot.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string // defaults to "gpt-4o-mini"
	Prompt  string // defaults to a generic "describe what you see" prompt
	Timeout time.Duration
}

// Bot is a bot.Descriptor forwarding decoded frames to a vision model.
type Bot struct {
	client *openai.Client
	model  string
	prompt string
}

// New builds a Bot from cfg.
func New(cfg Config) (*Bot, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaivision: base_url is required")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = "Describe anything notable in this frame in one sentence."
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "dummy-key"
	}
	oaiConfig := openai.DefaultConfig(apiKey)
	oaiConfig.BaseURL = cfg.BaseURL
	oaiConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Bot{
		client: openai.NewClientWithConfig(oaiConfig),
		model:  model,
		prompt: prompt,
	}, nil
}

// Run implements bot.Descriptor.
func (b *Bot) Run(in stream.Publisher[bot.Input]) stream.Publisher[bot.Message] {
	return stream.FlatMap(in, func(input bot.Input) stream.Publisher[bot.Message] {
		if input.Frame == nil {
			return stream.Empty[bot.Message]()
		}
		msg, err := b.analyze(*input.Frame)
		if err != nil {
			return stream.Of(bot.Message{
				Kind:    bot.KindDebug,
				Payload: map[string]any{"error": err.Error()},
			})
		}
		return stream.Of(msg)
	})
}

func (b *Bot) analyze(frame packet.ImageFrame) (bot.Message, error) {
	dataURL, err := frameToDataURL(frame)
	if err != nil {
		return bot.Message{}, fmt.Errorf("openaivision: encode frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: b.prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return bot.Message{}, fmt.Errorf("openaivision: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return bot.Message{}, fmt.Errorf("openaivision: empty response")
	}

	return bot.Message{
		Kind: bot.KindAnalysis,
		Payload: map[string]any{
			"frame_id":    frame.ID.String(),
			"description": resp.Choices[0].Message.Content,
		},
	}, nil
}

// frameToDataURL renders an ImageFrame's packed RGBA plane (plane 0) as a
// PNG data URL. Planar formats are out of scope for this example bot: a
// production bot would convert via the codec façade before reaching this
// point (spec.md's image_packet is deliberately format-agnostic).
func frameToDataURL(frame packet.ImageFrame) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, int(frame.Width), int(frame.Height)))
	stride := int(frame.PlaneStrides[0])
	plane := frame.PlaneData[0]
	for y := 0; y < int(frame.Height); y++ {
		for x := 0; x < int(frame.Width); x++ {
			off := y*stride + x*4
			if off+4 > len(plane) {
				continue
			}
			img.Set(x, y, color.RGBA{R: plane[off], G: plane[off+1], B: plane[off+2], A: plane[off+3]})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
