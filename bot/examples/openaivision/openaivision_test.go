package openaivision_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satori-video/streams/bot"
	"github.com/satori-video/streams/bot/examples/openaivision"
	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

func fakeOpenAIServer(t *testing.T, description string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": description,
					},
				},
			},
		})
	}))
}

func TestBotAnalyzesFrame(t *testing.T) {
	srv := fakeOpenAIServer(t, "a red square")
	defer srv.Close()

	b, err := openaivision.New(openaivision.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	frame := packet.ImageFrame{
		ID:           packet.ID{I1: 0, I2: 1},
		PixelFormat:  packet.PixelFormatRGBA,
		Width:        2,
		Height:       2,
		PlaneStrides: [packet.MaxImagePlanes]uint32{8},
	}
	frame.PlaneData[0] = make([]byte, 16)

	out := b.Run(stream.Of(bot.Input{Frame: &frame}, bot.Input{Control: &bot.ControlCommand{Name: "ping"}}))

	var got []bot.Message
	d := stream.Process(out, func(m bot.Message) { got = append(got, m) })
	_, err = d.Wait()
	require.NoError(t, err)

	require.Len(t, got, 1, "control inputs must not produce a bot message")
	require.Equal(t, bot.KindAnalysis, got[0].Kind)
	require.Equal(t, "a red square", got[0].Payload["description"])
}
