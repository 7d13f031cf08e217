// Package suggest proxies message-suggestion requests to a hosted
// text-generation model and streams the result back.
//
// The endpoint is a passthrough: the prompt is fixed server-side, the
// model's output flows to the client unparsed. Without an API key it
// serves a static suggestion set so the page works in development.
package suggest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dalemusser/whisperbox/internal/app/system/apiresp"
	"github.com/dalemusser/whisperbox/internal/app/system/schemas"
	"go.uber.org/zap"
)

const prompt = "Create a list of three open-ended and engaging questions " +
	"formatted as a single string. Each question should be separated by '||'. " +
	"These questions are for an anonymous social messaging platform and " +
	"should be suitable for a diverse audience. Avoid personal or sensitive " +
	"topics, focusing instead on universal themes that encourage friendly " +
	"interaction."

const fallbackSuggestions = "What's a hobby you've recently started?||" +
	"If you could have dinner with any historical figure, who would it be?||" +
	"What's a simple thing that makes you happy?"

type Handler struct {
	APIURL string // OpenAI-compatible completions endpoint
	APIKey string
	Model  string
	Client *http.Client
	Log    *zap.Logger
}

func NewHandler(apiURL, apiKey, model string, logger *zap.Logger) *Handler {
	return &Handler{
		APIURL: apiURL,
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 30 * time.Second},
		Log:    logger,
	}
}

// HandleSuggest handles POST /api/suggest-messages.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var req schemas.SuggestMessagesRequest
	// Body is optional; an empty or absent body means the default topic.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := req.Validate(); err != nil {
		apiresp.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.APIKey == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, fallbackSuggestions)
		return
	}

	fullPrompt := prompt
	if req.Topic != "" {
		fullPrompt += " Theme the questions around: " + req.Topic
	}

	body, err := json.Marshal(map[string]any{
		"model":  h.Model,
		"stream": true,
		"messages": []map[string]string{
			{"role": "user", "content": fullPrompt},
		},
	})
	if err != nil {
		apiresp.ServerError(w, h.Log, "suggest: marshal request", err)
		return
	}

	upstream, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.APIURL, bytes.NewReader(body))
	if err != nil {
		apiresp.ServerError(w, h.Log, "suggest: build request", err)
		return
	}
	upstream.Header.Set("Content-Type", "application/json")
	upstream.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := h.Client.Do(upstream)
	if err != nil {
		apiresp.ServerError(w, h.Log, "suggest: call model", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.Log.Warn("suggest: model returned non-200",
			zap.Int("status", resp.StatusCode))
		apiresp.Fail(w, http.StatusBadGateway, "Suggestion service unavailable")
		return
	}

	// Stream the model output through unchanged.
	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				h.Log.Debug("suggest: stream ended", zap.Error(err))
			}
			return
		}
	}
}
