package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func chatResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-5-mini",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
}

func TestClient_GenerateFlashcards(t *testing.T) {
	tests := []struct {
		name              string
		theme             string
		numCards          int
		language          string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantCards       []CardContent
		wantError       bool
		wantErrorString string
	}{
		{
			name:     "Success with plain JSON reply",
			theme:    "photosynthesis",
			numCards: 2,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Equal(t, "gpt-5-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, RoleSystem, reqBody.Messages[0].Role)
				assert.Contains(t, reqBody.Messages[1].Content, "Generate 2 flashcards")
				assert.Contains(t, reqBody.Messages[1].Content, "photosynthesis")

				json.NewEncoder(w).Encode(chatResponse(`{"flashcards":[{"front":"What pigment absorbs light?","back":"Chlorophyll"},{"front":"Where does it happen?","back":"Chloroplasts"}]}`))
			},
			wantCards: []CardContent{
				{Front: "What pigment absorbs light?", Back: "Chlorophyll"},
				{Front: "Where does it happen?", Back: "Chloroplasts"},
			},
		},
		{
			name:     "Success with prose-wrapped JSON",
			theme:    "rios do Brasil",
			numCards: 1,
			language: "pt",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Contains(t, reqBody.Messages[1].Content, "Gere 1 flashcards")
				assert.Contains(t, reqBody.Messages[1].Content, "Responda em português")

				content := "Here you go:\n```json\n" +
					`{"flashcards":[{"front":"Qual o maior rio?","back":"Amazonas"}]}` +
					"\n```"
				json.NewEncoder(w).Encode(chatResponse(content))
			},
			wantCards: []CardContent{{Front: "Qual o maior rio?", Back: "Amazonas"}},
		},
		{
			name:     "Card count above the cap is clamped",
			theme:    "history",
			numCards: 500,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Contains(t, reqBody.Messages[1].Content, "Generate 50 flashcards")

				json.NewEncoder(w).Encode(chatResponse(`{"flashcards":[{"front":"Q","back":"A"}]}`))
			},
			wantCards: []CardContent{{Front: "Q", Back: "A"}},
		},
		{
			name:     "Card count below the floor is clamped",
			theme:    "history",
			numCards: -3,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				require.NoError(t, err)
				assert.Contains(t, reqBody.Messages[1].Content, "Generate 1 flashcards")

				json.NewEncoder(w).Encode(chatResponse(`{"flashcards":[{"front":"Q","back":"A"}]}`))
			},
			wantCards: []CardContent{{Front: "Q", Back: "A"}},
		},
		{
			name:     "Empty flashcard list is a failure",
			theme:    "anything",
			numCards: 5,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse(`{"flashcards":[]}`))
			},
			wantError:       true,
			wantErrorString: "no flashcards",
		},
		{
			name:     "Blank cards are dropped, all blank is a failure",
			theme:    "anything",
			numCards: 5,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse(`{"flashcards":[{"front":" ","back":""},{"front":"","back":"x"}]}`))
			},
			wantError:       true,
			wantErrorString: "no flashcards",
		},
		{
			name:     "Reply without JSON object is a failure",
			theme:    "anything",
			numCards: 5,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse("Sorry, I cannot help with that."))
			},
			wantError:       true,
			wantErrorString: "no JSON object",
		},
		{
			name:     "Server error surfaces status",
			theme:    "anything",
			numCards: 5,
			language: "en",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"boom"}`))
			},
			wantError:       true,
			wantErrorString: "response error 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient: resty.New().SetBaseURL(server.URL),
				model:      "gpt-5-mini",
			}
			defer client.Close()

			cards, err := client.GenerateFlashcards(context.Background(), tt.theme, tt.numCards, tt.language)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCards, cards)
		})
	}
}

func TestClient_GenerateFlashcards_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := &Client{
		httpClient: resty.New().SetBaseURL(server.URL),
		model:      "gpt-5-mini",
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateFlashcards(ctx, "theme", 5, "en")
	require.Error(t, err)
}
