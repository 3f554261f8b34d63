package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
)

type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
)

// Gate classifies a candidate message before it may be persisted or
// broadcast. Implementations must fail closed: an unreachable or confused
// classifier is a rejection, never an approval.
type Gate interface {
	Classify(ctx context.Context, text string) Verdict
}

const screeningPrompt = "Analyze this message for profanity, hate speech, or sexual harassment " +
	"in Thai, Romanized Thai, or English. Reject messages with explicit references to body parts, " +
	"sexual acts, or inappropriate advances. Allow respectful compliments. " +
	"Respond with 'approved' or 'rejected'. Message: '%s'"

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// OllamaGate delegates classification to an Ollama generate endpoint. The
// verdict is parsed from free text: only a response containing the approval
// keyword approves, everything else rejects.
type OllamaGate struct {
	logger *zap.Logger

	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllamaGate(
	logger *zap.Logger,
	baseURL string,
	model string,
	timeout time.Duration,
) *OllamaGate {
	return &OllamaGate{
		logger:     logger,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *OllamaGate) Classify(ctx context.Context, text string) Verdict {
	lang := whatlanggo.Detect(text).Lang.Iso6391()

	response, err := g.generate(ctx, fmt.Sprintf(screeningPrompt, text))
	if err != nil {
		g.logger.Warn("classifier call failed, rejecting candidate",
			zap.String("lang", lang),
			zap.Error(err))

		return VerdictRejected
	}

	verdict := VerdictRejected
	if strings.Contains(strings.ToLower(strings.TrimSpace(response)), string(VerdictApproved)) {
		verdict = VerdictApproved
	}

	g.logger.Debug("candidate classified",
		zap.String("lang", lang),
		zap.String("verdict", string(verdict)))

	return verdict
}

func (g *OllamaGate) generate(ctx context.Context, prompt string) (string, error) {
	requestBody, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/api/generate",
		bytes.NewReader(requestBody),
	)
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := g.httpClient.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier returned status %d", response.StatusCode)
	}

	var generated generateResponse
	err = json.NewDecoder(response.Body).Decode(&generated)
	if err != nil {
		return "", err
	}

	return generated.Response, nil
}
