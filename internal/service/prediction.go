package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mindplate/backend/internal/model"
)

// ErrPredictionFailed is returned when the AI service could not produce
// a usable answer after all retries.
var ErrPredictionFailed = errors.New("prediction request failed")

// NutrientPrediction is the parsed output of a brain-nutrient
// prediction: values keyed by canonical nutrient name, plus the model's
// self-reported confidence per nutrient.
type NutrientPrediction struct {
	Values      map[string]float64
	Confidences map[string]float64
}

// Message represents a message in the chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the DeepSeek API.
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// PredictionService asks a DeepSeek-style chat-completions API to
// estimate brain nutrients and mental health impacts for a food.
type PredictionService struct {
	apiKey string
	apiURL string
	client *http.Client

	minInterval    time.Duration
	maxRetries     int
	initialBackoff time.Duration
	backoffFactor  float64

	// mu guards lastRequest; concurrent batch workers share one client.
	mu          sync.Mutex
	lastRequest time.Time
}

// NewPredictionService creates a PredictionService instance. The API key
// comes from DEEPSEEK_API_KEY or the file named by DEEPSEEK_API_KEY_FILE.
func NewPredictionService() (*PredictionService, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("DEEPSEEK_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY or DEEPSEEK_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("DEEPSEEK_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}

	return &PredictionService{
		apiKey:         apiKey,
		apiURL:         apiURL,
		client:         &http.Client{Timeout: 60 * time.Second},
		minInterval:    500 * time.Millisecond,
		maxRetries:     3,
		initialBackoff: time.Second,
		backoffFactor:  2.0,
	}, nil
}

// PredictBrainNutrients asks the model to estimate the listed brain
// nutrients from the food's name, category and standard nutrition panel.
// The response maps each nutrient to a number, with confidence_<name>
// keys carrying the model's 1-10 confidence.
func (s *PredictionService) PredictBrainNutrients(ctx context.Context, food *model.Food, targets []string) (*NutrientPrediction, error) {
	prompt := fmt.Sprintf("Estimate the following brain nutrients per 100g of %q", food.Name)
	if food.Category != "" {
		prompt += fmt.Sprintf(" (category: %s)", food.Category)
	}
	prompt += ":\n" + strings.Join(targets, "\n")
	if panel, err := json.Marshal(food.StandardNutrients); err == nil {
		prompt += "\n\nKnown standard nutrients per 100g:\n" + string(panel)
	}

	messages := []Message{
		{
			Role: "system",
			Content: `You are a nutritional biochemistry expert. Respond only with a JSON object mapping each requested nutrient name to a number, plus a "confidence_<name>" key for each, rating your confidence from 1 to 10. Example:
{
    "tryptophan_mg": 250,
    "confidence_tryptophan_mg": 7,
    "omega3.total_g": 1.2,
    "confidence_omega3.total_g": 6
}
All values must be numbers, not strings. Omit nutrients you cannot estimate.`,
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	content, err := s.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse nutrient prediction: %w", err)
	}

	pred := &NutrientPrediction{
		Values:      make(map[string]float64),
		Confidences: make(map[string]float64),
	}
	for key, value := range raw {
		var num float64
		if err := json.Unmarshal(value, &num); err != nil {
			// Non-numeric values are dropped rather than failing the item.
			continue
		}
		if name, ok := strings.CutPrefix(key, "confidence_"); ok {
			pred.Confidences[name] = num
		} else {
			pred.Values[key] = num
		}
	}

	return pred, nil
}

// PredictMentalHealthImpacts asks the model for a list of mental health
// impact objects for the food.
func (s *PredictionService) PredictMentalHealthImpacts(ctx context.Context, food *model.Food) ([]model.MentalHealthImpact, error) {
	prompt := fmt.Sprintf("List the documented mental health impacts of %q", food.Name)
	if food.Category != "" {
		prompt += fmt.Sprintf(" (category: %s)", food.Category)
	}

	messages := []Message{
		{
			Role: "system",
			Content: `You are a nutritional psychiatry researcher. Respond only with JSON of the form:
{
    "impacts": [
        {
            "impact_type": "One of: mood_elevation, mood_depression, anxiety_reduction, anxiety_increase, cognitive_enhancement, cognitive_decline, energy_increase, energy_decrease, stress_reduction, sleep_improvement, gut_health_improvement",
            "direction": "positive, negative, mixed or neutral",
            "mechanism": "Brief mechanistic explanation",
            "strength": 5,
            "confidence": 6,
            "time_to_effect": "acute, cumulative or both"
        }
    ]
}
The strength and confidence fields must be numbers from 1 to 10.`,
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	content, err := s.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Impacts []model.MentalHealthImpact `json:"impacts"`
	}
	if err := json.Unmarshal([]byte(content), &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse impact prediction: %w", err)
	}

	return wrapper.Impacts, nil
}

// throttle reserves the next send slot, keeping requests at least
// minInterval apart even across concurrent callers.
func (s *PredictionService) throttle(ctx context.Context) error {
	s.mu.Lock()
	wait := s.minInterval - time.Since(s.lastRequest)
	if wait < 0 {
		wait = 0
	}
	s.lastRequest = time.Now().Add(wait)
	s.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// complete sends one chat-completions request, honoring the minimum
// inter-request interval and retrying transport errors, 429s and 5xx
// responses with exponential backoff.
func (s *PredictionService) complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := Request{
		Model:    "deepseek-chat",
		Messages: messages,
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := s.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff = time.Duration(float64(backoff) * s.backoffFactor)
		}

		if err := s.throttle(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("prediction request failed (attempt %d/%d): %v", attempt+1, s.maxRetries+1, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
			log.Printf("prediction request retryable failure (attempt %d/%d): status %d", attempt+1, s.maxRetries+1, resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var result struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(result.Choices) == 0 {
			return "", fmt.Errorf("no response from API")
		}

		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrPredictionFailed, s.maxRetries+1, lastErr)
}
