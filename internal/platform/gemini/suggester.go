// Package gemini implements the suggestion.Suggester interface using
// Google's Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/planora/planora-api/internal/config"
	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/suggestion"
)

// promptTemplateText asks the model for a single JSON object so the
// response can be unmarshaled directly. Existing tasks are included so the
// model can propose dependencies (by id) and reuse established tags.
const promptTemplateText = `You are a task planning assistant. A user is creating a new task named:

"{{.TaskName}}"

The user's existing tasks (JSON array of {id, name, completed, tags}):
{{.ExistingTasks}}

Suggest values for the new task. Respond with ONLY a JSON object, no markdown, in this exact shape:
{
  "priority": "high" | "medium" | "low",
  "duration": <estimated hours as a number between 0.5 and 24>,
  "dependencies": [<ids of existing tasks this task likely depends on>],
  "tags": [<short lowercase tags, reusing the user's existing tags where they fit>]
}

Only include a dependency if the new task clearly requires an existing incomplete task to be finished first. Suggest at most 5 tags.`

// existingTaskContext is the per-task slice of fields sent to the model.
type existingTaskContext struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	Tags      []string  `json:"tags,omitempty"`
}

// responseSchema mirrors the JSON object the prompt asks the model for.
type responseSchema struct {
	Priority     string   `json:"priority"`
	Duration     float64  `json:"duration"`
	Dependencies []string `json:"dependencies"`
	Tags         []string `json:"tags"`
}

// GeminiSuggester implements the suggestion.Suggester interface using
// Google's Gemini API to propose task field values.
type GeminiSuggester struct {
	logger         *slog.Logger
	config         config.LLMConfig
	promptTemplate *template.Template
	client         *genai.Client
	model          string
}

var _ suggestion.Suggester = (*GeminiSuggester)(nil)

// NewGeminiSuggester creates a new GeminiSuggester.
//
// Returns an error if the logger is nil, the configuration is incomplete,
// or the Gemini client cannot be created.
func NewGeminiSuggester(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiSuggester, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}

	if cfg.ModelName == "" {
		return nil, errors.New("model name cannot be empty")
	}

	promptTemplate, err := template.New("suggestion").Parse(promptTemplateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiSuggester{
		logger:         logger.With(slog.String("component", "gemini_suggester")),
		config:         cfg,
		promptTemplate: promptTemplate,
		client:         client,
		model:          cfg.ModelName,
	}, nil
}

// Suggest proposes field values for a task with the given name. It calls
// the Gemini API with exponential backoff for transient failures and
// sanitizes the model's answer before returning it.
func (g *GeminiSuggester) Suggest(
	ctx context.Context,
	taskName string,
	existing []*domain.Task,
) (suggestion.Suggestion, error) {
	prompt, err := g.createPrompt(ctx, taskName, existing)
	if err != nil {
		return suggestion.Suggestion{}, err
	}

	parsed, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return suggestion.Suggestion{}, err
	}

	return g.sanitize(ctx, parsed, existing), nil
}

// createPrompt executes the prompt template with the task name and a JSON
// rendering of the user's existing tasks.
func (g *GeminiSuggester) createPrompt(
	ctx context.Context,
	taskName string,
	existing []*domain.Task,
) (string, error) {
	if taskName == "" {
		return "", suggestion.ErrEmptyTaskName
	}

	taskContext := make([]existingTaskContext, 0, len(existing))
	for _, t := range existing {
		taskContext = append(taskContext, existingTaskContext{
			ID:        t.ID,
			Name:      t.Name,
			Completed: t.Completed,
			Tags:      t.Tags,
		})
	}

	contextJSON, err := json.Marshal(taskContext)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task context: %w", err)
	}

	var promptBuffer bytes.Buffer
	err = g.promptTemplate.Execute(&promptBuffer, struct {
		TaskName      string
		ExistingTasks string
	}{
		TaskName:      taskName,
		ExistingTasks: string(contextJSON),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	g.logger.DebugContext(ctx, "prompt generated",
		"task_name_length", len(taskName),
		"existing_tasks", len(existing),
		"prompt_length", promptBuffer.Len())

	return promptBuffer.String(), nil
}

// callGeminiWithRetry calls the Gemini API with exponential backoff and
// jitter for transient errors. Unparseable responses are permanent and
// returned immediately without retrying.
func (g *GeminiSuggester) callGeminiWithRetry(ctx context.Context, prompt string) (*responseSchema, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err == nil {
			text := resp.Text()
			if text == "" {
				return nil, fmt.Errorf("%w: no content generated", suggestion.ErrInvalidResponse)
			}

			parsed, parseErr := parseResponse(text)
			if parseErr != nil {
				// Malformed model output won't improve on retry.
				g.logger.WarnContext(ctx, "unparseable model response, not retrying",
					"error", parseErr)
				return nil, parseErr
			}

			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return parsed, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				suggestion.ErrGenerationFailed, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", suggestion.ErrGenerationFailed, ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: failed after %d attempts", suggestion.ErrGenerationFailed, maxRetries+1)
}

// parseResponse unmarshals the model's answer, tolerating markdown code
// fences around the JSON object.
func parseResponse(text string) (*responseSchema, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed responseSchema
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", suggestion.ErrInvalidResponse, err)
	}
	return &parsed, nil
}

// sanitize clamps the model's answer to valid field values. Dependencies
// that don't reference one of the user's existing tasks are discarded, as
// are malformed ids.
func (g *GeminiSuggester) sanitize(
	ctx context.Context,
	parsed *responseSchema,
	existing []*domain.Task,
) suggestion.Suggestion {
	result := suggestion.DefaultSuggestion()

	priority := domain.Priority(strings.ToLower(parsed.Priority))
	if priority.IsValid() {
		result.Priority = priority
	}

	if parsed.Duration >= domain.MinTaskDurationHours && parsed.Duration <= domain.MaxTaskDurationHours {
		result.Duration = parsed.Duration
	}

	known := make(map[uuid.UUID]struct{}, len(existing))
	for _, t := range existing {
		known[t.ID] = struct{}{}
	}
	for _, raw := range parsed.Dependencies {
		id, err := uuid.Parse(raw)
		if err != nil {
			g.logger.DebugContext(ctx, "discarding malformed dependency id", "value", raw)
			continue
		}
		if _, ok := known[id]; ok {
			result.Dependencies = append(result.Dependencies, id)
		}
	}

	for _, tag := range parsed.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			result.Tags = append(result.Tags, tag)
		}
	}

	return result
}
