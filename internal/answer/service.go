package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/dataqa-cli/internal/ai"
	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
	"github.com/KaramelBytes/dataqa-cli/internal/observability"
	"github.com/KaramelBytes/dataqa-cli/internal/utils"
	"github.com/google/uuid"
)

// DefaultTemperature keeps answers factual rather than creative.
const DefaultTemperature = 0.3

// Status classifies an answer attempt.
type Status string

const (
	StatusOK           Status = "ok"
	StatusConfigError  Status = "config_error"
	StatusRemoteError  Status = "remote_error"
	StatusInvalidInput Status = "invalid_input"
)

// Result is what the presentation layer renders. Text holds the answer on
// success and a short diagnostic otherwise.
type Result struct {
	Status       Status `json:"status"`
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	Err          error  `json:"-"`
}

// OK reports whether the result carries an answer.
func (r Result) OK() bool { return r.Status == StatusOK }

// Config configures a Service. The credential is passed in explicitly; the
// service never reads the environment.
type Config struct {
	APIKey   string
	Provider string
	BaseURL  string
	Model    string
	// Temperature nil means DefaultTemperature; an explicit 0 is sent as 0.
	Temperature *float64
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Service answers questions about a cleaned table with one completion call each.
type Service struct {
	rt          ai.Runtime
	model       string
	temperature float64
	logger      *slog.Logger
	configErr   error
}

// NewService validates cfg and builds a client for the configured provider. A
// missing key or unknown provider returns *ai.ConfigurationError before any
// network activity.
func NewService(cfg Config) (*Service, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, &ai.ConfigurationError{Field: "model", Reason: "model cannot be empty"}
	}
	rt, err := ai.NewRuntime(ai.RuntimeConfig{
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		HTTPTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return NewServiceWithRuntime(rt, cfg), nil
}

// NewServiceWithRuntime wraps an existing runtime. Only Model, Temperature
// and Logger are read from cfg.
func NewServiceWithRuntime(rt ai.Runtime, cfg Config) *Service {
	temp := DefaultTemperature
	if cfg.Temperature != nil {
		temp = *cfg.Temperature
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.Discard()
	}
	return &Service{
		rt:          rt,
		model:       strings.TrimSpace(cfg.Model),
		temperature: temp,
		logger:      logger,
	}
}

// Unconfigured returns a service that reports err on every question. It lets a
// server start and stay up while the credential is missing.
func Unconfigured(err error) *Service {
	if err == nil {
		err = &ai.ConfigurationError{Field: "api_key", Reason: "answer service is not configured"}
	}
	return &Service{configErr: err, logger: observability.Discard()}
}

// Ready returns the configuration error, if any.
func (s *Service) Ready() error { return s.configErr }

// Model returns the model identifier sent with each request.
func (s *Service) Model() string { return s.model }

// Prompt returns the exact prompt Answer would send.
func (s *Service) Prompt(dt DatasetType, t *ingest.Table, question string) string {
	return BuildPrompt(dt, BuildSummary(t), question)
}

// Answer builds the prompt for question and issues a single completion call.
// It never panics and never returns an error: failures come back as a Result
// with a non-ok Status.
func (s *Service) Answer(ctx context.Context, dt DatasetType, t *ingest.Table, question string) (res Result) {
	callID := observability.RequestIDFromContext(ctx)
	if callID == "" {
		callID = uuid.NewString()
	}
	logger := s.logger.With(slog.String("request_id", callID))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("answer panicked", slog.Any("panic", r))
			res = Result{
				Status:    StatusRemoteError,
				Text:      "Something went wrong while contacting the model. Please try again.",
				Model:     s.model,
				RequestID: callID,
				Err:       fmt.Errorf("panic during answer: %v", r),
			}
		}
		observability.ObserveAnswer(string(res.Status))
	}()

	if s.configErr != nil {
		return Result{Status: StatusConfigError, Text: Diagnose(s.configErr), RequestID: callID, Err: s.configErr}
	}
	if t == nil {
		return invalid(callID, "No dataset loaded. Upload a file first.")
	}
	if !dt.Valid() {
		return invalid(callID, fmt.Sprintf("Unknown dataset type %q.", dt))
	}
	if strings.TrimSpace(question) == "" {
		return invalid(callID, "Please enter a question.")
	}

	prompt := s.Prompt(dt, t, question)
	tokens := utils.CountTokens(prompt)
	if ai.ExceedsContext(s.model, tokens) {
		logger.Warn("prompt may exceed model context window", slog.String("model", s.model), slog.Int("prompt_tokens", tokens))
	}
	req := ai.GenerateRequest{
		Model:       s.model,
		Messages:    []ai.Message{{Role: "user", Content: prompt}},
		Temperature: s.temperature,
	}

	start := time.Now()
	resp, err := s.rt.Generate(ctx, req)
	elapsed := time.Since(start)
	observability.ObserveRemoteCall(elapsed)

	res = Result{Model: s.model, RequestID: callID, PromptTokens: tokens}
	if err != nil {
		res.Err = err
		res.Text = Diagnose(err)
		res.Status = StatusRemoteError
		var ce *ai.ConfigurationError
		if errors.As(err, &ce) {
			res.Status = StatusConfigError
		}
		logger.Warn("answer failed", slog.String("status", string(res.Status)), slog.String("error", err.Error()), slog.Duration("elapsed", elapsed))
		return res
	}
	if resp == nil || len(resp.Choices) == 0 {
		res.Status = StatusRemoteError
		res.Err = &ai.RemoteCallError{Kind: ai.KindMalformed, Err: errors.New("response has no choices")}
		res.Text = Diagnose(res.Err)
		return res
	}
	if resp.RequestID != "" {
		logger = logger.With(slog.String("provider_request_id", resp.RequestID))
	}
	logger.Info("answered",
		slog.String("model", s.model),
		slog.String("dataset_type", string(dt)),
		slog.Int("rows", t.NumRows()),
		slog.Int("prompt_tokens", tokens),
		slog.Duration("elapsed", elapsed),
	)
	res.Status = StatusOK
	res.Text = resp.Choices[0].Message.Content
	return res
}

func invalid(callID, msg string) Result {
	return Result{Status: StatusInvalidInput, Text: msg, RequestID: callID}
}

// Diagnose turns an answer failure into a short message for end users.
func Diagnose(err error) string {
	var ce *ai.ConfigurationError
	if errors.As(err, &ce) {
		return fmt.Sprintf("The answer service is not configured: %s.", ce.Reason)
	}
	var auth *ai.AuthError
	var rl *ai.RateLimitError
	var mnf *ai.ModelNotFoundError
	var quota *ai.QuotaExceededError
	var srv *ai.ServerError
	var bad *ai.BadRequestError
	var apiErr *ai.APIError
	switch {
	case errors.As(err, &auth):
		return fmt.Sprintf("The model provider rejected the API key (HTTP %d).", auth.StatusCode)
	case errors.As(err, &rl):
		if rl.RetryAfter > 0 {
			return fmt.Sprintf("The model provider is rate limiting requests. Try again in about %ds.", int(rl.RetryAfter.Seconds()))
		}
		return "The model provider is rate limiting requests. Try again shortly."
	case errors.As(err, &mnf):
		return "The configured model is not available at the provider."
	case errors.As(err, &quota):
		return "The model provider reports the account quota is exhausted."
	case errors.As(err, &srv):
		return fmt.Sprintf("The model provider had an internal error (HTTP %d). Try again.", srv.StatusCode)
	case errors.As(err, &bad):
		return fmt.Sprintf("The model provider refused the request (HTTP 400): %s", firstNonEmpty(bad.Message, "bad request"))
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The model provider returned HTTP %d.", apiErr.StatusCode)
	}
	var rce *ai.RemoteCallError
	if errors.As(err, &rce) {
		switch rce.Kind {
		case ai.KindTimeout:
			return "The model did not respond in time. Try again."
		case ai.KindTransport:
			return "Could not reach the model provider. Check the network connection."
		case ai.KindMalformed:
			return "The model provider returned a response without an answer."
		}
	}
	return "The question could not be answered: " + err.Error()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
