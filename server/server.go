// Package server exposes completion calls over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/YspCoder/chatshape/config"
	"github.com/YspCoder/chatshape/dto"
	"github.com/YspCoder/chatshape/llm"
	"github.com/YspCoder/chatshape/prompt"
	"github.com/YspCoder/chatshape/utils"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	idleTimeout         = 120 * time.Second
)

// Server serves POST /v1/call.
type Server struct {
	clientCfg  *config.ClientConfig
	logger     utils.Logger
	httpClient *http.Client
	app        *echo.Echo
}

// Option configures a Server.
type Option func(*Server)

// WithHTTPClient sets the client used to reach the completion service.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.httpClient = client
	}
}

// New constructs a server. clientCfg holds the default credentials; a
// request may override them through its options bag.
func New(clientCfg *config.ClientConfig, logger utils.Logger, opts ...Option) (*Server, error) {
	if clientCfg == nil {
		return nil, errors.New("client config must not be nil")
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	srv := &Server{
		clientCfg: clientCfg,
		logger:    logger,
		app:       e,
	}
	for _, opt := range opts {
		opt(srv)
	}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))

	srv.registerRoutes()
	return srv, nil
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run listens on addr and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     s.app,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.POST("/v1/call", s.handleCall)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// callRequest is the body of POST /v1/call. Prompt is either a JSON string
// or a message array.
type callRequest struct {
	Prompt  json.RawMessage `json:"prompt"`
	Options config.Options  `json:"options"`
}

func (s *Server) handleCall(c echo.Context) error {
	var req callRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	input, err := promptInput(req.Prompt)
	if err != nil {
		return invalidRequest(err.Error())
	}
	if err := req.Options.Config.Validate(); err != nil {
		return invalidRequest(err.Error())
	}

	clientCfg := s.clientCfg.With(req.Options.ClientOptions()...)
	result, err := llm.Call(c.Request().Context(), clientCfg, input, req.Options.Config, s.httpClient, s.logger)
	if err != nil {
		if prompt.IsValidationError(err) {
			return invalidRequest(err.Error())
		}
		return err
	}

	return c.JSON(resultStatus(result), result)
}

// promptInput turns the raw prompt field into what the normalizer accepts:
// a JSON string becomes plain text, anything else is left encoded.
func promptInput(raw json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("prompt is required")
	}
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("invalid prompt: %w", err)
		}
		return text, nil
	}
	return json.RawMessage(trimmed), nil
}

func resultStatus(result dto.CompletionResult) int {
	switch result.ErrorType {
	case "":
		return http.StatusOK
	case dto.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case dto.ErrorTypeAPI, dto.ErrorTypeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return invalidRequest("request body is required")
		}
		return invalidRequest(fmt.Sprintf("invalid JSON payload: %v", err))
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return invalidRequest("request body must contain a single JSON object")
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
	Type    string
}

func (e requestError) Error() string {
	return e.Message
}

func invalidRequest(message string) requestError {
	return requestError{Status: http.StatusBadRequest, Message: message, Type: "invalid_request_error"}
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func writeError(c echo.Context, status int, message, errType string) error {
	var payload errorBody
	payload.Error.Message = message
	payload.Error.Type = errType
	return c.JSON(status, payload)
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = writeError(c, reqErr.Status, reqErr.Message, reqErr.Type)
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = writeError(c, he.Code, fmt.Sprint(he.Message), "invalid_request_error")
		return
	}

	_ = writeError(c, http.StatusInternalServerError, "internal server error", "server_error")
}
