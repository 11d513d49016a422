// Package server exposes candidate selection over HTTP and NATS.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/pkg/candidate"
	"github.com/papercomputeco/sieve/pkg/sampling"
)

// invalidPolicy labels failures that happen before a policy is built.
const invalidPolicy = "invalid"

var (
	errInvalidBody  = errors.New("invalid request body")
	errNoCandidates = errors.New("no candidates provided")
)

// Server is a stateless selection service: every request carries its own
// candidate table, and only the default sampling options live in the server.
type Server struct {
	config   Config
	logger   *zap.Logger
	server   *fiber.App
	registry *prometheus.Registry
	metrics  *metrics

	mu       sync.RWMutex
	defaults sampling.Options
}

// SelectRequest is the body of both selection endpoints.
type SelectRequest struct {
	// Candidates is the scored table to select from.
	Candidates *candidate.Table `json:"candidates"`

	// Options override the server defaults for this request.
	Options sampling.Options `json:"options"`
}

// SelectOneResponse is returned by /select/one.
type SelectOneResponse struct {
	Policy    string `json:"policy"`
	Mutant    string `json:"mutant"`
	TableHash string `json:"table_hash"`
}

// SelectSubsetResponse is returned by /select/subset.
type SelectSubsetResponse struct {
	Policy     string           `json:"policy"`
	Kept       int              `json:"kept"`
	Candidates *candidate.Table `json:"candidates"`
	TableHash  string           `json:"table_hash"`
}

// ErrorResponse represents an error returned by the server. Code carries the
// HTTP status, also on NATS replies.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// New creates a new Server.
func New(config Config, logger *zap.Logger) (*Server, error) {
	if err := config.Defaults.Validate(); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          handleError,
	})

	registry := prometheus.NewRegistry()

	s := &Server{
		config:   config,
		logger:   logger,
		server:   app,
		registry: registry,
		metrics:  newMetrics(registry),
		defaults: config.Defaults,
	}

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/policies", s.handlePolicies)
	app.Get("/defaults", s.handleDefaults)
	app.Post("/select/one", s.handleSelectOne)
	app.Post("/select/subset", s.handleSelectSubset)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return s, nil
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting selection server", zap.String("listen", s.config.ListenAddr))
	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener starts the server on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting selection server", zap.String("listen", ln.Addr().String()))
	return s.server.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}

// SetDefaults replaces the default sampling options used beneath requests.
func (s *Server) SetDefaults(opts sampling.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.defaults = opts
	s.mu.Unlock()

	s.logger.Info("default sampling options updated", zap.String("policy", opts.Policy))
	return nil
}

// Defaults returns the current default sampling options.
func (s *Server) Defaults() sampling.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

func (s *Server) handlePolicies(c *fiber.Ctx) error {
	return c.JSON(map[string][]string{"policies": sampling.PolicyNames()})
}

func (s *Server) handleDefaults(c *fiber.Ctx) error {
	return c.JSON(s.Defaults())
}

// handleSelectOne draws a single candidate from the request's table.
func (s *Server) handleSelectOne(c *fiber.Ctx) error {
	req, err := decodeRequest(c.Body())
	if err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return fiber.NewError(statusFor(err), err.Error())
	}

	resp, err := s.selectOne(req)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(resp)
}

// handleSelectSubset returns the candidates the policy keeps.
func (s *Server) handleSelectSubset(c *fiber.Ctx) error {
	req, err := decodeRequest(c.Body())
	if err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return fiber.NewError(statusFor(err), err.Error())
	}

	resp, err := s.selectSubset(req)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(resp)
}

func decodeRequest(body []byte) (*SelectRequest, error) {
	var req SelectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return &req, nil
}

// selector builds a selector from the defaults plus the request options.
func (s *Server) selector(req *SelectRequest) (*sampling.Selector, error) {
	if req.Candidates.Len() == 0 {
		return nil, errNoCandidates
	}

	sel, err := sampling.NewSelectorFromOptions(s.Defaults().Merge(req.Options), s.logger)
	if err != nil {
		s.logger.Debug("rejected sampling options", zap.Error(err))
		return nil, err
	}
	return sel, nil
}

func (s *Server) selectOne(req *SelectRequest) (*SelectOneResponse, error) {
	startTime := time.Now()

	sel, err := s.selector(req)
	if err != nil {
		s.metrics.fail(invalidPolicy, modeOne)
		return nil, err
	}
	name := sel.Policy().Name()

	mutant, err := sel.One(req.Candidates)
	if err != nil {
		s.metrics.fail(name, modeOne)
		s.logger.Warn("selection failed", zap.String("policy", name), zap.Error(err))
		return nil, err
	}
	s.metrics.observe(name, modeOne, startTime, 1)

	s.logger.Debug("served selection",
		zap.String("policy", name),
		zap.Int("candidates", req.Candidates.Len()),
		zap.String("mutant", mutant),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &SelectOneResponse{
		Policy:    name,
		Mutant:    mutant,
		TableHash: req.Candidates.Hash(),
	}, nil
}

func (s *Server) selectSubset(req *SelectRequest) (*SelectSubsetResponse, error) {
	startTime := time.Now()

	sel, err := s.selector(req)
	if err != nil {
		s.metrics.fail(invalidPolicy, modeSubset)
		return nil, err
	}
	name := sel.Policy().Name()

	kept, err := sel.Subset(req.Candidates)
	if err != nil {
		s.metrics.fail(name, modeSubset)
		s.logger.Warn("subset selection failed", zap.String("policy", name), zap.Error(err))
		return nil, err
	}
	s.metrics.observe(name, modeSubset, startTime, kept.Len())

	s.logger.Debug("served subset",
		zap.String("policy", name),
		zap.Int("candidates", req.Candidates.Len()),
		zap.Int("kept", kept.Len()),
		zap.Duration("duration", time.Since(startTime)),
	)

	return &SelectSubsetResponse{
		Policy:     name,
		Kept:       kept.Len(),
		Candidates: kept,
		TableHash:  req.Candidates.Hash(),
	}, nil
}

// handleError writes every handler error as an ErrorResponse.
func handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error(), Code: code})
}

// statusFor maps selection errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, errNoCandidates),
		errors.Is(err, sampling.ErrUnknownPolicy),
		errors.Is(err, sampling.ErrUnsupportedBackend),
		errors.Is(err, sampling.ErrInvalidTemperature),
		errors.Is(err, sampling.ErrInvalidTruncationSize):
		return fiber.StatusBadRequest
	case errors.Is(err, sampling.ErrInvalidDistribution),
		errors.Is(err, sampling.ErrInvalidCutoff):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
