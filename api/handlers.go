package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/relay"
)

const notConfiguredMessage = "AI provider is not configured"

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleGenerate serves POST /generate.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	startTime := time.Now()

	var req generation.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("rejected generate request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	log := s.logger.With(
		"request_id", c.GetRespHeader(relay.RequestIDHeader),
		"type", string(req.Type),
	)

	result, err := s.config.Generator.Generate(c.UserContext(), req)
	if err != nil {
		status, message := generateError(err)
		if status == fiber.StatusBadRequest {
			log.Debug("rejected generate request", "error", err)
		} else {
			log.Error("generation failed", "status", status, "error", err)
		}
		return c.Status(status).JSON(llm.ErrorResponse{Error: message})
	}

	log.Info("generated content",
		"structured", result.Structured(),
		"duration", time.Since(startTime),
	)

	return c.JSON(generation.NewResponse(result))
}

// generateError maps a generation failure to a status and a client message.
func generateError(err error) (int, string) {
	switch {
	case errors.Is(err, generation.ErrMalformedRequest),
		errors.Is(err, generation.ErrUnsupportedType),
		errors.Is(err, generation.ErrMissingRequiredField):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrNoCredential):
		return fiber.StatusInternalServerError, notConfiguredMessage
	default:
		return llm.HTTPStatus(err), llm.UserMessage(err)
	}
}
