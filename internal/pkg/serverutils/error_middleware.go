package serverutils

import (
	"errors"

	"knowledge-retrieval-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps pipeline failures to HTTP statuses so clients can tell
// apart bad requests, quota rejections, and genuine server faults.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(MessageResponse(fiberErr.Message))
	}

	var retrievalErr *retrieval.Error
	if errors.As(err, &retrievalErr) {
		return ctx.Status(statusForKind(retrievalErr.Kind)).JSON(Response{
			Message: retrievalErr.Message,
			Data:    fiber.Map{"code": string(retrievalErr.Kind)},
		})
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(MessageResponse("internal server error"))
}

func statusForKind(kind retrieval.ErrorKind) int {
	switch kind {
	case retrieval.ErrKindInvalidInput:
		return fiber.StatusBadRequest
	case retrieval.ErrKindRateLimitExceeded, retrieval.ErrKindModelQuotaExceeded:
		return fiber.StatusTooManyRequests
	case retrieval.ErrKindModelNotExist,
		retrieval.ErrKindModelCredentialsNotInitialized,
		retrieval.ErrKindModelNotSupported:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
