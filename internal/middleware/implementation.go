package middleware

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"

	"github.com/findrightpeople/worker/internal/adapter/utils"
	"github.com/findrightpeople/worker/internal/api"
	"github.com/findrightpeople/worker/internal/auth"
	"github.com/findrightpeople/worker/internal/config"
	"github.com/findrightpeople/worker/internal/handlers"
)

const (
	HeaderTimestamp     = "X-Timestamp"
	HeaderSignature     = "X-Signature"
	HeaderCorrelationId = "x-correlation-id"
)

// injectTrace carries the caller's correlation id (or a fresh uuid) through
// the request context and echoes it on the response.
func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorCode = api.ErrCodeInvalidRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get(HeaderCorrelationId)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	re.writer.Header().Set(HeaderCorrelationId, trace)

	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	re.req = req.WithContext(ctx)
	return re
}

// verifySignature buffers the raw body, checks the HMAC headers against it,
// and restores the body for the handler. The exact bytes on the wire are
// what got signed, so this must run before any decoding.
func verifySignature(re requestResponseStruct) requestResponseStruct {
	body, err := io.ReadAll(re.req.Body)
	if err != nil {
		re.logger.Error("Failed reading request body", "error", err)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusBadRequest,
			errorCode:    api.ErrCodeInvalidRequest,
			errorMessage: "unreadable body",
		}
		return re
	}
	_ = re.req.Body.Close()
	re.req.Body = io.NopCloser(bytes.NewReader(body))

	timestamp := re.req.Header.Get(HeaderTimestamp)
	signature := re.req.Header.Get(HeaderSignature)

	reason, ok := auth.VerifySignature(timestamp, signature, body, config.SigningSecret())
	if !ok {
		re.logger.Warn("Rejected webhook", "reason", reason, "IP", re.req.RemoteAddr)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusUnauthorized,
			errorCode:    api.ErrCodeUnauthorized,
			errorMessage: reason,
		}
		return re
	}
	return re
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Error("Too many requests", "IP", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorCode:    api.ErrCodeInvalidRequest,
			errorMessage: "rate limit exceeded",
		}
		return re
	}
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorCode, re.badRequest.errorMessage)
}
