package middleware

import (
	"net/http"
	"strconv"

	"github.com/findrightpeople/worker/internal/metrics"
	"github.com/findrightpeople/worker/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorCode    string
	errorMessage string
}

// Wrap runs the unauthenticated chain: trace injection and rate limiting.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrapChain(next, false)
}

// WrapSigned additionally verifies the webhook HMAC signature against the
// buffered request body before the handler runs.
func WrapSigned(next http.HandlerFunc) http.HandlerFunc {
	return wrapChain(next, true)
}

func wrapChain(next http.HandlerFunc, signed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, signed)

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct, signed bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")

	re = injectTrace(re)
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re
	}
	if signed {
		re = verifySignature(re)
	}
	return re
}
