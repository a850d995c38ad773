package client

import (
	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/internal/upstream"
	"quote_portal_backend/platform/apperr"
)

// decodeSubmission turns a 2xx body into an outcome. A premium means the
// quote is priced; a quote ID alone means it must be polled.
func decodeSubmission(op string, body []byte) domain.Outcome {
	obj, ok := upstream.Unwrap(body)
	if !ok {
		return domain.Failed(apperr.New(apperr.KindUnknown, "The quoting service returned an unreadable response.").WithOp(op))
	}

	quoteID := upstream.String(obj, "quoteId", "quote_id", "id")

	if premium, ok := upstream.Number(obj, "premium"); ok {
		excess, _ := upstream.Number(obj, "excess")
		return domain.Immediate(premium, excess, quoteID)
	}

	if domain.ParseJobState(upstream.String(obj, "status")) == domain.JobFailed {
		msg := upstream.String(obj, "message", "error")
		if msg == "" {
			msg = "The quote could not be generated."
		}
		return domain.Failed(apperr.New(apperr.KindService, msg).WithOp(op))
	}

	if quoteID != "" {
		return domain.Pending(quoteID)
	}

	return domain.Failed(apperr.New(apperr.KindUnknown, "The quoting service response did not include a quote.").WithOp(op))
}
