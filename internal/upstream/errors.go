// Package upstream holds the response-shape handling shared by every
// outbound API client: error body decoding, status classification and
// envelope unwrapping. It is the single place legacy shapes are resolved.
package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"quote_portal_backend/platform/apperr"
)

// ErrorBody is the decoded form of any supported upstream error response.
type ErrorBody struct {
	Code             string
	Message          string
	TechnicalMessage string
	Fields           []apperr.FieldError
	Details          map[string]any
}

// structuredError is {success:false, error:{code, message, technical_message, details}}.
type structuredError struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code             string          `json:"code"`
		Message          string          `json:"message"`
		TechnicalMessage string          `json:"technical_message"`
		Details          json.RawMessage `json:"details"`
	} `json:"error"`
}

// legacyError is {detail: string | [{loc, msg, type}]} with an optional message.
type legacyError struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type legacyDetail struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ParseErrorBody decodes raw into an ErrorBody. Unknown or empty bodies
// yield a zero ErrorBody, never an error.
func ParseErrorBody(raw []byte) ErrorBody {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return ErrorBody{}
	}

	var structured structuredError
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Error != nil {
		body := ErrorBody{
			Code:             structured.Error.Code,
			Message:          structured.Error.Message,
			TechnicalMessage: structured.Error.TechnicalMessage,
		}
		body.Fields, body.Details = parseStructuredDetails(structured.Error.Details)
		return body
	}

	var legacy legacyError
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return ErrorBody{Message: truncate(string(raw), 200)}
	}

	body := ErrorBody{Message: legacy.Message}
	if body.Message == "" {
		var s string
		if json.Unmarshal(legacy.Error, &s) == nil {
			body.Message = s
		}
	}

	var detailText string
	if json.Unmarshal(legacy.Detail, &detailText) == nil && detailText != "" {
		if body.Message == "" {
			body.Message = detailText
		}
		return body
	}

	var details []legacyDetail
	if json.Unmarshal(legacy.Detail, &details) == nil {
		for _, d := range details {
			body.Fields = append(body.Fields, apperr.FieldError{Field: locPath(d.Loc), Message: d.Msg})
		}
	}
	return body
}

func parseStructuredDetails(raw json.RawMessage) ([]apperr.FieldError, map[string]any) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []apperr.FieldError
	if json.Unmarshal(raw, &list) == nil {
		return list, nil
	}

	var obj map[string]any
	if json.Unmarshal(raw, &obj) != nil {
		return nil, nil
	}

	var fields []apperr.FieldError
	if ve, ok := obj["validation_errors"]; ok {
		encoded, _ := json.Marshal(ve)
		_ = json.Unmarshal(encoded, &fields)
		delete(obj, "validation_errors")
	}
	if len(obj) == 0 {
		obj = nil
	}
	return fields, obj
}

// locPath renders a FastAPI loc array the way field paths are shown elsewhere:
// ["body", "vehicles", 0, "make"] -> "vehicles -> 0 -> make".
func locPath(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && s == "body" {
			continue
		}
		if f, ok := p.(float64); ok {
			s = fmt.Sprintf("%d", int(f))
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " -> ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Messages shown to users for each classified status.
const (
	msgValidation = "The submitted information was invalid. Please check your inputs and try again."
	msgAuth       = "Your session has expired. Please refresh the page and try again."
	msgForbidden  = "You do not have permission to perform this action."
	msgNotFound   = "The requested record could not be found. It may have expired."
	msgConflict   = "This request has already been submitted."
	msgRateLimit  = "Too many requests. Please wait a moment and try again."
	msgService    = "The service is temporarily unavailable. Please try again later."
	msgUnknown    = "An unexpected error occurred."
)

// Classify maps an upstream HTTP status and its body to the error taxonomy.
// extra adds status mappings that only apply to a particular endpoint
// (for example 404 on retrieval or 409 on transfer); everything not mapped
// is KindUnknown.
func Classify(op string, status int, raw []byte, extra map[int]apperr.Kind) *apperr.Error {
	body := ParseErrorBody(raw)

	kind, message := classifyStatus(status)
	if k, ok := extra[status]; ok {
		kind = k
		message = defaultMessage(k)
	}

	if kind == apperr.KindValidation && body.Message != "" {
		message = "Validation failed: " + body.Message
	}
	if (kind == apperr.KindConflict || kind == apperr.KindUnknown) && body.Message != "" {
		message = body.Message
	}

	err := apperr.New(kind, message).
		WithOp(op).
		WithStatus(status).
		WithCode(body.Code).
		WithFields(body.Fields)
	if body.Details != nil {
		err = err.WithDetails(body.Details)
	}
	if body.TechnicalMessage != "" {
		err.Err = fmt.Errorf("%s", body.TechnicalMessage)
	}
	return err
}

func classifyStatus(status int) (apperr.Kind, string) {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.KindValidation, msgValidation
	case http.StatusUnauthorized:
		return apperr.KindAuth, msgAuth
	case http.StatusForbidden:
		return apperr.KindAuth, msgForbidden
	case http.StatusTooManyRequests:
		return apperr.KindRateLimit, msgRateLimit
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return apperr.KindService, msgService
	default:
		return apperr.KindUnknown, msgUnknown
	}
}

func defaultMessage(kind apperr.Kind) string {
	switch kind {
	case apperr.KindNotFound:
		return msgNotFound
	case apperr.KindConflict:
		return msgConflict
	case apperr.KindValidation:
		return msgValidation
	case apperr.KindService:
		return msgService
	default:
		return msgUnknown
	}
}
