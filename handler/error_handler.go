package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/thefiredev-cloud/vortis/pkg/binder"
	"github.com/thefiredev-cloud/vortis/pkg/logger"
	"github.com/thefiredev-cloud/vortis/pkg/requestid"
)

// Classifier maps domain errors to HTTP errors. It reports false for errors
// it does not recognise.
type Classifier func(err error) (HTTPError, bool)

// Classify maps err to an HTTPError using the package's own rules: explicit
// HTTPErrors, then binder failures, then 500.
func Classify(err error, classifiers ...Classifier) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	for _, c := range classifiers {
		if mapped, ok := c(err); ok {
			return mapped
		}
	}

	var fields binder.FieldErrors
	switch {
	case errors.As(err, &fields):
		return ErrBadRequest.WithMessage(fields.Error())
	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrUnsupportedMediaType
	case errors.Is(err, binder.ErrRequestTooLarge):
		return ErrBadRequest.WithMessage("Request body too large")
	case errors.Is(err, binder.ErrFailedToParseJSON):
		return ErrBadRequest.WithMessage("Invalid JSON body")
	}

	return ErrInternalServerError
}

func logLevel(code int) slog.Level {
	if code < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func writeError(w http.ResponseWriter, e HTTPError) {
	body := ErrorBody{Error: e.Message}
	if body.Error == "" {
		body.Error = http.StatusText(e.Code)
	}
	if e.Code == http.StatusTooManyRequests {
		body.RetryAfter = max(e.RetryAfter, 1)
		w.Header().Set("Retry-After", strconv.Itoa(body.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	_ = json.NewEncoder(w).Encode(body)
}

type errorHandlerConfig struct {
	classifiers []Classifier
}

// ErrorHandlerOption configures NewErrorHandler.
type ErrorHandlerOption func(*errorHandlerConfig)

// WithClassifiers registers domain classifiers, consulted in order after
// explicit HTTPErrors.
func WithClassifiers(c ...Classifier) ErrorHandlerOption {
	return func(cfg *errorHandlerConfig) {
		cfg.classifiers = append(cfg.classifiers, c...)
	}
}

// NewErrorHandler logs the failure at warn for 4xx and error for 5xx, then
// writes the JSON error envelope. 5xx bodies never carry the error detail.
func NewErrorHandler(log *slog.Logger, opts ...ErrorHandlerOption) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	cfg := &errorHandlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := Classify(err, cfg.classifiers...)

		log.LogAttrs(r.Context(), logLevel(info.Code), "request error",
			logger.Component("error_handler"),
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			logger.StatusCode(info.Code),
			slog.String("error_key", info.Key),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		writeError(ctx.ResponseWriter(), info)
	}
}
