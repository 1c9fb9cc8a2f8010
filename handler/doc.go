// Package handler adapts typed handler functions to http.HandlerFunc.
//
// A HandlerFunc receives a Context and a request value already populated by
// the configured binders, and returns a Response:
//
//	type AnalyzeRequest struct {
//		Ticker string `json:"ticker" validate:"required"`
//	}
//
//	analyze := func(ctx handler.Context, req AnalyzeRequest) handler.Response {
//		result, err := svc.Analyze(ctx, req.Ticker)
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.Success(result)
//	}
//
//	r.Post("/api/analyze", handler.Wrap(analyze,
//		handler.WithBinder[handler.Context, AnalyzeRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, AnalyzeRequest](errorHandler),
//	))
//
// Failures are reported through the ErrorHandler. NewErrorHandler classifies
// errors into HTTP status codes and writes the JSON error envelope
//
//	{"success": false, "error": "<message>"}
//
// adding "retryAfter" for 429 responses. Unclassified errors become 500 with
// a generic message; their detail is only logged.
package handler
