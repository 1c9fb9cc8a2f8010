// Package binder decodes JSON request bodies into typed structs and
// validates them with go-playground/validator struct tags.
//
//	type AnalyzeRequest struct {
//		Ticker string `json:"ticker" validate:"required"`
//	}
//
//	var req AnalyzeRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// ErrMissingContentType / ErrUnsupportedMediaType: 415
//		// ErrFailedToParseJSON / ErrRequestTooLarge: 400
//		// FieldErrors (wraps ErrValidation): 400
//	}
//
// Field names in FieldErrors use the json tag, so messages match what the
// client sent.
package binder
