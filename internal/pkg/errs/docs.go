// Package errs provides the typed errors shared by the fulfillment pipeline.
//
// Every error type follows the same shape:
//   - a sentinel variable (e.g. ErrValueIsRequired) used with errors.Is
//   - a struct carrying the details of the failure
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Adapters classify failures by sentinel only. The HTTP layer, for example,
// maps ErrValueIsInvalid to 400 and ErrSignatureInvalid to 401 without
// inspecting messages.
package errs
