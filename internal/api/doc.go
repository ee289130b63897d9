// Package api contains the HTTP handlers, request/response models, and
// error mapping for the backend's REST surface. Handlers stay thin: they
// decode and validate, call a service, and translate errors to safe
// status codes and messages.
package api
