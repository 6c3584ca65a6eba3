// Package api contains the HTTP handlers for the Planora API: user
// registration and login, task CRUD and lookup, dashboard statistics,
// and AI task-field suggestions.
//
// Handlers decode and validate request payloads, delegate to the service
// and store layers, and translate errors to sanitized JSON responses via
// HandleAPIError. Authenticated routes read the caller's user ID from the
// request context, placed there by middleware.AuthMiddleware.
package api
