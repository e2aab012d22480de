// Package apierr defines the error taxonomy shared by the hawkops packages:
// API, authentication, configuration, invalid-input and missing-field errors.
package apierr
