// Package repository defines sentinel errors shared by the storage layer.
// Handlers translate these into HTTP responses; everything not covered here
// surfaces as sql.ErrNoRows or a driver error.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// index. Handlers translate this into an HTTP 400 response.
var ErrEmailExists = errors.New("email already exists")
