// Package repository implements persistence over database/sql for the
// three auth entities: users, sessions and OTP codes. This file holds
// sentinel errors shared by the repositories so that the service layer
// can distinguish failure scenarios with errors.Is without inspecting
// driver-specific error strings itself.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the unique email
// index rejects the insert. The service layer maps it to a conflict.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a row that an operation needs is
// absent. Repositories translate sql.ErrNoRows into this so callers
// do not depend on database/sql directly.
var ErrNotFound = errors.New("not found")
