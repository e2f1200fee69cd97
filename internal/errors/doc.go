// Package errors provides the structured error type used across rpg-ficha.
//
// Every error carries a Code, a user-facing Message, an optional Cause and
// optional metadata:
//
//	err := errors.FailedPrecondition("insufficient skill points").
//	    WithMeta("attribute", "strength")
//
// Layer guidelines:
//
// Ledger and engine:
//   - Rejected player actions (budget, locked floors, trait rules) are
//     FailedPrecondition; malformed arguments are InvalidArgument.
//
// Store and repositories:
//   - Missing keys are NotFound; storage failures are wrapped with Wrap so
//     the original cause is kept.
//
// Orchestrators:
//   - A failed passphrase challenge is PermissionDenied; records are
//     looked up with NotFound semantics.
//
// The CLI turns the code into a process exit status through Code.ExitCode.
package errors
