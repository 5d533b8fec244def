// Package domain contains domain models and business logic errors.
package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidArgument is returned when an invalid argument is provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedTopology is returned when a substrate link references a
	// physical node index that does not exist.
	ErrMalformedTopology = errors.New("malformed substrate topology")

	// ErrResourceExhausted is returned when no physical node has enough
	// spare CPU capacity for a virtual node.
	ErrResourceExhausted = errors.New("no eligible physical node")

	// ErrInvalidScoreVector is returned when a scoring policy violates its
	// output contract (wrong length, negative entry, or sum far from 1).
	ErrInvalidScoreVector = errors.New("invalid score vector")
)
