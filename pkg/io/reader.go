// Package io provides input utilities for bid ingestion.
package io

import "github.com/securetender/bidguard/pkg/features"

// Reader is the interface for reading bid records from external sources.
type Reader interface {
	// Read returns the complete set of records.
	Read() ([]features.Record, error)

	// Close releases resources.
	Close() error
}
