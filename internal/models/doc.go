// Package models defines the core domain models for ScanPay.
//
// A Receipt is produced once per scan by the parser and is immutable after
// assembly; a new scan replaces it wholesale. Item-to-person assignment state
// does not live on these models. The allocator owns the assignment relation
// and computes per-person views on demand, so there is a single source of
// truth to keep consistent.
//
// People persist across receipt replacements. An assignment referencing an
// item id that no longer exists after a rescan is dropped by the allocator.
package models
