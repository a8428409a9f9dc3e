package database

// Valkey Database Index Organization
// Each database index provides logical separation for different cache categories
const (
	// GENERAL_CACHE_INDEX (DB 0) - General purpose caching
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) - Issued auth tokens and login throttling
	SESSION_CACHE_INDEX

	// REPORTS_CACHE_INDEX (DB 2) - Reporting projections
	// Status and category histograms plus the overdue set; invalidated by
	// lifecycle engine writes
	REPORTS_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) - Pub/sub channel for lifecycle events
	EVENTS_CACHE_INDEX
)
