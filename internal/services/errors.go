package services

import "fmt"

// Service errors
var (
	ErrNoTablesSpecified     = &ServiceError{Message: "no tables specified"}
	ErrInvalidCandidateCount = &ServiceError{Message: "count must be between 1 and 100"}
	ErrInvalidStatsURL       = &ServiceError{Message: "statistics API URL must be an absolute http or https URL"}
	ErrInvalidBaseURL        = &ServiceError{Message: "base URL must be an absolute http or https URL"}
	ErrBaseURLNotConfigured  = &ServiceError{Message: "base_url not configured"}
	ErrUnknownTab            = &ServiceError{Message: "unknown tab"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
