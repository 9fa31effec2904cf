// Package resilience provides retry with exponential backoff for provider
// calls and a bulkhead that bounds concurrent executions.
package resilience
