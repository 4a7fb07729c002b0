package loadtest

import "time"

// Config holds configuration for a suggestion load test run.
type Config struct {
	BaseURL         string        // Base URL of the service
	NumRequests     int           // Number of suggestion requests to fire
	Workers         int           // Number of concurrent workers
	Timeout         time.Duration // HTTP request timeout
	Opportunities   int           // Opportunities to generate for the seed file
	SeedFile        string        // Where to write the generated seed file
	UnscoredPercent int           // Share of requests sent without any signal
	Verbose         bool          // Enable verbose logging
}

// Stats holds load test statistics.
type Stats struct {
	RequestsSent     int
	RequestsOK       int
	RequestsThrottle int
	RequestsFailed   int
	PathStepsOK      int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
