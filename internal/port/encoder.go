package port

// Encoder drives the external video encoder.
type Encoder interface {
	// Run executes an encode and reports fractional progress for step.
	Run(args []string, jobID, step string) error
	// RunQuick executes a short fixed-cost encode without progress parsing.
	RunQuick(args []string, jobID, step string) error
	ProbeDuration(path string) (float64, error)
}
