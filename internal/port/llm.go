package port

// Generator represents a language model used for text generation.
type Generator interface {
	// Generate returns a raw completion for the prompt. The output may
	// contain commentary around any JSON the prompt asked for.
	Generate(prompt string, temperature float64) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

// PageFetcher extracts a (title, description) summary from a web page.
// Implementations swallow network and HTTP errors and return empty
// strings; they never fail outward.
type PageFetcher interface {
	FetchPageSummary(url string) (title, description string)

	// CheckReachable reports whether the URL answers with a non-error
	// status.
	CheckReachable(url string) bool
}
