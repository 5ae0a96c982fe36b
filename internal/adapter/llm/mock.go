package llm

import "fmt"

// MockGenerator returns canned responses, in order, for tests.
type MockGenerator struct {
	Responses []string
	Err       error
	calls     int
}

// Generate pops the next canned response. Once responses run out it
// keeps returning the last one.
func (g *MockGenerator) Generate(prompt string, temperature float64) (string, error) {
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) == 0 {
		return "", fmt.Errorf("mock generator: no responses configured")
	}
	i := g.calls
	if i >= len(g.Responses) {
		i = len(g.Responses) - 1
	}
	g.calls++
	return g.Responses[i], nil
}

// Calls returns how many times Generate was invoked.
func (g *MockGenerator) Calls() int {
	return g.calls
}

// ModelName returns "mock".
func (g *MockGenerator) ModelName() string {
	return "mock"
}
