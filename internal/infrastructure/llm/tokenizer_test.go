package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Greater(t, EstimateTokens("export default function App() { return <div /> }"), 5)
}

func TestEstimateUsage(t *testing.T) {
	usage := EstimateUsage([]Message{{Role: RoleUser, Content: "build a todo app"}}, "function App() {}")

	assert.True(t, usage.Estimated)
	assert.Greater(t, usage.PromptTokens, 0)
	assert.Greater(t, usage.CompletionTokens, 0)
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
}
