package sqlgen

import "context"

// Generator produces SQL from a prompt. Generate answers a fresh request;
// Debug answers a prompt asking to repair a statement and uses a smaller
// token budget.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Debug(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Token budgets per backend and mode. Debug never exceeds Generate.
const (
	CheckpointGenerateTokens = 600
	CheckpointDebugTokens    = 350
	HostedGenerateTokens     = 600
	HostedDebugTokens        = 350
	HubGenerateTokens        = 512
	HubDebugTokens           = 350
)

// Mode labels used in logs and metrics.
const (
	modeGenerate = "generate"
	modeDebug    = "debug"
)
