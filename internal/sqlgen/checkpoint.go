package sqlgen

import (
	"context"
	"strings"

	"sqlgen/internal/llama"
)

// DefaultCheckpointPath is the local sqlcoder checkpoint loaded when no path is given.
const DefaultCheckpointPath = "./model-sqlcoder-7b-2"

// Checkpoint generates SQL with a locally loaded checkpoint. Decoding is
// greedy and only the continuation is returned, truncated to one statement.
type Checkpoint struct {
	model llama.Model
	path  string
}

// NewCheckpoint loads path through rt. Load errors are returned as is.
func NewCheckpoint(path string, rt llama.Runtime) (*Checkpoint, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultCheckpointPath
	}
	m, err := rt.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("backend", "checkpoint").Str("path", path).Msg("checkpoint loaded")
	return &Checkpoint{model: m, path: path}, nil
}

func (c *Checkpoint) Generate(ctx context.Context, prompt string) (string, error) {
	return c.run(ctx, prompt, CheckpointGenerateTokens)
}

func (c *Checkpoint) Debug(ctx context.Context, prompt string) (string, error) {
	return c.run(ctx, prompt, CheckpointDebugTokens)
}

func (c *Checkpoint) run(ctx context.Context, prompt string, maxTokens int) (string, error) {
	out, err := c.model.Predict(ctx, prompt, llama.Greedy(maxTokens))
	if err != nil {
		return "", err
	}
	return TruncateStatement(out), nil
}

// Close releases the loaded checkpoint.
func (c *Checkpoint) Close() error {
	return c.model.Close()
}
