package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/shieldworks/protect/internal/usecase"
	"github.com/stretchr/testify/assert"
)

func TestSpinnerSink_PlainLines(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	sink := NewSpinnerSink(&buf, false)
	ctx := context.Background()

	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "plan_created", Total: 2, Message: "Planned 2 units on localhost"})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "unit_skipped", Current: 1, Total: 2, Message: "MockUSDC already recorded"})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "unit_starting", Current: 2, Total: 2, Message: "deploy PolicyCenter (proxied)", Spinner: true})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "unit_deployed", Current: 2, Total: 2, Message: "PolicyCenter deployed at 0x01"})
	sink.OnProgress(ctx, usecase.ProgressEvent{Stage: "unit_recorded", Current: 2, Total: 2, Message: "PolicyCenter recorded"})

	out := buf.String()
	assert.Contains(t, out, "Planned 2 units on localhost\n")
	assert.Contains(t, out, "⊘ [1/2] MockUSDC already recorded\n")
	assert.Contains(t, out, "[2/2] deploy PolicyCenter (proxied)...\n")
	assert.Contains(t, out, "✓ [2/2] PolicyCenter deployed at 0x01")
	assert.NotContains(t, out, "PolicyCenter recorded")
}
