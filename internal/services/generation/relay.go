package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/forgeapp/forge/internal/infrastructure/llm"
	"github.com/forgeapp/forge/internal/services/generation/models"
	"github.com/forgeapp/forge/pkg/logger"
)

const unknownFinishReason = "unknown"

// relay opens the provider stream and forwards every fragment as a Chunk.
// The provider call runs under its own deadline derived from ctx, so a
// client disconnect or a timeout both cancel it.
func (s *Service) relay(ctx context.Context, call Call, send func(models.Event) bool) (Result, error) {
	if call.Model.Generator == nil {
		return Result{}, fmt.Errorf("%w %s", ErrNoGenerator, call.Model.Vendor)
	}

	genCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.config.Timeout > 0 {
		genCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
	}
	defer cancel()

	req := call.request()
	logger.Debug(logger.STREAM, "Starting %s stream: model=%s vendor=%s messages=%d", call.Kind, req.Model, call.Model.Vendor, len(req.Messages))

	stream, err := call.Model.Generator.StreamText(genCtx, req)
	if err != nil {
		return Result{}, s.wrapError(ctx, genCtx, err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		part, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, s.wrapError(ctx, genCtx, err)
		}
		if part == "" {
			continue
		}

		full.WriteString(part)
		if !send(models.Chunk{Content: part, FullContent: full.String()}) {
			return Result{}, ctx.Err()
		}
	}

	content := full.String()
	usage := stream.Usage()
	if usage == nil {
		usage = llm.EstimateUsage(req.Messages, content)
	}
	finishReason := stream.FinishReason()
	if finishReason == "" {
		finishReason = unknownFinishReason
	}

	return Result{
		Content:      content,
		Usage:        usage,
		FinishReason: finishReason,
	}, nil
}

func (s *Service) wrapError(ctx, genCtx context.Context, err error) error {
	if ctx.Err() == nil && errors.Is(genCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, s.config.Timeout)
	}
	return err
}
