package inference

import (
	"context"

	"github.com/eleven-am/pathsense/internal/frame"
)

type Engine interface {
	Detect(ctx context.Context, f *frame.Frame) (*Result, error)
	IsAvailable(ctx context.Context) bool
}
