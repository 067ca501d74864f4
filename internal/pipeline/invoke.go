package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/qperformance/internal/engine"
	"github.com/abhisek/qperformance/internal/qtype"
)

// invoke calls the engine for a validated request. The detail flag is
// always off for report runs. Any error is returned wrapped and is not
// classified further.
func (c *Coordinator) invoke(ctx context.Context, req Request, types qtype.Codes) (*engine.Result, error) {
	in := engine.Input{
		QuestionSource: req.QuestionSource,
		RecordsFile:    req.RecordsFile,
		Detail:         false,
		Types:          append(qtype.Codes(nil), types...),
	}

	res, err := c.engine.Analyze(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if res == nil {
		return nil, errors.New("analyze: engine returned no result")
	}
	return res, nil
}
