// Package build runs the generate, validate and repair loop that turns
// a theme into a publishable artifact.
package build

import (
	"context"
	"fmt"
	"log/slog"
)

// Generator produces and repairs artifacts. Build returns a complete
// document; Patch returns a unified diff against the current document
// targeting the single reported failure.
type Generator interface {
	Build(ctx context.Context, req Request) (string, error)
	Patch(ctx context.Context, reason, current string) (string, error)
}

// Controller drives one artifact through the build lifecycle.
type Controller struct {
	gen         Generator
	validator   *Validator
	maxAttempts int
	log         *slog.Logger
}

// NewController constructs a controller. maxAttempts bounds the number
// of validation attempts per theme.
func NewController(gen Generator, validator *Validator, maxAttempts int, log *slog.Logger) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{gen: gen, validator: validator, maxAttempts: maxAttempts, log: log}
}

// Run executes the loop: draft, validate, and on failure patch and
// revalidate. A patch that cannot be applied or changes nothing demotes
// to a full regeneration carrying the failure reason. The run ends
// Published on the first valid artifact or Failed once attempts are
// exhausted; a Failed run never yields a partial artifact.
func (c *Controller) Run(ctx context.Context, req Request) (Outcome, error) {
	artifact, err := c.gen.Build(ctx, req)
	if err != nil {
		return Outcome{State: StateFailed}, fmt.Errorf("initial build: %w", err)
	}

	var reason string
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		verdict := c.validator.Validate(artifact)
		if verdict.OK {
			c.log.Info("artifact validated", "title", req.Title, "attempt", attempt)
			return Outcome{State: StatePublished, Artifact: artifact, Attempts: attempt}, nil
		}
		reason = verdict.Reason
		c.log.Warn("artifact invalid", "title", req.Title, "attempt", attempt, "reason", reason)

		if attempt == c.maxAttempts {
			break
		}

		artifact, err = c.repair(ctx, req, artifact, reason)
		if err != nil {
			return Outcome{State: StateFailed, Attempts: attempt, Reason: reason}, err
		}
	}

	return Outcome{State: StateFailed, Attempts: c.maxAttempts, Reason: reason}, nil
}

// repair asks for a targeted patch first and falls back to full
// regeneration when the diff is rejected or changes nothing.
func (c *Controller) repair(ctx context.Context, req Request, current, reason string) (string, error) {
	diff, err := c.gen.Patch(ctx, reason, current)
	if err != nil {
		return "", fmt.Errorf("patch request: %w", err)
	}

	res := ApplyPatch(current, diff)
	if res.Applied {
		return res.Text, nil
	}
	c.log.Warn("patch rejected, regenerating", "title", req.Title, "cause", res.Reason)

	req.FailureReason = reason
	next, err := c.gen.Build(ctx, req)
	if err != nil {
		return "", fmt.Errorf("regeneration: %w", err)
	}
	return next, nil
}
