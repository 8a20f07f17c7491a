// Package sagas runs multi-step graph mutations with compensation, so
// a failure partway through a reset leaves the profile's graph intact.
package sagas

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one stage of a saga. Execute receives the previous step's
// output and returns the next. Compensate, when set, undoes the step
// after a later stage fails; it receives the data the step produced.
type Step struct {
	Name       string
	Execute    func(ctx context.Context, data interface{}) (interface{}, error)
	Compensate func(ctx context.Context, data interface{}) error
}

// Saga executes steps in order. When a step fails, the compensations
// of every completed step run in reverse before the error surfaces.
type Saga struct {
	name   string
	steps  []Step
	logger *zap.Logger
}

// Execute runs the saga, threading data through the steps
func (s *Saga) Execute(ctx context.Context, data interface{}) (interface{}, error) {
	var undo []func(context.Context) error

	for _, step := range s.steps {
		result, err := step.Execute(ctx, data)
		if err != nil {
			s.logger.Error("Saga step failed",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			s.unwind(ctx, undo)
			return nil, fmt.Errorf("%s: step %s: %w", s.name, step.Name, err)
		}

		data = result
		if step.Compensate != nil {
			compensate := step.Compensate
			stepData := data
			undo = append(undo, func(ctx context.Context) error {
				return compensate(ctx, stepData)
			})
		}
	}

	s.logger.Info("Saga completed",
		zap.String("saga", s.name),
		zap.Int("steps", len(s.steps)),
	)

	return data, nil
}

// unwind runs compensations newest first. A failing compensation is
// logged; the remaining ones still run.
func (s *Saga) unwind(ctx context.Context, undo []func(context.Context) error) {
	s.logger.Info("Unwinding saga",
		zap.String("saga", s.name),
		zap.Int("compensations", len(undo)),
	)

	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](ctx); err != nil {
			s.logger.Error("Saga compensation failed",
				zap.String("saga", s.name),
				zap.Error(err),
			)
		}
	}
}

// SagaBuilder assembles a saga step by step
type SagaBuilder struct {
	saga *Saga
}

// NewSagaBuilder starts a new saga definition
func NewSagaBuilder(name string, logger *zap.Logger) *SagaBuilder {
	return &SagaBuilder{saga: &Saga{name: name, logger: logger}}
}

// WithStep adds a step that cannot be undone
func (b *SagaBuilder) WithStep(name string, execute func(context.Context, interface{}) (interface{}, error)) *SagaBuilder {
	b.saga.steps = append(b.saga.steps, Step{Name: name, Execute: execute})
	return b
}

// WithCompensableStep adds a step paired with its undo
func (b *SagaBuilder) WithCompensableStep(
	name string,
	execute func(context.Context, interface{}) (interface{}, error),
	compensate func(context.Context, interface{}) error,
) *SagaBuilder {
	b.saga.steps = append(b.saga.steps, Step{Name: name, Execute: execute, Compensate: compensate})
	return b
}

// Build returns the assembled saga
func (b *SagaBuilder) Build() *Saga {
	return b.saga
}
