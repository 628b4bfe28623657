// Package jobs runs background work that only needs a record id.
package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Kind names a job handler.
type Kind string

const (
	KindCommentNotification Kind = "comment_notification"
	KindConfirmationMail    Kind = "confirmation_mail"
	KindResetPasswordMail   Kind = "reset_password_mail"
	KindUnlockMail          Kind = "unlock_mail"
)

// Job is the unit of work put on a queue. Only the id travels, so a job
// outlives a process restart and always sees fresh data.
type Job struct {
	Kind     Kind `json:"kind"`
	RecordID uint `json:"record_id"`
}

// Queue accepts jobs for later execution.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler processes the record a job points at.
type Handler func(ctx context.Context, recordID uint) error

// Dispatcher routes jobs to the handler registered for their kind.
type Dispatcher struct {
	handlers map[Kind]Handler
	log      *zap.Logger
}

// NewDispatcher creates an empty Dispatcher
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{handlers: make(map[Kind]Handler), log: log}
}

// Handle registers h for kind, replacing any previous handler.
func (d *Dispatcher) Handle(kind Kind, h Handler) {
	d.handlers[kind] = h
}

// Dispatch runs the handler for job.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) error {
	h, ok := d.handlers[job.Kind]
	if !ok {
		return fmt.Errorf("no handler for job kind %q", job.Kind)
	}
	if err := h(ctx, job.RecordID); err != nil {
		return fmt.Errorf("job %s(%d): %w", job.Kind, job.RecordID, err)
	}
	return nil
}

// InlineQueue runs jobs synchronously on Enqueue.
type InlineQueue struct {
	dispatcher *Dispatcher
}

// NewInlineQueue creates an InlineQueue
func NewInlineQueue(d *Dispatcher) *InlineQueue {
	return &InlineQueue{dispatcher: d}
}

func (q *InlineQueue) Enqueue(ctx context.Context, job Job) error {
	return q.dispatcher.Dispatch(ctx, job)
}
