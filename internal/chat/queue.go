package chat

import (
	"time"

	"github.com/finassist/fin/internal/api"
)

// DefaultProgressDelay is the pause after each progress message.
const DefaultProgressDelay = 800 * time.Millisecond

// StepKind tells the panel how to present a step.
type StepKind int

const (
	// StepProgress shows an interim update; the typing indicator stays on.
	StepProgress StepKind = iota
	// StepFinal shows the answer and ends the exchange.
	StepFinal
	// StepPending shows an in-progress answer; the exchange stays open.
	StepPending
)

// Step is one presentation unit. Delay is how long to wait after showing
// it before the next step.
type Step struct {
	Kind       StepKind
	Text       string
	Delay      time.Duration
	Attachment *api.Attachment
	Action     *api.Action
}

// Queue paces a chat response for display. It never touches timers itself:
// the caller waits Step.Delay between Next calls, so tests can drain it
// immediately.
type Queue struct {
	steps []Step
	pos   int
}

// Plan turns a response into presentation steps.
func Plan(resp *api.ChatResponse, delay time.Duration) *Queue {
	q := &Queue{}
	if resp == nil {
		return q
	}

	if resp.InProgress {
		if resp.Response != "" {
			q.steps = append(q.steps, Step{Kind: StepPending, Text: resp.Response})
		}
		return q
	}

	for _, msg := range resp.ProgressMessages {
		q.steps = append(q.steps, Step{Kind: StepProgress, Text: msg, Delay: delay})
	}

	final := Step{Kind: StepFinal, Text: resp.Response, Action: resp.Action}
	if resp.HasAttachment {
		final.Attachment = resp.Attachment
	}
	q.steps = append(q.steps, final)
	return q
}

// Next returns the next step, or false when the queue is drained.
func (q *Queue) Next() (Step, bool) {
	if q.pos >= len(q.steps) {
		return Step{}, false
	}
	s := q.steps[q.pos]
	q.pos++
	return s, true
}

// Done reports whether every step was handed out.
func (q *Queue) Done() bool {
	return q.pos >= len(q.steps)
}

// Len returns the total number of steps.
func (q *Queue) Len() int {
	return len(q.steps)
}

// Apply records s in the log. Empty final answers add nothing.
func (s Step) Apply(l *Log) {
	switch s.Kind {
	case StepProgress, StepPending:
		l.AddProgress(RenderText(s.Text))
	case StepFinal:
		if s.Text != "" || s.Attachment != nil {
			l.AddAssistant(RenderText(s.Text), s.Attachment)
		}
	}
}
