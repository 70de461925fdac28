package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/openmesh-labs/agora/internal/errors"
)

// Workflow step actions.
const (
	// ActionProcess calls the step's role directly with the step input.
	ActionProcess = "process"

	// ActionSendMessage routes the step input from the step's role to the
	// To role, which then processes it.
	ActionSendMessage = "send_message"
)

// Step is one unit of a workflow.
type Step struct {
	// Role is the acting role.
	Role string
	// Action is one of the Action* constants.
	Action string
	// Input is the step's input text. Placeholders of the form
	// {<role>_result} are substituted from earlier step outputs.
	Input string
	// To is the recipient role for send_message steps.
	To string
}

// StepResult is one executed step's outcome.
type StepResult struct {
	Role   string
	Action string
	Output any
}

// Outcome carries an asynchronous workflow execution's return values.
type Outcome struct {
	Results []StepResult
	Err     error
}

// Workflow is an ordered list of steps executed against a team's roles.
type Workflow struct {
	team  *Team
	steps []Step
}

// NewWorkflow creates a workflow over the given team.
func NewWorkflow(t *Team, steps []Step) *Workflow {
	return &Workflow{team: t, steps: steps}
}

// Validate fails fast on malformed steps: unknown actions, missing roles,
// and send_message steps without a recipient. Malformed construction is a
// caller bug, so validation never partially succeeds.
func (w *Workflow) Validate() error {
	for i, step := range w.steps {
		field := fmt.Sprintf("workflow step %d", i)
		switch step.Action {
		case ActionProcess, ActionSendMessage:
		default:
			return errors.NewValidationError(field, fmt.Sprintf("unknown action %q", step.Action))
		}
		if step.Role == "" {
			return errors.NewValidationError(field, "missing role")
		}
		if step.Action == ActionSendMessage && step.To == "" {
			return errors.NewValidationError(field, "send_message step requires a recipient")
		}
	}
	return nil
}

// Execute runs the steps in order. Each step's output is appended to the
// returned results and stashed under "<role>_result" for placeholder
// substitution in later steps. An unknown role aborts immediately with the
// results accumulated so far.
func (w *Workflow) Execute(ctx context.Context) ([]StepResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	outputs := make(map[string]string)
	results := make([]StepResult, 0, len(w.steps))

	for _, step := range w.steps {
		input := substitute(step.Input, outputs)

		var (
			output any
			actor  string
			err    error
		)
		switch step.Action {
		case ActionProcess:
			actor = step.Role
			output, err = w.team.ProcessWithRole(ctx, step.Role, input)
		case ActionSendMessage:
			actor = step.To
			output, err = w.sendAndProcess(ctx, step, input)
		}
		if err != nil {
			return results, err
		}

		results = append(results, StepResult{Role: actor, Action: step.Action, Output: output})
		outputs[actor+"_result"] = fmt.Sprintf("%v", output)
	}
	return results, nil
}

// sendAndProcess routes the input to the recipient role and has the
// recipient process the delivered message.
func (w *Workflow) sendAndProcess(ctx context.Context, step Step, input string) (any, error) {
	if err := w.team.SendToRole(step.Role, step.To, input); err != nil {
		return nil, err
	}

	msg, ok, err := w.team.receiveForRole(step.To)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewTimeoutError(
			fmt.Sprintf("message delivery to role %q", step.To), w.team.timeout)
	}
	return w.team.ProcessWithRole(ctx, step.To, msg.Content)
}

// ExecuteAsync runs Execute on a goroutine and returns the outcome channel.
func (w *Workflow) ExecuteAsync(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		results, err := w.Execute(ctx)
		out <- Outcome{Results: results, Err: err}
		close(out)
	}()
	return out
}

// substitute replaces {<key>} placeholders with accumulated step outputs.
func substitute(input string, outputs map[string]string) string {
	for key, value := range outputs {
		input = strings.ReplaceAll(input, "{"+key+"}", value)
	}
	return input
}
