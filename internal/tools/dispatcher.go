package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"sola/internal/adapters/alerts"
	"sola/internal/metrics"
	"sola/pkg/logger"
)

// Dispatcher routes tool calls through lookup, validation and execution,
// always producing a typed Result. It never returns a Go error and never
// lets a tool panic escape: the model consuming the result has to be able
// to keep the conversation going no matter what a tool did.
type Dispatcher struct {
	registry *Registry
	notifier alerts.Notifier
	log      *logger.Logger
}

// NewDispatcher creates a dispatcher over a registry
func NewDispatcher(registry *Registry, notifier alerts.Notifier) *Dispatcher {
	if notifier == nil {
		notifier = alerts.NewNoopNotifier()
	}
	return &Dispatcher{
		registry: registry,
		notifier: notifier,
		log:      logger.Get().With("component", "dispatcher"),
	}
}

// Dispatch executes a named tool with JSON-encoded arguments.
// Validation always runs before execution; a tool handler never sees
// arguments that failed its schema.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) Result {
	start := time.Now()

	tool, ok := d.registry.Get(name)
	if !ok {
		d.log.Warnf("Dispatch of unknown tool %q", name)
		metrics.RecordDispatch(name, string(ErrKindToolNotFound), time.Since(start))
		return NotFoundResult(name)
	}

	args, fieldErrs := decodeArgs(rawArgs)
	if fieldErrs == nil {
		fieldErrs = tool.Schema().Validate(args)
	}
	if len(fieldErrs) > 0 {
		d.log.Debugf("Validation failed for %q: %d field error(s)", name, len(fieldErrs))
		metrics.RecordDispatch(name, string(ErrKindValidation), time.Since(start))
		return ValidationResult(name, fieldErrs)
	}

	result := d.execute(ctx, tool, args)
	metrics.RecordDispatch(name, dispatchStatus(result), time.Since(start))
	return result
}

// execute runs the tool with panic recovery. Panic details stay in the
// logs and ops alerts; the model only sees a generic execution error.
func (d *Dispatcher) execute(ctx context.Context, tool Tool, args map[string]interface{}) (result Result) {
	name := tool.Name()

	defer func() {
		if r := recover(); r != nil {
			metrics.ToolPanics.WithLabelValues(name).Inc()
			d.log.Errorf("Panic in tool %q: %v\n%s", name, r, debug.Stack())
			d.notifier.Alert(context.Background(), "Tool panic",
				fmt.Sprintf("Tool %q panicked: %v", name, r))
			result = ExecutionResult(name, "tool execution failed")
		}
	}()

	data, err := tool.Execute(ctx, args)
	if err != nil {
		d.log.Warnf("Tool %q failed: %v", name, err)
		return ExecutionResult(name, err.Error())
	}

	return Success(name, data)
}

// decodeArgs parses raw JSON arguments into a map. Empty input means an
// argument-free call, which validation then checks against required fields.
func decodeArgs(rawArgs json.RawMessage) (map[string]interface{}, []FieldError) {
	if len(rawArgs) == 0 {
		return map[string]interface{}{}, nil
	}

	var args map[string]interface{}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return nil, []FieldError{{
			Field:   "",
			Message: "arguments are not a JSON object",
		}}
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

func dispatchStatus(r Result) string {
	if r.IsSuccess() {
		return string(StatusSuccess)
	}
	return string(r.Error.Kind)
}
