package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/shirou/gopsutil/v4/process"

	"pimonitor/internal/logger"
)

// Action is a control signal that can be sent to a process
type Action string

const (
	ActionKill      Action = "kill"
	ActionTerminate Action = "terminate"
	ActionSuspend   Action = "suspend"
	ActionResume    Action = "resume"
)

// ParseAction accepts the action names and their signal-style aliases
func ParseAction(s string) (Action, error) {
	switch s {
	case "kill":
		return ActionKill, nil
	case "terminate", "term":
		return ActionTerminate, nil
	case "suspend", "stop":
		return ActionSuspend, nil
	case "resume", "cont":
		return ActionResume, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// ErrInvalidPID is returned by ParsePID for input that is not a decimal integer
var ErrInvalidPID = errors.New("pid must be a decimal integer")

// ParsePID parses a decimal process id. A well-formed integer outside the
// pid range parses with ok false, since no process can carry it.
func ParsePID(s string) (pid int32, ok bool, err error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, ErrInvalidPID
	}
	return int32(v), true, nil
}

// Outcome classifies a control attempt
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeNotFound Outcome = "not_found"
	OutcomeRejected Outcome = "rejected"
)

// Result reports whether the signal was delivered. Err is set when the
// operating system refused it.
type Result struct {
	Applied bool
	Outcome Outcome
	Err     error
}

// Control sends action to pid without waiting for any effect. pid <= 0 is
// never signalled, so group and broadcast signals cannot be requested.
func Control(ctx context.Context, pid int32, action Action) Result {
	if pid <= 0 {
		return Result{Outcome: OutcomeNotFound}
	}

	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return Result{Outcome: OutcomeNotFound}
	}

	switch action {
	case ActionKill:
		err = p.KillWithContext(ctx)
	case ActionTerminate:
		err = p.TerminateWithContext(ctx)
	case ActionSuspend:
		err = p.SuspendWithContext(ctx)
	case ActionResume:
		err = p.ResumeWithContext(ctx)
	default:
		return Result{Outcome: OutcomeRejected, Err: fmt.Errorf("unknown action %q", action)}
	}

	if err != nil {
		// Exited between lookup and signal
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, process.ErrorProcessNotRunning) {
			return Result{Outcome: OutcomeNotFound}
		}
		logger.Warning("Failed to %s process %d: %v", action, pid, err)
		return Result{Outcome: OutcomeRejected, Err: err}
	}

	logger.Info("Sent %s to process %d", action, pid)
	return Result{Applied: true, Outcome: OutcomeApplied}
}
