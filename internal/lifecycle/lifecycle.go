// Package lifecycle defines the ordered status taxonomy reported by the
// remote task server.
//
// Status codes are ordinal: a task progresses from [Newborn] towards
// [Terminated]. [Terminated] is the boundary. Any code at or past it means
// the task is finished, and any code strictly past it means the task
// finished with a failure the caller must see.
package lifecycle

import (
	"fmt"
	"strings"
)

// Status is a task status code as published by the server.
type Status uint8

const (
	Newborn Status = iota
	Configured
	Initialised
	Running
	Completed
	Terminated
	Interrupted
	Failed
	Timeout
	ConfigurationFailed
	InitialisationFailed
)

var statusNames = [...]string{
	Newborn:              "TASK_NEWBORN",
	Configured:           "TASK_CONFIGURED",
	Initialised:          "TASK_INITIALISED",
	Running:              "TASK_RUNNING",
	Completed:            "TASK_COMPLETED",
	Terminated:           "TASK_TERMINATED",
	Interrupted:          "TASK_INTERRUPTED",
	Failed:               "TASK_FAILED",
	Timeout:              "TASK_TIMEOUT",
	ConfigurationFailed:  "TASK_CONFIGURATION_FAILED",
	InitialisationFailed: "TASK_INITIALISATION_FAILED",
}

// String returns the server's name for the status, or UNKNOWN(n) for codes
// outside the taxonomy.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
}

// IsTerminal reports whether the task has finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s >= Terminated
}

// IsFailure reports whether the task finished with a failure. Unknown codes
// sort past the table and therefore count as failures.
func (s Status) IsFailure() bool {
	return s > Terminated
}

// IsSuccess reports whether the task finished cleanly.
func (s Status) IsSuccess() bool {
	return s == Terminated
}

// Known reports whether s is part of the taxonomy.
func (s Status) Known() bool {
	return int(s) < len(statusNames)
}

// All returns every known status in ordinal order.
func All() []Status {
	out := make([]Status, len(statusNames))
	for i := range statusNames {
		out[i] = Status(i)
	}
	return out
}

// Parse looks up a status by name, ignoring case. Both "TASK_RUNNING" and
// "running" are accepted.
func Parse(name string) (Status, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == name || n == "TASK_"+name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown task status %q", name)
}

const (
	statusMask     = 0xFF
	foregroundFlag = 0x100
)

// DecodeWord splits a published status word into its status code (low
// byte) and the foreground flag (bit 0x100).
func DecodeWord(word uint32) (Status, bool) {
	return Status(word & statusMask), word&foregroundFlag != 0
}

// EncodeWord is the inverse of DecodeWord.
func EncodeWord(s Status, foreground bool) uint32 {
	word := uint32(s)
	if foreground {
		word |= foregroundFlag
	}
	return word
}
