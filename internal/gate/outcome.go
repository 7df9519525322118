package gate

import "fmt"

// ProjectStatus is the project-level lifecycle state. The stage only ever
// moves forward; status moves on gate decisions or explicit admin action.
type ProjectStatus string

const (
	StatusActive     ProjectStatus = "ACTIVE"
	StatusOnHold     ProjectStatus = "ON_HOLD"
	StatusTerminated ProjectStatus = "TERMINATED"
	StatusCompleted  ProjectStatus = "COMPLETED"
)

func ParseProjectStatus(v string) (ProjectStatus, error) {
	switch ProjectStatus(v) {
	case StatusActive, StatusOnHold, StatusTerminated, StatusCompleted:
		return ProjectStatus(v), nil
	}
	return "", fmt.Errorf("unknown project status %q", v)
}

// Effect is a side-effect intent produced by applying a gate outcome. The
// transactional core only collects effects; the caller dispatches them after
// the transaction commits (notifications, activity log), best-effort.
type Effect struct {
	Action string // activity log verb, e.g. "gate_passed"
	Detail string // human-readable line for notifications and the log
}

// Outcome is the result of applying an aggregate decision to a project.
type Outcome struct {
	Decision Decision
	Stage    Stage
	Status   ProjectStatus
	Advanced bool
	Effects  []Effect
}

// ApplyOutcome computes the project mutation for an aggregate gate decision:
//
//	GO      → advance to the successor stage (no-op at the last stage), ACTIVE
//	STOP    → TERMINATED, stage unchanged
//	HOLD    → ON_HOLD, stage unchanged
//	RECYCLE → nothing changes, the project stays in place for rework
//
// ApplyOutcome is pure; persisting the mutation and dispatching the effects
// is the caller's job.
func ApplyOutcome(stage Stage, status ProjectStatus, decision Decision) Outcome {
	out := Outcome{Decision: decision, Stage: stage, Status: status}
	switch decision {
	case DecisionGo:
		out.Stage = stage.Next()
		out.Status = StatusActive
		out.Advanced = out.Stage != stage
		if out.Advanced {
			out.Effects = append(out.Effects, Effect{
				Action: "gate_passed",
				Detail: fmt.Sprintf("gate passed: project advanced to %s (%s)", out.Stage, out.Stage.Label()),
			})
		} else {
			out.Effects = append(out.Effects, Effect{
				Action: "gate_passed",
				Detail: fmt.Sprintf("gate passed at final stage %s, no further advancement", stage),
			})
		}
	case DecisionStop:
		out.Status = StatusTerminated
		out.Effects = append(out.Effects, Effect{
			Action: "project_terminated",
			Detail: fmt.Sprintf("gate decision STOP at %s: project terminated", stage),
		})
	case DecisionHold:
		out.Status = StatusOnHold
		out.Effects = append(out.Effects, Effect{
			Action: "project_on_hold",
			Detail: fmt.Sprintf("gate decision HOLD at %s: project put on hold", stage),
		})
	case DecisionRecycle:
		out.Effects = append(out.Effects, Effect{
			Action: "gate_recycled",
			Detail: fmt.Sprintf("gate decision RECYCLE at %s: project stays for rework", stage),
		})
	}
	return out
}
