// Package metrics derives capacity, utilization and completion figures from
// planner snapshots. Every function is pure; callers may recompute freely.
package metrics

import "github.com/bubelovv/sprint-planner/internal/domain"

type Status string

const (
	StatusUnder    Status = "under"
	StatusBalanced Status = "balanced"
	StatusOver     Status = "over"
)

const (
	balancedFloor   = 85.0
	balancedCeiling = 100.0
)

// AvailableCapacity is raw capacity minus leaves, holidays and non-tracker
// work, reduced by the adhoc reserve and clamped at zero.
func AvailableCapacity(m domain.SprintMember, adhocReservePercent float64) float64 {
	raw := m.Capacity - m.Leaves - m.Holidays - m.NonJira
	return clamp(raw * (1 - adhocReservePercent/100))
}

// ActualAvailableCapacity further subtracts unplanned leaves.
func ActualAvailableCapacity(m domain.SprintMember, adhocReservePercent float64) float64 {
	return clamp(AvailableCapacity(m, adhocReservePercent) - m.UnplannedLeaves)
}

func PlannedSP(s domain.Sprint, memberID string) float64 {
	return sumSP(s.JiraTickets[memberID], func(t domain.Ticket) bool { return !t.IsAdhoc })
}

func AdhocSP(s domain.Sprint, memberID string) float64 {
	return sumSP(s.JiraTickets[memberID], func(t domain.Ticket) bool { return t.IsAdhoc })
}

func TotalSP(s domain.Sprint, memberID string) float64 {
	return PlannedSP(s, memberID) + AdhocSP(s, memberID)
}

func CompletedSP(s domain.Sprint, memberID string) float64 {
	return sumSP(s.JiraTickets[memberID], func(t domain.Ticket) bool { return t.Completed })
}

func CompletedPlannedSP(s domain.Sprint, memberID string) float64 {
	return sumSP(s.JiraTickets[memberID], func(t domain.Ticket) bool { return t.Completed && !t.IsAdhoc })
}

func CompletedAdhocSP(s domain.Sprint, memberID string) float64 {
	return sumSP(s.JiraTickets[memberID], func(t domain.Ticket) bool { return t.Completed && t.IsAdhoc })
}

// BacklogSP sums the story points still unassigned in the sprint.
func BacklogSP(s domain.Sprint) float64 {
	return sumSP(s.Backlog, func(domain.Ticket) bool { return true })
}

// MemberStatus buckets a planned utilization percentage.
func MemberStatus(plannedUtilization float64) Status {
	switch {
	case plannedUtilization < balancedFloor:
		return StatusUnder
	case plannedUtilization <= balancedCeiling:
		return StatusBalanced
	default:
		return StatusOver
	}
}

// Percent returns part/whole*100, or 0 when whole is not positive.
func Percent(part, whole float64) float64 {
	if whole > 0 {
		return part / whole * 100
	}
	return 0
}

func sumSP(tickets []domain.Ticket, keep func(domain.Ticket) bool) float64 {
	var total float64
	for _, t := range tickets {
		if keep(t) {
			total += t.SP
		}
	}
	return total
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
