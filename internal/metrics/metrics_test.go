package metrics

import (
	"math"
	"testing"

	"github.com/bubelovv/sprint-planner/internal/domain"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAvailableCapacityClampsNegative(t *testing.T) {
	member := domain.SprintMember{Capacity: 5, Leaves: 4, Holidays: 2, NonJira: 1}
	for _, reserve := range []float64{0, 15, 50, 100} {
		if got := AvailableCapacity(member, reserve); got != 0 {
			t.Fatalf("reserve %v: AvailableCapacity = %v, want 0", reserve, got)
		}
		if got := ActualAvailableCapacity(member, reserve); got != 0 {
			t.Fatalf("reserve %v: ActualAvailableCapacity = %v, want 0", reserve, got)
		}
	}
}

func TestAvailableCapacity(t *testing.T) {
	member := domain.SprintMember{Capacity: 10, Leaves: 1, UnplannedLeaves: 2}
	if got := AvailableCapacity(member, 15); !approx(got, 7.65) {
		t.Fatalf("AvailableCapacity = %v, want 7.65", got)
	}
	if got := ActualAvailableCapacity(member, 15); !approx(got, 5.65) {
		t.Fatalf("ActualAvailableCapacity = %v, want 5.65", got)
	}

	member.UnplannedLeaves = 20
	if got := ActualAvailableCapacity(member, 15); got != 0 {
		t.Fatalf("ActualAvailableCapacity with large unplanned leave = %v", got)
	}
}

func TestMemberStatusBoundaries(t *testing.T) {
	tests := []struct {
		util float64
		want Status
	}{
		{0, StatusUnder},
		{84.999, StatusUnder},
		{85, StatusBalanced},
		{100, StatusBalanced},
		{100.001, StatusOver},
		{250, StatusOver},
	}
	for _, tt := range tests {
		if got := MemberStatus(tt.util); got != tt.want {
			t.Fatalf("MemberStatus(%v) = %s, want %s", tt.util, got, tt.want)
		}
	}
}

func TestSPRollups(t *testing.T) {
	sprint := domain.Sprint{
		JiraTickets: map[string][]domain.Ticket{
			"m1": {
				{ID: "A-1", SP: 5},
				{ID: "A-2", SP: 3, IsAdhoc: true},
				{ID: "A-3", SP: 2, Completed: true},
				{ID: "A-4", SP: 1, IsAdhoc: true, Completed: true},
			},
		},
	}

	checks := map[string]struct{ got, want float64 }{
		"planned":           {PlannedSP(sprint, "m1"), 7},
		"adhoc":             {AdhocSP(sprint, "m1"), 4},
		"total":             {TotalSP(sprint, "m1"), 11},
		"completed":         {CompletedSP(sprint, "m1"), 3},
		"completed planned": {CompletedPlannedSP(sprint, "m1"), 2},
		"completed adhoc":   {CompletedAdhocSP(sprint, "m1"), 1},
		"unknown member":    {TotalSP(sprint, "nobody"), 0},
	}
	for name, c := range checks {
		if math.Abs(c.got-c.want) > eps {
			t.Fatalf("%s: got %v, want %v", name, c.got, c.want)
		}
	}
}

func TestSprintMetricsZeroDenominators(t *testing.T) {
	sprint := domain.Sprint{
		Members: []domain.SprintMember{
			{ID: "m1", Capacity: 0},
			{ID: "m2", Capacity: 3, Leaves: 5},
		},
		JiraTickets: map[string][]domain.Ticket{
			"m1": {{ID: "A-1", SP: 0, Completed: true}},
		},
	}

	got := SprintMetrics(sprint)
	for name, v := range map[string]float64{
		"plannedUtil":    got.PlannedUtil,
		"actualUtil":     got.ActualUtil,
		"completionRate": got.CompletionRate,
	} {
		if v != 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s = %v, want 0", name, v)
		}
	}
	if got.UnderCount != 2 {
		t.Fatalf("members with no capacity must count as under, got %+v", got)
	}

	empty := SprintMetrics(domain.Sprint{})
	if empty.PlannedUtil != 0 || empty.ActualUtil != 0 || empty.CompletionRate != 0 {
		t.Fatalf("empty sprint metrics not zero: %+v", empty)
	}
}

func TestSprintMetricsOverloadedMemberWithoutCapacity(t *testing.T) {
	sprint := domain.Sprint{
		Members:     []domain.SprintMember{{ID: "m1", Capacity: 0}},
		JiraTickets: map[string][]domain.Ticket{"m1": {{ID: "A-1", SP: 8}}},
	}

	got := SprintMetrics(sprint)
	if got.PlannedUtil != 0 {
		t.Fatalf("plannedUtil = %v, want 0", got.PlannedUtil)
	}
	if got.UnderCount != 1 || got.OverCount != 0 {
		t.Fatalf("status counts = %+v", got)
	}
}

func TestEndToEndMemberScenario(t *testing.T) {
	member := domain.SprintMember{ID: "m1", Name: "Ada", Capacity: 10, Leaves: 1}
	sprint := domain.Sprint{
		AdhocReserve: 15,
		Members:      []domain.SprintMember{member},
		JiraTickets: map[string][]domain.Ticket{
			"m1": {
				{ID: "ABC-1", SP: 5},
				{ID: "ABC-2", SP: 3, IsAdhoc: true},
			},
		},
	}

	row := MemberBreakdown(sprint, member)
	if !approx(row.Available, 7.65) {
		t.Fatalf("available = %v", row.Available)
	}
	if row.PlannedSP != 5 || row.AdhocSP != 3 {
		t.Fatalf("planned/adhoc = %v/%v", row.PlannedSP, row.AdhocSP)
	}
	if math.Abs(row.PlannedUtil-65.359477) > 1e-3 {
		t.Fatalf("plannedUtil = %v", row.PlannedUtil)
	}
	if row.Status != StatusUnder {
		t.Fatalf("status = %s", row.Status)
	}

	sprint.JiraTickets["m1"][0].Completed = true
	if got := CompletedPlannedSP(sprint, "m1"); got != 5 {
		t.Fatalf("completedPlannedSp = %v", got)
	}
	sm := SprintMetrics(sprint)
	if sm.CompletionRate != 100 {
		t.Fatalf("completionRate = %v", sm.CompletionRate)
	}
	if sm.TotalDelivered != 5 || sm.TotalDeliveredPlanned != 5 || sm.TotalDeliveredAdhoc != 0 {
		t.Fatalf("delivered totals = %+v", sm.Totals)
	}
}

func TestSprintMetricsIgnoresStaleTicketLists(t *testing.T) {
	sprint := domain.Sprint{
		Members: []domain.SprintMember{{ID: "m1", Capacity: 10}},
		JiraTickets: map[string][]domain.Ticket{
			"m1":       {{ID: "A-1", SP: 2}},
			"departed": {{ID: "A-2", SP: 40}},
		},
	}

	got := SprintMetrics(sprint)
	if got.TotalPlanned != 2 {
		t.Fatalf("TotalPlanned = %v, stale list leaked in", got.TotalPlanned)
	}
}

func TestSprintMetricsActualUtilIncludesAdhoc(t *testing.T) {
	sprint := domain.Sprint{
		Members: []domain.SprintMember{{ID: "m1", Capacity: 10, UnplannedLeaves: 2}},
		JiraTickets: map[string][]domain.Ticket{
			"m1": {
				{ID: "A-1", SP: 4, Completed: true},
				{ID: "A-2", SP: 2, IsAdhoc: true, Completed: true},
				{ID: "A-3", SP: 4},
			},
		},
	}

	got := SprintMetrics(sprint)
	if !approx(got.ActualUtil, 6.0/8.0*100) {
		t.Fatalf("actualUtil = %v", got.ActualUtil)
	}
	if !approx(got.CompletionRate, 50) {
		t.Fatalf("completionRate = %v", got.CompletionRate)
	}
	if got.TotalUnplannedLeaves != 2 {
		t.Fatalf("unplanned leaves = %v", got.TotalUnplannedLeaves)
	}
}

func TestReleaseMetricsSumsBeforeRatios(t *testing.T) {
	sprints := map[string]domain.Sprint{
		"s1": {
			ID:          "s1",
			Members:     []domain.SprintMember{{ID: "m1", Capacity: 10}},
			JiraTickets: map[string][]domain.Ticket{"m1": {{ID: "A-1", SP: 10, Completed: true}}},
		},
		"s2": {
			ID:          "s2",
			Members:     []domain.SprintMember{{ID: "m1", Capacity: 30}},
			JiraTickets: map[string][]domain.Ticket{"m1": {{ID: "A-2", SP: 0}}},
		},
	}
	release := domain.Release{ID: "r1", SprintIDs: []string{"s1", "missing", "s2"}}

	got := ReleaseMetrics(release, sprints)
	if got.SprintCount != 2 || len(got.SprintMetrics) != 2 {
		t.Fatalf("sprint count = %d, list = %d", got.SprintCount, len(got.SprintMetrics))
	}
	if got.SprintMetrics[0].Sprint.ID != "s1" || got.SprintMetrics[1].Sprint.ID != "s2" {
		t.Fatalf("sprint order not preserved")
	}
	// Average of per-sprint utilizations would be 50; the summed ratio is 25.
	if !approx(got.PlannedUtil, 25) {
		t.Fatalf("plannedUtil = %v, want 25", got.PlannedUtil)
	}
	if got.TotalAvailable != 40 || got.TotalPlanned != 10 {
		t.Fatalf("totals = %+v", got.Totals)
	}
	if got.CompletionRate != 100 {
		t.Fatalf("completionRate = %v", got.CompletionRate)
	}
}

func TestReleaseMetricsEmpty(t *testing.T) {
	got := ReleaseMetrics(domain.Release{ID: "r1"}, nil)
	if got.SprintCount != 0 || got.PlannedUtil != 0 || got.ActualUtil != 0 || got.CompletionRate != 0 {
		t.Fatalf("unexpected metrics for empty release: %+v", got)
	}
	if got.SprintMetrics == nil {
		t.Fatalf("sprint metrics list must be empty, not nil")
	}
}

func TestBacklogSP(t *testing.T) {
	sprint := domain.Sprint{Backlog: []domain.Ticket{{SP: 1.5}, {SP: 2}}}
	if got := BacklogSP(sprint); got != 3.5 {
		t.Fatalf("BacklogSP = %v", got)
	}
}
