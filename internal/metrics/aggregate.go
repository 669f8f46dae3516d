package metrics

import "github.com/bubelovv/sprint-planner/internal/domain"

type MemberMetrics struct {
	MemberID           string  `json:"memberId"`
	Name               string  `json:"name"`
	Available          float64 `json:"available"`
	ActualAvailable    float64 `json:"actualAvailable"`
	PlannedSP          float64 `json:"plannedSp"`
	AdhocSP            float64 `json:"adhocSp"`
	TotalSP            float64 `json:"totalSp"`
	CompletedSP        float64 `json:"completedSp"`
	CompletedPlannedSP float64 `json:"completedPlannedSp"`
	CompletedAdhocSP   float64 `json:"completedAdhocSp"`
	PlannedUtil        float64 `json:"plannedUtil"`
	ActualUtil         float64 `json:"actualUtil"`
	Status             Status  `json:"status"`
}

// Totals are the summable parts shared by sprint and release aggregates.
type Totals struct {
	TotalAvailable        float64 `json:"totalAvailable"`
	TotalActualAvailable  float64 `json:"totalActualAvailable"`
	TotalUnplannedLeaves  float64 `json:"totalUnplannedLeaves"`
	TotalPlanned          float64 `json:"totalPlanned"`
	TotalAdhoc            float64 `json:"totalAdhoc"`
	TotalDelivered        float64 `json:"totalDelivered"`
	TotalDeliveredPlanned float64 `json:"totalDeliveredPlanned"`
	TotalDeliveredAdhoc   float64 `json:"totalDeliveredAdhoc"`
}

func (t *Totals) add(o Totals) {
	t.TotalAvailable += o.TotalAvailable
	t.TotalActualAvailable += o.TotalActualAvailable
	t.TotalUnplannedLeaves += o.TotalUnplannedLeaves
	t.TotalPlanned += o.TotalPlanned
	t.TotalAdhoc += o.TotalAdhoc
	t.TotalDelivered += o.TotalDelivered
	t.TotalDeliveredPlanned += o.TotalDeliveredPlanned
	t.TotalDeliveredAdhoc += o.TotalDeliveredAdhoc
}

// Ratios are always recomputed from totals, never averaged.
type Ratios struct {
	PlannedUtil    float64 `json:"plannedUtil"`
	ActualUtil     float64 `json:"actualUtil"`
	CompletionRate float64 `json:"completionRate"`
}

func ratiosFrom(t Totals) Ratios {
	return Ratios{
		PlannedUtil:    Percent(t.TotalPlanned, t.TotalAvailable),
		ActualUtil:     Percent(t.TotalDelivered, t.TotalActualAvailable),
		CompletionRate: Percent(t.TotalDeliveredPlanned, t.TotalPlanned),
	}
}

type SprintMetricsResult struct {
	Totals
	Ratios
	UnderCount    int `json:"underCount"`
	BalancedCount int `json:"balancedCount"`
	OverCount     int `json:"overCount"`
}

type SprintWithMetrics struct {
	Sprint  domain.Sprint       `json:"sprint"`
	Metrics SprintMetricsResult `json:"metrics"`
}

type ReleaseMetricsResult struct {
	Totals
	Ratios
	SprintCount   int                 `json:"sprintCount"`
	SprintMetrics []SprintWithMetrics `json:"sprintMetrics"`
}

// MemberBreakdown computes one row of the sprint capacity table.
func MemberBreakdown(s domain.Sprint, m domain.SprintMember) MemberMetrics {
	available := AvailableCapacity(m, s.AdhocReserve)
	actual := ActualAvailableCapacity(m, s.AdhocReserve)
	planned := PlannedSP(s, m.ID)
	adhoc := AdhocSP(s, m.ID)
	completed := CompletedSP(s, m.ID)
	plannedUtil := Percent(planned, available)

	return MemberMetrics{
		MemberID:           m.ID,
		Name:               m.Name,
		Available:          available,
		ActualAvailable:    actual,
		PlannedSP:          planned,
		AdhocSP:            adhoc,
		TotalSP:            planned + adhoc,
		CompletedSP:        completed,
		CompletedPlannedSP: CompletedPlannedSP(s, m.ID),
		CompletedAdhocSP:   CompletedAdhocSP(s, m.ID),
		PlannedUtil:        plannedUtil,
		ActualUtil:         Percent(completed, actual),
		Status:             MemberStatus(plannedUtil),
	}
}

// SprintMemberBreakdowns returns MemberBreakdown for every sprint member in
// roster order. Ticket lists keyed by departed members are ignored.
func SprintMemberBreakdowns(s domain.Sprint) []MemberMetrics {
	rows := make([]MemberMetrics, 0, len(s.Members))
	for _, m := range s.Members {
		rows = append(rows, MemberBreakdown(s, m))
	}
	return rows
}

func SprintMetrics(s domain.Sprint) SprintMetricsResult {
	var (
		totals Totals
		result SprintMetricsResult
	)

	for _, m := range s.Members {
		row := MemberBreakdown(s, m)

		totals.TotalAvailable += row.Available
		totals.TotalActualAvailable += row.ActualAvailable
		totals.TotalPlanned += row.PlannedSP
		totals.TotalAdhoc += row.AdhocSP
		totals.TotalDelivered += row.CompletedSP
		totals.TotalDeliveredPlanned += row.CompletedPlannedSP
		totals.TotalDeliveredAdhoc += row.CompletedAdhocSP
		totals.TotalUnplannedLeaves += m.UnplannedLeaves

		switch row.Status {
		case StatusUnder:
			result.UnderCount++
		case StatusBalanced:
			result.BalancedCount++
		default:
			result.OverCount++
		}
	}

	result.Totals = totals
	result.Ratios = ratiosFrom(totals)
	return result
}

// ReleaseMetrics aggregates every resolvable sprint of the release. Sprint
// ids without a matching sprint are skipped.
func ReleaseMetrics(r domain.Release, sprints map[string]domain.Sprint) ReleaseMetricsResult {
	resolved := domain.ResolveSprints(r, sprints)

	result := ReleaseMetricsResult{
		SprintCount:   len(resolved),
		SprintMetrics: make([]SprintWithMetrics, 0, len(resolved)),
	}
	for _, s := range resolved {
		m := SprintMetrics(s)
		result.Totals.add(m.Totals)
		result.SprintMetrics = append(result.SprintMetrics, SprintWithMetrics{Sprint: s, Metrics: m})
	}
	result.Ratios = ratiosFrom(result.Totals)
	return result
}
