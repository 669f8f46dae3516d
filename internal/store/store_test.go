package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"github.com/bubelovv/sprint-planner/internal/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGateway struct {
	mu      sync.Mutex
	state   domain.State
	loadErr error
	saveErr error
	loads   int
	saved   []domain.State
}

func (g *fakeGateway) LoadAll(context.Context) (domain.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loads++
	if g.loadErr != nil {
		return domain.EmptyState(), g.loadErr
	}
	return g.state.Clone(), nil
}

func (g *fakeGateway) SaveAll(_ context.Context, state domain.State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved = append(g.saved, state.Clone())
	g.state = state.Clone()
	return nil
}

func (g *fakeGateway) saveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.saved)
}

func sequentialIDs() Option {
	var (
		mu sync.Mutex
		n  int
	)
	return WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newReadyStore(t *testing.T) *Store {
	t.Helper()
	s := New(&fakeGateway{state: domain.EmptyState()}, zaptest.NewLogger(t), sequentialIDs())
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	return s
}

// seedSprint creates a release with one sprint holding the given roster
// members and returns the sprint id.
func seedSprint(t *testing.T, s *Store, members ...string) string {
	t.Helper()
	releaseID := s.CreateRelease(domain.NewRelease{Name: "R1", StartDate: "2025-01-01", EndDate: "2025-03-31"})
	if releaseID == "" {
		t.Fatalf("create release failed")
	}
	in := domain.NewSprint{ReleaseID: releaseID, Name: "S1", DefaultCapacity: 10, AdhocReserve: 15}
	for _, name := range members {
		id := s.AddTeamMember(name, 10)
		in.Members = append(in.Members, domain.SprintMember{ID: id, Name: name, Capacity: 10})
	}
	sprintID := s.CreateSprint(in)
	if sprintID == "" {
		t.Fatalf("create sprint failed")
	}
	return sprintID
}

func mustSprint(t *testing.T, s *Store, id string) domain.Sprint {
	t.Helper()
	sp, ok := s.Sprint(id)
	if !ok {
		t.Fatalf("sprint %s not found", id)
	}
	return sp
}

func TestMutationsBeforeHydrationAreDropped(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := New(&fakeGateway{state: domain.EmptyState()}, zap.New(core))

	if s.Ready() {
		t.Fatalf("store ready before hydration")
	}
	if id := s.AddTeamMember("Ada", 10); id != "" {
		t.Fatalf("add before hydration returned id %q", id)
	}
	if s.SetTeamName("Core") {
		t.Fatalf("set team name before hydration reported a change")
	}
	if logs.FilterMessage("mutation rejected before hydration").Len() != 2 {
		t.Fatalf("expected two rejection warnings, got %d", logs.Len())
	}

	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if !s.Ready() {
		t.Fatalf("store not ready after hydration")
	}
	if got := s.Snapshot(); len(got.Team) != 0 || got.TeamName != "" {
		t.Fatalf("dropped mutations leaked into state: %+v", got)
	}
}

func TestHydrateLoadsOnce(t *testing.T) {
	gw := &fakeGateway{state: domain.State{TeamName: "Loaded"}}
	s := New(gw, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		if err := s.Hydrate(context.Background()); err != nil {
			t.Fatalf("hydrate: %v", err)
		}
	}
	if gw.loads != 1 {
		t.Fatalf("LoadAll called %d times", gw.loads)
	}

	got := s.Snapshot()
	if got.TeamName != "Loaded" {
		t.Fatalf("team name = %q", got.TeamName)
	}
	if got.Team == nil || got.Releases == nil || got.Sprints == nil {
		t.Fatalf("hydrated state not normalized: %+v", got)
	}
}

func TestHydrateFailureStillBecomesReady(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	gw := &fakeGateway{loadErr: errors.New("disk on fire")}
	s := New(gw, zap.New(core))

	err := s.Hydrate(context.Background())
	if err == nil {
		t.Fatalf("expected load error")
	}
	if !s.Ready() {
		t.Fatalf("store must be ready after a failed load")
	}
	if !reflect.DeepEqual(s.Snapshot(), domain.EmptyState()) {
		t.Fatalf("failed load must leave the empty default")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one error log, got %d", logs.Len())
	}
	if s.AddTeamMember("Ada", 8) == "" {
		t.Fatalf("mutations must work after a failed load")
	}
}

func TestTeamLifecycleDoesNotTouchSprints(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")
	memberID := mustSprint(t, s, sprintID).Members[0].ID

	name := "Ada Lovelace"
	capacity := 12.0
	if !s.UpdateTeamMember(memberID, domain.TeamMemberPatch{Name: &name, DefaultCapacity: &capacity}) {
		t.Fatalf("update team member reported no change")
	}
	if got := s.Team()[0]; got.Name != name || got.DefaultCapacity != 12 {
		t.Fatalf("roster entry = %+v", got)
	}
	if got := mustSprint(t, s, sprintID).Members[0]; got.Name != "Ada" || got.Capacity != 10 {
		t.Fatalf("sprint member changed with roster: %+v", got)
	}

	if !s.RemoveTeamMember(memberID) {
		t.Fatalf("remove team member reported no change")
	}
	if len(s.Team()) != 0 {
		t.Fatalf("roster not empty")
	}
	if len(mustSprint(t, s, sprintID).Members) != 1 {
		t.Fatalf("team removal cascaded into sprint")
	}
}

func TestCreateReleaseSelectsIt(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")

	second := s.CreateRelease(domain.NewRelease{Name: "R2"})
	st := s.Snapshot()
	if st.CurrentReleaseID != second || st.CurrentSprintID != sprintID {
		t.Fatalf("selection after create = %q/%q", st.CurrentReleaseID, st.CurrentSprintID)
	}
	if r, ok := s.Release(second); !ok || r.SprintIDs == nil || len(r.SprintIDs) != 0 {
		t.Fatalf("new release sprint ids = %+v", r.SprintIDs)
	}
	if _, ok := s.CurrentSprint(); ok {
		t.Fatalf("no sprint should be current")
	}
	if _, ok := s.Sprint(sprintID); !ok {
		t.Fatalf("other release's sprint vanished")
	}
}

func TestSetCurrentRelease(t *testing.T) {
	s := newReadyStore(t)
	firstSprint := seedSprint(t, s, "Ada")
	r1 := mustSprint(t, s, firstSprint).ReleaseID
	secondSprint := s.CreateSprint(domain.NewSprint{ReleaseID: r1, Name: "S2"})

	empty := s.CreateRelease(domain.NewRelease{Name: "Empty"})
	if !s.SetCurrentRelease(empty) {
		t.Fatalf("re-selecting the empty release must drop the foreign sprint")
	}
	if st := s.Snapshot(); st.CurrentSprintID != "" {
		t.Fatalf("sprint selection = %q, want none", st.CurrentSprintID)
	}

	if !s.SetCurrentRelease(r1) {
		t.Fatalf("select r1 reported no change")
	}
	if st := s.Snapshot(); st.CurrentSprintID != firstSprint {
		t.Fatalf("expected first sprint selected, got %q", st.CurrentSprintID)
	}

	if !s.SetCurrentSprint(secondSprint) {
		t.Fatalf("select second sprint reported no change")
	}
	s.SetCurrentRelease(r1)
	if st := s.Snapshot(); st.CurrentSprintID != secondSprint {
		t.Fatalf("current sprint in release must stay selected, got %q", st.CurrentSprintID)
	}

	s.SetCurrentRelease(empty)
	if st := s.Snapshot(); st.CurrentReleaseID != empty || st.CurrentSprintID != "" {
		t.Fatalf("empty release selection = %+v", st)
	}

	if s.SetCurrentRelease("missing") {
		t.Fatalf("unknown release must be ignored")
	}
	if st := s.Snapshot(); st.CurrentReleaseID != empty {
		t.Fatalf("unknown release changed selection")
	}

	if !s.SetCurrentRelease("") {
		t.Fatalf("clearing selection reported no change")
	}
	if _, ok := s.CurrentRelease(); ok {
		t.Fatalf("selection not cleared")
	}
}

func TestDeleteReleaseCascades(t *testing.T) {
	s := newReadyStore(t)
	s1 := seedSprint(t, s, "Ada")
	releaseID := mustSprint(t, s, s1).ReleaseID
	s2 := s.CreateSprint(domain.NewSprint{ReleaseID: releaseID, Name: "S2"})
	s.SetCurrentSprint(s1)

	other := s.CreateRelease(domain.NewRelease{Name: "Other"})
	s3 := s.CreateSprint(domain.NewSprint{ReleaseID: other, Name: "S3"})
	s.SetCurrentRelease(releaseID)
	s.SetCurrentSprint(s1)

	if !s.DeleteRelease(releaseID) {
		t.Fatalf("delete release reported no change")
	}
	st := s.Snapshot()
	if _, ok := st.Sprints[s1]; ok {
		t.Fatalf("s1 survived cascade")
	}
	if _, ok := st.Sprints[s2]; ok {
		t.Fatalf("s2 survived cascade")
	}
	if _, ok := st.Sprints[s3]; !ok {
		t.Fatalf("sprint of another release deleted")
	}
	if st.CurrentReleaseID != "" || st.CurrentSprintID != "" {
		t.Fatalf("selection not cleared: %q/%q", st.CurrentReleaseID, st.CurrentSprintID)
	}
}

func TestDeleteNonCurrentReleaseKeepsSelection(t *testing.T) {
	s := newReadyStore(t)
	s1 := seedSprint(t, s, "Ada")
	r1 := mustSprint(t, s, s1).ReleaseID

	r2 := s.CreateRelease(domain.NewRelease{Name: "R2"})
	s2 := s.CreateSprint(domain.NewSprint{ReleaseID: r2, Name: "S2"})

	s.DeleteRelease(r1)
	st := s.Snapshot()
	if st.CurrentReleaseID != r2 || st.CurrentSprintID != s2 {
		t.Fatalf("selection = %q/%q", st.CurrentReleaseID, st.CurrentSprintID)
	}
}

func TestCreateSprint(t *testing.T) {
	s := newReadyStore(t)

	if id := s.CreateSprint(domain.NewSprint{ReleaseID: "missing"}); id != "" {
		t.Fatalf("sprint created for unknown release: %q", id)
	}

	releaseID := s.CreateRelease(domain.NewRelease{Name: "R1"})
	id := s.CreateSprint(domain.NewSprint{
		ReleaseID: releaseID,
		Name:      "S1",
		Members: []domain.SprintMember{
			{ID: "m1", Name: "Ada", Capacity: 10},
			{ID: "m2", Name: "Grace", Capacity: 8},
			{ID: "m1", Name: "Ada again", Capacity: 1},
		},
	})

	sp := mustSprint(t, s, id)
	if len(sp.Members) != 2 || sp.Members[0].Name != "Ada" {
		t.Fatalf("members = %+v", sp.Members)
	}
	for _, m := range []string{"m1", "m2"} {
		list, ok := sp.JiraTickets[m]
		if !ok || list == nil || len(list) != 0 {
			t.Fatalf("ticket list for %s = %#v", m, list)
		}
	}
	if sp.Backlog == nil || len(sp.Backlog) != 0 {
		t.Fatalf("backlog = %#v", sp.Backlog)
	}

	r, _ := s.Release(releaseID)
	if !reflect.DeepEqual(r.SprintIDs, []string{id}) {
		t.Fatalf("release sprint ids = %v", r.SprintIDs)
	}
	cur, ok := s.CurrentSprint()
	if !ok || cur.ID != id {
		t.Fatalf("new sprint not current")
	}
}

func TestUpdateAndDeleteSprint(t *testing.T) {
	s := newReadyStore(t)
	id := seedSprint(t, s, "Ada")
	releaseID := mustSprint(t, s, id).ReleaseID

	reserve := 20.0
	name := "Sprint One"
	if !s.UpdateSprint(id, domain.SprintPatch{Name: &name, AdhocReserve: &reserve}) {
		t.Fatalf("update sprint reported no change")
	}
	sp := mustSprint(t, s, id)
	if sp.Name != name || sp.AdhocReserve != 20 || sp.DefaultCapacity != 10 {
		t.Fatalf("sprint after patch = %+v", sp)
	}

	if !s.DeleteSprint(id) {
		t.Fatalf("delete sprint reported no change")
	}
	r, _ := s.Release(releaseID)
	if len(r.SprintIDs) != 0 {
		t.Fatalf("sprint id not detached: %v", r.SprintIDs)
	}
	if st := s.Snapshot(); st.CurrentSprintID != "" {
		t.Fatalf("current sprint not cleared")
	}
	if s.DeleteSprint(id) {
		t.Fatalf("second delete must be a no-op")
	}
}

func TestAddMemberToSprint(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s)
	memberID := s.AddTeamMember("Grace Hopper", 6)

	if s.AddMemberToSprint(sprintID, "ghost", domain.CapacitySeed{}) {
		t.Fatalf("member not on roster must be ignored")
	}
	if !s.AddMemberToSprint(sprintID, memberID, domain.CapacitySeed{Leaves: 1, Holidays: 2}) {
		t.Fatalf("add member reported no change")
	}
	if s.AddMemberToSprint(sprintID, memberID, domain.CapacitySeed{Leaves: 5}) {
		t.Fatalf("second add must be a no-op")
	}

	sp := mustSprint(t, s, sprintID)
	want := domain.SprintMember{ID: memberID, Name: "Grace Hopper", Capacity: 10, Leaves: 1, Holidays: 2}
	if len(sp.Members) != 1 || sp.Members[0] != want {
		t.Fatalf("members = %+v", sp.Members)
	}
	if list, ok := sp.JiraTickets[memberID]; !ok || len(list) != 0 {
		t.Fatalf("ticket list not initialized")
	}

	unplanned := 1.5
	if !s.UpdateSprintMember(sprintID, memberID, domain.SprintMemberPatch{UnplannedLeaves: &unplanned}) {
		t.Fatalf("update sprint member reported no change")
	}
	if got := mustSprint(t, s, sprintID).Members[0]; got.UnplannedLeaves != 1.5 || got.Leaves != 1 {
		t.Fatalf("member after patch = %+v", got)
	}
}

func TestIdempotentBacklogAdd(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")

	if !s.AddToBacklog(sprintID, domain.Ticket{ID: "ABC-1", SP: 3}) {
		t.Fatalf("first add reported no change")
	}
	if s.AddToBacklog(sprintID, domain.Ticket{ID: "ABC-1", SP: 5}) {
		t.Fatalf("second add must be a no-op")
	}
	sp := mustSprint(t, s, sprintID)
	if len(sp.Backlog) != 1 || sp.Backlog[0].SP != 3 {
		t.Fatalf("backlog = %+v", sp.Backlog)
	}
}

func TestAssignUnassignAndRemove(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")
	memberID := mustSprint(t, s, sprintID).Members[0].ID

	s.AddToBacklog(sprintID, domain.Ticket{ID: "ABC-1", SP: 3})
	if s.AssignTicket(sprintID, "ABC-1", "nobody") {
		t.Fatalf("assign to non-member must be ignored")
	}
	if !s.AssignTicket(sprintID, "ABC-1", memberID) {
		t.Fatalf("assign reported no change")
	}
	sp := mustSprint(t, s, sprintID)
	if len(sp.Backlog) != 0 || len(sp.JiraTickets[memberID]) != 1 {
		t.Fatalf("ticket not moved: %+v", sp)
	}

	if s.AddToBacklog(sprintID, domain.Ticket{ID: "ABC-1"}) {
		t.Fatalf("assigned ticket id must not be re-added to backlog")
	}

	s.ToggleTicketCompleted(sprintID, memberID, "ABC-1")
	s.ToggleTicketAdhoc(sprintID, memberID, "ABC-1")
	if !s.UnassignTicket(sprintID, memberID, "ABC-1") {
		t.Fatalf("unassign reported no change")
	}
	sp = mustSprint(t, s, sprintID)
	if len(sp.Backlog) != 1 || sp.Backlog[0].Completed || sp.Backlog[0].IsAdhoc {
		t.Fatalf("unassigned ticket = %+v", sp.Backlog)
	}

	if !s.AddTicketToMember(sprintID, memberID, domain.Ticket{ID: "ABC-2", SP: 1}) {
		t.Fatalf("direct add reported no change")
	}
	if s.AddTicketToMember(sprintID, memberID, domain.Ticket{ID: "ABC-2", SP: 1}) {
		t.Fatalf("direct add must be idempotent")
	}
	if !s.RemoveTicketFromMember(sprintID, memberID, "ABC-2") {
		t.Fatalf("remove reported no change")
	}
	sp = mustSprint(t, s, sprintID)
	if sp.HasTicket("ABC-2") {
		t.Fatalf("removed ticket must be discarded, not returned to backlog")
	}
}

func TestToggleUnknownTicketIsNoop(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")
	memberID := mustSprint(t, s, sprintID).Members[0].ID
	s.AddToBacklog(sprintID, domain.Ticket{ID: "ABC-1"})

	before := s.Snapshot()
	if s.ToggleTicketCompleted(sprintID, memberID, "ABC-1") {
		t.Fatalf("toggle must only look in the member list")
	}
	if s.ToggleTicketAdhoc(sprintID, "nobody", "ABC-1") {
		t.Fatalf("toggle for unknown member must be a no-op")
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatalf("state changed")
	}
}

// Unassign clears completed/adhoc, member removal keeps them. Both behaviors
// are relied upon; this test pins the difference.
func TestUnassignAndMemberRemovalFlagAsymmetry(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada", "Grace")
	sp := mustSprint(t, s, sprintID)
	ada, grace := sp.Members[0].ID, sp.Members[1].ID

	s.AddTicketToMember(sprintID, ada, domain.Ticket{ID: "ABC-1", SP: 2, Completed: true, IsAdhoc: true})
	s.AddTicketToMember(sprintID, grace, domain.Ticket{ID: "ABC-2", SP: 3, Completed: true, IsAdhoc: true})

	s.UnassignTicket(sprintID, ada, "ABC-1")
	if !s.RemoveMemberFromSprint(sprintID, grace) {
		t.Fatalf("remove member reported no change")
	}

	sp = mustSprint(t, s, sprintID)
	byID := map[string]domain.Ticket{}
	for _, ticket := range sp.Backlog {
		byID[ticket.ID] = ticket
	}
	if got := byID["ABC-1"]; got.Completed || got.IsAdhoc {
		t.Fatalf("unassigned ticket kept flags: %+v", got)
	}
	if got := byID["ABC-2"]; !got.Completed || !got.IsAdhoc {
		t.Fatalf("folded ticket lost flags: %+v", got)
	}
	if _, ok := sp.JiraTickets[grace]; ok {
		t.Fatalf("removed member's list still present")
	}
	if _, ok := sp.Member(grace); ok {
		t.Fatalf("member still in sprint")
	}
}

func TestBacklogTicketEdits(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")
	memberID := mustSprint(t, s, sprintID).Members[0].ID

	ticket := domain.NewFreeformTicket("Draft notes", 1)
	s.AddToBacklog(sprintID, ticket)

	title := "Release notes"
	sp := 2.5
	if !s.UpdateBacklogTicket(sprintID, ticket.ID, domain.TicketPatch{Title: &title, SP: &sp}) {
		t.Fatalf("update backlog ticket reported no change")
	}
	got := mustSprint(t, s, sprintID).Backlog[0]
	if got.ID != ticket.ID || got.Title != title || got.SP != 2.5 {
		t.Fatalf("ticket = %+v", got)
	}

	s.AssignTicket(sprintID, ticket.ID, memberID)
	done := true
	if !s.UpdateTicket(sprintID, memberID, ticket.ID, domain.TicketPatch{Completed: &done}) {
		t.Fatalf("update ticket reported no change")
	}
	if !mustSprint(t, s, sprintID).JiraTickets[memberID][0].Completed {
		t.Fatalf("member ticket not patched")
	}

	s.UnassignTicket(sprintID, memberID, ticket.ID)
	if !s.RemoveFromBacklog(sprintID, ticket.ID) {
		t.Fatalf("remove from backlog reported no change")
	}
	if mustSprint(t, s, sprintID).HasTicket(ticket.ID) {
		t.Fatalf("ticket still present")
	}
}

func TestUnknownTargetsLeaveStateUntouched(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")
	memberID := mustSprint(t, s, sprintID).Members[0].ID

	calls := 0
	unsubscribe := s.Subscribe(func(domain.State) { calls++ })
	defer unsubscribe()

	before := s.Snapshot()
	name := "x"
	results := map[string]bool{
		"update team member":   s.UpdateTeamMember("nobody", domain.TeamMemberPatch{Name: &name}),
		"remove team member":   s.RemoveTeamMember("nobody"),
		"update release":       s.UpdateRelease("nope", domain.ReleasePatch{Name: &name}),
		"delete release":       s.DeleteRelease("nope"),
		"update sprint":        s.UpdateSprint("nope", domain.SprintPatch{Name: &name}),
		"set current sprint":   s.SetCurrentSprint("nope"),
		"add member":           s.AddMemberToSprint("nope", memberID, domain.CapacitySeed{}),
		"update sprint member": s.UpdateSprintMember(sprintID, "nobody", domain.SprintMemberPatch{Name: &name}),
		"remove member":        s.RemoveMemberFromSprint(sprintID, "nobody"),
		"add to backlog":       s.AddToBacklog("nope", domain.Ticket{ID: "ABC-1"}),
		"assign":               s.AssignTicket(sprintID, "ABC-404", memberID),
		"unassign":             s.UnassignTicket(sprintID, memberID, "ABC-404"),
		"add to member":        s.AddTicketToMember(sprintID, "nobody", domain.Ticket{ID: "ABC-1"}),
		"remove from member":   s.RemoveTicketFromMember(sprintID, memberID, "ABC-404"),
		"remove from backlog":  s.RemoveFromBacklog(sprintID, "ABC-404"),
		"update ticket":        s.UpdateTicket(sprintID, memberID, "ABC-404", domain.TicketPatch{Title: &name}),
		"blank ticket id":      s.AddToBacklog(sprintID, domain.Ticket{}),
	}
	for op, changed := range results {
		if changed {
			t.Fatalf("%s reported a change", op)
		}
	}
	if !reflect.DeepEqual(before, s.Snapshot()) {
		t.Fatalf("state changed by no-op mutations")
	}
	if calls != 0 {
		t.Fatalf("listeners notified %d times for no-ops", calls)
	}
}

func TestCurrentSprintOutsideCurrentReleaseReadsAsUnset(t *testing.T) {
	s := newReadyStore(t)
	s1 := seedSprint(t, s, "Ada")
	r2 := s.CreateRelease(domain.NewRelease{Name: "R2"})

	st := s.Snapshot()
	if st.CurrentReleaseID != r2 || st.CurrentSprintID != s1 {
		t.Fatalf("selection = %q/%q", st.CurrentReleaseID, st.CurrentSprintID)
	}
	if _, ok := s.CurrentSprint(); ok {
		t.Fatalf("sprint outside the current release must read as unset")
	}
}

func TestReadersTolerateDanglingReferences(t *testing.T) {
	gw := &fakeGateway{state: domain.State{
		Releases: map[string]domain.Release{
			"r1": {ID: "r1", SprintIDs: []string{"gone", "s1"}},
		},
		Sprints: map[string]domain.Sprint{
			"s1": {ID: "s1", ReleaseID: "r1", JiraTickets: map[string][]domain.Ticket{"departed": {{ID: "ABC-9", SP: 4}}}},
		},
		CurrentReleaseID: "r1",
		CurrentSprintID:  "gone",
	}}
	s := New(gw, zaptest.NewLogger(t))
	if err := s.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	if _, ok := s.CurrentSprint(); ok {
		t.Fatalf("dangling current sprint resolved")
	}
	sprints := s.ReleaseSprints("r1")
	if len(sprints) != 1 || sprints[0].ID != "s1" {
		t.Fatalf("release sprints = %+v", sprints)
	}
	if got := s.ReleaseSprints("missing"); len(got) != 0 {
		t.Fatalf("unknown release resolved to %d sprints", len(got))
	}

	if s.AddToBacklog("s1", domain.Ticket{ID: "ABC-9"}) {
		t.Fatalf("ticket held by a stale list must not be duplicated")
	}
	if got := metrics.SprintMetrics(mustSprint(t, s, "s1")); got.TotalPlanned != 0 {
		t.Fatalf("stale list counted: %+v", got.Totals)
	}
}

func TestSingleLocationInvariant(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada", "Grace", "Linus")
	members := make([]string, 0, 3)
	for _, m := range mustSprint(t, s, sprintID).Members {
		members = append(members, m.ID)
	}
	ids := []string{"ABC-1", "ABC-2", "ABC-3", "ABC-4", "ABC-5"}

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 2000; step++ {
		ticketID := ids[rng.Intn(len(ids))]
		memberID := members[rng.Intn(len(members))]
		switch rng.Intn(5) {
		case 0:
			s.AddToBacklog(sprintID, domain.Ticket{ID: ticketID, SP: 1})
		case 1:
			s.AssignTicket(sprintID, ticketID, memberID)
		case 2:
			s.UnassignTicket(sprintID, memberID, ticketID)
		case 3:
			s.AddTicketToMember(sprintID, memberID, domain.Ticket{ID: ticketID, SP: 2})
		case 4:
			s.RemoveTicketFromMember(sprintID, memberID, ticketID)
		}

		sp := mustSprint(t, s, sprintID)
		seen := map[string]string{}
		place := func(where string, tickets []domain.Ticket) {
			for _, ticket := range tickets {
				if prev, dup := seen[ticket.ID]; dup {
					t.Fatalf("step %d: %s in both %s and %s", step, ticket.ID, prev, where)
				}
				seen[ticket.ID] = where
			}
		}
		place("backlog", sp.Backlog)
		for memberID, list := range sp.JiraTickets {
			place(memberID, list)
		}
	}
}

func TestSubscribersSeeCommitsInOrder(t *testing.T) {
	s := newReadyStore(t)

	var names []string
	unsubscribe := s.Subscribe(func(st domain.State) {
		names = append(names, st.TeamName)
		st.TeamName = "mutated by listener"
	})

	s.SetTeamName("one")
	s.SetTeamName("one")
	s.SetTeamName("two")
	unsubscribe()
	s.SetTeamName("three")

	if !reflect.DeepEqual(names, []string{"one", "two"}) {
		t.Fatalf("notifications = %v", names)
	}
	if got := s.Snapshot().TeamName; got != "three" {
		t.Fatalf("listener mutation leaked into store: %q", got)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")

	snap := s.Snapshot()
	sp := snap.Sprints[sprintID]
	sp.Members[0].Capacity = 999
	snap.Team[0].Name = "changed"

	if mustSprint(t, s, sprintID).Members[0].Capacity != 10 {
		t.Fatalf("snapshot shares sprint members with the store")
	}
	if s.Team()[0].Name != "Ada" {
		t.Fatalf("snapshot shares team with the store")
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	s := newReadyStore(t)
	sprintID := seedSprint(t, s, "Ada")
	memberID := mustSprint(t, s, sprintID).Members[0].ID

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := fmt.Sprintf("W%d-%d", w, i)
				s.AddToBacklog(sprintID, domain.Ticket{ID: id, SP: 1})
				s.AssignTicket(sprintID, id, memberID)
				_ = s.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	sp := mustSprint(t, s, sprintID)
	if got := len(sp.JiraTickets[memberID]); got != workers*perWorker {
		t.Fatalf("assigned tickets = %d, want %d", got, workers*perWorker)
	}
	if len(sp.Backlog) != 0 {
		t.Fatalf("backlog not empty: %d", len(sp.Backlog))
	}
}

func TestEndToEndScenarioThroughStore(t *testing.T) {
	s := newReadyStore(t)
	releaseID := s.CreateRelease(domain.NewRelease{Name: "R1"})
	memberID := s.AddTeamMember("Ada", 10)
	sprintID := s.CreateSprint(domain.NewSprint{
		ReleaseID:    releaseID,
		Name:         "S1",
		AdhocReserve: 15,
		Members:      []domain.SprintMember{{ID: memberID, Name: "Ada", Capacity: 10, Leaves: 1}},
	})

	s.AddToBacklog(sprintID, domain.NewTrackerTicket("ABC-1", 5))
	s.AddToBacklog(sprintID, domain.NewTrackerTicket("ABC-2", 3))
	s.AssignTicket(sprintID, "ABC-1", memberID)
	s.AssignTicket(sprintID, "ABC-2", memberID)
	s.ToggleTicketAdhoc(sprintID, memberID, "ABC-2")

	sp, ok := s.CurrentSprint()
	if !ok || sp.ID != sprintID {
		t.Fatalf("current sprint not resolved")
	}
	row := metrics.MemberBreakdown(sp, sp.Members[0])
	if row.PlannedSP != 5 || row.AdhocSP != 3 || row.Status != metrics.StatusUnder {
		t.Fatalf("breakdown = %+v", row)
	}

	s.ToggleTicketCompleted(sprintID, memberID, "ABC-1")
	sp, _ = s.CurrentSprint()
	if got := metrics.SprintMetrics(sp).CompletionRate; got != 100 {
		t.Fatalf("completionRate = %v", got)
	}
}
