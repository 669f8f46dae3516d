package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bubelovv/sprint-planner/internal/domain"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const exportVersion = 1

// ParseFormat accepts json, yaml and yml; empty means json.
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", invalidf("unsupported format %q", v)
	}
}

func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Document is the export envelope around a snapshot.
type Document struct {
	Version    int          `json:"version" yaml:"version"`
	ExportedAt time.Time    `json:"exportedAt" yaml:"exportedAt"`
	State      domain.State `json:"state" yaml:"state"`
}

func (s *Service) Export(ctx context.Context, format Format) ([]byte, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	doc := Document{
		Version:    exportVersion,
		ExportedAt: s.now().UTC(),
		State:      s.store.Snapshot(),
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Import replaces the whole snapshot with the document's state after
// checking that it is internally consistent.
func (s *Service) Import(ctx context.Context, data []byte, format Format) (domain.State, error) {
	if err := s.guard(ctx); err != nil {
		return domain.State{}, err
	}

	var doc Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return domain.State{}, invalidf("decode import: %v", err)
	}
	if doc.Version != exportVersion {
		return domain.State{}, invalidf("unsupported document version %d", doc.Version)
	}

	state := doc.State
	state.Normalize()
	if err := checkImportedState(state); err != nil {
		return domain.State{}, err
	}

	s.store.ReplaceState(state)
	return s.store.Snapshot(), nil
}

// checkImportedState rejects mismatched map keys, sprints listed by a
// release they do not name, amounts that are negative or not finite, and
// tickets held in more than one place of a sprint. Dangling sprint ids and
// selections are allowed; readers already tolerate them.
func checkImportedState(st domain.State) error {
	seen := make(map[string]bool, len(st.Team))
	for _, m := range st.Team {
		if m.ID == "" {
			return invalidf("team member without id")
		}
		if seen[m.ID] {
			return invalidf("duplicate team member %s", m.ID)
		}
		seen[m.ID] = true
		if err := checkAmount("team member "+m.ID+" defaultCapacity", m.DefaultCapacity); err != nil {
			return err
		}
	}
	for id, r := range st.Releases {
		if r.ID != id {
			return invalidf("release key %s holds release %s", id, r.ID)
		}
		for _, sprintID := range r.SprintIDs {
			if sp, ok := st.Sprints[sprintID]; ok && sp.ReleaseID != id {
				return invalidf("release %s lists sprint %s of release %s", id, sprintID, sp.ReleaseID)
			}
		}
	}
	for id, sp := range st.Sprints {
		if sp.ID != id {
			return invalidf("sprint key %s holds sprint %s", id, sp.ID)
		}
		if err := checkImportedSprint(sp); err != nil {
			return err
		}
	}
	return nil
}

func checkImportedSprint(sp domain.Sprint) error {
	prefix := "sprint " + sp.ID + " "
	if err := checkAmount(prefix+"defaultCapacity", sp.DefaultCapacity); err != nil {
		return err
	}
	if err := checkPercent(prefix+"adhocReserve", sp.AdhocReserve); err != nil {
		return err
	}

	for _, m := range sp.Members {
		amounts := []struct {
			field string
			v     float64
		}{
			{"capacity", m.Capacity},
			{"leaves", m.Leaves},
			{"unplannedLeaves", m.UnplannedLeaves},
			{"holidays", m.Holidays},
			{"nonJira", m.NonJira},
		}
		for _, a := range amounts {
			if err := checkAmount(prefix+"member "+m.ID+" "+a.field, a.v); err != nil {
				return err
			}
		}
	}

	placed := make(map[string]bool)
	place := func(tickets []domain.Ticket) error {
		for _, t := range tickets {
			if placed[t.ID] {
				return invalidf("%sholds ticket %s more than once", prefix, t.ID)
			}
			placed[t.ID] = true
			if err := checkAmount(prefix+"ticket "+t.ID+" sp", t.SP); err != nil {
				return err
			}
		}
		return nil
	}
	if err := place(sp.Backlog); err != nil {
		return err
	}
	for _, list := range sp.JiraTickets {
		if err := place(list); err != nil {
			return err
		}
	}
	return nil
}
