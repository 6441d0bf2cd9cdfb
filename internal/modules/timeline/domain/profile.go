package domain

import (
	"fmt"
	"strings"
)

type EventKey string

type ParticipantID string

type EventDef struct {
	Key   EventKey
	Label string
}

// DurationRule derives one interval from two catalog events.
type DurationRule struct {
	ID    string
	Label string
	Start EventKey
	End   EventKey
}

const (
	EventStudentsIn    EventKey = "ingreso_alumnos"
	EventAscentStart   EventKey = "inicio_ascenso"
	EventAltitudeReach EventKey = "llegada_altitud"
	EventHypoxiaStart  EventKey = "inicio_hipoxia"
	EventHypoxiaEnd    EventKey = "fin_hipoxia"
	EventDescentStart  EventKey = "inicio_descenso"
	EventDescentEnd    EventKey = "fin_descenso"
	EventProfileEnd    EventKey = "finalizacion_perfil"
)

const (
	RuleTotalFlight = "tiempo_total_vuelo"
	RuleAscent      = "tiempo_ascenso"
	RuleAtAltitude  = "tiempo_altitud"
	RuleHypoxia     = "tiempo_hipoxia"
	RuleDescent     = "tiempo_descenso"
)

const defaultRosterSize = 8

// Profile is the fixed catalog for one kind of training session: which events
// can be recorded, which durations derive from them, who takes part, and which
// event anchors participant elapsed times.
type Profile struct {
	Events    []EventDef
	Rules     []DurationRule
	Roster    []ParticipantID
	Reference EventKey

	eventIndex       map[EventKey]int
	participantIndex map[ParticipantID]int
}

// DefaultProfile is the standard hypobaric chamber flight with an eight-seat
// roster anchored on hypoxia start.
func DefaultProfile() Profile {
	roster := make([]ParticipantID, 0, defaultRosterSize)
	for i := 1; i <= defaultRosterSize; i++ {
		roster = append(roster, ParticipantID(fmt.Sprint(i)))
	}
	p, err := NewProfile(
		[]EventDef{
			{Key: EventStudentsIn, Label: "Students in"},
			{Key: EventAscentStart, Label: "Ascent start"},
			{Key: EventAltitudeReach, Label: "Altitude reached"},
			{Key: EventHypoxiaStart, Label: "Hypoxia start"},
			{Key: EventHypoxiaEnd, Label: "Hypoxia end"},
			{Key: EventDescentStart, Label: "Descent start"},
			{Key: EventDescentEnd, Label: "Descent end"},
			{Key: EventProfileEnd, Label: "Profile complete"},
		},
		[]DurationRule{
			{ID: RuleTotalFlight, Label: "Total flight", Start: EventStudentsIn, End: EventProfileEnd},
			{ID: RuleAscent, Label: "Ascent", Start: EventAscentStart, End: EventAltitudeReach},
			{ID: RuleAtAltitude, Label: "At altitude", Start: EventAltitudeReach, End: EventDescentStart},
			{ID: RuleHypoxia, Label: "Hypoxia exposure", Start: EventHypoxiaStart, End: EventHypoxiaEnd},
			{ID: RuleDescent, Label: "Descent", Start: EventDescentStart, End: EventDescentEnd},
		},
		roster,
		EventHypoxiaStart,
	)
	if err != nil {
		panic(fmt.Sprintf("default profile: %v", err))
	}
	return p
}

// NewProfile validates the catalog: keys and ids are unique and non-empty,
// every rule endpoint and the reference exist, and the roster is non-empty.
func NewProfile(events []EventDef, rules []DurationRule, roster []ParticipantID, reference EventKey) (Profile, error) {
	if len(events) == 0 {
		return Profile{}, fmt.Errorf("profile needs at least one event")
	}
	p := Profile{
		Events:           append([]EventDef(nil), events...),
		Rules:            append([]DurationRule(nil), rules...),
		Roster:           append([]ParticipantID(nil), roster...),
		Reference:        reference,
		eventIndex:       make(map[EventKey]int, len(events)),
		participantIndex: make(map[ParticipantID]int, len(roster)),
	}
	for i, ev := range p.Events {
		if strings.TrimSpace(string(ev.Key)) == "" {
			return Profile{}, fmt.Errorf("event %d has an empty key", i)
		}
		if _, dup := p.eventIndex[ev.Key]; dup {
			return Profile{}, fmt.Errorf("duplicate event key %q", ev.Key)
		}
		if ev.Label == "" {
			p.Events[i].Label = string(ev.Key)
		}
		p.eventIndex[ev.Key] = i
	}
	ruleIDs := map[string]struct{}{}
	for i, rule := range p.Rules {
		if strings.TrimSpace(rule.ID) == "" {
			return Profile{}, fmt.Errorf("rule %d has an empty id", i)
		}
		if _, dup := ruleIDs[rule.ID]; dup {
			return Profile{}, fmt.Errorf("duplicate rule id %q", rule.ID)
		}
		ruleIDs[rule.ID] = struct{}{}
		if !p.HasEvent(rule.Start) || !p.HasEvent(rule.End) {
			return Profile{}, fmt.Errorf("rule %q references an event outside the catalog", rule.ID)
		}
		if rule.Label == "" {
			p.Rules[i].Label = rule.ID
		}
	}
	if len(p.Roster) == 0 {
		return Profile{}, fmt.Errorf("profile needs a non-empty roster")
	}
	for _, id := range p.Roster {
		if strings.TrimSpace(string(id)) == "" {
			return Profile{}, fmt.Errorf("roster contains an empty participant id")
		}
		if _, dup := p.participantIndex[id]; dup {
			return Profile{}, fmt.Errorf("duplicate participant %q", id)
		}
		p.participantIndex[id] = len(p.participantIndex)
	}
	if !p.HasEvent(reference) {
		return Profile{}, fmt.Errorf("reference event %q is not in the catalog", reference)
	}
	return p, nil
}

func (p Profile) HasEvent(key EventKey) bool {
	_, ok := p.eventIndex[key]
	return ok
}

func (p Profile) HasParticipant(id ParticipantID) bool {
	_, ok := p.participantIndex[id]
	return ok
}

func (p Profile) EventLabel(key EventKey) string {
	if i, ok := p.eventIndex[key]; ok {
		return p.Events[i].Label
	}
	return string(key)
}
