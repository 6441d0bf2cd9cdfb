package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamberlog/internal/modules/timeline/domain"
)

func TestDefaultProfileIsValid(t *testing.T) {
	t.Parallel()
	p := domain.DefaultProfile()
	assert.Len(t, p.Roster, 8)
	assert.Equal(t, domain.EventHypoxiaStart, p.Reference)
	for _, rule := range p.Rules {
		assert.True(t, p.HasEvent(rule.Start), rule.ID)
		assert.True(t, p.HasEvent(rule.End), rule.ID)
	}
	assert.Equal(t, "Hypoxia start", p.EventLabel(domain.EventHypoxiaStart))
}

func TestNewProfileRejectsBadCatalogs(t *testing.T) {
	t.Parallel()
	events := []domain.EventDef{{Key: "a"}, {Key: "b"}}
	roster := []domain.ParticipantID{"1"}

	_, err := domain.NewProfile(events, []domain.DurationRule{{ID: "r", Start: "a", End: "missing"}}, roster, "a")
	require.Error(t, err, "rule endpoint outside catalog")

	_, err = domain.NewProfile([]domain.EventDef{{Key: "a"}, {Key: "a"}}, nil, roster, "a")
	require.Error(t, err, "duplicate key")

	_, err = domain.NewProfile(events, nil, nil, "a")
	require.Error(t, err, "empty roster")

	_, err = domain.NewProfile(events, nil, roster, "zzz")
	require.Error(t, err, "unknown reference")

	_, err = domain.NewProfile(events, []domain.DurationRule{{ID: "r", Start: "a", End: "b"}, {ID: "r", Start: "b", End: "a"}}, roster, "a")
	require.Error(t, err, "duplicate rule id")

	p, err := domain.NewProfile(events, []domain.DurationRule{{ID: "r", Start: "a", End: "b"}}, roster, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Events[0].Label, "label defaults to key")
	assert.Equal(t, "r", p.Rules[0].Label)
}
