package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	assert.Equal(t, GameEvent{}, l.LastEvent())

	l.Log(NewRoundEvent(1))
	l.Log(NewTurnEvent(0, "Ann", 1))
	l.Log(NewRollEvent(0, "Ann", 4, ""))

	events := l.Events()
	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, i+1, e.Seq)
	}
	assert.Equal(t, EventRoll, l.LastEvent().Type)
	assert.Len(t, l.EventsOfType(EventNewTurn), 1)
	assert.Len(t, l.EventsFor(0), 2)
	assert.Len(t, l.EventsFor(NoPlayer), 1)
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	e := NewRollEvent(1, "Ben", 6, "Rapid Adaptation")
	e.Round, e.Turn, e.Phase = 2, 5, "Roll"
	l.Log(e)

	assert.Equal(t, FormatAll(l.Events()), buf.String())
	assert.True(t, strings.HasPrefix(buf.String(), "R2   T5   Roll"))
	assert.Contains(t, buf.String(), "Ben rolls 6 (Rapid Adaptation)")
}

func TestStructuredLoggerFields(t *testing.T) {
	out, hook := test.NewNullLogger()
	l := NewStructuredLogger(out, []string{"Ann", "Ben"})

	e := NewRollEvent(1, "Ben", 3, "")
	e.Turn, e.Round, e.Phase = 7, 3, "Roll"
	l.Log(e)
	l.Log(NewRoundEvent(4))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, logrus.InfoLevel, first.Level)
	assert.Equal(t, "Ben rolls 3", first.Message)
	assert.Equal(t, "Ben", first.Data["actor"])
	assert.Equal(t, 7, first.Data["turn"])
	assert.Equal(t, 3, first.Data["count"])
	assert.Equal(t, "Roll", first.Data["phase"])
	assert.Equal(t, 1, first.Data["seq"])

	second := entries[1]
	assert.NotContains(t, second.Data, "actor", "round events have no actor")
	assert.Equal(t, 2, second.Data["seq"])
	assert.Len(t, l.Events(), 2)
}
