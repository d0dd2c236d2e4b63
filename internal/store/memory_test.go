package store

import (
	"testing"
	"time"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRules(t *testing.T) {
	t.Run("Upsert assigns monotonic ids", func(t *testing.T) {
		s := NewMemoryStore()

		first := &models.AlertRule{Name: "First"}
		second := &models.AlertRule{Name: "Second"}
		require.NoError(t, s.UpsertRule(first))
		require.NoError(t, s.UpsertRule(second))

		assert.Equal(t, uint(1), first.ID)
		assert.Equal(t, uint(2), second.ID)

		require.NoError(t, s.RemoveRule(first.ID))
		third := &models.AlertRule{Name: "Third"}
		require.NoError(t, s.UpsertRule(third))
		// The counter only increases; removed ids are never reused.
		assert.Equal(t, uint(3), third.ID)
	})

	t.Run("Upsert replaces by id", func(t *testing.T) {
		s := NewMemoryStore()
		rule := &models.AlertRule{Name: "Original"}
		require.NoError(t, s.UpsertRule(rule))

		rule.Name = "Renamed"
		require.NoError(t, s.UpsertRule(rule))

		stored, err := s.GetRule(rule.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Name)

		rules, err := s.ListRules()
		require.NoError(t, err)
		assert.Len(t, rules, 1)
	})

	t.Run("Missing rule returns ErrNotFound", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.GetRule(42)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.RemoveRule(42), ErrNotFound)
	})
}

func TestMemoryStoreEvents(t *testing.T) {
	t.Run("Append assigns monotonic ids", func(t *testing.T) {
		s := NewMemoryStore()
		a := &models.AlertEvent{Message: "a", Timestamp: time.Now()}
		b := &models.AlertEvent{Message: "b", Timestamp: time.Now()}
		require.NoError(t, s.AppendEvent(a))
		require.NoError(t, s.AppendEvent(b))
		assert.Equal(t, uint(1), a.ID)
		assert.Equal(t, uint(2), b.ID)
	})

	t.Run("UpdateEvent mutates in place", func(t *testing.T) {
		s := NewMemoryStore()
		event := &models.AlertEvent{Message: "pending"}
		require.NoError(t, s.AppendEvent(event))

		require.NoError(t, s.UpdateEvent(event.ID, func(e *models.AlertEvent) {
			e.IsAcknowledged = true
		}))

		stored, err := s.GetEvent(event.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsAcknowledged)
	})

	t.Run("Deleting a rule leaves its events", func(t *testing.T) {
		s := NewMemoryStore()
		rule := &models.AlertRule{Name: "Doomed"}
		require.NoError(t, s.UpsertRule(rule))
		require.NoError(t, s.AppendEvent(&models.AlertEvent{RuleID: rule.ID, Message: "orphan"}))

		require.NoError(t, s.RemoveRule(rule.ID))

		events, err := s.ListEvents()
		require.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, rule.ID, events[0].RuleID)
	})
}
