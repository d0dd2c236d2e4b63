package services

import (
	"testing"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() RuleDraft {
	return RuleDraft{
		Name:          "High CPU Usage",
		TriggerScript: "cpu_usage_trigger",
		Parameters:    `{"server": "PROD-DB-01", "threshold": 90}`,
		Importance:    models.ImportanceHigh,
		Category:      "Infrastructure",
		PeriodValue:   5,
		PeriodUnit:    UnitMinutes,
		DurationValue: 1,
		DurationUnit:  UnitDays,
	}
}

func TestCreateRule(t *testing.T) {
	t.Run("Valid draft creates an active rule", func(t *testing.T) {
		svc := NewRuleService(store.NewMemoryStore())
		rule, err := svc.CreateRule(validDraft())
		require.NoError(t, err)

		assert.NotZero(t, rule.ID)
		assert.True(t, rule.IsActive)
		assert.Equal(t, 300, rule.PeriodSeconds)
		assert.Equal(t, 1440, rule.DisplayDurationMinutes)
	})

	t.Run("Defaults fill omitted fields", func(t *testing.T) {
		svc := NewRuleService(store.NewMemoryStore())
		draft := RuleDraft{
			Name:          "Bare Minimum",
			PeriodValue:   1,
			PeriodUnit:    UnitMinutes,
			DurationValue: 1,
			DurationUnit:  UnitHours,
		}
		rule, err := svc.CreateRule(draft)
		require.NoError(t, err)

		assert.Equal(t, models.ImportanceMedium, rule.Importance)
		assert.Equal(t, "General", rule.Category)
		assert.Equal(t, models.TriggerManual, rule.TriggerScript)
		assert.Equal(t, "{}", rule.Parameters)
		assert.Equal(t, "{}", rule.ActionConfig)
	})

	t.Run("Validation failures leave the store unchanged", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRuleService(st)

		cases := []struct {
			name    string
			mutate  func(*RuleDraft)
			wantErr error
		}{
			{"blank name", func(d *RuleDraft) { d.Name = "   " }, ErrEmptyRuleName},
			{"bad parameters", func(d *RuleDraft) { d.Parameters = "{not json" }, ErrInvalidParameters},
			{"bad action config", func(d *RuleDraft) { d.ActionConfig = "[" }, ErrInvalidActions},
			{"bad importance", func(d *RuleDraft) { d.Importance = "urgent" }, ErrInvalidImportance},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				draft := validDraft()
				tc.mutate(&draft)
				_, err := svc.CreateRule(draft)
				assert.ErrorIs(t, err, tc.wantErr)
			})
		}

		t.Run("bad period unit", func(t *testing.T) {
			draft := validDraft()
			draft.PeriodUnit = "Weeks"
			_, err := svc.CreateRule(draft)
			assert.Error(t, err)
		})

		rules, err := st.ListRules()
		require.NoError(t, err)
		assert.Empty(t, rules)
	})
}

func TestCloneRule(t *testing.T) {
	t.Run("Clone copies fields and derives units", func(t *testing.T) {
		svc := NewRuleService(store.NewMemoryStore())
		source, err := svc.CreateRule(validDraft())
		require.NoError(t, err)

		draft, err := svc.CloneRule(source.ID)
		require.NoError(t, err)

		assert.Equal(t, "Copy of High CPU Usage", draft.Name)
		assert.Equal(t, source.TriggerScript, draft.TriggerScript)
		assert.Equal(t, source.Parameters, draft.Parameters)
		assert.Equal(t, 5, draft.PeriodValue)
		assert.Equal(t, UnitMinutes, draft.PeriodUnit)
		assert.Equal(t, 1, draft.DurationValue)
		assert.Equal(t, UnitDays, draft.DurationUnit)
	})

	t.Run("Clone derives the largest clean unit", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRuleService(st)
		rule := &models.AlertRule{
			Name:                   "Hourly",
			PeriodSeconds:          7200,
			DisplayDurationMinutes: 90,
		}
		require.NoError(t, st.UpsertRule(rule))

		draft, err := svc.CloneRule(rule.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, draft.PeriodValue)
		assert.Equal(t, UnitHours, draft.PeriodUnit)
		assert.Equal(t, 90, draft.DurationValue)
		assert.Equal(t, UnitMinutes, draft.DurationUnit)
	})

	t.Run("Clone of a missing rule fails", func(t *testing.T) {
		svc := NewRuleService(store.NewMemoryStore())
		_, err := svc.CloneRule(404)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestToggleAndDelete(t *testing.T) {
	t.Run("Toggle flips and persists", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRuleService(st)
		rule, err := svc.CreateRule(validDraft())
		require.NoError(t, err)

		toggled, err := svc.ToggleRule(rule.ID)
		require.NoError(t, err)
		assert.False(t, toggled.IsActive)

		again, err := svc.ToggleRule(rule.ID)
		require.NoError(t, err)
		assert.True(t, again.IsActive)
	})

	t.Run("Delete leaves events behind", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRuleService(st)
		rule, err := svc.CreateRule(validDraft())
		require.NoError(t, err)
		require.NoError(t, st.AppendEvent(&models.AlertEvent{RuleID: rule.ID, Message: "fired"}))

		require.NoError(t, svc.DeleteRule(rule.ID))

		_, err = svc.GetRule(rule.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		events, err := st.ListEvents()
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}
