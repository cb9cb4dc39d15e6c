package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/period"
)

func TestCanTransition_Periodo(t *testing.T) {
	cases := []struct {
		from, to entity.PeriodStatus
		ok       bool
	}{
		{entity.PeriodDraft, entity.PeriodOpen, true},
		{entity.PeriodOpen, entity.PeriodPendingClose, true},
		{entity.PeriodPendingClose, entity.PeriodApproved, true},
		{entity.PeriodPendingClose, entity.PeriodOpen, true},
		{entity.PeriodApproved, entity.PeriodClosed, true},
		{entity.PeriodDraft, entity.PeriodClosed, false},
		{entity.PeriodOpen, entity.PeriodDraft, false},
		{entity.PeriodClosed, entity.PeriodOpen, false},
		{entity.PeriodApproved, entity.PeriodOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, period.CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransition_CierreRegistraFecha(t *testing.T) {
	now := time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC)
	p := &entity.Period{Status: entity.PeriodApproved}
	require.NoError(t, period.Transition(p, entity.PeriodClosed, now))
	assert.Equal(t, entity.PeriodClosed, p.Status)
	require.NotNil(t, p.ClosedAt)
	assert.Equal(t, now, *p.ClosedAt)

	err := period.Transition(p, entity.PeriodOpen, now)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, entity.PeriodClosed, p.Status)
}

func TestTransitionLocation(t *testing.T) {
	now := time.Now()
	pl := &entity.PeriodLocation{Status: entity.PeriodLocationOpen}
	require.NoError(t, period.TransitionLocation(pl, entity.PeriodLocationReady, now))
	assert.NotNil(t, pl.ReadyAt)

	err := period.TransitionLocation(pl, entity.PeriodLocationOpen, now)
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "period_location", te.Entity)

	require.NoError(t, period.TransitionLocation(pl, entity.PeriodLocationClosed, now))
	assert.NotNil(t, pl.ClosedAt)
}

func TestAcceptsPostings(t *testing.T) {
	open := &entity.Period{Status: entity.PeriodOpen}
	plOpen := &entity.PeriodLocation{Status: entity.PeriodLocationOpen}
	plReady := &entity.PeriodLocation{Status: entity.PeriodLocationReady}

	assert.NoError(t, period.AcceptsPostings(open, plOpen))
	assert.ErrorIs(t, period.AcceptsPostings(open, plReady), domain.ErrPeriodClosed)
	assert.ErrorIs(t, period.AcceptsPostings(open, nil), domain.ErrPeriodClosed)
	assert.ErrorIs(t, period.AcceptsPostings(&entity.Period{Status: entity.PeriodPendingClose}, plOpen), domain.ErrPeriodClosed)
}

func TestPricesEditable(t *testing.T) {
	assert.NoError(t, period.PricesEditable(&entity.Period{Status: entity.PeriodDraft}))
	assert.ErrorIs(t, period.PricesEditable(&entity.Period{Status: entity.PeriodOpen}), domain.ErrPricesLocked)
}

func TestNextRange(t *testing.T) {
	p := &entity.Period{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	start, end := period.NextRange(p)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), end)
}

func TestPendingLocations(t *testing.T) {
	active := []*entity.Location{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	rows := []*entity.PeriodLocation{
		{LocationID: "a", Status: entity.PeriodLocationReady},
		{LocationID: "b", Status: entity.PeriodLocationOpen},
	}
	assert.Equal(t, []string{"b", "c"}, period.PendingLocations(active, rows))
}
