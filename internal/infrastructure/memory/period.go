package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

type periodRepo struct{ v *view }

func (r periodRepo) Create(_ context.Context, p *entity.Period) error {
	st, done, err := r.v.write("periods.create")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.periods[p.ID]; ok {
		return domain.ErrDuplicate
	}
	st.periods[p.ID] = clonePeriod(p)
	return nil
}

func (r periodRepo) GetByID(_ context.Context, id string) (*entity.Period, error) {
	st, done := r.v.read()
	defer done()
	if p, ok := st.periods[id]; ok {
		return clonePeriod(p), nil
	}
	return nil, nil
}

func (r periodRepo) GetForUpdate(ctx context.Context, id string) (*entity.Period, error) {
	return r.GetByID(ctx, id)
}

func (r periodRepo) Update(_ context.Context, p *entity.Period) error {
	st, done, err := r.v.write("periods.update")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.periods[p.ID]; !ok {
		return domain.ErrNotFound
	}
	st.periods[p.ID] = clonePeriod(p)
	return nil
}

func (r periodRepo) FindByStatus(_ context.Context, status entity.PeriodStatus) ([]*entity.Period, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.Period
	for _, p := range st.periods {
		if p.Status == status {
			out = append(out, clonePeriod(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r periodRepo) LatestClosed(_ context.Context) (*entity.Period, error) {
	st, done := r.v.read()
	defer done()
	var last *entity.Period
	for _, p := range st.periods {
		if p.Status == entity.PeriodClosed && (last == nil || p.EndDate.After(last.EndDate)) {
			last = p
		}
	}
	if last == nil {
		return nil, nil
	}
	return clonePeriod(last), nil
}

func (r periodRepo) Overlapping(_ context.Context, start, end time.Time) ([]*entity.Period, error) {
	st, done := r.v.read()
	defer done()
	candidate := &entity.Period{StartDate: start, EndDate: end}
	var out []*entity.Period
	for _, p := range st.periods {
		if p.Overlaps(candidate) {
			out = append(out, clonePeriod(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

type priceRepo struct{ v *view }

func (r priceRepo) Upsert(_ context.Context, p *entity.ItemPrice) error {
	st, done, err := r.v.write("prices.upsert")
	if err != nil {
		return err
	}
	defer done()
	st.prices[pairKey{p.PeriodID, p.ItemID}] = clonePrice(p)
	return nil
}

func (r priceRepo) Get(_ context.Context, periodID, itemID string) (*entity.ItemPrice, error) {
	st, done := r.v.read()
	defer done()
	if p, ok := st.prices[pairKey{periodID, itemID}]; ok {
		return clonePrice(p), nil
	}
	return nil, nil
}

func (r priceRepo) ListByPeriod(_ context.Context, periodID string) ([]*entity.ItemPrice, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.ItemPrice
	for k, p := range st.prices {
		if k.a == periodID {
			out = append(out, clonePrice(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

type periodLocationRepo struct{ v *view }

func (r periodLocationRepo) Create(_ context.Context, pl *entity.PeriodLocation) error {
	st, done, err := r.v.write("period_locations.create")
	if err != nil {
		return err
	}
	defer done()
	k := pairKey{pl.PeriodID, pl.LocationID}
	if _, ok := st.periodLocations[k]; ok {
		return domain.ErrDuplicate
	}
	st.periodLocations[k] = clonePeriodLocation(pl)
	return nil
}

func (r periodLocationRepo) Get(_ context.Context, periodID, locationID string) (*entity.PeriodLocation, error) {
	st, done := r.v.read()
	defer done()
	if pl, ok := st.periodLocations[pairKey{periodID, locationID}]; ok {
		return clonePeriodLocation(pl), nil
	}
	return nil, nil
}

func (r periodLocationRepo) GetForUpdate(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error) {
	return r.Get(ctx, periodID, locationID)
}

func (r periodLocationRepo) GetForShare(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error) {
	return r.Get(ctx, periodID, locationID)
}

func (r periodLocationRepo) ListByPeriod(_ context.Context, periodID string) ([]*entity.PeriodLocation, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.PeriodLocation
	for k, pl := range st.periodLocations {
		if k.a == periodID {
			out = append(out, clonePeriodLocation(pl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

// Update el snapshot, una vez escrito, no se reemplaza.
func (r periodLocationRepo) Update(_ context.Context, pl *entity.PeriodLocation) error {
	st, done, err := r.v.write("period_locations.update")
	if err != nil {
		return err
	}
	defer done()
	k := pairKey{pl.PeriodID, pl.LocationID}
	cur, ok := st.periodLocations[k]
	if !ok {
		return domain.ErrNotFound
	}
	next := clonePeriodLocation(pl)
	if cur.Snapshot != nil {
		next.Snapshot = cur.Snapshot
		next.ClosingValue = cur.ClosingValue
	}
	st.periodLocations[k] = next
	return nil
}

type reconciliationRepo struct{ v *view }

func (r reconciliationRepo) Get(_ context.Context, periodID, locationID string) (*entity.Reconciliation, error) {
	st, done := r.v.read()
	defer done()
	if rec, ok := st.reconciliations[pairKey{periodID, locationID}]; ok {
		return cloneReconciliation(rec), nil
	}
	return nil, nil
}

func (r reconciliationRepo) Upsert(_ context.Context, rec *entity.Reconciliation) error {
	st, done, err := r.v.write("reconciliations.upsert")
	if err != nil {
		return err
	}
	defer done()
	st.reconciliations[pairKey{rec.PeriodID, rec.LocationID}] = cloneReconciliation(rec)
	return nil
}
