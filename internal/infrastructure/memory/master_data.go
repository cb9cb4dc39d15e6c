package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

type locationRepo struct{ v *view }

func (r locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	st, done := r.v.read()
	defer done()
	if l, ok := st.locations[id]; ok {
		return cloneLocation(l), nil
	}
	return nil, nil
}

func (r locationRepo) ListActive(_ context.Context) ([]*entity.Location, error) {
	st, done := r.v.read()
	defer done()
	out := make([]*entity.Location, 0, len(st.locations))
	for _, l := range st.locations {
		if l.Active {
			out = append(out, cloneLocation(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type itemRepo struct{ v *view }

func (r itemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	st, done := r.v.read()
	defer done()
	if i, ok := st.items[id]; ok {
		return cloneItem(i), nil
	}
	return nil, nil
}

func (r itemRepo) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	st, done := r.v.read()
	defer done()
	for _, i := range st.items {
		if i.Code == code {
			return cloneItem(i), nil
		}
	}
	return nil, nil
}

type supplierRepo struct{ v *view }

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	st, done := r.v.read()
	defer done()
	if s, ok := st.suppliers[id]; ok {
		return cloneSupplier(s), nil
	}
	return nil, nil
}

type mandaysRepo struct{ v *view }

func (r mandaysRepo) Total(_ context.Context, periodID, locationID string) (decimal.Decimal, error) {
	st, done := r.v.read()
	defer done()
	return st.mandays[pairKey{periodID, locationID}], nil
}

type stockRepo struct{ v *view }

func (r stockRepo) Get(_ context.Context, locationID, itemID string) (*entity.LocationStock, error) {
	st, done := r.v.read()
	defer done()
	if s, ok := st.stock[pairKey{locationID, itemID}]; ok {
		return cloneStock(s), nil
	}
	return &entity.LocationStock{LocationID: locationID, ItemID: itemID, OnHand: decimal.Zero, WAC: decimal.Zero}, nil
}

// GetForUpdate las transacciones en memoria ya están serializadas.
func (r stockRepo) GetForUpdate(ctx context.Context, locationID, itemID string) (*entity.LocationStock, error) {
	return r.Get(ctx, locationID, itemID)
}

func (r stockRepo) Save(_ context.Context, s *entity.LocationStock) error {
	st, done, err := r.v.write("stock.save")
	if err != nil {
		return err
	}
	defer done()
	st.stock[pairKey{s.LocationID, s.ItemID}] = cloneStock(s)
	return nil
}

func (r stockRepo) ListByLocation(_ context.Context, locationID string) ([]*entity.LocationStock, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.LocationStock
	for k, s := range st.stock {
		if k.a == locationID {
			out = append(out, cloneStock(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}
