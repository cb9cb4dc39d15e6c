package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

type deliveryRepo struct{ v *view }

func (r deliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	st, done, err := r.v.write("deliveries.create")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.deliveries[d.ID]; ok {
		return domain.ErrDuplicate
	}
	if invoiceTaken(st, d) {
		return domain.ErrDuplicate
	}
	st.deliveries[d.ID] = cloneDelivery(d)
	return nil
}

func (r deliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	st, done := r.v.read()
	defer done()
	if d, ok := st.deliveries[id]; ok {
		return cloneDelivery(d), nil
	}
	return nil, nil
}

func (r deliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.GetByID(ctx, id)
}

func (r deliveryRepo) Update(_ context.Context, d *entity.Delivery) error {
	st, done, err := r.v.write("deliveries.update")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.deliveries[d.ID]; !ok {
		return domain.ErrNotFound
	}
	if invoiceTaken(st, d) {
		return domain.ErrDuplicate
	}
	st.deliveries[d.ID] = cloneDelivery(d)
	return nil
}

func (r deliveryRepo) InvoiceExists(_ context.Context, supplierID, invoiceNo, excludeID string) (bool, error) {
	st, done := r.v.read()
	defer done()
	return invoiceTaken(st, &entity.Delivery{ID: excludeID, SupplierID: supplierID, InvoiceNo: invoiceNo}), nil
}

func (r deliveryRepo) SumPosted(_ context.Context, periodID, locationID string) (decimal.Decimal, error) {
	st, done := r.v.read()
	defer done()
	total := decimal.Zero
	for _, d := range st.deliveries {
		if d.Status == entity.DeliveryPosted && d.PeriodID == periodID && d.LocationID == locationID {
			total = total.Add(d.TotalValue)
		}
	}
	return total, nil
}

func invoiceTaken(st *state, d *entity.Delivery) bool {
	if d.InvoiceNo == "" {
		return false
	}
	for _, other := range st.deliveries {
		if other.ID != d.ID && other.SupplierID == d.SupplierID && other.InvoiceNo == d.InvoiceNo {
			return true
		}
	}
	return false
}

type issueRepo struct{ v *view }

func (r issueRepo) Create(_ context.Context, i *entity.Issue) error {
	st, done, err := r.v.write("issues.create")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.issues[i.ID]; ok {
		return domain.ErrDuplicate
	}
	st.issues[i.ID] = cloneIssue(i)
	return nil
}

func (r issueRepo) GetByID(_ context.Context, id string) (*entity.Issue, error) {
	st, done := r.v.read()
	defer done()
	if i, ok := st.issues[id]; ok {
		return cloneIssue(i), nil
	}
	return nil, nil
}

func (r issueRepo) Sum(_ context.Context, periodID, locationID string) (decimal.Decimal, error) {
	st, done := r.v.read()
	defer done()
	total := decimal.Zero
	for _, i := range st.issues {
		if i.PeriodID == periodID && i.LocationID == locationID {
			total = total.Add(i.TotalValue)
		}
	}
	return total, nil
}

type transferRepo struct{ v *view }

func (r transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	st, done, err := r.v.write("transfers.create")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.transfers[t.ID]; ok {
		return domain.ErrDuplicate
	}
	st.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	st, done := r.v.read()
	defer done()
	if t, ok := st.transfers[id]; ok {
		return cloneTransfer(t), nil
	}
	return nil, nil
}

func (r transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r transferRepo) Update(_ context.Context, t *entity.Transfer) error {
	st, done, err := r.v.write("transfers.update")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	st.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r transferRepo) SumCompletedIn(_ context.Context, periodID, locationID string) (decimal.Decimal, error) {
	return r.sum(periodID, func(t *entity.Transfer) bool { return t.ToLocationID == locationID }), nil
}

func (r transferRepo) SumCompletedOut(_ context.Context, periodID, locationID string) (decimal.Decimal, error) {
	return r.sum(periodID, func(t *entity.Transfer) bool { return t.FromLocationID == locationID }), nil
}

func (r transferRepo) sum(periodID string, match func(*entity.Transfer) bool) decimal.Decimal {
	st, done := r.v.read()
	defer done()
	total := decimal.Zero
	for _, t := range st.transfers {
		if t.Status == entity.TransferCompleted && t.PeriodID != nil && *t.PeriodID == periodID && match(t) {
			total = total.Add(t.TotalValue)
		}
	}
	return total
}

type ncrRepo struct{ v *view }

func (r ncrRepo) Create(_ context.Context, n *entity.NCR) error {
	st, done, err := r.v.write("ncrs.create")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.ncrs[n.ID]; ok {
		return domain.ErrDuplicate
	}
	st.ncrs[n.ID] = cloneNCR(n)
	return nil
}

func (r ncrRepo) GetByID(_ context.Context, id string) (*entity.NCR, error) {
	st, done := r.v.read()
	defer done()
	if n, ok := st.ncrs[id]; ok {
		return cloneNCR(n), nil
	}
	return nil, nil
}

func (r ncrRepo) GetForUpdate(ctx context.Context, id string) (*entity.NCR, error) {
	return r.GetByID(ctx, id)
}

func (r ncrRepo) Update(_ context.Context, n *entity.NCR) error {
	st, done, err := r.v.write("ncrs.update")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.ncrs[n.ID]; !ok {
		return domain.ErrNotFound
	}
	st.ncrs[n.ID] = cloneNCR(n)
	return nil
}

func (r ncrRepo) ListByPeriodLocation(_ context.Context, periodID, locationID string) ([]*entity.NCR, error) {
	return r.list(func(n *entity.NCR) bool { return n.PeriodID == periodID && n.LocationID == locationID }), nil
}

func (r ncrRepo) ListByStatus(_ context.Context, periodID string, status entity.NCRStatus) ([]*entity.NCR, error) {
	return r.list(func(n *entity.NCR) bool { return n.PeriodID == periodID && n.Status == status }), nil
}

func (r ncrRepo) list(match func(*entity.NCR) bool) []*entity.NCR {
	st, done := r.v.read()
	defer done()
	var out []*entity.NCR
	for _, n := range st.ncrs {
		if match(n) {
			out = append(out, cloneNCR(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type approvalRepo struct{ v *view }

func (r approvalRepo) Create(_ context.Context, a *entity.Approval) error {
	st, done, err := r.v.write("approvals.create")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.approvals[a.ID]; ok {
		return domain.ErrDuplicate
	}
	st.approvals[a.ID] = cloneApproval(a)
	return nil
}

func (r approvalRepo) GetByID(_ context.Context, id string) (*entity.Approval, error) {
	st, done := r.v.read()
	defer done()
	if a, ok := st.approvals[id]; ok {
		return cloneApproval(a), nil
	}
	return nil, nil
}

func (r approvalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Approval, error) {
	return r.GetByID(ctx, id)
}

func (r approvalRepo) Update(_ context.Context, a *entity.Approval) error {
	st, done, err := r.v.write("approvals.update")
	if err != nil {
		return err
	}
	defer done()
	if _, ok := st.approvals[a.ID]; !ok {
		return domain.ErrNotFound
	}
	st.approvals[a.ID] = cloneApproval(a)
	return nil
}

func (r approvalRepo) GetPendingByEntity(_ context.Context, t entity.ApprovalEntityType, entityID string) (*entity.Approval, error) {
	st, done := r.v.read()
	defer done()
	for _, a := range st.approvals {
		if a.Status == entity.ApprovalPending && a.EntityType == t && a.EntityID == entityID {
			return cloneApproval(a), nil
		}
	}
	return nil, nil
}

func (r approvalRepo) ListPending(_ context.Context, t entity.ApprovalEntityType) ([]*entity.Approval, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.Approval
	for _, a := range st.approvals {
		if a.Status == entity.ApprovalPending && (t == "" || a.EntityType == t) {
			out = append(out, cloneApproval(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}
