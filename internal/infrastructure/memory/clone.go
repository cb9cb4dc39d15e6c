package memory

import "github.com/jhoicas/stockledger-api/internal/domain/entity"

func cloneLocation(v *entity.Location) *entity.Location {
	c := *v
	return &c
}

func cloneItem(v *entity.Item) *entity.Item {
	c := *v
	return &c
}

func cloneSupplier(v *entity.Supplier) *entity.Supplier {
	c := *v
	return &c
}

func cloneStock(v *entity.LocationStock) *entity.LocationStock {
	c := *v
	return &c
}

func clonePeriod(v *entity.Period) *entity.Period {
	c := *v
	return &c
}

func clonePrice(v *entity.ItemPrice) *entity.ItemPrice {
	c := *v
	return &c
}

func cloneApproval(v *entity.Approval) *entity.Approval {
	c := *v
	return &c
}

func clonePeriodLocation(v *entity.PeriodLocation) *entity.PeriodLocation {
	c := *v
	if v.Snapshot != nil {
		c.Snapshot = append([]byte(nil), v.Snapshot...)
	}
	return &c
}

func cloneReconciliation(v *entity.Reconciliation) *entity.Reconciliation {
	c := *v
	return &c
}

func cloneDelivery(v *entity.Delivery) *entity.Delivery {
	c := *v
	c.Lines = make([]*entity.DeliveryLine, len(v.Lines))
	for i, l := range v.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}

func cloneIssue(v *entity.Issue) *entity.Issue {
	c := *v
	c.Lines = make([]*entity.IssueLine, len(v.Lines))
	for i, l := range v.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}

func cloneTransfer(v *entity.Transfer) *entity.Transfer {
	c := *v
	c.Lines = make([]*entity.TransferLine, len(v.Lines))
	for i, l := range v.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}

func cloneNCR(v *entity.NCR) *entity.NCR {
	c := *v
	c.Lines = make([]*entity.NCRLine, len(v.Lines))
	for i, l := range v.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}
