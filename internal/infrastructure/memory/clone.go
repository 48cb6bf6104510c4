package memory

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

func cloneLines(in []entity.LineItem) []entity.LineItem {
	if in == nil {
		return nil
	}
	out := make([]entity.LineItem, len(in))
	copy(out, in)
	for i := range out {
		if q := in[i].ReceivedQuantity; q != nil {
			cp := *q
			out[i].ReceivedQuantity = &cp
		}
	}
	return out
}

func cloneStamp(s *entity.Stamp) *entity.Stamp {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneDispatch(d *entity.Dispatch) *entity.Dispatch {
	cp := *d
	cp.Lines = cloneLines(d.Lines)
	cp.Created = cloneStamp(d.Created)
	cp.Approved = cloneStamp(d.Approved)
	cp.Dispatched = cloneStamp(d.Dispatched)
	cp.Delivered = cloneStamp(d.Delivered)
	cp.Cancelled = cloneStamp(d.Cancelled)
	return &cp
}

func cloneDonation(d *entity.Donation) *entity.Donation {
	cp := *d
	cp.Lines = cloneLines(d.Lines)
	cp.Created = cloneStamp(d.Created)
	cp.Approved = cloneStamp(d.Approved)
	cp.Received = cloneStamp(d.Received)
	cp.Cancelled = cloneStamp(d.Cancelled)
	return &cp
}

func cloneTransfer(t *entity.InventoryTransfer) *entity.InventoryTransfer {
	cp := *t
	cp.Lines = cloneLines(t.Lines)
	if t.Discrepancies != nil {
		cp.Discrepancies = append([]entity.Discrepancy(nil), t.Discrepancies...)
	}
	cp.Requested = cloneStamp(t.Requested)
	cp.Approved = cloneStamp(t.Approved)
	cp.Shipped = cloneStamp(t.Shipped)
	cp.Received = cloneStamp(t.Received)
	cp.Cancelled = cloneStamp(t.Cancelled)
	return &cp
}
