package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toDocumentResponse(doc entity.Document, lang language.Tag) dto.DocumentResponse {
	out := dto.DocumentResponse{
		ID:          doc.DocumentID(),
		Kind:        string(doc.Kind()),
		Number:      doc.DocumentNumber(),
		Status:      doc.StatusCode(),
		StatusLabel: entity.StatusLabel(doc.Kind(), doc.StatusCode(), lang),
		Version:     doc.DocumentVersion(),
		Lines:       toLineResponses(doc.Items()),
		Stamps:      map[string]dto.StampResponse{},
	}

	var allowed []entity.Transition
	switch d := doc.(type) {
	case *entity.Dispatch:
		allowed = entity.DispatchFlow.Allowed(d.Status)
		out.Editable = entity.DispatchFlow.Editable(d.Status)
		out.WarehouseID = d.WarehouseID
		out.CustomerID = d.CustomerID
		out.Date = d.DispatchDate
		out.Notes = d.Notes
		out.ReceivedByName = d.ReceivedByName
		out.CancelReason = d.CancelReason
		out.Quick = d.Quick
		out.Totals = toTotalsResponse(d.Totals)
		out.CreatedAt, out.UpdatedAt = d.CreatedAt, d.UpdatedAt
		addStamps(out.Stamps, map[string]*entity.Stamp{
			"created": d.Created, "approved": d.Approved, "dispatched": d.Dispatched,
			"delivered": d.Delivered, "cancelled": d.Cancelled,
		})
	case *entity.Donation:
		allowed = entity.DonationFlow.Allowed(d.Status)
		out.Editable = entity.DonationFlow.Editable(d.Status)
		out.WarehouseID = d.WarehouseID
		out.DonorID = d.DonorID
		out.Date = d.DonationDate
		out.Notes = d.Notes
		out.CancelReason = d.CancelReason
		out.Totals = toTotalsResponse(d.Totals)
		out.CreatedAt, out.UpdatedAt = d.CreatedAt, d.UpdatedAt
		addStamps(out.Stamps, map[string]*entity.Stamp{
			"created": d.Created, "approved": d.Approved, "received": d.Received, "cancelled": d.Cancelled,
		})
	case *entity.InventoryTransfer:
		allowed = entity.TransferFlow.Allowed(d.Status)
		out.Editable = entity.TransferFlow.Editable(d.Status)
		out.FromWarehouseID = d.FromWarehouseID
		out.ToWarehouseID = d.ToWarehouseID
		out.Date = d.TransferDate
		out.Notes = d.Notes
		out.ApprovalNotes = d.ApprovalNotes
		out.ReceiptNotes = d.ReceiptNotes
		out.TrackingNumber = d.TrackingNumber
		out.Carrier = d.Carrier
		out.CancelReason = d.CancelReason
		out.Totals = toTotalsResponse(d.Totals)
		out.CreatedAt, out.UpdatedAt = d.CreatedAt, d.UpdatedAt
		for _, x := range d.Discrepancies {
			out.Discrepancies = append(out.Discrepancies, dto.DiscrepancyResponse{
				ID: x.ID, ProductID: x.ProductID, Expected: x.Expected, Received: x.Received, Reason: x.Reason,
			})
		}
		addStamps(out.Stamps, map[string]*entity.Stamp{
			"requested": d.Requested, "approved": d.Approved, "shipped": d.Shipped,
			"received": d.Received, "cancelled": d.Cancelled,
		})
	}
	out.AllowedTransitions = make([]string, 0, len(allowed))
	for _, t := range allowed {
		out.AllowedTransitions = append(out.AllowedTransitions, string(t))
	}
	return out
}

func addStamps(dst map[string]dto.StampResponse, stamps map[string]*entity.Stamp) {
	for name, s := range stamps {
		if s != nil {
			dst[name] = dto.StampResponse{At: s.At, By: s.By}
		}
	}
}

func toLineResponses(lines []entity.LineItem) []dto.LineResponse {
	out := make([]dto.LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.LineResponse{
			ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice,
			Subtotal: l.Subtotal, Notes: l.Notes, ReceivedQuantity: l.ReceivedQuantity,
		})
	}
	return out
}

func toTotalsResponse(t entity.Totals) dto.TotalsResponse {
	return dto.TotalsResponse{
		Subtotal: t.Subtotal, TaxAmount: t.TaxAmount, DiscountAmount: t.DiscountAmount,
		ShippingCost: t.ShippingCost, Total: t.Total,
	}
}

func toMovementResponse(m *entity.MovementRecord) dto.MovementResponse {
	return dto.MovementResponse{
		ID: m.ID, WarehouseID: m.WarehouseID, ProductID: m.ProductID, Type: string(m.Type),
		QuantityIn: m.QuantityIn, QuantityOut: m.QuantityOut, Balance: m.Balance,
		UnitCost: m.UnitCost, TotalCost: m.TotalCost, MovementDate: m.MovementDate,
		OriginKind: string(m.OriginKind), OriginID: m.OriginID, ReasonCode: m.ReasonCode,
		CreatedBy: m.CreatedBy, CreatedAt: m.CreatedAt,
	}
}

func toSnapshotResponse(s *entity.StockSnapshot) dto.SnapshotResponse {
	return dto.SnapshotResponse{
		WarehouseID: s.WarehouseID, ProductID: s.ProductID, OnHand: s.OnHand, Reserved: s.Reserved,
		Available: s.Available, Active: s.Active, UpdatedAt: s.UpdatedAt,
	}
}

func toReconcileResponse(r *inventory.ReconcileReport) dto.ReconcileResponse {
	out := dto.ReconcileResponse{
		WarehouseID: r.Key.WarehouseID, ProductID: r.Key.ProductID, Consistent: r.Consistent(),
		Records: r.Records, StoredHead: r.StoredHead, RecomputedBalance: r.RecomputedBalance,
		SnapshotOnHand: r.SnapshotOnHand, Mismatches: make([]dto.BalanceMismatchResponse, 0, len(r.Mismatches)),
	}
	for _, m := range r.Mismatches {
		out.Mismatches = append(out.Mismatches, dto.BalanceMismatchResponse{RecordID: m.RecordID, Stored: m.Stored, Expected: m.Expected})
	}
	return out
}

// encodeCursor: "<unix nanos>_<id>".
func encodeCursor(c *entity.MovementCursor) string {
	if c == nil {
		return ""
	}
	return strconv.FormatInt(c.MovementDate.UnixNano(), 10) + "_" + strconv.FormatInt(c.ID, 10)
}

func decodeCursor(s string) (*entity.MovementCursor, error) {
	if s == "" {
		return nil, nil
	}
	nanos, id, ok := strings.Cut(s, "_")
	if !ok {
		return nil, fmt.Errorf("%w: cursor", domain.ErrInvalidInput)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: cursor", domain.ErrInvalidInput)
	}
	i, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: cursor", domain.ErrInvalidInput)
	}
	return &entity.MovementCursor{MovementDate: time.Unix(0, n).UTC(), ID: i}, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD (inicio del día UTC; fin del día si endOfDay).
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
