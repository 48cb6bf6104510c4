package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/workflow"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func (f *fixture) transition(t *testing.T, kind entity.DocumentKind, id string, names ...entity.Transition) entity.Document {
	t.Helper()
	var (
		doc entity.Document
		err error
	)
	for _, name := range names {
		doc, err = f.engine.Transition(context.Background(), kind, company, id, actor, name, workflow.TransitionFields{})
		require.NoError(t, err, "transición %s", name)
	}
	return doc
}

func TestDonation_RecibirSumaExistenciasAlValorEstimado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.engine.CreateDocument(ctx, entity.KindDonation, workflow.DocumentInput{
		CompanyID: company, ActorID: actor, WarehouseID: wh1, PartyID: "donante-1",
		Lines: []workflow.LineInput{line("p1", "4", "2.5"), line("p2", "1", "100")},
	})
	require.NoError(t, err)
	d := doc.(*entity.Donation)
	assert.Equal(t, entity.DonationDraft, d.Status)
	assert.True(t, d.Totals.Total.Equal(dec("110")))

	f.transition(t, entity.KindDonation, d.ID, entity.TransitionSubmit, entity.TransitionApprove)
	assert.Empty(t, f.history(t, wh1, "p1"))

	got := f.transition(t, entity.KindDonation, d.ID, entity.TransitionReceive).(*entity.Donation)
	assert.Equal(t, entity.DonationReceived, got.Status)
	require.NotNil(t, got.Received)

	recs := f.history(t, wh1, "p1")
	require.Len(t, recs, 1)
	assert.Equal(t, entity.MovementReceipt, recs[0].Type)
	assert.Equal(t, entity.OriginDonation, recs[0].OriginKind)
	assert.True(t, recs[0].UnitCost.Equal(dec("2.5")))
	assert.True(t, recs[0].TotalCost.Equal(dec("10")))
	assert.True(t, f.snapshot(t, wh1, "p1").Available.Equal(dec("4")))
	assert.True(t, f.snapshot(t, wh1, "p2").Available.Equal(dec("1")))
	assert.Equal(t, 2, f.publisher.count())

	_, err = f.engine.Transition(ctx, entity.KindDonation, company, d.ID, actor, entity.TransitionCancel, workflow.TransitionFields{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDonation_CanceladaNoAdmiteCambios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := workflow.DocumentInput{CompanyID: company, ActorID: actor, WarehouseID: wh1, Lines: []workflow.LineInput{line("p1", "1", "1")}}
	d, err := f.engine.CreateDonation(ctx, in)
	require.NoError(t, err)

	cancelled, err := f.engine.TransitionDonation(ctx, company, d.ID, actor, entity.TransitionCancel, workflow.TransitionFields{Reason: "duplicada"})
	require.NoError(t, err)
	assert.Equal(t, "duplicada", cancelled.CancelReason)

	_, err = f.engine.UpdateDonation(ctx, d.ID, cancelled.Version, in)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.engine.TransitionDonation(ctx, company, d.ID, actor, entity.TransitionSubmit, workflow.TransitionFields{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func transferInput(lines ...workflow.LineInput) workflow.DocumentInput {
	return workflow.DocumentInput{CompanyID: company, ActorID: actor, FromWarehouseID: wh1, ToWarehouseID: wh2, Lines: lines}
}

func TestTransfer_ValidaBodegasYProductos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := transferInput(line("p1", "1", "1"))
	in.ToWarehouseID = wh1
	_, err := f.engine.CreateTransfer(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.CreateTransfer(ctx, transferInput(line("p1", "1", "1"), line("p1", "2", "1")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_EnvioYRecepcionCompleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, wh1, "p1", "50", "3")

	tr, err := f.engine.CreateTransfer(ctx, transferInput(line("p1", "20", "3")))
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, tr.Status)
	require.NotNil(t, tr.Requested)

	tr, err = f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionApprove, workflow.TransitionFields{Notes: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok", tr.ApprovalNotes)

	tr, err = f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionShip, workflow.TransitionFields{TrackingNumber: "GUIA-1", Carrier: "Servientrega"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferInTransit, tr.Status)
	assert.Equal(t, "GUIA-1", tr.TrackingNumber)

	// En tránsito: origen descontado, destino sin acreditar.
	assert.True(t, f.snapshot(t, wh1, "p1").OnHand.Equal(dec("30")))
	assert.True(t, f.snapshot(t, wh2, "p1").OnHand.IsZero())

	_, err = f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionCancel, workflow.TransitionFields{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	tr, err = f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionReceive, workflow.TransitionFields{Notes: "completo"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferReceived, tr.Status)
	assert.Empty(t, tr.Discrepancies)
	require.NotNil(t, tr.Lines[0].ReceivedQuantity)
	assert.True(t, tr.Lines[0].ReceivedQuantity.Equal(dec("20")))

	in := f.history(t, wh2, "p1")
	require.Len(t, in, 1)
	assert.Equal(t, entity.MovementTransferIn, in[0].Type)
	assert.Equal(t, tr.ID, in[0].OriginID)
	assert.True(t, in[0].UnitCost.Equal(dec("3")))
	assert.True(t, f.snapshot(t, wh2, "p1").OnHand.Equal(dec("20")))
}

func TestTransfer_RecepcionConDiscrepancia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, wh1, "p1", "100", "1")
	f.seed(t, wh1, "p2", "10", "1")

	tr, err := f.engine.CreateTransfer(ctx, transferInput(line("p1", "100", "1"), line("p2", "10", "1")))
	require.NoError(t, err)
	f.transition(t, entity.KindTransfer, tr.ID, entity.TransitionApprove, entity.TransitionShip)

	tr, err = f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionReceive, workflow.TransitionFields{
		Discrepancies: []workflow.DiscrepancyInput{
			{ProductID: "p1", Received: dec("95"), Reason: "cajas dañadas"},
			{ProductID: "p2", Received: dec("0"), Reason: "extraviado"},
		},
	})
	require.NoError(t, err)

	require.Len(t, tr.Discrepancies, 2)
	assert.Equal(t, "p1", tr.Discrepancies[0].ProductID)
	assert.True(t, tr.Discrepancies[0].Expected.Equal(dec("100")))
	assert.True(t, tr.Discrepancies[0].Received.Equal(dec("95")))
	assert.NotEmpty(t, tr.Discrepancies[0].ID)

	// El origen pierde lo enviado; el destino gana solo lo recibido.
	assert.True(t, f.snapshot(t, wh1, "p1").OnHand.IsZero())
	assert.True(t, f.snapshot(t, wh2, "p1").OnHand.Equal(dec("95")))
	assert.True(t, f.snapshot(t, wh2, "p2").OnHand.IsZero())
	assert.Empty(t, f.history(t, wh2, "p2"))
}

func TestTransfer_DiscrepanciaInvalidaNoRecibe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, wh1, "p1", "10", "1")
	tr, err := f.engine.CreateTransfer(ctx, transferInput(line("p1", "10", "1")))
	require.NoError(t, err)
	f.transition(t, entity.KindTransfer, tr.ID, entity.TransitionApprove, entity.TransitionShip)

	for _, bad := range [][]workflow.DiscrepancyInput{
		{{ProductID: "p1", Received: dec("11")}},
		{{ProductID: "p1", Received: dec("-1")}},
		{{ProductID: "p1", Received: dec("9.99999")}},
		{{ProductID: "p9", Received: dec("1")}},
		{{ProductID: "p1", Received: dec("5")}, {ProductID: "p1", Received: dec("4")}},
	} {
		_, err := f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionReceive, workflow.TransitionFields{Discrepancies: bad})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	got, err := f.engine.GetDocument(ctx, entity.KindTransfer, company, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferInTransit), got.StatusCode())
	assert.True(t, f.snapshot(t, wh2, "p1").OnHand.IsZero())
}

func TestTransfer_EnvioSinExistenciasEsAtomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, wh1, "p1", "10", "1")

	tr, err := f.engine.CreateTransfer(ctx, transferInput(line("p1", "5", "1"), line("p2", "1", "1")))
	require.NoError(t, err)
	f.transition(t, entity.KindTransfer, tr.ID, entity.TransitionApprove)

	_, err = f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionShip, workflow.TransitionFields{})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.snapshot(t, wh1, "p1").OnHand.Equal(dec("10")))
	assert.Len(t, f.history(t, wh1, "p1"), 1)

	got, err := f.engine.GetDocument(ctx, entity.KindTransfer, company, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferApproved), got.StatusCode())
}

func TestTransfer_CancelarAntesDeEnviar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr, err := f.engine.CreateTransfer(ctx, transferInput(line("p1", "5", "1")))
	require.NoError(t, err)

	got, err := f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionCancel, workflow.TransitionFields{Reason: "sin transporte"})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCancelled, got.Status)
	assert.Equal(t, "sin transporte", got.CancelReason)
	assert.Empty(t, f.history(t, wh1, "p1"))
}
