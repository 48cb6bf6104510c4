package workflow_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/workflow"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// tickingClock avanza un segundo en cada lectura.
func tickingClock(start time.Time) inventory.Clock {
	var n atomic.Int64
	return func() time.Time { return start.Add(time.Duration(n.Add(1)) * time.Second) }
}

// whileLocked ejecuta action mientras otra transacción retiene la fila de key; esa transacción
// registra una entrada de 10 con la hora leída después de que action ya arrancó.
func (f *fixture) whileLocked(t *testing.T, clock inventory.Clock, key entity.StockKey, action func() error) {
	t.Helper()
	runner := memory.NewTxRunner(f.store)
	locked := make(chan struct{})
	started := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		return runner.Run(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			rows, err := repos.Stock.GetForUpdate(ctx, key)
			if err != nil {
				return err
			}
			close(locked)
			<-started
			time.Sleep(50 * time.Millisecond)
			now := clock()
			_, err = inventory.Post(ctx, repos, rows[key], inventory.PostInput{
				Key: key, Type: entity.MovementAdjustmentIncrease, Quantity: dec("10"),
				MovementDate: now, OriginKind: entity.OriginAdjustment, ActorID: "otro",
			}, now)
			return err
		})
	})
	<-locked
	g.Go(func() error {
		close(started)
		return action()
	})
	require.NoError(t, g.Wait())
}

// assertChained verifica que el kardex encadena saldos en orden (fecha, id) y coincide con las existencias.
func (f *fixture) assertChained(t *testing.T, key entity.StockKey) {
	t.Helper()
	report, err := inventory.NewReconcileUseCase(f.reads.Movements, f.reads.Stock).Check(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches)
	assert.True(t, report.Consistent(), "cabeza %s, recalculado %s, existencias %s",
		report.StoredHead, report.RecomputedBalance, report.SnapshotOnHand)

	head, err := inventory.NewQueryUseCase(f.reads.Movements, f.reads.Stock).LatestBalance(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, head.Equal(f.snapshot(t, key.WarehouseID, key.ProductID).OnHand))
}

func TestContencion_AjusteEsperaLaFilaYQuedaDespuesDeLaCabeza(t *testing.T) {
	clock := tickingClock(fixedNow)
	f := newFixtureWithClock(t, clock)
	key := entity.StockKey{CompanyID: company, WarehouseID: wh1, ProductID: "p1"}

	f.whileLocked(t, clock, key, func() error {
		_, err := f.register.RegisterMovement(context.Background(), inventory.MovementInputDTO{
			CompanyID: company, UserID: actor, WarehouseID: wh1, ProductID: "p1",
			Type: entity.MovementAdjustmentIncrease, Quantity: dec("5"), ReasonCode: "conteo",
		})
		return err
	})

	recs := f.history(t, wh1, "p1")
	require.Len(t, recs, 2)
	assert.True(t, recs[1].Balance.Equal(dec("15")))
	f.assertChained(t, key)
}

func TestContencion_RecepcionDeDonacionEsperaLaFila(t *testing.T) {
	clock := tickingClock(fixedNow)
	f := newFixtureWithClock(t, clock)
	key := entity.StockKey{CompanyID: company, WarehouseID: wh1, ProductID: "p1"}
	ctx := context.Background()

	d, err := f.engine.CreateDonation(ctx, workflow.DocumentInput{
		CompanyID: company, ActorID: actor, WarehouseID: wh1, Lines: []workflow.LineInput{line("p1", "5", "2")},
	})
	require.NoError(t, err)
	f.transition(t, entity.KindDonation, d.ID, entity.TransitionSubmit, entity.TransitionApprove)

	f.whileLocked(t, clock, key, func() error {
		_, err := f.engine.TransitionDonation(ctx, company, d.ID, actor, entity.TransitionReceive, workflow.TransitionFields{})
		return err
	})

	f.assertChained(t, key)
	assert.True(t, f.snapshot(t, wh1, "p1").OnHand.Equal(dec("15")))
}

func TestContencion_EnvioYRecepcionDeTrasladoEsperanLaFila(t *testing.T) {
	clock := tickingClock(fixedNow)
	f := newFixtureWithClock(t, clock)
	src := entity.StockKey{CompanyID: company, WarehouseID: wh1, ProductID: "p1"}
	dst := entity.StockKey{CompanyID: company, WarehouseID: wh2, ProductID: "p1"}
	ctx := context.Background()
	f.seed(t, wh1, "p1", "20", "3")

	tr, err := f.engine.CreateTransfer(ctx, transferInput(line("p1", "4", "0")))
	require.NoError(t, err)
	f.transition(t, entity.KindTransfer, tr.ID, entity.TransitionApprove)

	f.whileLocked(t, clock, src, func() error {
		_, err := f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionShip, workflow.TransitionFields{})
		return err
	})
	f.assertChained(t, src)
	assert.True(t, f.snapshot(t, wh1, "p1").OnHand.Equal(dec("26")))

	f.whileLocked(t, clock, dst, func() error {
		_, err := f.engine.TransitionTransfer(ctx, company, tr.ID, actor, entity.TransitionReceive, workflow.TransitionFields{})
		return err
	})
	f.assertChained(t, dst)
	assert.True(t, f.snapshot(t, wh2, "p1").OnHand.Equal(dec("14")))
}

func TestContencion_DespachoEsperaLaFila(t *testing.T) {
	clock := tickingClock(fixedNow)
	f := newFixtureWithClock(t, clock)
	key := entity.StockKey{CompanyID: company, WarehouseID: wh1, ProductID: "p1"}
	ctx := context.Background()
	f.seed(t, wh1, "p1", "5", "1")

	d, err := f.engine.CreateDispatch(ctx, dispatchInput(line("p1", "3", "10")))
	require.NoError(t, err)
	f.transition(t, entity.KindDispatch, d.ID, entity.TransitionSubmit, entity.TransitionApprove)

	f.whileLocked(t, clock, key, func() error {
		_, err := f.engine.TransitionDispatch(ctx, company, d.ID, actor, entity.TransitionDispatch, workflow.TransitionFields{})
		return err
	})
	f.assertChained(t, key)
	assert.True(t, f.snapshot(t, wh1, "p1").OnHand.Equal(dec("12")))
}
