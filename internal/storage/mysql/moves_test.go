package mysql

import (
	"context"
	"errors"
	"testing"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_ApplyMoves(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	trayID := createTestTray(t, "T-200")
	techID := createTestTechnician(t, "apply-moves-tech-"+uuid.NewString()[:8], true)

	whole, err := s.InsertLineItem(ctx, storage.LineItem{TrayID: trayID, Identity: storage.InstrumentOnly(3), Quantity: 2})
	require.NoError(t, err)
	partial, err := s.InsertLineItem(ctx, storage.LineItem{TrayID: trayID, Identity: storage.Service(3, 9), Quantity: 5, NonRepairableQty: 4})
	require.NoError(t, err)

	moves := []storage.MoveOperation{
		{RowID: whole, SourceTrayID: trayID, DestinationKey: storage.TechnicianKey(techID), Quantity: 2},
		{RowID: partial, SourceTrayID: trayID, DestinationKey: storage.TrayKey(1), Quantity: 2},
		{RowID: partial, SourceTrayID: trayID, DestinationKey: storage.TrayKey(1), Quantity: 1},
	}

	batchID, err := s.ApplyMoves(ctx, trayID, moves)
	require.NoError(t, err)
	_, err = uuid.Parse(batchID)
	require.NoError(t, err)

	items, err := s.GetTrayItems(ctx, trayID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, techID, items[0].TechnicianID)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 2, items[1].NonRepairableQty)

	journal, err := s.MoveBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, journal, 3)
	assert.Equal(t, whole, journal[0].ResultRowID)
	// both tray:1 moves land on the same child tray
	assert.Equal(t, journal[1].DestinationTrayID, journal[2].DestinationTrayID)
	assert.NotEqual(t, trayID, journal[1].DestinationTrayID)

	child, err := s.GetTray(ctx, journal[1].DestinationTrayID)
	require.NoError(t, err)
	assert.Equal(t, "T-200/1", child.Number)
	assert.Equal(t, trayID, child.ParentTrayID)

	childItems, err := s.GetTrayItems(ctx, child.ID)
	require.NoError(t, err)
	total, nr := 0, 0
	for _, it := range childItems {
		total += it.Quantity
		nr += it.NonRepairableQty
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, nr)
}

func TestStorage_ApplyMovesIsAllOrNothing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	trayID := createTestTray(t, "T-201")

	row, err := s.InsertLineItem(ctx, storage.LineItem{TrayID: trayID, Identity: storage.InstrumentOnly(3), Quantity: 2})
	require.NoError(t, err)

	_, err = s.ApplyMoves(ctx, trayID, []storage.MoveOperation{
		{RowID: row, SourceTrayID: trayID, DestinationKey: storage.PoolKey, Quantity: 1},
		{RowID: row, SourceTrayID: trayID, DestinationKey: storage.TrayKey(1), Quantity: 5},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrStalePlan))

	items, err := s.GetTrayItems(ctx, trayID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStorage_ApplyMovesUnknownTechnician(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	trayID := createTestTray(t, "T-202")

	row, err := s.InsertLineItem(ctx, storage.LineItem{TrayID: trayID, Identity: storage.InstrumentOnly(3), Quantity: 1})
	require.NoError(t, err)

	_, err = s.ApplyMoves(ctx, trayID, []storage.MoveOperation{
		{RowID: row, SourceTrayID: trayID, DestinationKey: storage.TechnicianKey(999999999), Quantity: 1},
	})
	assert.True(t, errors.Is(err, storage.ErrTechnicianNotFound))
}
