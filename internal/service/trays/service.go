// Package trays ties the engine to the store: it loads a tray, prices and
// groups it, and turns split/merge requests into committed moves.
package trays

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/metrics"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/allocation"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/grouping"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/planner"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/pricing"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"golang.org/x/sync/errgroup"
)

const (
	kindSplit = "split"
	kindMerge = "merge"
)

type TrayStorage interface {
	GetTray(ctx context.Context, trayID int64) (*storage.Tray, error)
	GetTrayItems(ctx context.Context, trayID int64) ([]storage.LineItem, error)
	UpdateTrayTerms(ctx context.Context, trayID int64, terms storage.TrayTerms) error
	ApplyMoves(ctx context.Context, trayID int64, moves []storage.MoveOperation) (string, error)
}

type Service struct {
	storage TrayStorage
	rates   pricing.Rates
	metrics *metrics.EngineMetrics
}

func New(storage TrayStorage, rates pricing.Rates, m *metrics.EngineMetrics) *Service {
	return &Service{storage: storage, rates: rates, metrics: m}
}

type Quote struct {
	Tray   storage.Tray         `json:"tray"`
	Rows   []storage.DisplayRow `json:"rows"`
	Totals pricing.Result       `json:"totals"`
}

// Applied is the outcome of a committed split or merge.
type Applied struct {
	BatchID string                  `json:"batch_id"`
	Moves   []storage.MoveOperation `json:"moves"`
}

func (s *Service) load(ctx context.Context, trayID int64) (*storage.Tray, []storage.LineItem, error) {
	var (
		tray  *storage.Tray
		items []storage.LineItem
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tray, err = s.storage.GetTray(gCtx, trayID)
		if err != nil {
			return fmt.Errorf("tray: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.storage.GetTrayItems(gCtx, trayID)
		if err != nil {
			return fmt.Errorf("items: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tray, items, nil
}

// Preview prices items that are not stored yet.
func (s *Service) Preview(items []storage.LineItem, terms storage.TrayTerms) pricing.Result {
	s.metrics.IncQuote("preview")
	return pricing.Calculate(items, terms, s.rates).Rounded()
}

func (s *Service) Quote(ctx context.Context, trayID int64) (Quote, error) {
	const op = "service.trays.Quote"

	tray, items, err := s.load(ctx, trayID)
	if err != nil {
		return Quote{}, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncQuote("tray")
	return Quote{
		Tray:   *tray,
		Rows:   grouping.Group(items),
		Totals: pricing.Calculate(items, tray.Terms(), s.rates).Rounded(),
	}, nil
}

func (s *Service) Rows(ctx context.Context, trayID int64) ([]storage.DisplayRow, error) {
	const op = "service.trays.Rows"

	_, items, err := s.load(ctx, trayID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return grouping.Group(items), nil
}

// UpdateTerms stores new tray terms and returns the repriced quote.
func (s *Service) UpdateTerms(ctx context.Context, trayID int64, terms storage.TrayTerms) (Quote, error) {
	const op = "service.trays.UpdateTerms"

	terms.GlobalDiscountPct = pricing.ClampPct(terms.GlobalDiscountPct)
	terms.Subscription = storage.ParseSubscription(string(terms.Subscription))

	if err := s.storage.UpdateTrayTerms(ctx, trayID, terms); err != nil {
		return Quote{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.Quote(ctx, trayID)
}

func (s *Service) PlanSplit(ctx context.Context, trayID int64, req planner.SplitRequest) (planner.SplitPlan, error) {
	const op = "service.trays.PlanSplit"
	defer s.observe(kindSplit, time.Now())

	_, items, err := s.load(ctx, trayID)
	if err != nil {
		return planner.SplitPlan{}, fmt.Errorf("%s: %w", op, err)
	}

	plan, err := planner.PlanSplit(items, req)
	if err != nil {
		s.metrics.IncPlanFailure(kindSplit, reason(err))
		return planner.SplitPlan{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncPlan(kindSplit)
	return plan, nil
}

func (s *Service) ApplySplit(ctx context.Context, trayID int64, req planner.SplitRequest) (Applied, error) {
	const op = "service.trays.ApplySplit"

	plan, err := s.PlanSplit(ctx, trayID, req)
	if err != nil {
		return Applied{}, err
	}
	return s.apply(ctx, op, kindSplit, trayID, plan.Moves)
}

func (s *Service) PlanMerge(ctx context.Context, trayID int64, req planner.MergeRequest) (planner.MergePlan, error) {
	const op = "service.trays.PlanMerge"
	defer s.observe(kindMerge, time.Now())

	_, items, err := s.load(ctx, trayID)
	if err != nil {
		return planner.MergePlan{}, fmt.Errorf("%s: %w", op, err)
	}

	plan, err := planner.PlanMerge(items, req)
	if err != nil {
		s.metrics.IncPlanFailure(kindMerge, reason(err))
		return planner.MergePlan{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncPlan(kindMerge)
	return plan, nil
}

func (s *Service) ApplyMerge(ctx context.Context, trayID int64, req planner.MergeRequest) (Applied, error) {
	const op = "service.trays.ApplyMerge"

	plan, err := s.PlanMerge(ctx, trayID, req)
	if err != nil {
		return Applied{}, err
	}
	return s.apply(ctx, op, kindMerge, trayID, plan.Moves)
}

// apply commits moves in one batch. An empty plan is not sent to the store.
func (s *Service) apply(ctx context.Context, op, kind string, trayID int64, moves []storage.MoveOperation) (Applied, error) {
	if len(moves) == 0 {
		return Applied{Moves: moves}, nil
	}

	batchID, err := s.storage.ApplyMoves(ctx, trayID, moves)
	if err != nil {
		return Applied{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.AddMovesApplied(kind, len(moves))
	return Applied{BatchID: batchID, Moves: moves}, nil
}

func (s *Service) observe(kind string, start time.Time) {
	s.metrics.ObservePlanDuration(kind, time.Since(start))
}

func reason(err error) string {
	switch {
	case errors.Is(err, planner.ErrInvalidRequest), errors.Is(err, allocation.ErrInvalidInput):
		return "invalid_request"
	case errors.Is(err, allocation.ErrInputImbalance):
		return "imbalance"
	case errors.Is(err, planner.ErrDegenerateMove):
		return "degenerate_move"
	case errors.Is(err, planner.ErrRoundingDrift):
		return "rounding_drift"
	default:
		return "other"
	}
}
