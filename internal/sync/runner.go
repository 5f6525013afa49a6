package sync

import (
	"context"
	gosync "sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/modulesync/internal/metrics"
	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/source"
	"github.com/nhle/modulesync/internal/store"
)

// backfillLimit bounds concurrent item fetches within one page.
const backfillLimit = 8

// Runner executes effects against the gateway and the collapse store and
// reports their outcomes as events.
type Runner struct {
	gateway source.Gateway
	store   store.CollapseStore
	log     *zap.SugaredLogger
}

// NewRunner creates a Runner.
func NewRunner(gw source.Gateway, cs store.CollapseStore, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{gateway: gw, store: cs, log: log}
}

// Run executes one effect. Follow-up events are passed to emit, which
// must be safe for concurrent use. Presentation effects need no I/O and
// are ignored here.
func (r *Runner) Run(ctx context.Context, eff modulelist.Effect, emit func(modulelist.Event)) {
	metrics.EffectRun(modulelist.EffectName(eff))

	switch e := eff.(type) {
	case modulelist.LoadNextPage:
		r.loadNextPage(ctx, e, emit)
	case modulelist.MarkModuleExpanded:
		r.markExpanded(ctx, e.Course, e.ModuleID, e.Expanded)
	case modulelist.UpdateModuleItems:
		r.updateModuleItems(ctx, e, emit)
	case modulelist.BulkUpdateModules:
		r.bulkUpdateModules(ctx, e, emit)
	case modulelist.UpdateModuleItemPublished:
		r.updateModuleItem(ctx, e, emit)
	case modulelist.ScrollToItem, modulelist.ShowModuleItemDetail, modulelist.ShowMessage:
		r.log.Debugw("presentation effect reached runner", "effect", modulelist.EffectName(eff))
	default:
		panic("sync: unhandled effect type")
	}
}

// loadNextPage fetches one page, or with a scroll target keeps fetching
// until the target's module shows up or pages run out. Each page is
// backfilled before it is reported.
func (r *Runner) loadNextPage(ctx context.Context, e modulelist.LoadNextPage, emit func(modulelist.Event)) {
	var accumulated []model.Module
	cursor := e.Cursor

	for {
		page, err := r.fetchPage(ctx, e.Course, cursor, e.ForceNetwork)
		if err == nil {
			page.Modules, err = r.backfill(ctx, e.Course, page.Modules, e.ForceNetwork)
		}
		if ctx.Err() != nil {
			r.log.Debugw("page load cancelled", "generation", e.Generation)
			return
		}
		if err != nil {
			r.log.Warnw("page load failed", "course", e.Course.ID, "error", err)
			emit(modulelist.PageLoaded{Generation: e.Generation, Err: modulelist.NewLoadError(err)})
			return
		}

		accumulated = append(accumulated, page.Modules...)
		cursor = page.Next

		if e.ScrollTarget == 0 {
			break
		}
		if moduleID, found := findItemModule(page.Modules, e.ScrollTarget); found {
			r.markExpanded(ctx, e.Course, moduleID, true)
			break
		}
		if !cursor.HasMore() {
			r.log.Debugw("scroll target not found", "item_id", e.ScrollTarget)
			break
		}
	}

	emit(modulelist.PageLoaded{
		Generation: e.Generation,
		Modules:    accumulated,
		Cursor:     cursor,
	})
}

func (r *Runner) fetchPage(
	ctx context.Context,
	course model.Course,
	cursor model.PageCursor,
	forceNetwork bool,
) (source.Page, error) {
	if cursor.IsFirstPage() {
		return r.gateway.FirstPage(ctx, course, forceNetwork)
	}
	return r.gateway.NextPage(ctx, cursor, forceNetwork)
}

// backfill replaces the items of every module whose declared count differs
// from the items returned, fetching all of its items.
func (r *Runner) backfill(
	ctx context.Context,
	course model.Course,
	modules []model.Module,
	forceNetwork bool,
) ([]model.Module, error) {
	out := model.CloneModules(modules)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillLimit)

	for i := range out {
		if !out[i].NeedsBackfill() {
			continue
		}
		i := i
		g.Go(func() error {
			items, err := r.gateway.AllItemsOfModule(gctx, course, out[i].ID, forceNetwork)
			if err != nil {
				return err
			}
			r.log.Debugw("backfilled module",
				"module_id", out[i].ID, "declared", out[i].ItemCount, "fetched", len(items))
			out[i].Items = items
			out[i].ItemCount = len(items)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func findItemModule(modules []model.Module, itemID int64) (int64, bool) {
	for _, m := range modules {
		if _, ok := m.FindItem(itemID); ok {
			return m.ID, true
		}
	}
	return 0, false
}

func (r *Runner) markExpanded(ctx context.Context, course model.Course, moduleID int64, expanded bool) {
	if err := r.store.MarkCollapsed(ctx, course, moduleID, !expanded); err != nil {
		r.log.Warnw("persisting collapse state failed", "module_id", moduleID, "error", err)
	}
}

// updateModuleItems refetches each item from the network, bracketing the
// work with load-status events. Items that no longer exist are dropped.
func (r *Runner) updateModuleItems(ctx context.Context, e modulelist.UpdateModuleItems, emit func(modulelist.Event)) {
	ids := make([]int64, len(e.Items))
	for i, item := range e.Items {
		ids[i] = item.ID
	}

	emit(modulelist.ItemLoadStatusChanged{ItemIDs: ids, Loading: true})

	fetched := make([]*model.ModuleItem, len(e.Items))
	var g errgroup.Group
	for i, item := range e.Items {
		i, item := i, item
		g.Go(func() error {
			fresh, err := r.gateway.SingleItem(ctx, e.Course, item.ModuleID, item.ID, true)
			switch {
			case source.IsNotFound(err):
				r.log.Debugw("refetched item is gone", "item_id", item.ID)
			case err != nil:
				r.log.Warnw("refetching item failed", "item_id", item.ID, "error", err)
			default:
				fetched[i] = &fresh
			}
			return nil
		})
	}
	_ = g.Wait()

	var items []model.ModuleItem
	for _, item := range fetched {
		if item != nil {
			items = append(items, *item)
		}
	}

	emit(modulelist.ReplaceModuleItems{Items: items})
	emit(modulelist.ItemLoadStatusChanged{ItemIDs: ids, Loading: false})
}

// bulkUpdateModules sends one mutation per module concurrently and
// reports each outcome on its own. A failure does not stop its siblings.
func (r *Runner) bulkUpdateModules(ctx context.Context, e modulelist.BulkUpdateModules, emit func(modulelist.Event)) {
	var wg gosync.WaitGroup
	for _, id := range e.ModuleIDs {
		wg.Add(1)
		go func(moduleID int64) {
			defer wg.Done()

			mod, err := r.gateway.SetModulePublished(
				ctx, e.Course, moduleID, e.Action.Published(), e.SkipContentTags,
			)
			if ctx.Err() != nil {
				r.log.Debugw("bulk update cancelled", "module_id", moduleID)
				return
			}
			if err != nil {
				r.log.Warnw("bulk update failed", "module_id", moduleID, "action", e.Action, "error", err)
				emit(modulelist.ModuleBulkUpdateResult{ModuleID: moduleID, Err: modulelist.NewLoadError(err)})
				return
			}
			emit(modulelist.ModuleBulkUpdateResult{ModuleID: moduleID, Module: &mod})
		}(id)
	}
	wg.Wait()
}

func (r *Runner) updateModuleItem(
	ctx context.Context,
	e modulelist.UpdateModuleItemPublished,
	emit func(modulelist.Event),
) {
	item, err := r.gateway.SetItemPublished(ctx, e.Course, e.ModuleID, e.ItemID, e.Published)
	if err != nil {
		r.log.Warnw("item update failed", "item_id", e.ItemID, "error", err)
		emit(modulelist.ModuleItemUpdateFailed{ItemID: e.ItemID, Err: modulelist.NewLoadError(err)})
		return
	}
	emit(modulelist.ModuleItemUpdateSuccess{Item: item})
}
