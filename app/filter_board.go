package app

import (
	"context"
	"fmt"
	"sync"

	"goldendash/domain/catalog"
	"goldendash/domain/columns"
	"goldendash/domain/evaluator"
	"goldendash/domain/filterstate"
	"goldendash/domain/percentile"
	"goldendash/domain/table"

	"github.com/rs/zerolog"
)

// SliderView is one dual-handle slider of the filter bar
type SliderView struct {
	Key       string
	Name      string
	Min       int
	Max       int
	Mode      filterstate.Mode
	ModeLabel string
	ModeClass string
	Label     string
	FillLeft  int
	FillWidth int
}

// FilterBarView is the strip of active sliders above the table
type FilterBarView struct {
	Visible     bool
	Collapsed   bool
	ToggleLabel string
	Sliders     []SliderView
}

// ModalColumn is one entry of a configuration list
type ModalColumn struct {
	Key        string
	Name       string
	CanFeature bool
}

// ModalList is one of the three configuration lists
type ModalList struct {
	Tier    string
	Columns []ModalColumn
	Count   int
}

// ModalView is the column configuration dialog
type ModalView struct {
	Open     bool
	Hidden   ModalList
	Shown    ModalList
	Featured ModalList
}

// BoardView is everything the examples page paints
type BoardView struct {
	Headers     [][]table.Header
	Rows        []table.Row
	ResultCount string
	Search      string
	FilterBar   FilterBarView
	Modal       ModalView
}

// FilterBoard is the filter controller of one browser session. Each gesture applies one reducer to
// the filter state, persists it and re-evaluates the table.
type FilterBoard struct {
	mu sync.Mutex

	registry    *columns.Registry
	store       *filterstate.Store
	records     []catalog.Record
	percentiles percentile.Table

	state     filterstate.State
	table     *table.Table
	result    evaluator.Result
	modalOpen bool
	collapsed bool

	log zerolog.Logger
}

// NewFilterBoard decodes the injected payloads, restores the persisted state and builds the table.
// Malformed payloads are logged and replaced by empty ones.
func NewFilterBoard(ctx context.Context, datasetJSON, percentileJSON []byte, registry *columns.Registry, store *filterstate.Store, log zerolog.Logger) *FilterBoard {
	b := &FilterBoard{
		registry: registry,
		store:    store,
		log:      log.With().Str("component", "FilterBoard").Str("session", store.Session().String()).Logger(),
	}

	records, err := catalog.DecodeDataset(datasetJSON)
	if err != nil {
		b.log.Error().Err(err).Msg("dataset payload unusable, rendering empty table")
		records = []catalog.Record{}
	}
	b.records = records

	marks, err := percentile.DecodeTable(percentileJSON)
	if err != nil {
		b.log.Error().Err(err).Msg("percentile payload unusable, sliders will show percentiles only")
		marks = percentile.Table{}
	}
	b.percentiles = marks

	b.state = store.Load(ctx)
	b.rebuild()
	return b
}

// State returns the current filter state
func (b *FilterBoard) State() filterstate.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Clone()
}

// UpdateSlider moves one handle of a featured column's range
func (b *FilterBoard) UpdateSlider(ctx context.Context, key string, handle filterstate.Handle, value int) {
	b.mutate(ctx, func(s filterstate.State) filterstate.State { return s.SetRange(key, handle, value) })
}

// ToggleMode flips a featured column between filter and elimination
func (b *FilterBoard) ToggleMode(ctx context.Context, key string) {
	b.mutate(ctx, func(s filterstate.State) filterstate.State { return s.ToggleMode(key) })
}

// MoveToShown shows a hidden column or unfeatures a featured one
func (b *FilterBoard) MoveToShown(ctx context.Context, key string) {
	b.moveTo(ctx, key, filterstate.Shown)
}

// MoveToHidden hides a shown or featured column
func (b *FilterBoard) MoveToHidden(ctx context.Context, key string) {
	b.moveTo(ctx, key, filterstate.Hidden)
}

// MoveToFeatured starts filtering on a shown column
func (b *FilterBoard) MoveToFeatured(ctx context.Context, key string) {
	b.mutate(ctx, func(s filterstate.State) filterstate.State {
		return s.Move(b.registry, key, filterstate.Shown, filterstate.Featured)
	})
}

// RemoveFilter returns a featured column to the shown set
func (b *FilterBoard) RemoveFilter(ctx context.Context, key string) {
	b.mutate(ctx, func(s filterstate.State) filterstate.State {
		return s.Move(b.registry, key, filterstate.Featured, filterstate.Shown)
	})
}

// ClearAllFilters returns every featured column to the shown set
func (b *FilterBoard) ClearAllFilters(ctx context.Context) {
	b.mutate(ctx, filterstate.State.ClearFeatured)
}

// Search sets the free-text search term
func (b *FilterBoard) Search(ctx context.Context, term string) {
	b.mutate(ctx, func(s filterstate.State) filterstate.State { return s.SetSearch(term) })
}

// SortBy toggles the sort on a rendered column. Sorting is not persisted.
func (b *FilterBoard) SortBy(column int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table.SortBy(column)
}

func (b *FilterBoard) OpenModal() {
	b.mu.Lock()
	b.modalOpen = true
	b.mu.Unlock()
}

func (b *FilterBoard) CloseModal() {
	b.mu.Lock()
	b.modalOpen = false
	b.mu.Unlock()
}

// ToggleFilterBar collapses or expands the slider strip
func (b *FilterBoard) ToggleFilterBar() {
	b.mu.Lock()
	b.collapsed = !b.collapsed
	b.mu.Unlock()
}

// SaveConfiguration persists the state, rebuilds the table for the new column set and closes the modal
func (b *FilterBoard) SaveConfiguration(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.persist(ctx)
	b.rebuild()
	b.modalOpen = false
}

// ResetConfiguration wipes the persisted state and rebuilds everything from defaults. Nothing happens
// unless the user confirmed; the return value reports whether the reset ran.
func (b *FilterBoard) ResetConfiguration(ctx context.Context, confirmed bool) bool {
	if !confirmed {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.Reset(ctx); err != nil {
		b.log.Warn().Err(err).Msg("reset continues with in-memory defaults")
	}
	b.state = filterstate.Default(b.registry)
	b.modalOpen = false
	b.collapsed = false
	b.rebuild()
	b.log.Info().Msg("filter configuration reset")
	return true
}

// View renders the board for the templates
func (b *FilterBoard) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := make([]table.Row, len(b.table.Rows()))
	copy(rows, b.table.Rows())

	return BoardView{
		Headers:     b.table.Headers(),
		Rows:        rows,
		ResultCount: b.result.Summary(),
		Search:      b.state.Search,
		FilterBar:   b.filterBar(),
		Modal:       b.modal(),
	}
}

// Export hands the table, sorted and filtered as displayed, to write
func (b *FilterBoard) Export(write func(*table.Table) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return write(b.table)
}

// Summary is the result count line
func (b *FilterBoard) Summary() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result.Summary()
}

func (b *FilterBoard) moveTo(ctx context.Context, key string, to filterstate.Tier) {
	b.mutate(ctx, func(s filterstate.State) filterstate.State {
		from, ok := s.TierOf(key)
		if !ok {
			return s
		}
		return s.Move(b.registry, key, from, to)
	})
}

func (b *FilterBoard) mutate(ctx context.Context, reduce func(filterstate.State) filterstate.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = reduce(b.state)
	b.persist(ctx)
	b.evaluate()
}

// persist is best-effort; the store already logged any failure
func (b *FilterBoard) persist(ctx context.Context) {
	_ = b.store.Save(ctx, b.state)
}

func (b *FilterBoard) rebuild() {
	b.table = table.Build(b.records, filterstate.VisibleColumns(b.registry, b.state))
	b.evaluate()
}

func (b *FilterBoard) evaluate() {
	b.result = evaluator.Evaluate(b.records, b.state, b.table.Columns())
	b.table.Apply(b.result)
}

func (b *FilterBoard) filterBar() FilterBarView {
	bar := FilterBarView{
		Visible:     len(b.state.Featured) > 0,
		Collapsed:   b.collapsed,
		ToggleLabel: "Hide",
	}
	if b.collapsed {
		bar.ToggleLabel = "Show"
	}

	for _, f := range b.state.Featured {
		name := f.Key
		if d, ok := b.registry.Lookup(f.Key); ok {
			name = d.Name
		}
		slider := SliderView{
			Key:       f.Key,
			Name:      name,
			Min:       f.Range.Min,
			Max:       f.Range.Max,
			Mode:      f.Range.Mode,
			ModeLabel: f.Range.Mode.Label(),
			ModeClass: "bg-blue-100 text-blue-700",
			FillLeft:  f.Range.Min,
			FillWidth: f.Range.Max - f.Range.Min,
		}
		if f.Range.Mode == filterstate.ModeElimination {
			slider.ModeClass = "bg-red-100 text-red-700"
		}
		slider.Label = fmt.Sprintf("%dth-%dth percentile", f.Range.Min, f.Range.Max)
		if values, ok := b.percentiles.ValueRange(f.Key, f.Range.Min, f.Range.Max); ok {
			slider.Label += " (" + values + ")"
		}
		bar.Sliders = append(bar.Sliders, slider)
	}
	return bar
}

func (b *FilterBoard) modal() ModalView {
	view := ModalView{
		Open:     b.modalOpen,
		Hidden:   ModalList{Tier: filterstate.Hidden.String()},
		Shown:    ModalList{Tier: filterstate.Shown.String()},
		Featured: ModalList{Tier: filterstate.Featured.String()},
	}

	for _, d := range b.registry.All() {
		tier, ok := b.state.TierOf(d.Key)
		if !ok {
			continue
		}
		col := ModalColumn{Key: d.Key, Name: d.Name, CanFeature: d.Filterable}
		switch tier {
		case filterstate.Hidden:
			view.Hidden.Columns = append(view.Hidden.Columns, col)
		case filterstate.Shown:
			view.Shown.Columns = append(view.Shown.Columns, col)
		case filterstate.Featured:
			view.Featured.Columns = append(view.Featured.Columns, col)
		}
	}
	view.Hidden.Count = len(view.Hidden.Columns)
	view.Shown.Count = len(view.Shown.Columns)
	view.Featured.Count = len(view.Featured.Columns)
	return view
}
