package wizard

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"ai-tryon-studio/internal/catalog"
	"ai-tryon-studio/internal/history"
	"ai-tryon-studio/internal/identity"
	"ai-tryon-studio/internal/imaging"
)

const defaultAdvanceDelay = 300 * time.Millisecond

// Resolver turns a remote image URL into a data URL.
type Resolver interface {
	FetchDataURL(ctx context.Context, url string) (string, error)
}

// Generator is the generation gateway boundary.
type Generator interface {
	GenerateClothingImage(ctx context.Context, prompt string) (string, error)
	GenerateTryOn(ctx context.Context, personImage, clothImage string) (string, error)
}

type Options struct {
	Resolver  Resolver
	Generator Generator

	// People and Clothes seed the catalogs; presets are used when empty.
	People  catalog.Catalog
	Clothes catalog.Catalog

	// History receives completed try-ons; a fresh store is created when nil.
	History *history.Store

	// AdvanceDelay is how long after a successful person selection the wizard
	// waits before advancing on its own.
	AdvanceDelay time.Duration

	// OnChange, when set, is called after every state change with the state
	// before and after. It must not call back into the machine synchronously.
	OnChange func(old, new State)

	Logger *slog.Logger
}

// Machine drives one wizard session. All transitions run under a single lock
// and to completion; gateway and codec calls happen on their own goroutines
// and feed their outcome back in as events.
type Machine struct {
	mu      sync.Mutex
	state   State
	people  catalog.Catalog
	clothes catalog.Catalog

	hist      *history.Store
	resolver  Resolver
	generator Generator

	advanceDelay time.Duration
	advanceTimer *time.Timer

	onChange func(old, new State)
	logger   *slog.Logger
}

func New(opts Options) *Machine {
	people := opts.People
	if people.Len() == 0 {
		people = catalog.PresetPeople()
	}
	clothes := opts.Clothes
	if clothes.Len() == 0 {
		clothes = catalog.PresetClothes()
	}

	hist := opts.History
	if hist == nil {
		hist = history.NewStore()
	}

	advanceDelay := opts.AdvanceDelay
	if advanceDelay <= 0 {
		advanceDelay = defaultAdvanceDelay
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Machine{
		state:        initialState(),
		people:       people,
		clothes:      clothes,
		hist:         hist,
		resolver:     opts.Resolver,
		generator:    opts.Generator,
		advanceDelay: advanceDelay,
		onChange:     opts.OnChange,
		logger:       logger,
	}
}

// SelectPerson resolves the asset and, on success, schedules the advance to
// the garment step. It reports whether the id exists in the catalog.
func (m *Machine) SelectPerson(ctx context.Context, id string) bool {
	return m.selectByID(ctx, RolePerson, id)
}

// SelectCloth resolves the asset without advancing; the user proceeds
// explicitly.
func (m *Machine) SelectCloth(ctx context.Context, id string) bool {
	return m.selectByID(ctx, RoleCloth, id)
}

func (m *Machine) selectByID(ctx context.Context, role Role, id string) bool {
	m.mu.Lock()
	c := m.people
	if role == RoleCloth {
		c = m.clothes
	}
	a, ok := c.FindByID(id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.dispatch(ctx, selectAsset{role: role, asset: a})
	return true
}

// UploadPerson encodes the file, prepends it to the people catalog and
// selects it. On encode failure nothing changes except the error message.
func (m *Machine) UploadPerson(ctx context.Context, data []byte, declaredMime string) error {
	return m.upload(ctx, RolePerson, "upload_p", data, declaredMime)
}

func (m *Machine) UploadCloth(ctx context.Context, data []byte, declaredMime string) error {
	return m.upload(ctx, RoleCloth, "upload_c", data, declaredMime)
}

func (m *Machine) upload(ctx context.Context, role Role, idPrefix string, data []byte, declaredMime string) error {
	encoded, err := imaging.EncodeUpload(data, declaredMime)
	if err != nil {
		m.dispatch(ctx, uploadFailed{err: err})
		return err
	}

	a := catalog.Asset{ID: identity.New(idPrefix), Data: encoded, Embedded: true}

	m.mu.Lock()
	if role == RolePerson {
		m.people = m.people.Prepend(a)
	} else {
		m.clothes = m.clothes.Prepend(a)
	}
	m.mu.Unlock()

	m.dispatch(ctx, selectAsset{role: role, asset: a})
	return nil
}

func (m *Machine) SetClothPrompt(text string) {
	m.dispatch(context.Background(), setClothPrompt{text: text})
}

// GenerateCloth asks the gateway for a garment matching the current prompt.
// Empty or whitespace prompts are a no-op.
func (m *Machine) GenerateCloth(ctx context.Context) {
	m.dispatch(ctx, generateCloth{})
}

// BeginTryOn starts the composite generation. Without both resolved inputs it
// only sets an error message.
func (m *Machine) BeginTryOn(ctx context.Context) {
	m.dispatch(ctx, beginTryOn{})
}

// Restore overwrites the wizard images from a history item and jumps to the
// result step. It never calls the gateway and reports whether the id exists.
func (m *Machine) Restore(itemID string) bool {
	item, ok := m.hist.Find(itemID)
	if !ok {
		return false
	}
	m.dispatch(context.Background(), restoreItem{item: item})
	return true
}

// GoToStep navigates manually. Violated guards are silent no-ops; any manual
// navigation cancels a pending automatic advance.
func (m *Machine) GoToStep(to Step) {
	if !to.Valid() {
		return
	}
	m.dispatch(context.Background(), goToStep{to: to})
}

func (m *Machine) DismissError() {
	m.dispatch(context.Background(), dismissError{})
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) People() catalog.Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.people
}

func (m *Machine) Clothes() catalog.Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clothes
}

func (m *Machine) History() *history.Store {
	return m.hist
}

// DisplayPerson is the image the showcase should render for the person slot:
// the catalog entry for the selected id when present, else the last resolved
// data. Freshly added assets render correctly either way.
func (m *Machine) DisplayPerson() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return displayImage(m.state.SelectedPersonID, m.state.PersonImage, m.people)
}

func (m *Machine) DisplayCloth() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return displayImage(m.state.SelectedClothID, m.state.ClothImage, m.clothes)
}

func displayImage(selectedID, resolved string, c catalog.Catalog) string {
	if selectedID != "" {
		if a, ok := c.FindByID(selectedID); ok {
			return a.Data
		}
	}
	return resolved
}

func (m *Machine) dispatch(ctx context.Context, ev event) {
	m.mu.Lock()
	old := m.state
	next, effs := reduce(m.state, ev)
	m.state = next

	var async []func()
	for _, eff := range effs {
		switch eff := eff.(type) {
		case scheduleAdvanceEffect:
			m.scheduleAdvanceLocked(eff.to)
		case cancelAdvanceEffect:
			m.cancelAdvanceLocked()
		case appendHistoryEffect:
			m.hist.Append(history.Item{
				ID:          identity.New("h"),
				PersonImage: eff.person,
				ClothImage:  eff.cloth,
				ResultImage: eff.result,
				CreatedAt:   time.Now(),
			})
		case resolveEffect:
			async = append(async, m.resolveAsset(ctx, eff))
		case generateClothEffect:
			async = append(async, m.runClothGeneration(ctx, eff))
		case tryOnEffect:
			async = append(async, m.runTryOn(ctx, eff))
		}
	}
	m.mu.Unlock()

	if m.onChange != nil && next != old {
		m.onChange(old, next)
	}

	for _, fn := range async {
		go fn()
	}
}

func (m *Machine) scheduleAdvanceLocked(to Step) {
	m.cancelAdvanceLocked()
	m.advanceTimer = time.AfterFunc(m.advanceDelay, func() {
		m.dispatch(context.Background(), advanceFired{to: to})
	})
}

func (m *Machine) cancelAdvanceLocked() {
	if m.advanceTimer != nil {
		m.advanceTimer.Stop()
		m.advanceTimer = nil
	}
}

func (m *Machine) resolveAsset(ctx context.Context, eff resolveEffect) func() {
	return func() {
		if eff.asset.Embedded {
			m.dispatch(ctx, assetResolved{role: eff.role, data: eff.asset.Data, seq: eff.seq})
			return
		}

		data, err := m.resolver.FetchDataURL(ctx, eff.asset.Data)
		if err != nil {
			m.logger.Warn("asset resolution failed", "asset", eff.asset.ID, "err", err)
			m.dispatch(ctx, assetFailed{role: eff.role, err: err, seq: eff.seq})
			return
		}
		m.dispatch(ctx, assetResolved{role: eff.role, data: data, seq: eff.seq})
	}
}

func (m *Machine) runClothGeneration(ctx context.Context, eff generateClothEffect) func() {
	return func() {
		data, err := m.generator.GenerateClothingImage(ctx, eff.prompt)
		if err != nil {
			m.logger.Warn("garment generation failed", "err", err)
			m.dispatch(ctx, clothGenerateFailed{err: err, seq: eff.seq})
			return
		}

		a := catalog.Asset{ID: identity.New("gen_c"), Data: data, Embedded: true}
		m.mu.Lock()
		m.clothes = m.clothes.Prepend(a)
		m.mu.Unlock()

		m.dispatch(ctx, clothGenerated{asset: a, seq: eff.seq})
	}
}

func (m *Machine) runTryOn(ctx context.Context, eff tryOnEffect) func() {
	return func() {
		result, err := m.generator.GenerateTryOn(ctx, eff.person, eff.cloth)
		if err != nil {
			m.logger.Warn("try-on generation failed", "err", err)
			m.dispatch(ctx, tryOnFailed{err: err, seq: eff.seq})
			return
		}
		m.dispatch(ctx, tryOnSucceeded{person: eff.person, cloth: eff.cloth, result: result, seq: eff.seq})
	}
}
