package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"textrpg/server/internal/engine"
	"textrpg/server/internal/interfaces"
	"textrpg/server/internal/metrics"
	"textrpg/server/internal/models"
	"textrpg/server/internal/storage"
)

// DefaultSlot is the save slot key
const DefaultSlot = "textRPG_save"

var (
	ErrNoSave           = errors.New("no saved game found")
	ErrInvalidSave      = errors.New("invalid save file")
	ErrChoiceDisabled   = errors.New("choice is disabled")
	ErrChoiceOutOfRange = errors.New("choice index out of range")
)

// Observer is notified with a fresh snapshot after every mutation. Publish is
// called with the session lock held; it must not block or call back into the session.
type Observer interface {
	Publish(snapshot Snapshot)
}

// Session owns the single game state and runs player actions one at a time
type Session struct {
	engine   interfaces.Interpreter
	store    interfaces.SaveStore
	slot     string
	observer Observer
	logger   *zap.Logger

	mu       sync.Mutex
	state    *models.GameState
	revision *atomic.Uint64
}

// Option configures a Session
type Option func(*Session)

// WithSlot sets the save slot key
func WithSlot(slot string) Option {
	return func(s *Session) {
		if slot != "" {
			s.slot = slot
		}
	}
}

// WithObserver registers the snapshot observer
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithState starts the session from an existing state instead of a new game
func WithState(state *models.GameState) Option {
	return func(s *Session) { s.state = state }
}

// New creates a session at the start of a new game
func New(interp interfaces.Interpreter, store interfaces.SaveStore, opts ...Option) *Session {
	s := &Session{
		engine:   interp,
		store:    store,
		slot:     DefaultSlot,
		logger:   zap.NewNop(),
		state:    models.NewGameState(),
		revision: atomic.NewUint64(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current node view and character summary
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked("")
}

// CurrentView renders the current node
func (s *Session) CurrentView() NodeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// BackToStory leaves a side screen and renders the current node again
func (s *Session) BackToStory() NodeView {
	return s.CurrentView()
}

// Character returns the sidebar summary
func (s *Session) Character() CharacterSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.state)
}

// Inventory returns the inventory screen
func (s *Session) Inventory() InventoryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return inventoryView(s.state, s.engine.IsUsable)
}

// Stats returns the stats screen
func (s *Session) Stats() StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statsView(s.state.Character)
}

// Appearance returns the appearance screen
func (s *Session) Appearance() AppearanceView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appearanceView(s.state.Character)
}

// State returns a copy of the game state
func (s *Session) State() *models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Revision counts mutations since the session started
func (s *Session) Revision() uint64 {
	return s.revision.Load()
}

// SelectChoice takes the choice at index on the current node. Disabled
// choices are refused without touching state.
func (s *Session) SelectChoice(index int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, _ := s.currentNodeLocked()
	if index < 0 || index >= len(node.Choices) {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrChoiceOutOfRange, index)
	}

	choice := node.Choices[index]
	if status := s.engine.EvaluateChoice(choice, s.state); !status.Enabled {
		s.logger.Warn("Disabled choice selected",
			zap.String("node", node.ID),
			zap.Int("index", index),
			zap.String("choice", status.Text))
		return Snapshot{}, fmt.Errorf("%w: %s", ErrChoiceDisabled, status.Text)
	}

	_, err := s.engine.ApplyChoice(choice, s.state)
	metrics.ChoicesApplied.Inc()
	if err != nil {
		if !errors.Is(err, engine.ErrNodeNotFound) {
			return Snapshot{}, err
		}
		metrics.DanglingNodes.Inc()
	}

	return s.commitLocked(""), nil
}

// UseItem uses an inventory item; the snapshot notice carries the outcome message
func (s *Session) UseItem(itemID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	use, err := s.engine.UseItem(s.state, itemID)
	switch {
	case errors.Is(err, engine.ErrItemNotHeld):
		metrics.ItemsUsed.WithLabelValues("not_held").Inc()
		return Snapshot{}, err
	case errors.Is(err, engine.ErrItemNotUsable):
		metrics.ItemsUsed.WithLabelValues("not_usable").Inc()
		return Snapshot{}, err
	case err != nil:
		return Snapshot{}, err
	}

	if use.Consumed {
		metrics.ItemsUsed.WithLabelValues("consumed").Inc()
	} else {
		metrics.ItemsUsed.WithLabelValues("no_effect").Inc()
	}
	return s.commitLocked(use.Message), nil
}

// Save writes the full game state to the save slot
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := EncodeState(s.state)
	if err != nil {
		metrics.Saves.WithLabelValues("error").Inc()
		return err
	}
	if err := s.store.Save(ctx, s.slot, payload); err != nil {
		metrics.Saves.WithLabelValues("error").Inc()
		s.logger.Error("Failed to save game", zap.String("slot", s.slot), zap.Error(err))
		return fmt.Errorf("failed to save game: %w", err)
	}

	metrics.Saves.WithLabelValues("ok").Inc()
	s.logger.Info("Game saved",
		zap.String("slot", s.slot),
		zap.String("node", s.state.CurrentStoryNode))
	return nil
}

// Load replaces the game state with the saved one. On any failure the
// current state is left as it was.
func (s *Session) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.store.Load(ctx, s.slot)
	if errors.Is(err, storage.ErrNotFound) {
		metrics.Loads.WithLabelValues("no_save").Inc()
		return Snapshot{}, ErrNoSave
	}
	if err != nil {
		metrics.Loads.WithLabelValues("error").Inc()
		s.logger.Error("Failed to read save", zap.String("slot", s.slot), zap.Error(err))
		return Snapshot{}, fmt.Errorf("failed to load game: %w", err)
	}

	state, err := DecodeState(payload)
	if err != nil {
		metrics.Loads.WithLabelValues("invalid").Inc()
		s.logger.Warn("Rejected save", zap.String("slot", s.slot), zap.Error(err))
		return Snapshot{}, err
	}

	s.state = state
	metrics.Loads.WithLabelValues("ok").Inc()
	s.logger.Info("Game loaded",
		zap.String("slot", s.slot),
		zap.String("node", state.CurrentStoryNode))
	return s.commitLocked(""), nil
}

// Restart begins a new game at the start node
func (s *Session) Restart() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.NewGameState()
	s.logger.Info("Game restarted")
	return s.commitLocked("")
}

func (s *Session) currentNodeLocked() (*models.StoryNode, bool) {
	id := s.state.CurrentStoryNode
	node, err := s.engine.ResolveNode(id)
	if err != nil {
		return engine.RecoveryNode(id), true
	}
	return node, false
}

func (s *Session) viewLocked() NodeView {
	node, missing := s.currentNodeLocked()
	view := NodeView{
		ID:              node.ID,
		Title:           node.Title,
		Text:            s.engine.RenderText(node, s.state.Character),
		BackgroundImage: node.BackgroundImage,
		Choices:         make([]ChoiceView, 0, len(node.Choices)),
		Missing:         missing,
	}
	for i, choice := range node.Choices {
		status := s.engine.EvaluateChoice(choice, s.state)
		view.Choices = append(view.Choices, ChoiceView{
			Index:   i,
			Text:    status.Text,
			Enabled: status.Enabled,
		})
	}
	return view
}

func (s *Session) snapshotLocked(notice string) Snapshot {
	return Snapshot{
		Revision:  s.revision.Load(),
		Node:      s.viewLocked(),
		Character: summarize(s.state),
		Notice:    notice,
	}
}

// commitLocked bumps the revision and publishes while still holding the
// lock, so observers see revisions in order
func (s *Session) commitLocked(notice string) Snapshot {
	s.revision.Inc()
	snap := s.snapshotLocked(notice)
	s.publish(snap)
	return snap
}

func (s *Session) publish(snap Snapshot) {
	if s.observer != nil {
		s.observer.Publish(snap)
	}
}
