package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"textrpg/server/internal/engine"
	"textrpg/server/internal/models"
	"textrpg/server/internal/storage"
)

type mockSaveStore struct {
	mock.Mock
}

func (m *mockSaveStore) Save(ctx context.Context, slot string, payload []byte) error {
	args := m.Called(ctx, slot, payload)
	return args.Error(0)
}

func (m *mockSaveStore) Load(ctx context.Context, slot string) ([]byte, error) {
	args := m.Called(ctx, slot)
	payload, _ := args.Get(0).([]byte)
	return payload, args.Error(1)
}

func (m *mockSaveStore) Close() error {
	return m.Called().Error(0)
}

type recordingObserver struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (o *recordingObserver) Publish(snap Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snaps = append(o.snaps, snap)
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snaps)
}

func testGraph() models.Graph {
	return models.Graph{
		"start": {
			ID:    "start",
			Title: "The Crossroads",
			Text:  "{name} adjusts {clothing}.",
			Choices: []models.Choice{
				{
					Text:     "Enter the cave",
					NextNode: "cave",
					Effects:  []models.Effect{models.DeltaEffect("health", models.TargetHealth, -30)},
					InventoryEffect: &models.InventoryEffect{
						Action: models.InventoryAdd,
						Item:   models.InventoryEntry{ID: "torch", Name: "Old Torch", Quantity: 1},
					},
				},
				{Text: "Lift the boulder", NextNode: "boulder", StatCheck: &models.StatCheck{Stat: "strength", Value: 15}},
				{Text: "Follow the broken path", NextNode: "nowhere"},
			},
		},
		"cave": {
			ID:    "cave",
			Title: "The Cave",
			Text:  "Dark.",
			Choices: []models.Choice{
				{Text: "Give up", NextNode: "start"},
			},
		},
	}
}

func newTestSession(opts ...Option) (*Session, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	eng := engine.NewStoryEngine(testGraph(), zap.NewNop())
	return New(eng, store, opts...), store
}

func TestNewSessionStartsAtStart(t *testing.T) {
	s, _ := newTestSession()

	snap := s.Snapshot()
	assert.Equal(t, uint64(0), snap.Revision)
	assert.Equal(t, "start", snap.Node.ID)
	assert.Equal(t, "Galen adjusts Tattered Rags.", snap.Node.Text)
	assert.Equal(t, CharacterSummary{
		Name: "Galen", Health: 100, MaxHealth: 100, Energy: 50, MaxEnergy: 50,
		Condition: "Normal", InventoryCount: 1,
	}, snap.Character)

	require.Len(t, snap.Node.Choices, 3)
	assert.True(t, snap.Node.Choices[0].Enabled)
	assert.False(t, snap.Node.Choices[1].Enabled)
	assert.Equal(t, "Lift the boulder (Failed: 10/15 strength)", snap.Node.Choices[1].Text)
}

func TestSelectChoiceAppliesAndPublishes(t *testing.T) {
	obs := &recordingObserver{}
	s, _ := newTestSession(WithObserver(obs))

	snap, err := s.SelectChoice(0)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.Revision)
	assert.Equal(t, "cave", snap.Node.ID)
	assert.Equal(t, 70, snap.Character.Health)
	assert.Equal(t, 2, snap.Character.InventoryCount)
	assert.Equal(t, 1, obs.count())
}

func TestSelectDisabledChoiceDoesNotMutate(t *testing.T) {
	obs := &recordingObserver{}
	s, _ := newTestSession(WithObserver(obs))
	before := s.State()

	_, err := s.SelectChoice(1)

	assert.ErrorIs(t, err, ErrChoiceDisabled)
	assert.Equal(t, before, s.State())
	assert.Equal(t, uint64(0), s.Revision())
	assert.Zero(t, obs.count())
}

func TestSelectChoiceOutOfRange(t *testing.T) {
	s, _ := newTestSession()

	_, err := s.SelectChoice(7)
	assert.ErrorIs(t, err, ErrChoiceOutOfRange)

	_, err = s.SelectChoice(-1)
	assert.ErrorIs(t, err, ErrChoiceOutOfRange)
}

func TestDanglingNodeShowsRecoveryAndReturnsToStart(t *testing.T) {
	s, _ := newTestSession()
	_, err := s.SelectChoice(0)
	require.NoError(t, err)

	snap, err := s.SelectChoice(0)
	require.NoError(t, err)
	assert.Equal(t, "start", snap.Node.ID)

	snap, err = s.SelectChoice(2)
	require.NoError(t, err)
	assert.True(t, snap.Node.Missing)
	assert.Equal(t, "Error", snap.Node.Title)
	assert.Equal(t, `Node "nowhere" not found.`, snap.Node.Text)
	require.Len(t, snap.Node.Choices, 1)
	assert.Equal(t, "Go to Start", snap.Node.Choices[0].Text)

	snap, err = s.SelectChoice(0)
	require.NoError(t, err)
	assert.False(t, snap.Node.Missing)
	assert.Equal(t, "start", snap.Node.ID)
}

func TestGoingBackToStartResetsInventory(t *testing.T) {
	s, _ := newTestSession()

	_, err := s.SelectChoice(0)
	require.NoError(t, err)
	require.True(t, s.State().Inventory.Has("torch", 1))

	_, err = s.SelectChoice(0)
	require.NoError(t, err)

	state := s.State()
	assert.Equal(t, models.StartingInventory(), state.Inventory)
	assert.Equal(t, 70, state.Character.Health)
}

func TestUseItem(t *testing.T) {
	s, _ := newTestSession()

	snap, err := s.UseItem(models.PotionHealthID)
	require.NoError(t, err)
	assert.Equal(t, "Your health is already full!", snap.Notice)
	assert.Equal(t, 1, snap.Character.InventoryCount)

	_, err = s.SelectChoice(0)
	require.NoError(t, err)

	snap, err = s.UseItem(models.PotionHealthID)
	require.NoError(t, err)
	assert.Equal(t, "You drank the potion. Recovered 20 HP.", snap.Notice)
	assert.Equal(t, 90, snap.Character.Health)

	_, err = s.UseItem(models.PotionHealthID)
	assert.ErrorIs(t, err, engine.ErrItemNotHeld)

	_, err = s.UseItem("torch")
	assert.ErrorIs(t, err, engine.ErrItemNotUsable)
}

func TestSaveAndLoad(t *testing.T) {
	s, store := newTestSession(WithSlot("slot-a"))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSave)

	_, err = s.SelectChoice(0)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background()))
	saved := s.State()

	s.Restart()
	assert.Equal(t, models.NewGameState(), s.State())

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cave", snap.Node.ID)
	assert.Equal(t, saved, s.State())

	payload, err := store.Load(context.Background(), "slot-a")
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"currentStoryNode":"cave"`)
}

func TestLoadInvalidSaveKeepsState(t *testing.T) {
	s, store := newTestSession()
	_, err := s.SelectChoice(0)
	require.NoError(t, err)
	before := s.State()

	require.NoError(t, store.Save(context.Background(), DefaultSlot, []byte(`{"character":null}`)))

	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalidSave)
	assert.Equal(t, before, s.State())
}

func TestSaveStoreFailure(t *testing.T) {
	store := &mockSaveStore{}
	store.On("Save", mock.Anything, DefaultSlot, mock.Anything).Return(errors.New("disk full"))
	store.On("Load", mock.Anything, DefaultSlot).Return(nil, errors.New("connection reset"))

	s := New(engine.NewStoryEngine(testGraph(), zap.NewNop()), store)

	err := s.Save(context.Background())
	assert.ErrorContains(t, err, "disk full")

	_, err = s.Load(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, ErrNoSave)

	store.AssertExpectations(t)
}

func TestScreens(t *testing.T) {
	s, _ := newTestSession()
	_, err := s.SelectChoice(0)
	require.NoError(t, err)

	inv := s.Inventory()
	require.Len(t, inv.Items, 2)
	assert.True(t, inv.Items[0].Usable)
	assert.Equal(t, "images/potion.jpg", inv.Items[0].Image)
	assert.False(t, inv.Items[1].Usable)
	assert.Equal(t, "https://placehold.co/100x100/444444/e0e0e0?text=Old+Torch", inv.Items[1].Image)

	stats := s.Stats()
	assert.Equal(t, 70, stats.Health)
	assert.Equal(t, []LabeledValue{
		{Key: "strength", Label: "Strength", Value: 10},
		{Key: "wit", Label: "Wit", Value: 10},
		{Key: "charm", Label: "Charm", Value: 10},
	}, stats.Attributes)

	app := s.Appearance()
	assert.Equal(t, []string{
		"You are Galen.",
		"You are wearing Tattered Rags.",
		"You have Messy Black Hair.",
	}, app.Description)
	require.Len(t, app.Slots, 4)
	assert.Equal(t, "Clothing", app.Slots[0].Label)
	assert.Equal(t, "Face", app.Slots[3].Label)

	assert.Equal(t, s.CurrentView(), s.BackToStory())
	assert.Equal(t, "cave", s.BackToStory().ID)
}

func TestEmptyInventoryMessage(t *testing.T) {
	state := models.NewGameState()
	state.Inventory = models.Ledger{}
	s, _ := newTestSession(WithState(state))

	inv := s.Inventory()
	assert.Empty(t, inv.Items)
	assert.Equal(t, "Your inventory is empty.", inv.Message)
}

func TestConcurrentActionsPublishInRevisionOrder(t *testing.T) {
	obs := &recordingObserver{}
	s, _ := newTestSession(WithObserver(obs))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Restart()
		}()
	}
	wg.Wait()

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Len(t, obs.snaps, 50)
	for i, snap := range obs.snaps {
		assert.Equal(t, uint64(i+1), snap.Revision)
	}
}
