package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"textrpg/server/internal/engine"
	"textrpg/server/internal/session"
)

// GameResponse is the envelope for every game route
type GameResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Data     interface{}       `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
}

const commandTimeout = 5 * time.Second

// itemPath is the validated item id path parameter
type itemPath struct {
	ID string `validate:"required,max=128,printascii"`
}

// GetGame returns the current node view and character summary
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Snapshot: &snap})
}

// SelectChoice takes a choice on the current node
func (h *Handlers) SelectChoice(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GameResponse{Success: false, Error: "Invalid choice index"})
		return
	}

	snap, err := h.session.SelectChoice(index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Snapshot: &snap})
}

// UseItem uses an inventory item and returns the refreshed inventory
func (h *Handlers) UseItem(w http.ResponseWriter, r *http.Request) {
	p := itemPath{ID: chi.URLParam(r, "id")}
	if err := h.validate.Struct(p); err != nil {
		writeJSON(w, http.StatusBadRequest, GameResponse{Success: false, Error: "Invalid item id"})
		return
	}

	snap, err := h.session.UseItem(p.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{
		Success:  true,
		Message:  snap.Notice,
		Snapshot: &snap,
		Data:     h.session.Inventory(),
	})
}

// SaveGame writes the game to the save slot
func (h *Handlers) SaveGame(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Save(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Message: "Game Saved Successfully!"})
}

// LoadGame restores the game from the save slot
func (h *Handlers) LoadGame(w http.ResponseWriter, r *http.Request) {
	snap, err := h.session.Load(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Message: "Game Loaded!", Snapshot: &snap})
}

// RestartGame starts a new game
func (h *Handlers) RestartGame(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Restart()
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Snapshot: &snap})
}

func (h *Handlers) GetInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Data: h.session.Inventory()})
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Data: h.session.Stats()})
}

func (h *Handlers) GetAppearance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Data: h.session.Appearance()})
}

// BackToStory leaves a side screen
func (h *Handlers) BackToStory(w http.ResponseWriter, r *http.Request) {
	snap := h.session.Snapshot()
	snap.Node = h.session.BackToStory()
	writeJSON(w, http.StatusOK, GameResponse{Success: true, Snapshot: &snap})
}

// StreamGame upgrades to a websocket that receives a snapshot after every change
func (h *Handlers) StreamGame(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, GameResponse{Success: false, Error: "Live updates disabled"})
		return
	}
	h.hub.ServeWS(w, r, h.session.Snapshot())
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status, msg := h.describeError(err)
	writeJSON(w, status, GameResponse{Success: false, Error: msg})
}

// describeError maps a session error to an HTTP status and player-facing message
func (h *Handlers) describeError(err error) (int, string) {
	status := http.StatusInternalServerError
	msg := "Something went wrong."

	switch {
	case errors.Is(err, session.ErrChoiceOutOfRange):
		status, msg = http.StatusNotFound, "That choice does not exist."
	case errors.Is(err, session.ErrChoiceDisabled):
		status, msg = http.StatusConflict, "That choice is not available."
	case errors.Is(err, engine.ErrItemNotHeld):
		status, msg = http.StatusNotFound, "You do not have that item."
	case errors.Is(err, engine.ErrItemNotUsable):
		status, msg = http.StatusUnprocessableEntity, "That item cannot be used."
	case errors.Is(err, session.ErrNoSave):
		status, msg = http.StatusNotFound, "No saved game found!"
	case errors.Is(err, session.ErrInvalidSave):
		status, msg = http.StatusUnprocessableEntity, "Error loading save file."
	default:
		h.logger.Error("Request failed", zap.Error(err))
	}
	return status, msg
}

// runCommand plays a websocket command against the session. State changes
// reach every client through the hub, so only notices and failures reply.
func (h *Handlers) runCommand(cmd ParsedCommand) *Message {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var (
		notice string
		err    error
	)
	switch cmd.Type {
	case CommandChoose:
		index, convErr := strconv.Atoi(cmd.Arg)
		if convErr != nil {
			return &Message{Type: "error", Text: "Invalid choice index"}
		}
		_, err = h.session.SelectChoice(index)
	case CommandUse:
		if h.validate.Struct(itemPath{ID: cmd.Arg}) != nil {
			return &Message{Type: "error", Text: "Invalid item id"}
		}
		var snap session.Snapshot
		snap, err = h.session.UseItem(cmd.Arg)
		notice = snap.Notice
	case CommandSave:
		err = h.session.Save(ctx)
		notice = "Game Saved Successfully!"
	case CommandLoad:
		_, err = h.session.Load(ctx)
		notice = "Game Loaded!"
	case CommandRestart:
		h.session.Restart()
	default:
		return &Message{Type: "error", Text: "Unknown command"}
	}

	if err != nil {
		_, msg := h.describeError(err)
		return &Message{Type: "error", Text: msg}
	}
	if notice == "" {
		return nil
	}
	return &Message{Type: "notice", Text: notice}
}
