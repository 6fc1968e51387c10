package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

// ActionPayload is an action as reported by the listener
type ActionPayload struct {
	Title        string   `json:"title"`
	Semantic     int      `json:"semantic"`
	RemoteInputs []string `json:"remote_inputs,omitempty"`
}

// NotificationPayload is one observed posting as reported by the listener
type NotificationPayload struct {
	ID             string          `json:"id,omitempty"`
	Key            string          `json:"key"`
	PackageName    string          `json:"package_name"`
	Title          string          `json:"title"`
	Text           string          `json:"text"`
	IsGroupSummary bool            `json:"is_group_summary"`
	Actions        []ActionPayload `json:"actions"`
	NativeActions  []ActionPayload `json:"native_actions"`
	PostedAt       int64           `json:"posted_at"`
}

// ToEvent converts the payload to a domain event.
// Native actions default to the declared ones when the listener omits them.
func (p *NotificationPayload) ToEvent() *domain.NotificationEvent {
	id := p.ID
	if id == "" {
		id = domain.EventID(p.PackageName, p.Key)
	}
	native := p.NativeActions
	if native == nil {
		native = p.Actions
	}
	return &domain.NotificationEvent{
		ID:             id,
		Key:            p.Key,
		PackageName:    p.PackageName,
		Title:          p.Title,
		Text:           p.Text,
		IsGroupSummary: p.IsGroupSummary,
		Actions:        toActions(p.Actions),
		NativeActions:  toActions(native),
		PostedAt:       p.PostedAt,
	}
}

func toActions(in []ActionPayload) []domain.Action {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Action, len(in))
	for i, a := range in {
		out[i] = domain.Action{Title: a.Title, Semantic: a.Semantic, RemoteInputs: a.RemoteInputs}
	}
	return out
}

// ============ Notification Handlers ============

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req NotificationPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if req.PackageName == "" {
		s.badRequest(w, "package_name is required")
		return
	}
	if req.ID == "" && req.Key == "" {
		s.badRequest(w, "key or id is required")
		return
	}

	event := req.ToEvent()
	// the decision outlives the request when the dispatcher is running
	s.notifications.OnPosted(context.WithoutCancel(r.Context()), event)

	s.writeStatusJSON(w, http.StatusAccepted, map[string]interface{}{"id": event.ID})
}

// handleNotificationItem routes:
//
//	DELETE /api/notifications/{id}
//	POST   /api/notifications/{id}/tap
//	POST   /api/notifications/{id}/actions/{index}
//	POST   /api/notifications/{id}/actions/{index}/input
func (s *Server) handleNotificationItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	if path == "" {
		http.Error(w, "notification id required", http.StatusBadRequest)
		return
	}

	if id, ok := strings.CutSuffix(path, "/tap"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleTap(w, r, id)
		return
	}

	if idx := strings.LastIndex(path, "/actions/"); idx >= 0 {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := path[:idx]
		rest := path[idx+len("/actions/"):]
		indexPart, input := strings.CutSuffix(rest, "/input")
		index, err := strconv.Atoi(indexPart)
		if err != nil {
			s.badRequest(w, "invalid action index")
			return
		}
		if input {
			s.handleActionInput(w, r, id, index)
		} else {
			s.handleAction(w, r, id, index)
		}
		return
	}

	switch r.Method {
	case http.MethodDelete:
		removed := s.notifications.OnRemoved(path)
		s.writeJSON(w, map[string]interface{}{"removed": removed})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.usecases.Replay.Tap(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, id string, index int) {
	if err := s.usecases.Replay.TapAction(r.Context(), id, index); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true})
}

func (s *Server) handleActionInput(w http.ResponseWriter, r *http.Request, id string, index int) {
	var req struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if err := s.usecases.Replay.SendInput(r.Context(), id, index, req.Data); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"success": true})
}

// ============ Evaluate Handler ============

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PackageName string `json:"package_name"`
		Title       string `json:"title"`
		At          string `json:"at,omitempty"` // RFC3339, defaults to now
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.badRequest(w, err.Error())
		return
	}

	blocking := s.usecases.Blocking
	at := blocking.Now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			s.badRequest(w, "at must be RFC3339")
			return
		}
		at = parsed.In(blocking.Location())
	}

	decision := blocking.Evaluate(r.Context(), req.PackageName, req.Title, at)
	s.writeJSON(w, map[string]interface{}{
		"decision": decision,
		"at":       at.Format(time.RFC3339),
	})
}
