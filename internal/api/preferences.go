package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

const maxBodyBytes = 1 << 20

// ScheduleView is the JSON shape of a parsed schedule
type ScheduleView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	StartHour   int      `json:"startHour"`
	StartMinute int      `json:"startMinute"`
	EndHour     int      `json:"endHour"`
	EndMinute   int      `json:"endMinute"`
	Days        []int    `json:"days"`
	Groups      []string `json:"groups"`
	Enabled     bool     `json:"enabled"`
	Window      string   `json:"window"`
}

// ToScheduleViews converts domain schedules for output
func ToScheduleViews(schedules []*domain.Schedule) []ScheduleView {
	views := make([]ScheduleView, len(schedules))
	for i, s := range schedules {
		views[i] = ScheduleView{
			ID:          s.ID,
			Name:        s.Name,
			StartHour:   s.StartHour,
			StartMinute: s.StartMinute,
			EndHour:     s.EndHour,
			EndMinute:   s.EndMinute,
			Days:        s.Days,
			Groups:      s.Groups,
			Enabled:     s.Enabled,
			Window:      s.FormatWindow(),
		}
	}
	return views
}

// ============ Schedule Handlers ============

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		schedules, err := s.prefs.ListSchedules(ctx)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"schedules": ToScheduleViews(schedules)})

	case http.MethodPut:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		if err := s.prefs.SaveSchedulesJSON(ctx, string(raw)); err != nil {
			s.badRequest(w, err.Error())
			return
		}
		schedules, err := s.prefs.ListSchedules(ctx)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true, "accepted": len(schedules)})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ============ Settings Handlers ============

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, map[string]interface{}{"keepMutedLog": s.prefs.KeepMuteLog(ctx)})

	case http.MethodPut:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		if err := s.prefs.SaveSettingsJSON(ctx, string(raw)); err != nil {
			s.badRequest(w, err.Error())
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ============ Group Handlers ============

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		groups, err := s.prefs.MutedGroups(ctx)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"groups": groups})

	case http.MethodPut:
		var req struct {
			Groups []string `json:"groups"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			s.badRequest(w, err.Error())
			return
		}
		if err := s.prefs.SaveMutedGroups(ctx, req.Groups); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ============ Mute Log Handlers ============

func (s *Server) handleMuteLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil {
				limit = parsed
			}
		}
		entries, err := s.usecases.MuteLog.List(ctx, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"entries": entries})

	case http.MethodPost:
		var req struct {
			GroupName   string `json:"groupName"`
			Status      string `json:"status"`
			MessageText string `json:"messageText"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			s.badRequest(w, err.Error())
			return
		}
		entry, err := s.usecases.MuteLog.Append(ctx, req.GroupName, domain.MuteStatus(req.Status), req.MessageText)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		if entry == nil {
			// blank group names are ignored
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.writeStatusJSON(w, http.StatusCreated, entry)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMuteLogStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := s.broadcaster.Subscribe("sse")
	defer s.broadcaster.Unsubscribe(sub.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.log.Debug("Mute log stream opened", "subscriber", sub.ID)
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case entry, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("event: mutelog\ndata: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
