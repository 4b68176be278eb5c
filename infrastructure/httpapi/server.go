// Package httpapi exposes the read-only projections of room state:
// health, room listing, and room detail. It never mutates the room.
package httpapi

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime/workers"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

type HealthResponse struct {
	Status       string  `json:"status"`
	PID          int     `json:"pid,omitempty"`
	PIDStatus    string  `json:"pid_status,omitempty"`
	CPUPercent   float64 `json:"cpu_percent,omitempty"`
	RSSBytes     uint64  `json:"ram_bytes,omitempty"`
	Participants int     `json:"participants"`
	CollectedAt  string  `json:"collected_at,omitempty"`
}

type RoomSummaryDTO struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"created_at"`
}

type ParticipantDetailDTO struct {
	ClientID string `json:"client_id"`
	JoinedAt string `json:"joined_at"`
}

type RoomDetailDTO struct {
	ID           string                 `json:"id"`
	Participants []ParticipantDetailDTO `json:"participants"`
	CreatedAt    string                 `json:"created_at"`
}

type API struct {
	log     *slog.Logger
	service contract.IRoomService
	stats   *workers.StatsStore
}

func NewAPI(log *slog.Logger, service contract.IRoomService, stats *workers.StatsStore) *API {
	return &API{log: log, service: service, stats: stats}
}

// Register mounts the read-only routes on the given mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.health)
	mux.HandleFunc("GET /api/rooms", a.rooms)
	mux.HandleFunc("GET /api/rooms/{room_id}", a.roomDetail)
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "ok", Participants: len(a.service.Snapshot())}
	if latest := a.stats.GetLatest(); latest.PID != 0 {
		resp.PID = latest.PID
		resp.PIDStatus = latest.PIDStatus
		resp.CPUPercent = latest.CPUPercent
		resp.RSSBytes = latest.RSSBytes
		resp.CollectedAt = latest.CollectedAt.RFC3339()
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) rooms(w http.ResponseWriter, _ *http.Request) {
	roomID, createdAt := a.service.RoomInfo()
	summary := RoomSummaryDTO{
		ID: string(roomID),
		Participants: lo.Map(a.service.Snapshot(), func(p domain.Participant, _ int) string {
			return p.ID.String()
		}),
		CreatedAt: createdAt.RFC3339(),
	}
	a.writeJSON(w, http.StatusOK, []RoomSummaryDTO{summary})
}

func (a *API) roomDetail(w http.ResponseWriter, r *http.Request) {
	roomID, createdAt := a.service.RoomInfo()
	if r.PathValue("room_id") != string(roomID) {
		http.NotFound(w, r)
		return
	}

	detail := RoomDetailDTO{
		ID: string(roomID),
		Participants: lo.Map(a.service.Snapshot(), func(p domain.Participant, _ int) ParticipantDetailDTO {
			return ParticipantDetailDTO{
				ClientID: p.ID.String(),
				JoinedAt: p.JoinedAt.RFC3339(),
			}
		}),
		CreatedAt: createdAt.RFC3339(),
	}
	a.writeJSON(w, http.StatusOK, detail)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error("Failed to encode response", "error", err)
	}
}
