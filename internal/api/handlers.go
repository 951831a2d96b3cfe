package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

// HealthHandler reports process liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChatsHandler lists all registered chats.
func ChatsHandler(deps ApiDependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := deps.Registry.List()
		if err != nil {
			log.Printf("[API] failed to list chats: %v", err)
			http.Error(w, "registry read failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

// pendingView is the wire shape of one outstanding approval item.
type pendingView struct {
	Token     string    `json:"token"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingHandler lists outstanding approval items (tokens and subjects
// only; resolution stays in Telegram).
func PendingHandler(deps ApiDependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := deps.Pending.List()
		views := make([]pendingView, 0, len(items))
		for _, item := range items {
			v := pendingView{Token: item.Token, Kind: item.Kind, CreatedAt: item.CreatedAt}
			if item.Chat != nil {
				v.Subject = item.Chat.ChatName
			}
			if item.Link != nil {
				v.Subject = item.Link.URL
			}
			views = append(views, v)
		}
		writeJSON(w, http.StatusOK, views)
	}
}
