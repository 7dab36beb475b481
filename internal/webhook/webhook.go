// Package webhook receives git push notifications and turns them into
// sync runs, filtering out the engine's own metadata commits.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

const (
	maxBodySize = 1 << 20

	// seenCommits bounds the duplicate-delivery cache.
	seenCommits = 128
)

// pushEvent carries the fields of a push payload the handler inspects.
type pushEvent struct {
	Ref     string `json:"ref"`
	After   string `json:"after"`
	Commits []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"commits"`
}

// Handler verifies signed push payloads and triggers a sync for each
// push that contains at least one commit worth syncing. The response is
// written before the sync runs; trigger is invoked on its own goroutine.
type Handler struct {
	secret     []byte
	skipMarker string
	trigger    func(ctx context.Context)
	logger     *slog.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// New builds a handler. skipMarker is the substring that marks automated
// commits; pushes consisting only of marked commits never trigger.
func New(secret, skipMarker string, trigger func(ctx context.Context), logger *slog.Logger) *Handler {
	return &Handler{
		secret:     []byte(strings.TrimSpace(secret)),
		skipMarker: skipMarker,
		trigger:    trigger,
		logger:     logger,
		seen:       make(map[string]struct{}, seenCommits),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}
	defer func() { _ = r.Body.Close() }()

	if !h.verifySignature(body, r.Header.Get("X-Hub-Signature-256")) {
		h.logger.Warn("webhook: rejected invalid signature")
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	var event pushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	status := h.classify(&event)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})

	if status == "triggered" {
		go h.trigger(context.Background())
	}
}

// classify decides what a push means. Commits carrying the skip marker
// are the engine's own write-backs and are dropped without being
// recorded, so a later human push reusing nothing still triggers.
// Already-seen commit ids are duplicate deliveries.
func (h *Handler) classify(event *pushEvent) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	triggering := 0
	for _, c := range event.Commits {
		if strings.Contains(c.Message, h.skipMarker) {
			continue
		}
		if _, dup := h.seen[c.ID]; dup {
			continue
		}
		h.remember(c.ID)
		triggering++
	}

	switch {
	case triggering > 0:
		h.logger.Info("webhook: push accepted",
			slog.String("after", event.After),
			slog.Int("commits", triggering))
		return "triggered"
	case len(event.Commits) == 0:
		return "skipped"
	default:
		h.logger.Info("webhook: push skipped", slog.String("after", event.After))
		return "skipped"
	}
}

// remember records a commit id, evicting the oldest entry once the
// cache is full. Callers hold h.mu.
func (h *Handler) remember(id string) {
	if len(h.order) >= seenCommits {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.seen, oldest)
	}
	h.seen[id] = struct{}{}
	h.order = append(h.order, id)
}

// verifySignature checks the X-Hub-Signature-256 header
// (sha256=<hex>) against the shared secret in constant time.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
