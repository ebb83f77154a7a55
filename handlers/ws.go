package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LovationAdmin/foodgram-api/metrics"
	"github.com/LovationAdmin/foodgram-api/middleware"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

const feedUserKey = "user_id"

// FollowerLister resolves who follows an author.
type FollowerLister interface {
	FollowerIDs(ctx context.Context, authorID string) ([]string, error)
}

// FeedEvent is pushed to followers over the realtime feed.
type FeedEvent struct {
	Type     string `json:"type"`
	RecipeID string `json:"recipe_id"`
	AuthorID string `json:"author_id"`
}

// FeedHandler keeps one websocket per connected user and pushes recipe
// notifications to the followers of their authors.
type FeedHandler struct {
	M         *melody.Melody
	Followers FollowerLister
}

func NewFeedHandler(followers FollowerLister) *FeedHandler {
	m := melody.New()
	m.Config.MaxMessageSize = 4096

	// Keep-alive for proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		metrics.FeedConnections.Inc()
		utils.LogWebSocket("connected", sessionUser(s))
	})

	m.HandleDisconnect(func(s *melody.Session) {
		metrics.FeedConnections.Dec()
		utils.LogWebSocket("disconnected", sessionUser(s))
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeWarn("feed websocket error for %s: %v", sessionUser(s), err)
	})

	return &FeedHandler{M: m, Followers: followers}
}

func sessionUser(s *melody.Session) string {
	v, _ := s.Get(feedUserKey)
	id, _ := v.(string)
	return id
}

// HandleFeed upgrades an authenticated request to the realtime feed.
func (h *FeedHandler) HandleFeed(c *gin.Context) {
	keys := map[string]interface{}{feedUserKey: middleware.GetUserID(c)}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		utils.SafeWarn("failed to upgrade feed websocket: %v", err)
	}
}

// RecipePublished notifies every connected follower of authorID.
func (h *FeedHandler) RecipePublished(ctx context.Context, authorID, recipeID string) {
	followerIDs, err := h.Followers.FollowerIDs(ctx, authorID)
	if err != nil {
		utils.SafeError("failed to load followers of %s: %v", authorID, err)
		return
	}
	h.NotifyFollowers(authorID, recipeID, followerIDs)
}

// NotifyFollowers sends a recipe_published event to the sessions of followerIDs.
func (h *FeedHandler) NotifyFollowers(authorID, recipeID string, followerIDs []string) {
	if len(followerIDs) == 0 {
		return
	}
	targets := make(map[string]struct{}, len(followerIDs))
	for _, id := range followerIDs {
		targets[id] = struct{}{}
	}

	msg, err := json.Marshal(FeedEvent{Type: "recipe_published", RecipeID: recipeID, AuthorID: authorID})
	if err != nil {
		utils.SafeError("failed to encode feed event: %v", err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		_, ok := targets[sessionUser(s)]
		if ok {
			metrics.FeedNotificationsTotal.Inc()
		}
		return ok
	})
	if err != nil {
		utils.SafeWarn("failed to broadcast recipe %s: %v", recipeID, err)
	}
}
