package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gameshelf/internal/apperr"
	"gameshelf/internal/domain"
	"gameshelf/internal/games"
	"gameshelf/internal/images"
	"gameshelf/internal/signal"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collection owns the in-memory game collection for the signed-in user
// plus the UI-only derived state (search, status filter, sort key,
// selection). Derived state resets whenever the user changes.
type Collection struct {
	repo   games.Repository
	store  images.Store
	hub    *signal.Hub
	logger zerolog.Logger

	mu           sync.Mutex
	userID       string
	generation   int
	games        []domain.Game
	loading      bool
	message      string
	search       string
	statusFilter *domain.Status
	sortKey      domain.SortKey
	selection    map[string]struct{}
	collator     *collate.Collator
}

type CollectionSnapshot struct {
	Games        []domain.Game  `json:"games"`
	Filtered     []domain.Game  `json:"filteredGames"`
	IsLoading    bool           `json:"isLoading"`
	Search       string         `json:"search"`
	StatusFilter *domain.Status `json:"statusFilter,omitempty"`
	SortKey      domain.SortKey `json:"sortKey"`
	Selection    []string       `json:"selection"`
	Message      string         `json:"message,omitempty"`
}

func NewCollection(repo games.Repository, store images.Store, hub *signal.Hub, logger zerolog.Logger) *Collection {
	return &Collection{
		repo:      repo,
		store:     store,
		hub:       hub,
		logger:    logger,
		sortKey:   domain.SortByTitle,
		selection: map[string]struct{}{},
		collator:  collate.New(language.Und, collate.IgnoreCase),
	}
}

// Configure resets the collection for the given user and, when one is
// present, triggers the initial load in the background. It is the only
// reset path and is safe to call on every auth-state change; the
// generation counter makes a stale in-flight load a no-op.
func (c *Collection) Configure(user *domain.UserProfile) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if user != nil {
		c.userID = user.ID
	} else {
		c.userID = ""
	}
	c.games = nil
	c.selection = map[string]struct{}{}
	c.message = ""
	c.mu.Unlock()
	c.hub.Broadcast()

	if user != nil {
		go c.load(context.Background(), gen)
	}
}

// LoadGames reloads the collection for the current user.
func (c *Collection) LoadGames(ctx context.Context) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.load(ctx, gen)
}

func (c *Collection) load(ctx context.Context, gen int) {
	c.mu.Lock()
	if gen != c.generation || c.userID == "" {
		c.mu.Unlock()
		return
	}
	userID := c.userID
	c.loading = true
	c.mu.Unlock()
	c.hub.Broadcast()

	items, err := c.repo.LoadAll(ctx, userID)

	c.mu.Lock()
	if gen == c.generation {
		if err != nil {
			c.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load games")
			c.message = apperr.UserMessage(err)
		} else {
			c.games = items
		}
	}
	c.loading = false
	c.mu.Unlock()
	c.hub.Broadcast()
}

// FilteredGames recomputes the derived view on every read: status filter,
// then trimmed case-insensitive substring match on title or platform, then
// the active sort.
func (c *Collection) FilteredGames() []domain.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredLocked()
}

func (c *Collection) filteredLocked() []domain.Game {
	token := strings.ToLower(strings.TrimSpace(c.search))

	out := make([]domain.Game, 0, len(c.games))
	for _, g := range c.games {
		if c.statusFilter != nil && g.Status != *c.statusFilter {
			continue
		}
		if token != "" &&
			!strings.Contains(strings.ToLower(g.Title), token) &&
			!strings.Contains(strings.ToLower(g.Platform), token) {
			continue
		}
		out = append(out, g)
	}

	switch c.sortKey {
	case domain.SortByPlatform:
		sort.SliceStable(out, func(i, j int) bool {
			return c.collator.CompareString(out[i].Platform, out[j].Platform) < 0
		})
	case domain.SortByStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Status.Code() < out[j].Status.Code()
		})
	case domain.SortByUpdatedAt:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return c.collator.CompareString(out[i].Title, out[j].Title) < 0
		})
	}
	return out
}

// Save commits a draft: optional cover removal, optional new cover upload
// (replacing the previous blob), then the record upsert, then a full
// reload. Consistency over incremental update: the re-fetch keeps the
// in-memory collection from diverging from the store. On failure the
// collection keeps its prior state and the error lands in the message
// slot.
func (c *Collection) Save(ctx context.Context, draft domain.Draft, imageData []byte, removedCoverPath string) {
	c.mu.Lock()
	userID := c.userID
	gen := c.generation
	c.mu.Unlock()
	if userID == "" {
		return
	}

	c.setLoading(true)

	err := func() error {
		if !draft.IsValid() {
			return apperr.ErrMissingFields
		}

		coverPath := draft.CoverPath
		if removedCoverPath != "" {
			if err := c.store.Delete(ctx, removedCoverPath); err != nil {
				c.logger.Warn().Err(err).Str("path", removedCoverPath).Msg("failed to delete removed cover")
			}
			coverPath = ""
		}
		if imageData != nil {
			uploaded, err := c.store.Save(ctx, imageData, userID, draft.CoverPath)
			if err != nil {
				return err
			}
			coverPath = uploaded
		}

		id := draft.ID
		if draft.IsNew() {
			id = uuid.New().String()
		}
		game := draft.Commit(id, coverPath, time.Now())
		return c.repo.Save(ctx, game, userID)
	}()
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to save game")
		c.mu.Lock()
		c.message = apperr.UserMessage(err)
		c.loading = false
		c.mu.Unlock()
		c.hub.Broadcast()
		return
	}

	c.load(ctx, gen)
}

// Delete removes one game and, best-effort, its cover blob.
func (c *Collection) Delete(ctx context.Context, game domain.Game) {
	var covers []string
	if game.CoverPath != "" {
		covers = append(covers, game.CoverPath)
	}
	c.deleteGames(ctx, []string{game.ID}, covers)
}

// DeleteSelection removes every selected game. The selection clears
// immediately, before the backend work completes.
func (c *Collection) DeleteSelection(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.selection))
	var covers []string
	for _, g := range c.games {
		if _, ok := c.selection[g.ID]; !ok {
			continue
		}
		ids = append(ids, g.ID)
		if g.CoverPath != "" {
			covers = append(covers, g.CoverPath)
		}
	}
	c.selection = map[string]struct{}{}
	c.mu.Unlock()
	c.hub.Broadcast()

	c.deleteGames(ctx, ids, covers)
}

func (c *Collection) deleteGames(ctx context.Context, ids []string, coverPaths []string) {
	c.mu.Lock()
	userID := c.userID
	gen := c.generation
	c.mu.Unlock()
	if userID == "" || len(ids) == 0 {
		return
	}

	c.deleteCovers(ctx, coverPaths)

	if err := c.repo.Delete(ctx, ids, userID); err != nil {
		c.logger.Warn().Err(err).Msg("failed to delete games")
		c.mu.Lock()
		c.message = apperr.UserMessage(err)
		c.mu.Unlock()
		c.hub.Broadcast()
		return
	}

	c.load(ctx, gen)
}

// WipeAll removes every record and cover for the current user. It is the
// cleanup hook account deletion runs before signing out, so its failure
// propagates to that flow.
func (c *Collection) WipeAll(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	covers := make([]string, 0, len(c.games))
	for _, g := range c.games {
		if g.CoverPath != "" {
			covers = append(covers, g.CoverPath)
		}
	}
	c.mu.Unlock()
	if userID == "" {
		return nil
	}

	c.deleteCovers(ctx, covers)

	if err := c.repo.Wipe(ctx, userID); err != nil {
		c.logger.Error().Err(err).Str("user_id", userID).Msg("failed to wipe games")
		c.mu.Lock()
		c.message = apperr.UserMessage(err)
		c.mu.Unlock()
		c.hub.Broadcast()
		return err
	}

	c.mu.Lock()
	c.games = nil
	c.mu.Unlock()
	c.hub.Broadcast()
	return nil
}

// deleteCovers removes cover blobs in parallel, best-effort: orphaned
// blobs never block record deletion.
func (c *Collection) deleteCovers(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			if err := c.store.Delete(ctx, path); err != nil {
				c.logger.Warn().Err(err).Str("path", path).Msg("failed to delete cover blob")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Collection) SetSearch(s string) {
	c.publish(func() { c.search = s })
}

func (c *Collection) SetStatusFilter(status *domain.Status) {
	c.publish(func() { c.statusFilter = status })
}

func (c *Collection) SetSortKey(key domain.SortKey) {
	c.publish(func() { c.sortKey = key })
}

func (c *Collection) ToggleSelection(id string) {
	c.publish(func() {
		if _, ok := c.selection[id]; ok {
			delete(c.selection, id)
		} else {
			c.selection[id] = struct{}{}
		}
	})
}

func (c *Collection) ClearMessage() {
	c.publish(func() { c.message = "" })
}

func (c *Collection) Snapshot() CollectionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	gamesCopy := make([]domain.Game, len(c.games))
	copy(gamesCopy, c.games)
	selection := make([]string, 0, len(c.selection))
	for id := range c.selection {
		selection = append(selection, id)
	}
	sort.Strings(selection)

	return CollectionSnapshot{
		Games:        gamesCopy,
		Filtered:     c.filteredLocked(),
		IsLoading:    c.loading,
		Search:       c.search,
		StatusFilter: c.statusFilter,
		SortKey:      c.sortKey,
		Selection:    selection,
		Message:      c.message,
	}
}

func (c *Collection) setLoading(v bool) {
	c.publish(func() { c.loading = v })
}

func (c *Collection) publish(mutate func()) {
	c.mu.Lock()
	mutate()
	c.mu.Unlock()
	c.hub.Broadcast()
}
