package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"
)

var errBoom = errors.New("boom")

// fakeCarts is an in-memory CartStore over a fixed recipe catalog.
type fakeCarts struct {
	mu          sync.Mutex
	recipes     map[string]models.ShortRecipe
	ingredients map[string][]models.CartEntry
	lists       map[services.RecipeList]map[string][]string
	entriesErr  error
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{
		recipes:     map[string]models.ShortRecipe{},
		ingredients: map[string][]models.CartEntry{},
		lists: map[services.RecipeList]map[string][]string{
			services.Favorites:    {},
			services.ShoppingCart: {},
		},
	}
}

func (f *fakeCarts) addRecipe(id, name string, entries ...models.CartEntry) {
	f.recipes[id] = models.ShortRecipe{ID: id, Name: name, Image: "img/" + id, CookingTime: 10}
	f.ingredients[id] = entries
}

func (f *fakeCarts) AddTo(_ context.Context, list services.RecipeList, userID, recipeID string) (*models.ShortRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[recipeID]
	if !ok {
		return nil, services.ErrNotFound
	}
	for _, id := range f.lists[list][userID] {
		if id == recipeID {
			return nil, services.ErrAlreadyExists
		}
	}
	f.lists[list][userID] = append(f.lists[list][userID], recipeID)
	return &r, nil
}

func (f *fakeCarts) RemoveFrom(_ context.Context, list services.RecipeList, userID, recipeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.lists[list][userID]
	for i, id := range ids {
		if id == recipeID {
			f.lists[list][userID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return services.ErrNotInList
}

func (f *fakeCarts) ShortRecipe(_ context.Context, recipeID string) (*models.ShortRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[recipeID]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &r, nil
}

func (f *fakeCarts) UserCartEntries(ctx context.Context, userID string) ([]models.CartEntry, error) {
	f.mu.Lock()
	ids := append([]string(nil), f.lists[services.ShoppingCart][userID]...)
	f.mu.Unlock()
	return f.RecipeCartEntries(ctx, ids)
}

func (f *fakeCarts) RecipeCartEntries(_ context.Context, recipeIDs []string) ([]models.CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	var entries []models.CartEntry
	for _, id := range recipeIDs {
		entries = append(entries, f.ingredients[id]...)
	}
	return entries, nil
}

// fakeUsers implements UserStore with a map of users and follow edges.
type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]models.User
	follows map[string]map[string]bool
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]models.User{}, follows: map[string]map[string]bool{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, req models.SignupRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == req.Email || u.Username == req.Username {
			return nil, services.ErrAlreadyExists
		}
	}
	u := models.User{ID: "new-user", Email: req.Email, Username: req.Username, FirstName: req.FirstName, LastName: req.LastName}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.PasswordHash == password {
			return &u, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id, viewerID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	u.IsSubscribed = f.follows[viewerID][id]
	return &u, nil
}

func (f *fakeUsers) List(_ context.Context, _ string, limit, offset int) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.User
	for _, u := range f.users {
		all = append(all, u)
	}
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeUsers) ChangePassword(_ context.Context, userID, current, next string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return services.ErrNotFound
	}
	if u.PasswordHash != current {
		return services.ErrForbidden
	}
	u.PasswordHash = next
	f.users[userID] = u
	return nil
}

func (f *fakeUsers) Subscribe(_ context.Context, userID, authorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID == authorID {
		return services.ErrSelfFollow
	}
	if _, ok := f.users[authorID]; !ok {
		return services.ErrNotFound
	}
	if f.follows[userID][authorID] {
		return services.ErrAlreadyExists
	}
	if f.follows[userID] == nil {
		f.follows[userID] = map[string]bool{}
	}
	f.follows[userID][authorID] = true
	return nil
}

func (f *fakeUsers) Unsubscribe(_ context.Context, userID, authorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.follows[userID][authorID] {
		return services.ErrNotInList
	}
	delete(f.follows[userID], authorID)
	return nil
}

func (f *fakeUsers) Subscriptions(ctx context.Context, userID string, recipesLimit, _, _ int) ([]models.Subscription, int, error) {
	f.mu.Lock()
	var authors []string
	for id := range f.follows[userID] {
		authors = append(authors, id)
	}
	f.mu.Unlock()

	var subs []models.Subscription
	for _, id := range authors {
		sub, err := f.Subscription(ctx, userID, id, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, len(subs), nil
}

func (f *fakeUsers) Subscription(ctx context.Context, userID, authorID string, _ int) (*models.Subscription, error) {
	u, err := f.GetByID(ctx, authorID, userID)
	if err != nil {
		return nil, err
	}
	return &models.Subscription{User: *u, Recipes: []models.ShortRecipe{}}, nil
}

func (f *fakeUsers) FollowerIDs(_ context.Context, authorID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for follower, authors := range f.follows {
		if authors[authorID] {
			ids = append(ids, follower)
		}
	}
	return ids, nil
}

// fakeRecipes records the filters and requests it receives.
type fakeRecipes struct {
	lastFilter models.RecipeFilter
	total      int
	created    []models.RecipeRequest
	createErr  error
	authorOf   map[string]string
}

func (f *fakeRecipes) List(_ context.Context, filter models.RecipeFilter) ([]models.Recipe, int, error) {
	f.lastFilter = filter
	n := f.total - filter.Offset
	if n > filter.Limit {
		n = filter.Limit
	}
	if n < 0 {
		n = 0
	}
	return make([]models.Recipe, n), f.total, nil
}

func (f *fakeRecipes) GetByID(_ context.Context, id, _ string) (*models.Recipe, error) {
	if _, ok := f.authorOf[id]; !ok {
		return nil, services.ErrNotFound
	}
	return &models.Recipe{ID: id}, nil
}

func (f *fakeRecipes) Create(_ context.Context, authorID string, req models.RecipeRequest) (*models.Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &models.Recipe{ID: "11111111-1111-1111-1111-111111111111", Name: req.Name, Author: models.User{ID: authorID}}, nil
}

func (f *fakeRecipes) Update(_ context.Context, recipeID, userID string, isAdmin bool, req models.RecipeRequest) (*models.Recipe, error) {
	author, ok := f.authorOf[recipeID]
	if !ok {
		return nil, services.ErrNotFound
	}
	if author != userID && !isAdmin {
		return nil, services.ErrForbidden
	}
	return &models.Recipe{ID: recipeID, Name: req.Name}, nil
}

func (f *fakeRecipes) Delete(_ context.Context, recipeID, userID string, isAdmin bool) error {
	author, ok := f.authorOf[recipeID]
	if !ok {
		return services.ErrNotFound
	}
	if author != userID && !isAdmin {
		return services.ErrForbidden
	}
	delete(f.authorOf, recipeID)
	return nil
}

type publishedEvent struct{ authorID, recipeID string }

type fakeNotifier struct {
	events []publishedEvent
}

func (f *fakeNotifier) RecipePublished(_ context.Context, authorID, recipeID string) {
	f.events = append(f.events, publishedEvent{authorID, recipeID})
}
