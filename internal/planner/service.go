package planner

import (
	"context"
	"errors"

	"gearplanner/internal/gear"
	"gearplanner/internal/remote"
	"gearplanner/internal/store"
	"gearplanner/internal/stream"

	"go.uber.org/zap"
)

var (
	ErrStoreUnavailable = errors.New("gear list store is not available for this request")
	ErrItemNotFound     = errors.New("gear item not found")

	ErrNoChanges error = &gear.InputError{
		Field:   "listTitle",
		Message: "Make a change to list name or description to update the selected list.",
	}
	ErrNoItemChanges error = &gear.InputError{
		Message: "Make a change to the item before saving.",
	}
)

// API is the subset of the remote client the planner drives.
type API interface {
	ListGearLists(ctx context.Context) ([]gear.GearList, error)
	GetGearList(ctx context.Context, listID string) (gear.GearList, error)
	CreateGearList(ctx context.Context, meta gear.ListMetadata) (gear.GearList, error)
	UpdateGearList(ctx context.Context, listID string, meta gear.ListMetadata) (gear.GearList, error)
	DeleteGearList(ctx context.Context, listID string) error
	AddItem(ctx context.Context, listID string, data gear.ItemData) (remote.AddItemResult, error)
	EditItem(ctx context.Context, listID, itemID string, patch gear.ItemPatch) (gear.GearList, error)
	DeleteItem(ctx context.Context, listID, itemID string) (gear.GearList, error)
	SyncUser(ctx context.Context, profile remote.UserProfile) error
}

type CommonGearSource interface {
	CommonGear(ctx context.Context) ([]gear.CommonGearItem, error)
}

type Publisher interface {
	Publish(userID string, event stream.Event)
}

// Service runs every gear-list flow the UI needs: call the API, validate,
// update the user's store, then tell the user's other sockets.
type Service struct {
	api      API
	catalog  CommonGearSource
	sessions *store.Registry
	hub      Publisher
	dev      bool
	log      *zap.SugaredLogger
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.hub = p }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithDevelopment makes store misuse panic instead of failing the request.
func WithDevelopment(dev bool) Option {
	return func(s *Service) { s.dev = dev }
}

func NewService(api API, catalog CommonGearSource, sessions *store.Registry, opts ...Option) *Service {
	s := &Service{
		api:      api,
		catalog:  catalog,
		sessions: sessions,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionFrom returns the store owned by userID. A request that reaches the
// planner without an identity is a wiring bug.
func (s *Service) SessionFrom(userID string) (*store.Session, error) {
	if userID == "" || s.sessions == nil {
		if s.dev {
			panic("planner: gear list store used outside an authenticated session")
		}
		s.log.Errorw("gear list store unavailable", "error", ErrStoreUnavailable)
		return nil, ErrStoreUnavailable
	}
	return s.sessions.Session(userID), nil
}

// SyncUser pushes the identity to the user store once per session. Failures
// are logged and retried on the next call; they never fail the request.
func (s *Service) SyncUser(ctx context.Context, userID string, profile remote.UserProfile) (bool, error) {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return false, err
	}
	if !sess.MarkSynced() {
		return true, nil
	}
	if err := s.api.SyncUser(ctx, profile); err != nil {
		s.log.Warnw("user sync failed", "user_id", userID, "error", err)
		sess.ResetSynced()
		return false, nil
	}
	return true, nil
}

// EndSession drops the user's cached lists on sign-out.
func (s *Service) EndSession(userID string) bool {
	if s.sessions == nil {
		return false
	}
	return s.sessions.End(userID)
}

// LoadLists fetches every list and replaces the user's store with them.
func (s *Service) LoadLists(ctx context.Context, userID string) ([]gear.GearList, error) {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return nil, err
	}
	lists, err := s.api.ListGearLists(ctx)
	if err != nil {
		return nil, err
	}
	if err := sess.Lists.SetUserGearLists(lists); err != nil {
		s.log.Errorw("refusing gear lists", "user_id", userID, "error", err)
		return nil, err
	}
	s.publish(userID, stream.Event{Type: stream.EventListsLoaded})
	return sess.Lists.UserGearLists(), nil
}

// Lists serves the user's store once it holds a full fetch, and loads it
// otherwise.
func (s *Service) Lists(ctx context.Context, userID string) ([]gear.GearList, error) {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return nil, err
	}
	if sess.Lists.Loaded() {
		return sess.Lists.UserGearLists(), nil
	}
	return s.LoadLists(ctx, userID)
}

// GetList serves the cached copy and only goes to the API on a miss.
func (s *Service) GetList(ctx context.Context, userID, listID string) (gear.GearList, error) {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return gear.GearList{}, err
	}
	if list, ok := sess.Lists.GetGearListByID(listID); ok {
		return list, nil
	}
	unlock := sess.Locks.Lock(listID)
	defer unlock()
	return s.current(ctx, sess, listID)
}

func (s *Service) CreateList(ctx context.Context, userID string, form gear.ListForm) (gear.GearList, error) {
	meta, err := form.Metadata()
	if err != nil {
		return gear.GearList{}, err
	}
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return gear.GearList{}, err
	}
	list, err := s.api.CreateGearList(ctx, meta)
	if err != nil {
		return gear.GearList{}, err
	}
	if err := sess.Lists.AddGearList(list); err != nil {
		return gear.GearList{}, err
	}
	s.publish(userID, stream.Event{Type: stream.EventListCreated, ListID: list.ID, List: &list})
	return list, nil
}

// UpdateMetadata changes a list's title or description. A form that changes
// neither is refused without a request.
func (s *Service) UpdateMetadata(ctx context.Context, userID, listID string, form gear.ListForm) (gear.GearList, error) {
	meta, err := form.Metadata()
	if err != nil {
		return gear.GearList{}, err
	}
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return gear.GearList{}, err
	}
	unlock := sess.Locks.Lock(listID)
	defer unlock()

	current, err := s.current(ctx, sess, listID)
	if err != nil {
		return gear.GearList{}, err
	}
	if meta.Unchanged(current) {
		return gear.GearList{}, ErrNoChanges
	}
	updated, err := s.api.UpdateGearList(ctx, listID, meta)
	if err != nil {
		return gear.GearList{}, err
	}
	return s.apply(sess, updated)
}

// DeleteList only deletes lists the user's store knows about.
func (s *Service) DeleteList(ctx context.Context, userID, listID string) error {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return err
	}
	if listID == "" {
		return store.ErrNotFound
	}
	unlock := sess.Locks.Lock(listID)
	defer unlock()

	if _, ok := sess.Lists.GetGearListByID(listID); !ok {
		return store.ErrNotFound
	}
	if err := s.api.DeleteGearList(ctx, listID); err != nil {
		return err
	}
	sess.Lists.RemoveGearList(listID)
	s.publish(userID, stream.Event{Type: stream.EventListDeleted, ListID: listID})
	return nil
}

// AddItem accepts either response shape: a full list replaces the cached
// copy, a lone item is appended to it.
func (s *Service) AddItem(ctx context.Context, userID, listID string, form gear.ItemForm) (ItemResult, error) {
	data, err := form.ItemData()
	if err != nil {
		return ItemResult{}, err
	}
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return ItemResult{}, err
	}
	unlock := sess.Locks.Lock(listID)
	defer unlock()

	current, err := s.current(ctx, sess, listID)
	if err != nil {
		return ItemResult{}, err
	}
	res, err := s.api.AddItem(ctx, listID, data)
	if err != nil {
		return ItemResult{}, err
	}

	var next gear.GearList
	var newItemID string
	switch {
	case res.List != nil:
		next = *res.List
		newItemID = addedItemID(current, next)
	case res.Item != nil:
		next = current.WithItem(*res.Item)
		newItemID = res.Item.ID
	}
	list, err := s.apply(sess, next)
	if err != nil {
		return ItemResult{}, err
	}
	return ItemResult{List: list, NewItemID: newItemID}, nil
}

// EditItem sends only the supplied fields that differ from the cached item.
func (s *Service) EditItem(ctx context.Context, userID, listID, itemID string, edit gear.ItemEdit) (gear.GearList, error) {
	return s.patchItem(ctx, userID, listID, itemID, func(item gear.UserGearItem) (gear.ItemPatch, error) {
		patch, err := edit.Patch(item)
		if err != nil {
			return patch, err
		}
		if patch.IsEmpty() {
			return patch, ErrNoItemChanges
		}
		return patch, nil
	})
}

func (s *Service) TogglePacked(ctx context.Context, userID, listID, itemID string, packed bool) (gear.GearList, error) {
	return s.patchItem(ctx, userID, listID, itemID, func(item gear.UserGearItem) (gear.ItemPatch, error) {
		return gear.PackedPatch(item, packed), nil
	})
}

func (s *Service) DeleteItem(ctx context.Context, userID, listID, itemID string) (gear.GearList, error) {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return gear.GearList{}, err
	}
	unlock := sess.Locks.Lock(listID)
	defer unlock()

	updated, err := s.api.DeleteItem(ctx, listID, itemID)
	if err != nil {
		return gear.GearList{}, err
	}
	return s.apply(sess, updated)
}

// Categories groups a list's items under their category headings.
func (s *Service) Categories(ctx context.Context, userID, listID string) (CategoriesView, error) {
	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return CategoriesView{}, err
	}
	return CategoriesView{
		ListID:     list.ID,
		ListTitle:  list.ListTitle,
		Categories: gear.GroupByCategory(list.Items),
	}, nil
}

// Suggestions offers common gear matching query. With a listID, entries the
// list already has are flagged.
func (s *Service) Suggestions(ctx context.Context, userID, query, listID string) ([]gear.SuggestionGroup, error) {
	common, err := s.catalog.CommonGear(ctx)
	if err != nil {
		return nil, err
	}
	var list *gear.GearList
	if listID != "" {
		l, err := s.GetList(ctx, userID, listID)
		if err != nil {
			return nil, err
		}
		list = &l
	}
	return gear.Suggest(common, query, list), nil
}

func (s *Service) patchItem(ctx context.Context, userID, listID, itemID string, build func(gear.UserGearItem) (gear.ItemPatch, error)) (gear.GearList, error) {
	sess, err := s.SessionFrom(userID)
	if err != nil {
		return gear.GearList{}, err
	}
	unlock := sess.Locks.Lock(listID)
	defer unlock()

	current, err := s.current(ctx, sess, listID)
	if err != nil {
		return gear.GearList{}, err
	}
	item, ok := current.Item(itemID)
	if !ok {
		return gear.GearList{}, ErrItemNotFound
	}
	patch, err := build(item)
	if err != nil {
		return gear.GearList{}, err
	}
	updated, err := s.api.EditItem(ctx, listID, itemID, patch)
	if err != nil {
		return gear.GearList{}, err
	}
	return s.apply(sess, updated)
}

// current returns the cached list, fetching and caching it on a miss. The
// caller holds the list's lock.
func (s *Service) current(ctx context.Context, sess *store.Session, listID string) (gear.GearList, error) {
	if list, ok := sess.Lists.GetGearListByID(listID); ok {
		return list, nil
	}
	list, err := s.api.GetGearList(ctx, listID)
	if err != nil {
		return gear.GearList{}, err
	}
	if err := sess.Lists.AddGearList(list); err != nil {
		return gear.GearList{}, err
	}
	return list, nil
}

// apply stores the server's copy of a list and broadcasts it. A response
// older than the cached copy is dropped and the cached copy returned.
func (s *Service) apply(sess *store.Session, list gear.GearList) (gear.GearList, error) {
	err := sess.Lists.ReplaceGearList(list)
	switch {
	case errors.Is(err, store.ErrStale):
		s.log.Warnw("ignoring stale gear list response", "user_id", sess.UserID, "list_id", list.ID, "version", list.Version)
		if cached, ok := sess.Lists.GetGearListByID(list.ID); ok {
			return cached, nil
		}
		return list, nil
	case err != nil:
		s.log.Errorw("refusing gear list", "user_id", sess.UserID, "list_id", list.ID, "error", err)
		return gear.GearList{}, err
	}
	s.publish(sess.UserID, stream.Event{Type: stream.EventListUpdated, ListID: list.ID, List: &list})
	return list, nil
}

func (s *Service) publish(userID string, event stream.Event) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, event)
}

// addedItemID finds the item present in next but not in prev, falling back
// to the last item.
func addedItemID(prev, next gear.GearList) string {
	for _, item := range next.Items {
		if _, ok := prev.Item(item.ID); !ok {
			return item.ID
		}
	}
	if n := len(next.Items); n > 0 {
		return next.Items[n-1].ID
	}
	return ""
}
