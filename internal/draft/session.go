package draft

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/orderdesk/orderdesk/internal/catalog"
	"github.com/orderdesk/orderdesk/internal/domain/order"
	"github.com/orderdesk/orderdesk/internal/domain/product"
)

// Fetcher is the collaborator subset a session loads from.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]product.Product, error)
	FetchOrder(ctx context.Context, id int64) (*order.Order, error)
}

// Session owns one draft for its whole lifetime: it loads the session's
// inputs, reconciles exactly once, and hands out the editor bound to the
// draft. One screen instance maps to one session; there is no shared state
// across sessions.
type Session struct {
	fetch  Fetcher
	cache  *catalog.Cache
	draft  *Draft
	editor *Editor
}

// NewSession returns an unloaded session.
func NewSession(f Fetcher) *Session {
	return &Session{fetch: f, cache: catalog.New()}
}

// LoadNew fetches the catalog and starts an empty draft for a new order.
func (s *Session) LoadNew(ctx context.Context) error {
	products, err := s.fetch.FetchProducts(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch products")
	}
	s.cache.Refresh(products)
	s.attach(New())
	return nil
}

// LoadExisting fetches the catalog and the persisted order concurrently and
// reconciles once both have arrived. Arrival order is unconstrained; neither
// input is used before the other has loaded, so a half-loaded session never
// shows an empty draft.
func (s *Session) LoadExisting(ctx context.Context, orderID int64) error {
	var (
		products  []product.Product
		persisted *order.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.fetch.FetchProducts(gctx)
		return errors.Wrap(err, "fetch products")
	})
	g.Go(func() error {
		var err error
		persisted, err = s.fetch.FetchOrder(gctx, orderID)
		return errors.Wrap(err, "fetch order")
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.cache.Refresh(products)
	s.attach(Reconcile(persisted, s.cache))
	return nil
}

// RefreshCatalog refetches the product list into the cache. The draft is
// deliberately not re-reconciled: reconciliation runs once per session
// lifetime, so a catalog refresh never loses uncommitted editor state.
func (s *Session) RefreshCatalog(ctx context.Context) error {
	products, err := s.fetch.FetchProducts(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch products")
	}
	s.cache.Refresh(products)
	return nil
}

// Loaded reports whether the session holds a draft.
func (s *Session) Loaded() bool {
	return s.draft != nil
}

// Catalog returns the session's product cache.
func (s *Session) Catalog() *catalog.Cache {
	return s.cache
}

// Draft returns the session's draft, or nil before loading.
func (s *Session) Draft() *Draft {
	return s.draft
}

// Editor returns the editor bound to the session's draft, or nil before
// loading.
func (s *Session) Editor() *Editor {
	return s.editor
}

func (s *Session) attach(d *Draft) {
	s.draft = d
	s.editor = NewEditor(d, s.cache)
}
