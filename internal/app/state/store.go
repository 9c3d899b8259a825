package state

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"clientadmin/internal/app/backend"
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/notify"

	"golang.org/x/sync/errgroup"
)

type (
	ClientContainer       = Container[ds.Client, ds.CreateClientRequest, ds.UpdateClientRequest]
	ProductContainer      = Container[ds.Product, ds.CreateProductRequest, ds.UpdateProductRequest]
	SubscriptionContainer = Container[ds.Subscription, ds.CreateSubscriptionRequest, ds.UpdateSubscriptionRequest]
)

var (
	ClientEntity       = Entity{Singular: "client", Plural: "clients", Title: "Client"}
	ProductEntity      = Entity{Singular: "product", Plural: "products", Title: "Product"}
	SubscriptionEntity = Entity{Singular: "subscription", Plural: "subscriptions", Title: "Subscription"}
	LicenseEntity      = Entity{Singular: "license", Plural: "licenses", Title: "License"}
)

// Resources are the backend endpoints behind the four containers.
type Resources struct {
	Clients       Resource[ds.Client, ds.CreateClientRequest, ds.UpdateClientRequest]
	Products      Resource[ds.Product, ds.CreateProductRequest, ds.UpdateProductRequest]
	Subscriptions Resource[ds.Subscription, ds.CreateSubscriptionRequest, ds.UpdateSubscriptionRequest]
	Licenses      Resource[ds.License, ds.CreateLicenseRequest, ds.UpdateLicenseRequest]
	Plans         PlanUpdater
}

func BackendResources(c *backend.Client) Resources {
	return Resources{
		Clients:       c.Clients(),
		Products:      c.Products(),
		Subscriptions: c.Subscriptions(),
		Licenses:      c.Licenses(),
		Plans:         c,
	}
}

// Store is the application state shared by every handler.
type Store struct {
	Clients       *ClientContainer
	Products      *ProductContainer
	Subscriptions *SubscriptionContainer
	Licenses      *LicenseContainer

	initOnce sync.Once
}

func NewStore(r Resources, notifier notify.Notifier, observer Observer) *Store {
	return &Store{
		Clients: NewContainer(ClientEntity, r.Clients, notifier, observer,
			WithKey(func(c ds.Client) string { return c.ClientCompCode })),
		Products:      NewContainer(ProductEntity, r.Products, notifier, observer),
		Subscriptions: NewContainer(SubscriptionEntity, r.Subscriptions, notifier, observer),
		Licenses:      NewLicenseContainer(r.Licenses, r.Plans, notifier, observer),
	}
}

// LoadAll loads the four collections concurrently. Each load is independent;
// the returned error names the collections that failed.
func (s *Store) LoadAll(ctx context.Context) error {
	loads := []struct {
		name string
		load func(context.Context) bool
	}{
		{ClientEntity.Plural, s.Clients.Load},
		{ProductEntity.Plural, s.Products.Load},
		{SubscriptionEntity.Plural, s.Subscriptions.Load},
		{LicenseEntity.Plural, s.Licenses.Load},
	}

	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed []string
	)
	for _, l := range loads {
		l := l
		g.Go(func() error {
			if !l.load(ctx) {
				mu.Lock()
				failed = append(failed, l.name)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return fmt.Errorf("load %s failed", strings.Join(failed, ", "))
	}
	return nil
}

// EnsureLoaded runs LoadAll once per process, on first use.
func (s *Store) EnsureLoaded(ctx context.Context) {
	s.initOnce.Do(func() {
		_ = s.LoadAll(context.WithoutCancel(ctx))
	})
}

// ============ CROSS-ENTITY VIEWS ============

// Ref is a resolved reference to another entity. Found is false when the
// referenced record is not in its collection and Label holds a fallback.
type Ref struct {
	ID    int64  `json:"id,omitempty"`
	Code  string `json:"code,omitempty"`
	Label string `json:"label"`
	Found bool   `json:"found"`
}

// LicenseView is a license with its client, product and plan resolved for display.
type LicenseView struct {
	ds.License
	Client       Ref `json:"client"`
	Product      Ref `json:"product"`
	Subscription Ref `json:"subscription"`
}

func (s *Store) ResolveClient(code string) Ref {
	if c, ok := s.Clients.LookupKey(code); ok {
		return Ref{ID: c.ClientCompID, Code: code, Label: c.ClientCompName, Found: true}
	}
	return Ref{Code: code, Label: code}
}

func (s *Store) ResolveProduct(id int64) Ref {
	if p, ok := s.Products.Lookup(id); ok {
		return Ref{ID: id, Label: p.MainAppName, Found: true}
	}
	return Ref{ID: id, Label: fmt.Sprintf("Product %d", id)}
}

func (s *Store) ResolveSubscription(id int64) Ref {
	if sub, ok := s.Subscriptions.Lookup(id); ok {
		return Ref{ID: id, Label: sub.SubscriptionName, Found: true}
	}
	return Ref{ID: id, Label: fmt.Sprintf("Subscription %d", id)}
}

func (s *Store) ResolveLicense(l ds.License) LicenseView {
	return LicenseView{
		License:      l,
		Client:       s.ResolveClient(l.ClientCompCode),
		Product:      s.ResolveProduct(l.MainAppID),
		Subscription: s.ResolveSubscription(l.SubscriptionID),
	}
}

func (s *Store) ResolveLicenses(licenses []ds.License) []LicenseView {
	out := make([]LicenseView, 0, len(licenses))
	for _, l := range licenses {
		out = append(out, s.ResolveLicense(l))
	}
	return out
}

// ============ DASHBOARD ============

const recentLicenses = 5

type Dashboard struct {
	ActiveClients  int           `json:"active_clients"`
	ActiveProducts int           `json:"active_products"`
	ProductNames   []string      `json:"product_names"`
	ActiveLicenses int           `json:"active_licenses"`
	Revenue        float64       `json:"revenue"`
	RecentLicenses []LicenseView `json:"recent_licenses"`
}

// Dashboard summarises the cached collections. Revenue sums the prices of active plans.
func (s *Store) Dashboard() Dashboard {
	d := Dashboard{ProductNames: []string{}}

	d.ActiveClients = len(s.Clients.Filter(ds.Client.Active))
	for _, p := range s.Products.Filter(ds.Product.Active) {
		d.ActiveProducts++
		d.ProductNames = append(d.ProductNames, p.MainAppName)
	}
	for _, sub := range s.Subscriptions.Filter(ds.Subscription.Active) {
		d.Revenue += sub.SubscriptionPrice
	}

	licenses := s.Licenses.Items()
	d.ActiveLicenses = len(s.Licenses.Filter(ds.License.Active))
	if len(licenses) > recentLicenses {
		licenses = licenses[:recentLicenses]
	}
	d.RecentLicenses = s.ResolveLicenses(licenses)
	return d
}
