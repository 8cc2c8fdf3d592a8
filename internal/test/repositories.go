package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Store is an in-memory implementation of repository.Factory and
// repository.Transactor. Transactions run one at a time against a copy
// of the data which replaces the committed state only when fn succeeds.
type Store struct {
	// Fail, when set, is consulted before every repository call with an
	// operation name such as "orders.add_item". A non-nil result is returned.
	Fail func(op string) error
	// Now stamps created orders. Defaults to time.Now.
	Now func() time.Time
	// OnStock observes every successful stock adjustment in call order.
	OnStock func(key model.StockKey, delta int)

	mu    sync.Mutex
	state *state

	Commits   int
	Rollbacks int
}

type state struct {
	nextID     int64
	customers  map[int64]model.Customer
	emails     map[string]int64
	products   map[int64]model.Product
	variants   map[int64]model.ProductItem
	addresses  map[int64]model.Address
	orders     map[int64]model.Order
	orderItems map[int64][]model.OrderItem
	numbers    map[string]int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: &state{
		customers:  make(map[int64]model.Customer),
		emails:     make(map[string]int64),
		products:   make(map[int64]model.Product),
		variants:   make(map[int64]model.ProductItem),
		addresses:  make(map[int64]model.Address),
		orders:     make(map[int64]model.Order),
		orderItems: make(map[int64][]model.OrderItem),
		numbers:    make(map[string]int64),
	}}
}

func (s *state) clone() *state {
	c := &state{
		nextID:     s.nextID,
		customers:  make(map[int64]model.Customer, len(s.customers)),
		emails:     make(map[string]int64, len(s.emails)),
		products:   make(map[int64]model.Product, len(s.products)),
		variants:   make(map[int64]model.ProductItem, len(s.variants)),
		addresses:  make(map[int64]model.Address, len(s.addresses)),
		orders:     make(map[int64]model.Order, len(s.orders)),
		orderItems: make(map[int64][]model.OrderItem, len(s.orderItems)),
		numbers:    make(map[string]int64, len(s.numbers)),
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.variants {
		c.variants[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = append([]model.OrderItem(nil), v...)
	}
	for k, v := range s.numbers {
		c.numbers[k] = v
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// WithinTransaction implements repository.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&repos{store: s, st: work}); err != nil {
		s.Rollbacks++
		return err
	}
	s.state = work
	s.Commits++
	return nil
}

// Customers implements repository.Factory outside of a transaction.
func (s *Store) Customers() repository.CustomerRepository { return &repos{store: s} }

// Catalog implements repository.Factory outside of a transaction.
func (s *Store) Catalog() repository.CatalogRepository { return &repos{store: s} }

// Addresses implements repository.Factory outside of a transaction.
func (s *Store) Addresses() repository.AddressRepository { return &addressRepo{repos{store: s}} }

// Orders implements repository.Factory outside of a transaction.
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{repos{store: s}} }

// AddProduct seeds a catalog product and returns its id.
func (s *Store) AddProduct(p model.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.state.id()
	s.state.products[p.ID] = p
	return p.ID
}

// AddProductItem seeds a variant of productID and returns its id.
func (s *Store) AddProductItem(productID int64, it model.ProductItem) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.state.id()
	it.ProductID = productID
	s.state.variants[it.ID] = it
	return it.ID
}

// AddAddress seeds an address owned by customerID and returns its id.
func (s *Store) AddAddress(customerID int64, f model.AddressFields) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.state.id()
	s.state.addresses[id] = model.Address{ID: id, CustomerID: customerID, AddressFields: f}
	return id
}

// ReserveNumber marks an order number as already taken.
func (s *Store) ReserveNumber(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.numbers[number] = 0
}

// ProductStock returns the committed quantity of a product.
func (s *Store) ProductStock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.products[id].Quantity
}

// VariantStock returns the committed quantity of a variant.
func (s *Store) VariantStock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.variants[id].Quantity
}

// OrderCount returns the number of committed orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

// ItemCount returns the number of committed order lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, items := range s.state.orderItems {
		n += len(items)
	}
	return n
}

// AddressCount returns the number of committed addresses.
func (s *Store) AddressCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.addresses)
}

// SetOrderState overwrites status fields of a committed order.
func (s *Store) SetOrderState(id int64, status model.OrderStatus, payment model.PaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.state.orders[id]
	o.Status = status
	o.PaymentStatus = payment
	s.state.orders[id] = o
}

// SetOrderCreatedAt backdates a committed order.
func (s *Store) SetOrderCreatedAt(id int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.state.orders[id]
	o.CreatedAt = at
	s.state.orders[id] = o
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// repos serves every repository interface. A nil st means each call
// takes the store lock and works on committed state.
type repos struct {
	store *Store
	st    *state
}

func (r *repos) Customers() repository.CustomerRepository { return r }
func (r *repos) Catalog() repository.CatalogRepository    { return r }
func (r *repos) Addresses() repository.AddressRepository  { return &addressRepo{*r} }
func (r *repos) Orders() repository.OrderRepository       { return &orderRepo{*r} }

func (r *repos) do(op string, fn func(*state) error) error {
	if r.st == nil {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	if r.store.Fail != nil {
		if err := r.store.Fail(op); err != nil {
			return err
		}
	}
	st := r.st
	if st == nil {
		st = r.store.state
	}
	return fn(st)
}

func (r *repos) Create(ctx context.Context, email, name, passwordHash string) (*model.Customer, error) {
	var out *model.Customer
	err := r.do("customers.create", func(st *state) error {
		if _, ok := st.emails[email]; ok {
			return domainErrors.ErrAlreadyExists
		}
		c := model.Customer{ID: st.id(), Email: email, Name: name, PasswordHash: passwordHash, CreatedAt: r.store.now()}
		st.customers[c.ID] = c
		st.emails[email] = c.ID
		out = &c
		return nil
	})
	return out, err
}

func (r *repos) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var out *model.Customer
	err := r.do("customers.get_by_email", func(st *state) error {
		id, ok := st.emails[email]
		if !ok {
			return domainErrors.ErrNotFound
		}
		c := st.customers[id]
		out = &c
		return nil
	})
	return out, err
}

func (r *repos) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var out *model.Customer
	err := r.do("customers.get_by_id", func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domainErrors.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *repos) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var out *model.Product
	err := r.do("catalog.get_product", func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domainErrors.ErrProductNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *repos) GetProductItem(ctx context.Context, productID, itemID int64) (*model.ProductItem, error) {
	var out *model.ProductItem
	err := r.do("catalog.get_product_item", func(st *state) error {
		it, ok := st.variants[itemID]
		if !ok || it.ProductID != productID {
			return domainErrors.ErrInvalidVariant
		}
		out = &it
		return nil
	})
	return out, err
}

func (r *repos) DecrementStock(ctx context.Context, key model.StockKey, quantity int) error {
	return r.do("catalog.decrement_stock", func(st *state) error {
		return r.adjust(st, key, -quantity)
	})
}

func (r *repos) IncrementStock(ctx context.Context, key model.StockKey, quantity int) error {
	return r.do("catalog.increment_stock", func(st *state) error {
		return r.adjust(st, key, quantity)
	})
}

func (r *repos) adjust(st *state, key model.StockKey, delta int) error {
	if err := st.adjustStock(key, delta); err != nil {
		return err
	}
	if r.store.OnStock != nil {
		r.store.OnStock(key, delta)
	}
	return nil
}

func (st *state) adjustStock(key model.StockKey, delta int) error {
	if key.ProductItemID != nil {
		it, ok := st.variants[*key.ProductItemID]
		if !ok || it.ProductID != key.ProductID {
			if delta < 0 {
				return domainErrors.ErrInsufficientStock
			}
			return domainErrors.ErrProductNotFound
		}
		if it.Quantity+delta < 0 {
			return domainErrors.ErrInsufficientStock
		}
		it.Quantity += delta
		st.variants[it.ID] = it
		return nil
	}

	p, ok := st.products[key.ProductID]
	if !ok {
		if delta < 0 {
			return domainErrors.ErrInsufficientStock
		}
		return domainErrors.ErrProductNotFound
	}
	if p.Quantity+delta < 0 {
		return domainErrors.ErrInsufficientStock
	}
	p.Quantity += delta
	st.products[p.ID] = p
	return nil
}

type addressRepo struct{ repos }

func (r *addressRepo) GetForCustomer(ctx context.Context, id, customerID int64) (*model.Address, error) {
	var out *model.Address
	err := r.do("addresses.get", func(st *state) error {
		a, ok := st.addresses[id]
		if !ok || a.CustomerID != customerID {
			return domainErrors.ErrAddressNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *addressRepo) Create(ctx context.Context, customerID int64, f model.AddressFields) (*model.Address, error) {
	var out *model.Address
	err := r.do("addresses.create", func(st *state) error {
		a := model.Address{ID: st.id(), CustomerID: customerID, AddressFields: f, CreatedAt: r.store.now()}
		st.addresses[a.ID] = a
		out = &a
		return nil
	})
	return out, err
}

func (r *addressRepo) ListByCustomer(ctx context.Context, customerID int64) ([]model.Address, error) {
	var out []model.Address
	err := r.do("addresses.list", func(st *state) error {
		for _, a := range st.addresses {
			if a.CustomerID == customerID {
				out = append(out, a)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		return nil
	})
	return out, err
}

type orderRepo struct{ repos }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.do("orders.create", func(st *state) error {
		if _, taken := st.numbers[o.Number]; taken {
			return domainErrors.ErrDuplicateOrderReference
		}
		now := r.store.now()
		o.ID = st.id()
		o.CreatedAt = now
		o.UpdatedAt = now
		stored := *o
		stored.Items, stored.ShippingAddress, stored.BillingAddress = nil, nil, nil
		st.orders[o.ID] = stored
		st.numbers[o.Number] = o.ID
		return nil
	})
}

func (r *orderRepo) AddItem(ctx context.Context, it *model.OrderItem) error {
	return r.do("orders.add_item", func(st *state) error {
		if _, ok := st.orders[it.OrderID]; !ok {
			return domainErrors.ErrOrderNotFound
		}
		it.ID = st.id()
		st.orderItems[it.OrderID] = append(st.orderItems[it.OrderID], *it)
		return nil
	})
}

func (r *orderRepo) Get(ctx context.Context, id int64) (*model.Order, error) {
	return r.get("orders.get", id)
}

func (r *orderRepo) Lock(ctx context.Context, id int64) (*model.Order, error) {
	return r.get("orders.lock", id)
}

func (r *orderRepo) get(op string, id int64) (*model.Order, error) {
	var out *model.Order
	err := r.do(op, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domainErrors.ErrOrderNotFound
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *orderRepo) Items(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	out := make(map[int64][]model.OrderItem, len(orderIDs))
	err := r.do("orders.items", func(st *state) error {
		for _, id := range orderIDs {
			if items := st.orderItems[id]; len(items) > 0 {
				out[id] = append([]model.OrderItem(nil), items...)
			}
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID int64, f model.OrderFilter) (*model.OrderPage, error) {
	page := &model.OrderPage{}
	err := r.do("orders.list", func(st *state) error {
		var all []model.Order
		for _, o := range st.orders {
			if o.CustomerID != customerID || (f.Status != "" && o.Status != f.Status) {
				continue
			}
			all = append(all, o)
		}
		sortNewestFirst(all)
		page.Total = len(all)
		if f.Offset < len(all) {
			all = all[f.Offset:]
			if f.Limit > 0 && f.Limit < len(all) {
				all = all[:f.Limit]
			}
			page.Orders = all
		}
		return nil
	})
	return page, err
}

func (r *orderRepo) ListStalePending(ctx context.Context, placedBefore time.Time, limit int) ([]model.Order, error) {
	var out []model.Order
	err := r.do("orders.list_stale", func(st *state) error {
		for _, o := range st.orders {
			if o.Status == model.OrderStatusPending && o.PaymentStatus == model.PaymentStatusPending && o.CreatedAt.Before(placedBefore) {
				out = append(out, o)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, payment model.PaymentStatus) error {
	return r.do("orders.update_status", func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domainErrors.ErrOrderNotFound
		}
		o.Status = status
		o.PaymentStatus = payment
		o.UpdatedAt = r.store.now()
		st.orders[id] = o
		return nil
	})
}

func sortNewestFirst(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

var (
	_ repository.Factory    = (*Store)(nil)
	_ repository.Transactor = (*Store)(nil)
	_ repository.Factory    = (*repos)(nil)
)
