package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

type stubIdentity struct {
	mu        sync.Mutex
	current   domain.Session
	listeners map[int]ports.IdentityListener
	nextID    int

	signIn     domain.Session
	signInErr  error
	signOuts   int
	signOutErr error
	reload     domain.Session
	reloadErr  error
	code       string
	confirmErr error
	confirmed  []string
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{listeners: make(map[int]ports.IdentityListener)}
}

func (s *stubIdentity) Subscribe(fn ports.IdentityListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	cur := s.current
	s.mu.Unlock()
	fn(cur)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *stubIdentity) emit(sess domain.Session) {
	s.mu.Lock()
	s.current = sess
	fns := make([]ports.IdentityListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}

func (s *stubIdentity) SignIn(_ context.Context, _, _ string) (domain.Session, error) {
	if s.signInErr != nil {
		return domain.Session{}, s.signInErr
	}
	return s.signIn, nil
}

func (s *stubIdentity) SignOut(_ context.Context) error {
	s.mu.Lock()
	s.signOuts++
	s.mu.Unlock()
	return s.signOutErr
}

func (s *stubIdentity) signOutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signOuts
}

func (s *stubIdentity) Reload(_ context.Context) (domain.Session, error) {
	return s.reload, s.reloadErr
}

func (s *stubIdentity) Restore(_ context.Context, _ string) (domain.Session, error) {
	return s.current, nil
}

func (s *stubIdentity) SendVerification(_ context.Context) (string, error) {
	return s.code, nil
}

func (s *stubIdentity) ConfirmVerification(_ context.Context, code string) error {
	s.confirmed = append(s.confirmed, code)
	return s.confirmErr
}

// ---------------------------------------------------------------------------
// Token store
// ---------------------------------------------------------------------------

type memTokens struct {
	mu      sync.Mutex
	values  map[string]string
	saveErr error
	deletes int
}

func newMemTokens() *memTokens {
	return &memTokens{values: make(map[string]string)}
}

func (m *memTokens) Save(_ context.Context, key, value string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memTokens) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memTokens) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.values, key)
	return nil
}

func (m *memTokens) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// ---------------------------------------------------------------------------
// Navigator
// ---------------------------------------------------------------------------

type stubNav struct {
	mu       sync.Mutex
	entry    domain.RouteEntry
	seq      int
	replaced []string
	onEnter  []func(domain.RouteEntry)
}

func newStubNav(path string) *stubNav {
	n := &stubNav{}
	n.entry = n.nextEntry(path)
	return n
}

func (n *stubNav) nextEntry(path string) domain.RouteEntry {
	n.seq++
	return domain.RouteEntry{ID: fmt.Sprintf("e%d", n.seq), Path: path}
}

func (n *stubNav) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entry.Path
}

func (n *stubNav) Entry() domain.RouteEntry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entry
}

func (n *stubNav) Replace(path string) domain.RouteEntry {
	n.mu.Lock()
	n.entry = n.nextEntry(path)
	n.replaced = append(n.replaced, path)
	e := n.entry
	fns := append([]func(domain.RouteEntry){}, n.onEnter...)
	n.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
	return e
}

func (n *stubNav) OnEnter(fn func(domain.RouteEntry)) func() {
	n.mu.Lock()
	n.onEnter = append(n.onEnter, fn)
	n.mu.Unlock()
	return func() {}
}

func (n *stubNav) replacements() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.replaced...)
}

// ---------------------------------------------------------------------------
// Session reader
// ---------------------------------------------------------------------------

type stubSession struct {
	mu    sync.Mutex
	state domain.GateState
	sess  domain.Session
}

func authorizedAs(uid string) *stubSession {
	return &stubSession{
		state: domain.StateAuthorized,
		sess:  domain.Session{IdentityPresent: true, UserID: uid, EmailVerified: true, Role: domain.RoleMerchant, Token: "tok-" + uid},
	}
}

func (s *stubSession) State() domain.GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stubSession) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *stubSession) set(state domain.GateState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Backend
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu sync.Mutex

	setupCalls   []domain.BusinessInfo
	setupErr     error
	setupHook    func()
	categories   []ports.CreateCategoryInput
	categoryErrs map[string]error
	products     []domain.Product
	productErr   error
	services     []ports.UpdateServiceInput
	acceptErr    error
	accepted     []string
	orders       []domain.Order
}

func newStubBackend() *stubBackend {
	return &stubBackend{categoryErrs: make(map[string]error)}
}

func (b *stubBackend) AcceptOrder(_ context.Context, orderID string) (*domain.AcceptResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.acceptErr != nil {
		return nil, b.acceptErr
	}
	b.accepted = append(b.accepted, orderID)
	return &domain.AcceptResult{OrderID: orderID, Status: string(domain.OrderAcceptedByMerchant)}, nil
}

func (b *stubBackend) MerchantOrders(_ context.Context) ([]domain.Order, error) {
	return b.orders, nil
}

func (b *stubBackend) SetupBusiness(_ context.Context, in ports.SetupBusinessInput) error {
	if b.setupHook != nil {
		b.setupHook()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.setupErr != nil {
		return b.setupErr
	}
	b.setupCalls = append(b.setupCalls, in)
	return nil
}

func (b *stubBackend) CreateCategory(_ context.Context, in ports.CreateCategoryInput) (*domain.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.categoryErrs[in.Name]; err != nil {
		return nil, err
	}
	b.categories = append(b.categories, in)
	return &domain.Category{ID: "cat-" + in.Name, Name: in.Name, Icon: in.Icon, SortOrder: in.SortOrder}, nil
}

func (b *stubBackend) CreateProduct(_ context.Context, _ string, in ports.CreateProductInput) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.productErr != nil {
		return nil, b.productErr
	}
	p := domain.Product{
		ID:        fmt.Sprintf("p%d", len(b.products)+1),
		Name:      in.Name,
		Category:  in.Category,
		Price:     in.Price,
		Available: in.Available,
	}
	b.products = append(b.products, p)
	return &p, nil
}

func (b *stubBackend) Products(_ context.Context, _ string) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Product(nil), b.products...), nil
}

func (b *stubBackend) UpdateService(_ context.Context, _ string, in ports.UpdateServiceInput) (*domain.Service, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.services = append(b.services, in)
	return &domain.Service{
		ID:                         in.ServiceID,
		Name:                       in.Name,
		Price:                      in.Price,
		Inclusions:                 in.Inclusions,
		DefaultDetergentID:         in.DefaultDetergentID,
		DefaultFabricConditionerID: in.DefaultFabricConditionerID,
	}, nil
}

func (b *stubBackend) categoryNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.categories))
	for _, c := range b.categories {
		out = append(out, c.Name)
	}
	return out
}

// ---------------------------------------------------------------------------
// Repositories and collaborators
// ---------------------------------------------------------------------------

type stubBusinessRepo struct {
	info    *domain.BusinessInfo
	infoErr error
	cats    []domain.Category
	prods   []domain.Product
	svcs    []domain.Service
}

func (r *stubBusinessRepo) Info(_ context.Context, _ string) (*domain.BusinessInfo, error) {
	return r.info, r.infoErr
}

func (r *stubBusinessRepo) Categories(_ context.Context, _ string) ([]domain.Category, error) {
	return r.cats, nil
}

func (r *stubBusinessRepo) Products(_ context.Context, _ string) ([]domain.Product, error) {
	return r.prods, nil
}

func (r *stubBusinessRepo) Services(_ context.Context, _ string) ([]domain.Service, error) {
	return r.svcs, nil
}

type stubStatus struct {
	complete bool
	err      error
	calls    int
	hook     func()
}

func (s *stubStatus) SetupComplete(_ context.Context, _ string) (bool, error) {
	s.calls++
	if s.hook != nil {
		s.hook()
	}
	return s.complete, s.err
}

type stubGeocoder struct {
	coords  domain.Coordinates
	err     error
	queries []string
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	g.queries = append(g.queries, address)
	return g.coords, g.err
}

type stubImages struct {
	keys []string
}

func (s *stubImages) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.test/" + key, nil
}

type stubOrderRepo struct {
	orders []domain.Order
	err    error
}

func (r *stubOrderRepo) ByMerchantStatus(_ context.Context, merchantID string, status domain.OrderStatus) ([]domain.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Order
	for _, o := range r.orders {
		if o.MerchantID == merchantID && o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubWalletRepo struct {
	wallet *domain.Wallet
	err    error
}

func (r *stubWalletRepo) Find(_ context.Context, _ string) (*domain.Wallet, error) {
	return r.wallet, r.err
}

type stubLock struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newStubLock() *stubLock {
	return &stubLock{held: make(map[string]bool)}
}

func (l *stubLock) Acquire(_ context.Context, orderID string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[orderID] {
		return false, nil
	}
	l.held[orderID] = true
	return true, nil
}

func (l *stubLock) Release(_ context.Context, orderID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, orderID)
	return nil
}

type stubDivisions struct {
	cities    []ports.Division
	barangays map[string][]ports.Division
}

func (d *stubDivisions) Cities(_ context.Context) ([]ports.Division, error) {
	return append([]ports.Division(nil), d.cities...), nil
}

func (d *stubDivisions) Barangays(_ context.Context, code string) ([]ports.Division, error) {
	b, ok := d.barangays[code]
	if !ok {
		return nil, fmt.Errorf("city %s: %w", code, domain.ErrNetwork)
	}
	return append([]ports.Division(nil), b...), nil
}

func merchantSession(uid string) domain.Session {
	return domain.Session{IdentityPresent: true, UserID: uid, Email: strings.ToLower(uid) + "@test.ph", EmailVerified: true, Role: domain.RoleMerchant, Token: "tok-" + uid}
}
