package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lalaba/merchant-app/internal/api/metrics"
	"github.com/lalaba/merchant-app/internal/core/domain"
	"github.com/lalaba/merchant-app/internal/core/ports"
	"github.com/lalaba/merchant-app/internal/pkg/validate"
)

const (
	defaultOpen  = "08:00"
	defaultClose = "17:00"
	customIcon   = "🧺"
)

// BusinessInfoInput is the step-0 form.
type BusinessInfoInput struct {
	BusinessName      string `json:"businessName" validate:"required"`
	ExactAddress      string `json:"exactAddress" validate:"required"`
	Barangay          string `json:"barangay" validate:"required"`
	City              string `json:"city" validate:"required"`
	PhoneNumber       string `json:"phoneNumber" validate:"required"`
	Open              string `json:"open" validate:"omitempty,datetime=15:04"`
	Close             string `json:"close" validate:"omitempty,datetime=15:04"`
	OrderTypeDelivery bool   `json:"orderTypeDelivery"`
	// Image is an optional logo; ImageContentType defaults to image/jpeg.
	Image            []byte `json:"-"`
	ImageContentType string `json:"-"`
}

// ProductInput is one product form submission.
type ProductInput struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Price    float64 `json:"price" validate:"gt=0"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// ServiceInput is one service card; Price is the raw form text.
type ServiceInput struct {
	ServiceID                  string   `json:"serviceId,omitempty"`
	Name                       string   `json:"name" validate:"required,oneof=Regular Premium"`
	Price                      string   `json:"price" validate:"required"`
	Inclusions                 []string `json:"inclusions"`
	DefaultDetergentID         string   `json:"defaultDetergentId" validate:"required"`
	DefaultFabricConditionerID string   `json:"defaultFabricConditionerId" validate:"required"`
}

// CategoryBatchResult reports a best-effort default-category save.
type CategoryBatchResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// ProductOptions are the service default choices built from saved products.
type ProductOptions struct {
	Detergents         []domain.ProductOption `json:"detergents"`
	FabricConditioners []domain.ProductOption `json:"fabricConditioners"`
}

// WizardDeps are the collaborators shared by every wizard instance.
type WizardDeps struct {
	Session           ports.SessionReader
	Backend           ports.Backend
	Repo              ports.BusinessRepository
	Geocoder          ports.Geocoder
	Images            ports.ImageStore
	Validator         *validate.Validator
	DefaultCategories []string
	Log               zerolog.Logger
}

// Wizard sequences business setup. Every step advances only after its write
// is acknowledged, and the step index never decreases. Operations on one
// instance are serialised; Close may be called at any time and makes
// completions that arrive afterwards leave the state untouched.
type Wizard struct {
	merchantID string
	deps       WizardDeps

	op     sync.Mutex
	closed atomic.Bool

	mu       sync.RWMutex
	state    domain.WizardState
	info     *domain.BusinessInfo
	custom   []string
	products []domain.Product
	services map[string]domain.Service
	summary  *domain.SetupSummary
}

// NewWizard creates a wizard at the Info step for merchantID.
func NewWizard(merchantID string, deps WizardDeps) *Wizard {
	if deps.Validator == nil {
		deps.Validator = validate.New()
	}
	return &Wizard{
		merchantID: merchantID,
		deps:       deps,
		state:      domain.WizardState{CurrentStep: domain.StepInfo},
		services:   make(map[string]domain.Service),
	}
}

func (w *Wizard) MerchantID() string { return w.merchantID }

// Close marks the wizard's screen as gone.
func (w *Wizard) Close() { w.closed.Store(true) }

func (w *Wizard) Closed() bool { return w.closed.Load() }

// State returns a copy of the current progress.
func (w *Wizard) State() domain.WizardState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := w.state
	st.Payloads = append([]domain.StepPayload(nil), w.state.Payloads...)
	return st
}

// Categories returns defaults followed by custom categories.
func (w *Wizard) Categories() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.allCategoriesLocked()
}

// Load resumes from the persisted business profile. A completed setup turns
// the wizard into a read-only summary; a profile saved without completion
// resumes at the first step whose data is not persisted yet. Read failures
// leave the stepped flow where it is.
func (w *Wizard) Load(ctx context.Context) (domain.WizardState, error) {
	w.op.Lock()
	defer w.op.Unlock()

	info, err := w.deps.Repo.Info(ctx, w.merchantID)
	if err != nil {
		w.deps.Log.Warn().Err(err).Str("uid", w.merchantID).Msg("failed to load business info")
		return w.State(), nil
	}
	if info == nil {
		return w.State(), nil
	}
	if !info.Status {
		return w.resume(ctx, info)
	}

	summary, err := w.loadSummary(ctx, info)
	if err != nil {
		w.deps.Log.Warn().Err(err).Str("uid", w.merchantID).Msg("failed to load setup summary")
	}
	if w.closed.Load() {
		return w.State(), domain.ErrWizardClosed
	}

	w.mu.Lock()
	w.info = info
	w.state.CurrentStep = domain.StepDone
	w.state.Completed = true
	w.summary = summary
	w.mu.Unlock()
	return w.State(), nil
}

// resume replays the steps whose writes are already persisted: the profile,
// then categories, then products. Services are never inferred; at least one
// must be saved again before Finish.
func (w *Wizard) resume(ctx context.Context, info *domain.BusinessInfo) (domain.WizardState, error) {
	payloads := []domain.StepPayload{{Step: domain.StepInfo, Info: info}}
	step := domain.StepCategories

	var custom []string
	var products []domain.Product
	cats, err := w.deps.Repo.Categories(ctx, w.merchantID)
	if err != nil {
		w.deps.Log.Warn().Err(err).Str("uid", w.merchantID).Msg("failed to load categories")
	}
	if err == nil && len(cats) > 0 {
		names := make([]string, 0, len(cats))
		for _, c := range cats {
			names = append(names, c.Name)
			if !containsFold(w.deps.DefaultCategories, c.Name) {
				custom = append(custom, c.Name)
			}
		}
		payloads = append(payloads, domain.StepPayload{Step: domain.StepCategories, Categories: names})
		step = domain.StepProducts

		products, err = w.deps.Repo.Products(ctx, w.merchantID)
		if err != nil {
			w.deps.Log.Warn().Err(err).Str("uid", w.merchantID).Msg("failed to load products")
		}
		if err == nil && len(products) > 0 {
			payloads = append(payloads, domain.StepPayload{Step: domain.StepProducts, Products: products})
			step = domain.StepServices
		}
	}
	if w.closed.Load() {
		return w.State(), domain.ErrWizardClosed
	}

	w.mu.Lock()
	if w.state.CurrentStep == domain.StepInfo {
		w.info = info
		w.custom = custom
		w.products = append([]domain.Product(nil), products...)
		w.state.CurrentStep = step
		w.state.Payloads = payloads
	}
	w.mu.Unlock()
	w.deps.Log.Info().Str("uid", w.merchantID).Str("step", step.String()).Msg("setup resumed")
	return w.State(), nil
}

// Summary returns the read-only view for a completed setup, or what has been
// acknowledged so far otherwise.
func (w *Wizard) Summary() domain.SetupSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.summary != nil {
		return *w.summary
	}
	s := domain.SetupSummary{
		Categories: make([]domain.Category, 0),
		Products:   append([]domain.Product{}, w.products...),
		Services:   make([]domain.Service, 0, len(w.services)),
	}
	for _, p := range w.state.Payloads {
		if p.Info != nil {
			s.Info = p.Info
		}
		for i, name := range p.Categories {
			s.Categories = append(s.Categories, domain.Category{Name: name, SortOrder: i + 1})
		}
	}
	for _, name := range []string{domain.ServiceRegular, domain.ServicePremium} {
		if svc, ok := w.services[name]; ok {
			s.Services = append(s.Services, svc)
		}
	}
	return s
}

// SubmitInfo validates and persists the business profile, then advances to
// Categories. The profile is written incomplete; Finish marks it complete.
// Nothing is sent when validation fails.
func (w *Wizard) SubmitInfo(ctx context.Context, in BusinessInfoInput) error {
	w.op.Lock()
	defer w.op.Unlock()

	if err := w.expect(domain.StepInfo); err != nil {
		return err
	}
	if err := w.deps.Validator.Validate(&in); err != nil {
		return err
	}
	if err := w.requireSession(); err != nil {
		return err
	}

	info := domain.BusinessInfo{
		BusinessName:      strings.TrimSpace(in.BusinessName),
		Barangay:          in.Barangay,
		City:              in.City,
		ExactAddress:      strings.TrimSpace(in.ExactAddress),
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		OpeningHours:      domain.OpeningHours{Open: orDefault(in.Open, defaultOpen), Close: orDefault(in.Close, defaultClose)},
		OrderTypeDelivery: in.OrderTypeDelivery,
	}

	coords, err := w.deps.Geocoder.Geocode(ctx, info.FullAddress())
	if err != nil {
		return fmt.Errorf("submit info: %w", err)
	}
	info.Coordinates = coords

	if len(in.Image) > 0 && w.deps.Images != nil {
		ct := orDefault(in.ImageContentType, "image/jpeg")
		url, err := w.deps.Images.Upload(ctx, "businesses/"+w.merchantID+"/logo.jpg", ct, bytes.NewReader(in.Image))
		if err != nil {
			return fmt.Errorf("submit info: upload logo: %w", err)
		}
		info.ImageURL = url
	}

	if err := w.requireSession(); err != nil {
		return err
	}
	if err := w.deps.Backend.SetupBusiness(ctx, info); err != nil {
		return fmt.Errorf("submit info: %w", err)
	}

	if err := w.advance(domain.StepInfo, domain.StepPayload{Step: domain.StepInfo, Info: &info}); err != nil {
		return err
	}
	w.mu.Lock()
	w.info = &info
	w.mu.Unlock()
	return nil
}

// AddCategory creates one custom category. Names are compared
// case-insensitively against every category already listed.
func (w *Wizard) AddCategory(ctx context.Context, name string) error {
	w.op.Lock()
	defer w.op.Unlock()

	if err := w.expect(domain.StepCategories); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &domain.ValidationError{Fields: []string{"name"}, Msg: "name is required"}
	}

	w.mu.RLock()
	all := w.allCategoriesLocked()
	w.mu.RUnlock()
	if containsFold(all, name) {
		return fmt.Errorf("%q: %w", name, domain.ErrDuplicateCategory)
	}
	if err := w.requireSession(); err != nil {
		return err
	}

	_, err := w.deps.Backend.CreateCategory(ctx, ports.CreateCategoryInput{
		Name:      name,
		Icon:      customIcon,
		SortOrder: len(all) + 1,
	})
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	if w.closed.Load() {
		return domain.ErrWizardClosed
	}

	w.mu.Lock()
	w.custom = append(w.custom, name)
	w.mu.Unlock()
	return nil
}

// SaveCategories writes the default categories concurrently and advances to
// Products. Individual failures are logged and skipped; they never block the
// step.
func (w *Wizard) SaveCategories(ctx context.Context) (CategoryBatchResult, error) {
	w.op.Lock()
	defer w.op.Unlock()

	var res CategoryBatchResult
	if err := w.expect(domain.StepCategories); err != nil {
		return res, err
	}
	if err := w.requireSession(); err != nil {
		return res, err
	}

	w.mu.RLock()
	custom := append([]string(nil), w.custom...)
	w.mu.RUnlock()

	toAdd := make([]string, 0, len(w.deps.DefaultCategories))
	for _, cat := range w.deps.DefaultCategories {
		if containsFold(custom, cat) {
			res.Skipped = append(res.Skipped, cat)
			continue
		}
		toAdd = append(toAdd, cat)
	}

	ok := make([]bool, len(toAdd))
	var wg sync.WaitGroup
	for i, cat := range toAdd {
		wg.Add(1)
		go func(i int, cat string) {
			defer wg.Done()
			_, err := w.deps.Backend.CreateCategory(ctx, ports.CreateCategoryInput{
				Name:      cat,
				Icon:      defaultIcon(cat),
				SortOrder: i + 1,
			})
			if err != nil {
				w.deps.Log.Warn().Err(err).Str("category", cat).Msg("failed to add default category")
				return
			}
			ok[i] = true
		}(i, cat)
	}
	wg.Wait()

	for i, cat := range toAdd {
		if ok[i] {
			res.Created = append(res.Created, cat)
		} else {
			res.Skipped = append(res.Skipped, cat)
		}
	}
	metrics.CategoryBatchItemsTotal.WithLabelValues("created").Add(float64(len(res.Created)))
	metrics.CategoryBatchItemsTotal.WithLabelValues("skipped").Add(float64(len(res.Skipped)))
	if len(res.Skipped) > 0 {
		w.deps.Log.Info().
			Int("created", len(res.Created)).
			Int("skipped", len(res.Skipped)).
			Msg(domain.ErrPartialBatch.Error())
	}

	names := append(append([]string{}, res.Created...), custom...)
	return res, w.advance(domain.StepCategories, domain.StepPayload{Step: domain.StepCategories, Categories: names})
}

// AddProduct creates one product. It does not advance the wizard; call
// FinishProducts once the product list is done.
func (w *Wizard) AddProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	w.op.Lock()
	defer w.op.Unlock()

	if err := w.expect(domain.StepProducts); err != nil {
		return nil, err
	}
	if err := w.deps.Validator.Validate(&in); err != nil {
		return nil, err
	}
	if !containsFold(w.Categories(), in.Category) {
		return nil, &domain.ValidationError{Fields: []string{"category"}, Msg: "category must be one of the saved categories"}
	}
	if err := w.requireSession(); err != nil {
		return nil, err
	}

	p, err := w.deps.Backend.CreateProduct(ctx, w.merchantID, ports.CreateProductInput{
		Name:      strings.TrimSpace(in.Name),
		Category:  in.Category,
		Price:     in.Price,
		ImageURL:  in.ImageURL,
		Available: true,
	})
	if err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	if w.closed.Load() {
		return nil, domain.ErrWizardClosed
	}

	w.mu.Lock()
	w.products = append(w.products, *p)
	w.mu.Unlock()
	return p, nil
}

// FinishProducts advances to Services once at least one product is saved.
func (w *Wizard) FinishProducts(_ context.Context) error {
	w.op.Lock()
	defer w.op.Unlock()

	if err := w.expect(domain.StepProducts); err != nil {
		return err
	}
	w.mu.RLock()
	products := append([]domain.Product(nil), w.products...)
	w.mu.RUnlock()
	if len(products) == 0 {
		return fmt.Errorf("products: %w", domain.ErrStepNotAcknowledged)
	}
	return w.advance(domain.StepProducts, domain.StepPayload{Step: domain.StepProducts, Products: products})
}

// ProductOptions lists saved detergents and fabric conditioners for the
// service defaults, as reported by the backend.
func (w *Wizard) ProductOptions(ctx context.Context) (ProductOptions, error) {
	products, err := w.deps.Backend.Products(ctx, w.merchantID)
	if err != nil {
		return ProductOptions{}, fmt.Errorf("product options: %w", err)
	}
	return ProductOptions{
		Detergents:         domain.OptionsFor(products, domain.CategoryDetergent),
		FabricConditioners: domain.OptionsFor(products, domain.CategoryFabricConditioner),
	}, nil
}

// SaveService updates one service by name. Saves are independent of each
// other and of Finish.
func (w *Wizard) SaveService(ctx context.Context, in ServiceInput) (*domain.Service, error) {
	w.op.Lock()
	defer w.op.Unlock()

	if err := w.expect(domain.StepServices); err != nil {
		return nil, err
	}
	if err := w.deps.Validator.Validate(&in); err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || price <= 0 {
		return nil, &domain.ValidationError{Fields: []string{"price"}, Msg: "please fill all required fields correctly"}
	}
	if err := w.requireSession(); err != nil {
		return nil, err
	}

	inclusions := make([]string, 0, len(in.Inclusions))
	for _, inc := range in.Inclusions {
		if s := strings.TrimSpace(inc); s != "" {
			inclusions = append(inclusions, s)
		}
	}

	svc, err := w.deps.Backend.UpdateService(ctx, w.merchantID, ports.UpdateServiceInput{
		ServiceID:                  in.ServiceID,
		Name:                       in.Name,
		Price:                      price,
		Inclusions:                 inclusions,
		DefaultDetergentID:         in.DefaultDetergentID,
		DefaultFabricConditionerID: in.DefaultFabricConditionerID,
	})
	if err != nil {
		return nil, fmt.Errorf("save service %s: %w", in.Name, err)
	}
	if w.closed.Load() {
		return nil, domain.ErrWizardClosed
	}

	w.mu.Lock()
	w.services[in.Name] = *svc
	w.mu.Unlock()
	return svc, nil
}

// Finish moves Services to Done once at least one service has been saved,
// rewriting the profile with its status set so the setup counts as complete.
func (w *Wizard) Finish(ctx context.Context) error {
	w.op.Lock()
	defer w.op.Unlock()

	if err := w.expect(domain.StepServices); err != nil {
		return err
	}
	w.mu.RLock()
	saved := make([]domain.Service, 0, len(w.services))
	for _, name := range []string{domain.ServiceRegular, domain.ServicePremium} {
		if svc, ok := w.services[name]; ok {
			saved = append(saved, svc)
		}
	}
	var info domain.BusinessInfo
	if w.info != nil {
		info = *w.info
	}
	hasInfo := w.info != nil
	w.mu.RUnlock()
	if len(saved) == 0 {
		return fmt.Errorf("services: %w", domain.ErrStepNotAcknowledged)
	}
	if !hasInfo {
		return fmt.Errorf("business info: %w", domain.ErrStepNotAcknowledged)
	}
	if err := w.requireSession(); err != nil {
		return err
	}

	info.Status = true
	if err := w.deps.Backend.SetupBusiness(ctx, info); err != nil {
		return fmt.Errorf("finish setup: %w", err)
	}
	if err := w.advance(domain.StepServices, domain.StepPayload{Step: domain.StepServices, Info: &info, Services: saved}); err != nil {
		return err
	}
	w.mu.Lock()
	w.info = &info
	w.mu.Unlock()
	return nil
}

// expect checks that the wizard is open and at step.
func (w *Wizard) expect(step domain.WizardStep) error {
	if w.closed.Load() {
		return domain.ErrWizardClosed
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state.Terminal() {
		return domain.ErrWizardCompleted
	}
	if w.state.CurrentStep != step {
		return fmt.Errorf("%w: at %s, not %s", domain.ErrInvalidStep, w.state.CurrentStep, step)
	}
	return nil
}

// requireSession re-checks, after any suspension, that the merchant who
// opened the wizard is still signed in.
func (w *Wizard) requireSession() error {
	if w.deps.Session == nil {
		return nil
	}
	if w.deps.Session.State() != domain.StateAuthorized || w.deps.Session.Session().UserID != w.merchantID {
		return domain.ErrAuthenticationRequired
	}
	return nil
}

// advance moves from step to step+1 and records payload.
func (w *Wizard) advance(from domain.WizardStep, payload domain.StepPayload) error {
	if w.closed.Load() {
		return domain.ErrWizardClosed
	}
	w.mu.Lock()
	if w.state.CurrentStep != from {
		w.mu.Unlock()
		return fmt.Errorf("%w: at %s, not %s", domain.ErrInvalidStep, w.state.CurrentStep, from)
	}
	w.state.CurrentStep = from + 1
	w.state.Payloads = append(w.state.Payloads, payload)
	if w.state.CurrentStep == domain.StepDone {
		w.state.Completed = true
	}
	w.mu.Unlock()

	metrics.WizardStepsCompletedTotal.WithLabelValues(from.String()).Inc()
	w.deps.Log.Info().Str("uid", w.merchantID).Str("step", from.String()).Msg("setup step completed")
	return nil
}

func (w *Wizard) loadSummary(ctx context.Context, info *domain.BusinessInfo) (*domain.SetupSummary, error) {
	s := &domain.SetupSummary{Info: info}
	var err error
	if s.Categories, err = w.deps.Repo.Categories(ctx, w.merchantID); err != nil {
		return s, err
	}
	if s.Products, err = w.deps.Repo.Products(ctx, w.merchantID); err != nil {
		return s, err
	}
	if s.Services, err = w.deps.Repo.Services(ctx, w.merchantID); err != nil {
		return s, err
	}
	return s, nil
}

func (w *Wizard) allCategoriesLocked() []string {
	all := make([]string, 0, len(w.deps.DefaultCategories)+len(w.custom))
	all = append(all, w.deps.DefaultCategories...)
	return append(all, w.custom...)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func defaultIcon(category string) string {
	if category == domain.CategoryDetergent {
		return "🧼"
	}
	return "🧴"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
