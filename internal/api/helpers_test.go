package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/mail"
	"storefront/internal/models"
	"storefront/internal/ratelimit"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (n *captureNotifier) Notify(_ context.Context, msg mail.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

// lastCode returns the code from the most recent reset mail.
func (n *captureNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return strings.TrimPrefix(n.sent[len(n.sent)-1].Body, "Your OTP is: ")
}

type fakeCategories struct {
	mu   sync.Mutex
	byID map[string]models.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{byID: map[string]models.Category{}}
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Name == c.Name {
			return database.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	f.byID[c.ID.Hex()] = *c
	return nil
}

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Category{}
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCategories) Get(_ context.Context, id string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCategories) Update(_ context.Context, id, name, description string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c.Name, c.Description = name, description
	f.byID[id] = c
	return &c, nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeProducts struct {
	mu       sync.Mutex
	items    []models.Product
	lastList [2]int64
	filter   database.ProductFilter
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeProducts) List(_ context.Context, page, limit int64) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = [2]int64{page, limit}
	total := int64(len(f.items))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return append([]models.Product{}, f.items[start:end]...), total, nil
}

func (f *fakeProducts) Search(_ context.Context, filter database.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	out := []models.Product{}
	for _, p := range f.items {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.items {
		if p.ID.Hex() == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type testEnv struct {
	handler    http.Handler
	server     *Server
	tokens     *auth.TokenService
	notifier   *captureNotifier
	categories *fakeCategories
	products   *fakeProducts
}

type envOption func(*ratelimit.Config, *Deps)

func withAnonymousLimit(n int) envOption {
	return func(c *ratelimit.Config, _ *Deps) { c.AnonymousLimit = n }
}

func withProduction() envOption {
	return func(_ *ratelimit.Config, d *Deps) { d.Production = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	log := logging.New(io.Discard, false)
	store := auth.NewMemoryStore()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	notifier := &captureNotifier{}

	rlCfg := ratelimit.Config{Window: 15 * time.Minute, AuthenticatedLimit: 1000, AnonymousLimit: 1000}
	env := &testEnv{
		tokens:     tokens,
		notifier:   notifier,
		categories: newFakeCategories(),
		products:   &fakeProducts{},
	}
	deps := Deps{
		Accounts:   auth.NewAccounts(store, hasher, tokens, log),
		Resets:     auth.NewResetFlow(store, hasher, notifier, log),
		Categories: env.categories,
		Products:   env.products,
		Gate:       auth.Gate(tokens),
		Log:        log,
	}
	for _, o := range opts {
		o(&rlCfg, &deps)
	}
	deps.RateLimit = ratelimit.New(ratelimit.NewMemoryStore(), tokens, rlCfg, log).Check

	env.server = NewServer(deps)
	env.handler = env.server.Routes()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	r := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) signupAndSignin(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/signup", map[string]string{
		"username": "bob1", "email": "bob@x.com", "password": "pass1234",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/signin", map[string]string{"email": "bob@x.com", "password": "pass1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody(t, w)["token"].(string)
}
