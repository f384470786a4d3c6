package v1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/domain"
	memcache "cardealer-backend/internal/infrastructure/cache"
	"cardealer-backend/internal/infrastructure/loginguard"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	utils.SetSecret("handler-test-secret")
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "development",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		LoginMaxAttempts:   5,
		LoginLockoutWindow: time.Minute,
		CacheSitemapTTL:    time.Minute,
		FrontendURL:        "https://cars.example.com",
		MaxCartQuantity:    10,
	}
}

func TestWriteUsecaseError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{fmt.Errorf("%w: cars_slug_key", domain.ErrConflict), http.StatusConflict},
		{domain.ErrInsufficientStock, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAccountLocked, http.StatusTooManyRequests},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeUsecaseError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}

	rec := httptest.NewRecorder()
	writeUsecaseError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password leaked"))
	assert.NotContains(t, rec.Body.String(), "leaked")
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?price_min=1500.50&price_max=abc&featured=true&from=2026-01-02&to=2026-01-31", nil)

	lo, err := queryDecimal(r, "price_min")
	require.NoError(t, err)
	assert.Equal(t, "1500.5", lo.String())

	_, err = queryDecimal(r, "price_max")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing, err := queryDecimal(r, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NotNil(t, queryBool(r, "featured"))
	assert.True(t, *queryBool(r, "featured"))

	to, err := queryDate(r, "to", true)
	require.NoError(t, err)
	assert.Equal(t, 23, to.Hour())
	assert.Equal(t, 31, to.Day())
}

func TestCarFilterFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/cars?brand=toyota&condition=used&year_min=2018&price_max=25000&sort=price_asc&page=2&limit=24", nil)

	f, err := carFilterFromQuery(r)
	require.NoError(t, err)
	assert.Equal(t, "toyota", f.Brand)
	assert.Equal(t, domain.ConditionUsed, f.Condition)
	assert.Equal(t, 2018, f.YearMin)
	assert.Equal(t, "25000", f.PriceMax.String())
	assert.Nil(t, f.PriceMin)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 24, f.Limit)
	assert.False(t, f.IncludeInactive)
}

// --- auth ---

type fakeUserRepo struct {
	domain.UserRepository
	user     *domain.User
	sessions map[string]*domain.Session
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) SaveSession(_ context.Context, s *domain.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeUserRepo) RevokeSession(_ context.Context, token string) error {
	if s, ok := f.sessions[token]; ok {
		s.Revoked = true
	}
	return nil
}

func TestLoginAndLogoutCookies(t *testing.T) {
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	repo := &fakeUserRepo{
		user:     &domain.User{ID: "u-1", Email: "buyer@example.com", PasswordHash: hash, Role: domain.RoleCustomer, IsActive: true},
		sessions: map[string]*domain.Session{},
	}
	cfg := testConfig()
	h := NewAuthHandler(usecase.NewAuthUsecase(repo, loginguard.NewMemoryStore(time.Minute), cfg), cfg)

	body := `{"email":"buyer@example.com","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, utils.AccessTokenCookie)
	require.Contains(t, cookies, refreshTokenCookie)
	assert.True(t, cookies[refreshTokenCookie].HttpOnly)
	assert.Len(t, repo.sessions, 1)

	var resp struct {
		AccessToken string       `json:"accessToken"`
		User        *domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "u-1", resp.User.ID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(cookies[refreshTokenCookie])
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.sessions[cookies[refreshTokenCookie].Value].Revoked)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestLoginRejectsBadBody(t *testing.T) {
	cfg := testConfig()
	h := NewAuthHandler(usecase.NewAuthUsecase(&fakeUserRepo{}, loginguard.NewMemoryStore(time.Minute), cfg), cfg)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":1,"extra":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	cfg := testConfig()
	h := NewAuthHandler(usecase.NewAuthUsecase(&fakeUserRepo{}, loginguard.NewMemoryStore(time.Minute), cfg), cfg)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- sitemap ---

type fakeCatalogRepo struct {
	domain.CatalogRepository
}

func (fakeCatalogRepo) GetSitemapEntries(context.Context) ([]domain.SitemapEntry, error) {
	return []domain.SitemapEntry{{ItemType: domain.ItemTypeCar, Slug: "2020-mazda-cx-5", UpdatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}}, nil
}

func (fakeCatalogRepo) GetBrands(context.Context) ([]domain.Brand, error) {
	return nil, nil
}

func TestSitemapHandler(t *testing.T) {
	uc := usecase.NewSitemapUsecase(fakeCatalogRepo{}, memcache.NewMemoryCache(time.Minute, time.Minute), testConfig())
	rec := httptest.NewRecorder()
	NewSitemapHandler(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, body, "<loc>https://cars.example.com/cars/2020-mazda-cx-5</loc>")
	assert.Contains(t, body, "<lastmod>2026-01-05</lastmod>")
}

// --- config ---

func TestGetEnums(t *testing.T) {
	h := NewConfigHandler(memcache.NewMemoryCache(time.Minute, time.Minute), testConfig())
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.GetEnums(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config/enums", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp, "paymentMethods")
		assert.Contains(t, resp, "fuelTypes")
	}
}

// --- upload ---

type fakeImageStore struct {
	folder      string
	contentType string
	size        int
}

func (f *fakeImageStore) UploadBuffer(_ context.Context, folder string, data []byte, contentType string) (string, error) {
	f.folder, f.contentType, f.size = folder, contentType, len(data)
	return "https://img.example.com/" + folder + "/x.webp", nil
}

func (f *fakeImageStore) DeleteFile(context.Context, string) error { return nil }

func multipartImage(t *testing.T, filename, contentType, folder string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var raw bytes.Buffer
	require.NoError(t, png.Encode(&raw, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	store := &fakeImageStore{}
	h := NewUploadHandler(store, 5)

	body, ct := multipartImage(t, "front.png", "image/png", "parts")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.UploadFile(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "parts", store.folder)
	assert.Contains(t, []string{"image/webp", "image/jpeg"}, store.contentType)
	assert.Positive(t, store.size)
}

func TestUploadFileRejects(t *testing.T) {
	h := NewUploadHandler(&fakeImageStore{}, 5)

	cases := []struct {
		name, filename, contentType, folder string
	}{
		{"mime", "doc.png", "application/pdf", ""},
		{"extension", "front.exe", "image/png", ""},
		{"folder", "front.png", "image/png", "../etc"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			body, ct := multipartImage(t, c.filename, c.contentType, c.folder)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.UploadFile(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	NewUploadHandler(nil, 5).UploadFile(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
