package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notesaas/internal/caching"
	"notesaas/internal/middleware"
	"notesaas/internal/models"
	"notesaas/internal/repositories"
	"notesaas/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type APITestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (suite *APITestSuite) SetupTest() {
	ctx := context.Background()
	db := repositories.NewDB()
	_, err := repositories.SeedIfEmpty(ctx, db, bcrypt.MinCost)
	require.NoError(suite.T(), err)

	log := zap.NewNop()
	tenantRepo := repositories.NewTenantRepo(db)
	userRepo := repositories.NewUserRepo(db)
	noteRepo := repositories.NewNoteRepo(db)
	cache := caching.NewMemoryCacheService()

	billing := services.NewBillingService(tenantRepo, services.NewStripeGateway(""), services.BillingConfig{}, log)
	authSvc := services.NewAuthService(userRepo, tenantRepo, cache, services.AuthConfig{
		JWTSecret:             "handlers-test-secret",
		Issuer:                "notesaas",
		TokenTTL:              time.Hour,
		BcryptCost:            bcrypt.MinCost,
		DefaultInvitePassword: "password",
		MaxLoginAttempts:      10,
		LoginWindow:           time.Minute,
	}, log)

	suite.echo = NewEcho(Server{
		AuthService:    authSvc,
		TenantService:  services.NewTenantService(tenantRepo, billing, log),
		NoteService:    services.NewNoteService(noteRepo, tenantRepo),
		BillingService: billing,
		Health:         NewHealthHandlers(cache, "pong", "test"),
		Log:            log,
		Version:        "test",
		CORSOrigins:    []string{"*"},
	})
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (suite *APITestSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *APITestSuite) decode(rec *httptest.ResponseRecorder, dst interface{}) {
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (suite *APITestSuite) errorMessage(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	suite.decode(rec, &body)
	return body["error"]
}

func (suite *APITestSuite) login(email string) string {
	rec := suite.do(http.MethodPost, "/api/auth/login", "",
		`{"email":"`+email+`","password":"`+repositories.SeedPassword+`"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	var resp services.AuthResponse
	suite.decode(rec, &resp)
	require.NotEmpty(suite.T(), resp.Token)
	return resp.Token
}

func (suite *APITestSuite) createNote(token, body string) *httptest.ResponseRecorder {
	return suite.do(http.MethodPost, "/api/notes", token, body)
}

func (suite *APITestSuite) mustCreateNote(token, body string) models.Note {
	rec := suite.createNote(token, body)
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	var note models.Note
	suite.decode(rec, &note)
	return note
}

func (suite *APITestSuite) TestHealth() {
	rec := suite.do(http.MethodGet, "/health", "", "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"status":"ok"}`, rec.Body.String())
	assert.Equal(suite.T(), "test", rec.Header().Get(middleware.HeaderAPIVersion))
}

func (suite *APITestSuite) TestReady() {
	rec := suite.do(http.MethodGet, "/health/ready", "", "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	var status ReadinessStatus
	suite.decode(rec, &status)
	assert.Equal(suite.T(), "ok", status.Status)
	assert.Equal(suite.T(), "healthy", status.Services["cache"])
}

func (suite *APITestSuite) TestPing() {
	rec := suite.do(http.MethodGet, "/api/ping", "", "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"message":"pong"}`, rec.Body.String())
}

func (suite *APITestSuite) TestStripeConfig_Unconfigured() {
	rec := suite.do(http.MethodGet, "/api/stripe/config", "", "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(),
		`{"publishableKey":null,"enabled":false,"paymentLinkBasic":null,"paymentLinkPro":null}`,
		rec.Body.String())
}

func (suite *APITestSuite) TestMissingAuthorization() {
	rec := suite.do(http.MethodGet, "/api/notes", "", "")

	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(suite.T(), "Missing Authorization header", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestInvalidToken() {
	rec := suite.do(http.MethodGet, "/api/tenants/me", "not-a-jwt", "")

	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(suite.T(), "Invalid token", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestLogin_SeededUser() {
	rec := suite.do(http.MethodPost, "/api/auth/login", "",
		`{"email":"admin@acme.test","password":"password","tenantSlug":"globex"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	var resp services.AuthResponse
	suite.decode(rec, &resp)
	assert.NotEmpty(suite.T(), resp.Token)
	assert.Equal(suite.T(), "admin@acme.test", resp.User.Email)
	assert.Equal(suite.T(), models.RoleAdmin, resp.User.Role)
	assert.Equal(suite.T(), "acme", resp.Tenant.Slug)
	assert.Equal(suite.T(), models.PlanFree, resp.Tenant.Plan)
}

func (suite *APITestSuite) TestLogin_WrongPassword() {
	rec := suite.do(http.MethodPost, "/api/auth/login", "", `{"email":"admin@acme.test","password":"nope"}`)

	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(suite.T(), "Invalid credentials", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestLogin_MalformedBody() {
	rec := suite.do(http.MethodPost, "/api/auth/login", "", `{"email":`)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "Invalid request body", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestTenantMe() {
	token := suite.login("user@globex.test")

	rec := suite.do(http.MethodGet, "/api/tenants/me", token, "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"slug":"globex","name":"Globex","plan":"free"}`, rec.Body.String())
}

func (suite *APITestSuite) TestFreePlanMemberQuota() {
	member := suite.login("user@acme.test")
	admin := suite.login("admin@acme.test")

	for i := 0; i < models.FreePlanMemberNoteLimit; i++ {
		suite.mustCreateNote(member, `{"title":"n","content":"c"}`)
	}

	rec := suite.createNote(member, `{"title":"one too many"}`)
	assert.Equal(suite.T(), http.StatusPaymentRequired, rec.Code)
	assert.Equal(suite.T(), "Free plan limit reached for members. Upgrade to Pro.", suite.errorMessage(rec))

	// Admins are not held to the member quota.
	suite.mustCreateNote(admin, `{"title":"admin note"}`)

	rec = suite.do(http.MethodGet, "/api/notes", member, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var notes []models.Note
	suite.decode(rec, &notes)
	assert.Len(suite.T(), notes, models.FreePlanMemberNoteLimit+1)
}

func (suite *APITestSuite) TestQuotaIsPerTenant() {
	acme := suite.login("user@acme.test")
	globex := suite.login("user@globex.test")

	for i := 0; i < models.FreePlanMemberNoteLimit; i++ {
		suite.mustCreateNote(acme, `{}`)
	}

	suite.mustCreateNote(globex, `{}`)
}

func (suite *APITestSuite) TestCrossTenantAccessIsNotFound() {
	acme := suite.login("admin@acme.test")
	globex := suite.login("admin@globex.test")
	note := suite.mustCreateNote(acme, `{"title":"secret"}`)
	path := "/api/notes/" + note.ID.String()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		body := ""
		if method == http.MethodPut {
			body = `{"title":"stolen"}`
		}
		rec := suite.do(method, path, globex, body)
		assert.Equal(suite.T(), http.StatusNotFound, rec.Code, method)
		assert.Equal(suite.T(), "Not found", suite.errorMessage(rec), method)
	}

	rec := suite.do(http.MethodGet, "/api/notes", globex, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `[]`, rec.Body.String())

	rec = suite.do(http.MethodGet, path, acme, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var got models.Note
	suite.decode(rec, &got)
	assert.Equal(suite.T(), "secret", got.Title)
}

func (suite *APITestSuite) TestNoteLifecycle() {
	token := suite.login("user@acme.test")
	created := suite.mustCreateNote(token, `{"title":"first","content":"body"}`)
	assert.Equal(suite.T(), "first", created.Title)
	assert.Equal(suite.T(), "body", created.Content)
	assert.Equal(suite.T(), created.CreatedAt, created.UpdatedAt)
	path := "/api/notes/" + created.ID.String()

	rec := suite.do(http.MethodGet, path, token, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var fetched models.Note
	suite.decode(rec, &fetched)
	assert.Equal(suite.T(), created.ID, fetched.ID)

	rec = suite.do(http.MethodPut, path, token, `{"content":"edited"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var updated models.Note
	suite.decode(rec, &updated)
	assert.Equal(suite.T(), "first", updated.Title)
	assert.Equal(suite.T(), "edited", updated.Content)
	assert.True(suite.T(), updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(suite.T(), created.CreatedAt, updated.CreatedAt)

	rec = suite.do(http.MethodDelete, path, token, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var deleted models.Note
	suite.decode(rec, &deleted)
	assert.Equal(suite.T(), created.ID, deleted.ID)

	rec = suite.do(http.MethodGet, path, token, "")
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *APITestSuite) TestCreateNote_Defaults() {
	token := suite.login("user@acme.test")

	empty := suite.mustCreateNote(token, "")
	assert.Equal(suite.T(), models.DefaultNoteTitle, empty.Title)
	assert.Equal(suite.T(), "", empty.Content)

	blank := suite.mustCreateNote(token, `{"title":"","content":42}`)
	assert.Equal(suite.T(), models.DefaultNoteTitle, blank.Title)
	assert.Equal(suite.T(), "", blank.Content)
}

func (suite *APITestSuite) TestUpdateNote_IgnoresNonStringFields() {
	token := suite.login("admin@globex.test")
	created := suite.mustCreateNote(token, `{"title":"keep","content":"old"}`)

	rec := suite.do(http.MethodPut, "/api/notes/"+created.ID.String(), token,
		`{"title":5,"content":"new","tenantId":"00000000-0000-0000-0000-000000000000"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	var updated models.Note
	suite.decode(rec, &updated)
	assert.Equal(suite.T(), "keep", updated.Title)
	assert.Equal(suite.T(), "new", updated.Content)
	assert.Equal(suite.T(), created.TenantID, updated.TenantID)
}

func (suite *APITestSuite) TestNoteFields_NullsAreIgnored() {
	token := suite.login("admin@globex.test")

	created := suite.mustCreateNote(token, `{"title":null,"content":"body"}`)
	assert.Equal(suite.T(), models.DefaultNoteTitle, created.Title)

	rec := suite.do(http.MethodPut, "/api/notes/"+created.ID.String(), token, `{"title":"keep"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	rec = suite.do(http.MethodPut, "/api/notes/"+created.ID.String(), token, `{"title":null,"content":null}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	var updated models.Note
	suite.decode(rec, &updated)
	assert.Equal(suite.T(), "keep", updated.Title)
	assert.Equal(suite.T(), "body", updated.Content)
}

func (suite *APITestSuite) TestUpdateNote_InvalidJSON() {
	token := suite.login("admin@globex.test")
	created := suite.mustCreateNote(token, `{}`)

	rec := suite.do(http.MethodPut, "/api/notes/"+created.ID.String(), token, `{"title":`)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *APITestSuite) TestMalformedNoteID() {
	token := suite.login("user@acme.test")

	rec := suite.do(http.MethodGet, "/api/notes/not-a-uuid", token, "")

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *APITestSuite) TestTrailingSlash() {
	token := suite.login("user@acme.test")

	rec := suite.do(http.MethodGet, "/api/notes/", token, "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *APITestSuite) TestSignupThenLogin() {
	rec := suite.do(http.MethodPost, "/api/auth/signup", "",
		`{"email":"new@acme.test","password":"s3cret","tenantSlug":"acme"}`)
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())

	var signup services.AuthResponse
	suite.decode(rec, &signup)
	assert.Equal(suite.T(), models.RoleMember, signup.User.Role)
	assert.Equal(suite.T(), "acme", signup.Tenant.Slug)

	rec = suite.do(http.MethodPost, "/api/auth/login", "", `{"email":"new@acme.test","password":"s3cret"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var login services.AuthResponse
	suite.decode(rec, &login)
	assert.Equal(suite.T(), signup.User.ID, login.User.ID)
}

func (suite *APITestSuite) TestSignup_Errors() {
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"unknown tenant", `{"email":"x@y.test","password":"p","tenantSlug":"initech"}`, "Invalid tenant"},
		{"duplicate email", `{"email":"user@acme.test","password":"p","tenantSlug":"acme"}`, "Email already exists"},
		{"missing password", `{"email":"x@y.test","tenantSlug":"acme"}`, "password is required"},
		{"password over bcrypt limit", `{"email":"x@y.test","password":"` + strings.Repeat("x", 80) + `","tenantSlug":"acme"}`, "password must be at most 72 bytes"},
	}

	for _, tc := range cases {
		rec := suite.do(http.MethodPost, "/api/auth/signup", "", tc.body)
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, tc.name)
		assert.Equal(suite.T(), tc.message, suite.errorMessage(rec), tc.name)
	}
}

func (suite *APITestSuite) TestInvite() {
	admin := suite.login("admin@acme.test")

	rec := suite.do(http.MethodPost, "/api/tenants/acme/invite", admin, `{"email":"invitee@acme.test","role":"admin"}`)
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	var resp services.InviteResponse
	suite.decode(rec, &resp)
	assert.Equal(suite.T(), models.RoleAdmin, resp.User.Role)

	rec = suite.do(http.MethodPost, "/api/auth/login", "", `{"email":"invitee@acme.test","password":"password"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var login services.AuthResponse
	suite.decode(rec, &login)
	assert.Equal(suite.T(), "acme", login.Tenant.Slug)
}

func (suite *APITestSuite) TestInvite_MemberForbidden() {
	member := suite.login("user@acme.test")

	rec := suite.do(http.MethodPost, "/api/tenants/acme/invite", member, `{"email":"x@acme.test"}`)

	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Equal(suite.T(), "Admin role required", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestUpgrade_OtherTenantForbidden() {
	admin := suite.login("admin@acme.test")

	rec := suite.do(http.MethodPost, "/api/tenants/globex/upgrade", admin, "")

	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Equal(suite.T(), "Cannot upgrade another tenant", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestUpgrade_MemberForbidden() {
	member := suite.login("user@acme.test")

	rec := suite.do(http.MethodPost, "/api/tenants/acme/upgrade", member, "")

	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
}

func (suite *APITestSuite) TestUpgrade_UnknownTenant() {
	admin := suite.login("admin@acme.test")

	rec := suite.do(http.MethodPost, "/api/tenants/initech/upgrade", admin, "")

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), "Tenant not found", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestCheckoutWithoutStripeThenUpgradeLiftsQuota() {
	member := suite.login("user@acme.test")
	admin := suite.login("admin@acme.test")
	for i := 0; i < models.FreePlanMemberNoteLimit; i++ {
		suite.mustCreateNote(member, `{}`)
	}
	require.Equal(suite.T(), http.StatusPaymentRequired, suite.createNote(member, `{}`).Code)

	rec := suite.do(http.MethodPost, "/api/billing/checkout", "", `{"plan":"pro","tenantSlug":"acme"}`)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var checkout map[string]interface{}
	suite.decode(rec, &checkout)
	assert.Contains(suite.T(), checkout, "url")
	assert.Nil(suite.T(), checkout["url"])

	rec = suite.do(http.MethodPost, "/api/tenants/acme/upgrade", admin, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"message":"Upgraded to Pro","plan":"pro"}`, rec.Body.String())

	// Upgrading again is harmless.
	rec = suite.do(http.MethodPost, "/api/tenants/acme/upgrade", admin, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)

	rec = suite.do(http.MethodGet, "/api/tenants/me", member, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `{"slug":"acme","name":"Acme","plan":"pro"}`, rec.Body.String())

	suite.mustCreateNote(member, `{"title":"fourth"}`)
}

func (suite *APITestSuite) TestCheckout_UnknownTenant() {
	rec := suite.do(http.MethodPost, "/api/billing/checkout", "", `{"plan":"pro","tenantSlug":"initech"}`)

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), "Tenant not found", suite.errorMessage(rec))
}

func (suite *APITestSuite) TestUnknownRoute() {
	rec := suite.do(http.MethodGet, "/api/nothing-here", "", "")

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}
