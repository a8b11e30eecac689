package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"clipvault/internal/handlers"
	"clipvault/internal/middleware"
	"clipvault/internal/models"
	"clipvault/internal/repositories"
	"clipvault/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp builds a full Fiber app over a fresh in-memory SQLite
// database with all handlers, services and middleware wired the same way
// main does, admin routes included.
func setupApp() (*fiber.App, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A named shared-cache DSN keeps each test on its own database while
	// letting GORM's connection pool see the same data.
	dsn := fmt.Sprintf("file:clipvault_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Entry{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	entryRepo := repositories.NewGORMEntryRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret, true)
	entryService := services.NewEntryService(entryRepo, tagRepo)
	tagService := services.NewTagService(tagRepo)
	adminService := services.NewAdminService(userRepo, entryRepo, tagRepo)

	authHandler := handlers.NewAuthHandler(authService)
	entryHandler := handlers.NewEntryHandler(entryService)
	tagHandler := handlers.NewTagHandler(tagService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New()
	app.Use(middleware.Audit(nil))

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	entryHandler.RegisterRoutes(protected)
	tagHandler.RegisterRoutes(protected)
	adminHandler.RegisterRoutes(protected.Group("", middleware.AdminRequired()))

	return app, nil
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// doJSON performs a JSON request against the test app, attaching the
// bearer token when one is given.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerUser registers an account and returns its bearer token.
func registerUser(t *testing.T, app *fiber.App, email string, isAdmin bool) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    email,
		"password": "password123",
		"isAdmin":  isAdmin,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	registerUser(t, app, "dup@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":    "dup@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Email already used", body["message"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	registerUser(t, app, "user@example.com", false)

	wrongPwd := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusBadRequest, wrongPwd.StatusCode)
	var wrongPwdBody map[string]string
	decodeBody(t, wrongPwd, &wrongPwdBody)

	unknown := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, unknown.StatusCode)
	var unknownBody map[string]string
	decodeBody(t, unknown, &unknownBody)

	// Same status, same body shape, same message for both failure modes.
	assert.Equal(t, wrongPwdBody, unknownBody)
	assert.Equal(t, "Invalid credentials", unknownBody["message"])
}

func TestLoginIssuesWorkingToken(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	registerUser(t, app, "login@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)

	list := doJSON(t, app, http.MethodGet, "/api/entries", body["token"], nil)
	assert.Equal(t, http.StatusOK, list.StatusCode)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/api/entries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/entries", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// entryResponse is the create/update shape: tags come back as bare IDs.
type entryResponse struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Label  string   `json:"label"`
	Value  string   `json:"value"`
	Tags   []string `json:"tags"`
	UserID string   `json:"userId"`
}

func createEntry(t *testing.T, app *fiber.App, token string, tags []string) entryResponse {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/entries", token, map[string]interface{}{
		"title": "note",
		"label": "misc",
		"value": "contents",
		"tags":  tags,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry entryResponse
	decodeBody(t, resp, &entry)
	return entry
}

func TestTagResolutionIsCaseInsensitiveAcrossEntries(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "tags@example.com", false)

	first := createEntry(t, app, token, []string{"Work"})
	second := createEntry(t, app, token, []string{"work"})

	require.Len(t, first.Tags, 1)
	require.Len(t, second.Tags, 1)
	assert.Equal(t, first.Tags[0], second.Tags[0])
}

func TestDuplicateTagNamesInOneRequestAreKept(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "dup-tags@example.com", false)

	entry := createEntry(t, app, token, []string{"a", "a"})
	require.Len(t, entry.Tags, 2)
	assert.Equal(t, entry.Tags[0], entry.Tags[1])
}

func TestListExpandsTagsToIDAndName(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "list@example.com", false)
	created := createEntry(t, app, token, []string{"Work"})

	resp := doJSON(t, app, http.MethodGet, "/api/entries", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []struct {
		ID   string `json:"id"`
		Tags []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"tags"`
	}
	decodeBody(t, resp, &listed)

	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	require.Len(t, listed[0].Tags, 1)
	assert.Equal(t, created.Tags[0], listed[0].Tags[0].ID)
	assert.Equal(t, "Work", listed[0].Tags[0].Name)
}

func TestEntriesAreOwnerScoped(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	tokenA := registerUser(t, app, "owner-a@example.com", false)
	tokenB := registerUser(t, app, "owner-b@example.com", false)

	createEntry(t, app, tokenA, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/entries", tokenB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []entryResponse
	decodeBody(t, resp, &listed)
	assert.Empty(t, listed)
}

func TestUpdateEntry(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "update@example.com", false)
	entry := createEntry(t, app, token, []string{"Work"})

	resp := doJSON(t, app, http.MethodPut, "/api/entries/"+entry.ID, token, map[string]interface{}{
		"title": "renamed",
		"label": "new-label",
		"value": "new-value",
		"tags":  []string{" Work ", "", "extra"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated entryResponse
	decodeBody(t, resp, &updated)
	assert.Equal(t, "renamed", updated.Title)
	// " Work " is trimmed and resolves to the existing tag; the empty
	// name is dropped; "extra" is newly created.
	require.Len(t, updated.Tags, 2)
	assert.Equal(t, entry.Tags[0], updated.Tags[0])
	assert.NotEqual(t, updated.Tags[0], updated.Tags[1])
}

func TestUpdateForeignEntryIsNotFound(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	tokenA := registerUser(t, app, "victim@example.com", false)
	tokenB := registerUser(t, app, "attacker@example.com", false)

	entry := createEntry(t, app, tokenA, nil)

	// An existing entry owned by someone else and a missing entry are the
	// same 404.
	resp := doJSON(t, app, http.MethodPut, "/api/entries/"+entry.ID, tokenB, map[string]interface{}{
		"title": "hijacked",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/entries/no-such-id", tokenB, map[string]interface{}{
		"title": "hijacked",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteEntryIsPermissive(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "delete@example.com", false)
	entry := createEntry(t, app, token, nil)

	resp := doJSON(t, app, http.MethodDelete, "/api/entries/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Deleting an ID that does not exist still reports success.
	resp = doJSON(t, app, http.MethodDelete, "/api/entries/no-such-id", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Deleted", body["message"])
}

func TestTagCreationExactMatchAsymmetry(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "tag-create@example.com", false)

	resp := doJSON(t, app, http.MethodPost, "/api/tags", token, map[string]string{"name": "Work"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Exact duplicate fails.
	resp = doJSON(t, app, http.MethodPost, "/api/tags", token, map[string]string{"name": "Work"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Tag already exists", body["message"])

	// A case-variant succeeds: direct creation checks the exact name only.
	resp = doJSON(t, app, http.MethodPost, "/api/tags", token, map[string]string{"name": "work"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	list := doJSON(t, app, http.MethodGet, "/api/tags", token, nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	var tags []models.Tag
	decodeBody(t, list, &tags)
	assert.Len(t, tags, 2)
}

func TestTagCreationAcceptsLongNames(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	token := registerUser(t, app, "long-tag@example.com", false)

	// No request-level length cap on tag names.
	name := strings.Repeat("n", 150)
	resp := doJSON(t, app, http.MethodPost, "/api/tags", token, map[string]string{"name": name})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var tag models.Tag
	decodeBody(t, resp, &tag)
	assert.Equal(t, name, tag.Name)
}

func TestAdminRoutesRequireAdminFlag(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	userToken := registerUser(t, app, "plain@example.com", false)
	adminToken := registerUser(t, app, "root@example.com", true)

	resp := doJSON(t, app, http.MethodDelete, "/api/admin/entries", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/admin/entries", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "All entries deleted", body["message"])
}

func TestAdminDeleteUsersKeepsAdmins(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	userToken := registerUser(t, app, "mortal@example.com", false)
	adminToken := registerUser(t, app, "keeper@example.com", true)

	resp := doJSON(t, app, http.MethodDelete, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The purged account's token no longer resolves; the admin's does.
	resp = doJSON(t, app, http.MethodGet, "/api/entries", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/entries", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminDropIsWhitelisted(t *testing.T) {
	app, err := setupApp()
	require.NoError(t, err)

	adminToken := registerUser(t, app, "dropper@example.com", true)

	resp := doJSON(t, app, http.MethodDelete, "/api/admin/drop/secrets", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/admin/drop/tags", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "tags collection dropped", body["message"])
}
