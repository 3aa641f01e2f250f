package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/adapters/persistence/testdb"
	"washtech-rental/internal/config"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/jwt"
	"washtech-rental/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const day = "2025-06-01"

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type server struct {
	t     *testing.T
	app   *fiber.App
	repos *repositories.Repos
	cfg   *config.Config
	seq   int
}

type session struct {
	id    uint
	token string
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.New(t)
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Pricing: config.PricingConfig{
			Mode:       "flat",
			FlatAmount: decimal.NewFromInt(50000),
		},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	middleware.Setup(app, cfg)
	Setup(app, db, cfg)

	return &server{t: t, app: app, repos: repositories.NewRepos(db), cfg: cfg}
}

func (s *server) user(role domain.Role) session {
	s.t.Helper()
	s.seq++
	u := &models.User{
		Name:      fmt.Sprintf("%s %d", role, s.seq),
		Email:     fmt.Sprintf("%s-%d@example.com", role, s.seq),
		Password:  "x",
		Role:      role,
		Lifecycle: models.Lifecycle{IsActive: true},
	}
	require.NoError(s.t, s.repos.Users.Create(context.Background(), u))

	token, err := jwt.GenerateAccessToken(u.ID, u.Email, string(role), s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	require.NoError(s.t, err)
	return session{id: u.ID, token: token}
}

func (s *server) machine(status domain.MachineStatus) *models.WashingMachine {
	s.t.Helper()
	m := &models.WashingMachine{
		Model:             "Samsung " + string(status),
		Capacity:          "18 kg",
		OperationalStatus: status,
		Lifecycle:         models.Lifecycle{IsActive: true},
	}
	inv := &models.Inventory{
		Availability: status == domain.MachineOperational,
		Lifecycle:    models.Lifecycle{IsActive: true},
	}
	require.NoError(s.t, s.repos.Machines.CreateWithInventory(context.Background(), m, inv))
	return m
}

type result struct {
	status int
	header http.Header
	raw    []byte
	body   map[string]interface{}
}

func (s *server) do(method, path, token string, body interface{}) result {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	out := result{status: resp.StatusCode, header: resp.Header, raw: raw}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(s.t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func (s *server) book(client session, machineID uint, date string) result {
	return s.do(http.MethodPost, "/reservas/crear", client.token, fiber.Map{
		"machine_id":       machineID,
		"reservation_date": date,
		"start_time":       "09:00",
		"end_time":         "11:00",
	})
}

func dataID(t *testing.T, r result) uint {
	t.Helper()
	data, ok := r.body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", r.raw)
	return uint(data["id"].(float64))
}

// ============================================================
// Operations
// ============================================================

func TestHealthAndRoot(t *testing.T) {
	s := newServer(t)

	r := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	checks := r.body["checks"].(map[string]interface{})
	assert.Equal(t, "healthy", checks["database"])

	r = s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "dev", r.body["mode"])
	assert.NotEmpty(t, r.header.Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(http.MethodGet, "/health", "", nil)

	r := s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, string(r.raw), "washtech_http_requests_total")
}

// ============================================================
// Booking over HTTP
// ============================================================

func TestBooking_SecondClientGetsConflict(t *testing.T) {
	s := newServer(t)
	c1 := s.user(domain.RoleClient)
	c2 := s.user(domain.RoleClient)
	m := s.machine(domain.MachineOperational)

	r := s.book(c1, m.ID, day)
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
	id := dataID(t, r)
	assert.Equal(t, fmt.Sprintf("/reservas/%d", id), r.header.Get("Location"))
	assert.Equal(t, "50000.00", r.body["data"].(map[string]interface{})["total_payment"])

	r = s.book(c2, m.ID, day)
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "Conflict", r.body["kind"])
	assert.Equal(t, "/catalogo", r.body["redirect"])

	r = s.do(http.MethodGet, fmt.Sprintf("/catalogo/api/disponibilidad/%d?date=%s", m.ID, day), "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, false, r.body["available"])
	assert.Equal(t, string(domain.ReasonAlreadyBooked), r.body["reason"])
	assert.NotNil(t, r.body["machine"])
	assert.Contains(t, r.header.Get("Cache-Control"), "no-store")
}

func TestBooking_ValidationAndRoles(t *testing.T) {
	s := newServer(t)
	client := s.user(domain.RoleClient)
	op := s.user(domain.RoleOperator)
	m := s.machine(domain.MachineOperational)

	// No session
	r := s.book(session{}, m.ID, day)
	assert.Equal(t, http.StatusUnauthorized, r.status)

	// Only clients book
	r = s.book(op, m.ID, day)
	assert.Equal(t, http.StatusForbidden, r.status)

	// Malformed date
	r = s.book(client, m.ID, "01/06/2025")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Validation", r.body["kind"])
	assert.Equal(t, "reservation_date", r.body["field"])

	// Unknown machine
	r = s.book(client, 9999, day)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestAvailabilityEndpoint_Errors(t *testing.T) {
	s := newServer(t)
	m := s.machine(domain.MachineMaintenance)

	r := s.do(http.MethodGet, fmt.Sprintf("/catalogo/api/disponibilidad/%d", m.ID), "", nil)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = s.do(http.MethodGet, fmt.Sprintf("/catalogo/api/disponibilidad/%d?date=2025-13-40", m.ID), "", nil)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = s.do(http.MethodGet, "/catalogo/api/disponibilidad/9999?date="+day, "", nil)
	assert.Equal(t, http.StatusNotFound, r.status)

	r = s.do(http.MethodGet, fmt.Sprintf("/catalogo/api/disponibilidad/%d?date=%s", m.ID, day), "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, false, r.body["available"])
	assert.Equal(t, string(domain.ReasonNotOperational), r.body["reason"])
}

func TestCatalog_ListAndDetail(t *testing.T) {
	s := newServer(t)
	ok := s.machine(domain.MachineOperational)
	s.machine(domain.MachineMaintenance)

	r := s.do(http.MethodGet, "/catalogo?status=operational", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	items := r.body["data"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, true, items[0].(map[string]interface{})["available"])

	r = s.do(http.MethodGet, "/catalogo?status=broken", "", nil)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = s.do(http.MethodGet, fmt.Sprintf("/catalogo/lavadora/%d?date=%s", ok.ID, day), "", nil)
	require.Equal(t, http.StatusOK, r.status)
	data := r.body["data"].(map[string]interface{})
	assert.Equal(t, true, data["available"])
	assert.Equal(t, true, data["availability"].(map[string]interface{})["available"])

	r = s.do(http.MethodGet, "/catalogo/disponibilidad?date="+day, "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Len(t, r.body["data"].([]interface{}), 2)
}

// ============================================================
// Operator workflow and admin oversight
// ============================================================

func TestWorkflow_AssignDeliverThenClientCancelFails(t *testing.T) {
	s := newServer(t)
	admin := s.user(domain.RoleAdmin)
	op := s.user(domain.RoleOperator)
	other := s.user(domain.RoleOperator)
	client := s.user(domain.RoleClient)
	m := s.machine(domain.MachineOperational)

	id := dataID(t, s.book(client, m.ID, day))

	// Clients cannot reach the admin surface
	r := s.do(http.MethodGet, "/admin/pendientes", client.token, nil)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(http.MethodPost, fmt.Sprintf("/admin/pendientes/%d/asignar", id), admin.token, fiber.Map{"operator_id": client.id})
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = s.do(http.MethodPost, fmt.Sprintf("/admin/pendientes/%d/asignar", id), admin.token, fiber.Map{"operator_id": op.id})
	require.Equal(t, http.StatusOK, r.status, string(r.raw))

	// A different operator may not deliver it
	r = s.do(http.MethodPost, fmt.Sprintf("/operator/reserva/%d/entregar", id), other.token, nil)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "Authorization", r.body["kind"])

	r = s.do(http.MethodPost, fmt.Sprintf("/operator/reserva/%d/entregar", id), op.token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "delivered", r.body["data"].(map[string]interface{})["status"])

	// Delivered is terminal
	r = s.do(http.MethodPost, fmt.Sprintf("/reservas/%d/cancelar", id), client.token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
	assert.Equal(t, "State", r.body["kind"])
	assert.Equal(t, "/reservas", r.body["redirect"])

	// The client was told about the delivery
	r = s.do(http.MethodGet, "/notificaciones", client.token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, float64(1), r.body["data"].(map[string]interface{})["unread"])
}

func TestAdmin_MachineLifecycle(t *testing.T) {
	s := newServer(t)
	admin := s.user(domain.RoleAdmin)

	r := s.do(http.MethodPost, "/admin/lavadoras", admin.token, fiber.Map{
		"model":              "Whirlpool 8MWTW",
		"capacity":           "20 kg",
		"operational_status": "maintenance",
		"location":           "Sede norte",
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
	id := dataID(t, r)
	inv := r.body["data"].(map[string]interface{})["inventory"].(map[string]interface{})
	assert.Equal(t, false, inv["availability"])

	r = s.do(http.MethodPut, fmt.Sprintf("/admin/lavadoras/%d", id), admin.token, fiber.Map{"operational_status": "operational", "availability": true})
	require.Equal(t, http.StatusOK, r.status)

	r = s.do(http.MethodPost, fmt.Sprintf("/admin/lavadoras/%d/eliminar", id), admin.token, nil)
	require.Equal(t, http.StatusOK, r.status)

	r = s.do(http.MethodGet, fmt.Sprintf("/admin/lavadoras/%d", id), admin.token, nil)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestDeactivatedUserLosesAccessImmediately(t *testing.T) {
	s := newServer(t)
	admin := s.user(domain.RoleAdmin)
	client := s.user(domain.RoleClient)

	r := s.do(http.MethodGet, "/dashboard", client.token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "client", r.body["data"].(map[string]interface{})["role"])

	r = s.do(http.MethodPost, fmt.Sprintf("/admin/usuarios/%d/desactivar", client.id), admin.token, nil)
	require.Equal(t, http.StatusOK, r.status)

	r = s.do(http.MethodGet, "/dashboard", client.token, nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestRoleChangeIsSuperadminOnly(t *testing.T) {
	s := newServer(t)
	super := s.user(domain.RoleSuperAdmin)
	admin := s.user(domain.RoleAdmin)
	target := s.user(domain.RoleClient)

	path := fmt.Sprintf("/admin/usuarios/%d/rol", target.id)
	r := s.do(http.MethodPost, path, admin.token, fiber.Map{"role": "operator"})
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.do(http.MethodPost, path, super.token, fiber.Map{"role": "operator"})
	require.Equal(t, http.StatusOK, r.status)

	// The old client token now acts as an operator
	r = s.do(http.MethodGet, "/operator/dashboard", target.token, nil)
	assert.Equal(t, http.StatusOK, r.status)
}

// ============================================================
// Reporting and identity
// ============================================================

func TestReportCSV(t *testing.T) {
	s := newServer(t)
	admin := s.user(domain.RoleAdmin)
	client := s.user(domain.RoleClient)
	m := s.machine(domain.MachineOperational)
	s.book(client, m.ID, day)

	r := s.do(http.MethodGet, "/reportes/reservas.csv", admin.token, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Contains(t, r.header.Get("Content-Type"), "text/csv")
	assert.Contains(t, r.header.Get("Content-Disposition"), "reservas_")

	lines := strings.Split(strings.TrimSpace(string(r.raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,user_id,user_email,machine_id,machine_model,reservation_date,start_time,end_time,status,total_payment", lines[0])

	r = s.do(http.MethodGet, "/reportes/reservas.csv", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newServer(t)

	r := s.do(http.MethodPost, "/auth/register", "", fiber.Map{
		"name":     "Ana Torres",
		"email":    "ana@example.com",
		"password": "lavadora123",
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))

	r = s.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusUnauthorized, r.status)

	r = s.do(http.MethodPost, "/auth/login", "", fiber.Map{"email": "ana@example.com", "password": "lavadora123"})
	require.Equal(t, http.StatusOK, r.status)
	token := r.body["data"].(map[string]interface{})["access_token"].(string)

	r = s.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	user := r.body["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "client", user["role"])
}
