package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/meditrack/internal/api/http/handlers"
	"github.com/spec-kit/meditrack/internal/auth"
	"github.com/spec-kit/meditrack/internal/domain"
	"github.com/spec-kit/meditrack/internal/observability"
	"github.com/spec-kit/meditrack/internal/service"
)

type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	creates int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[string]*domain.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.byID[user.ID] = &stored
	m.creates++
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryUsers) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

type memoryPatients struct {
	mu   sync.Mutex
	rows []domain.Patient
}

func (m *memoryPatients) Create(_ context.Context, p *domain.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.rows = append(m.rows, *p)
	return nil
}

func (m *memoryPatients) ListByDoctor(_ context.Context, doctorID string) ([]domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Patient{}
	for _, p := range m.rows {
		if p.DoctorID == doctorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPatients) ListAll(_ context.Context) ([]domain.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Patient{}, m.rows...), nil
}

func (m *memoryPatients) Update(_ context.Context, p *domain.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == p.ID && m.rows[i].DoctorID == p.DoctorID {
			p.CreatedAt = m.rows[i].CreatedAt
			p.UpdatedAt = time.Now().UTC()
			m.rows[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryPatients) Delete(_ context.Context, id, doctorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].DoctorID == doctorID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type testServer struct {
	app   *fiber.App
	users *memoryUsers
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := newMemoryUsers()
	patients := &memoryPatients{}
	logger := zap.NewNop()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenCodec("router-test-secret", "meditrack-test", time.Hour)
	require.NoError(t, err)
	authService, err := service.NewAuthService(users, hasher, tokens)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("meditrack-test", "test", nil),
		Users:          handlers.NewUsersHandler(authService),
		Patients:       handlers.NewPatientsHandler(service.NewPatientService(patients)),
		Guard:          auth.NewAccessGuard(auth.NewAuthenticator(tokens, users)),
		AuthMiddleware: auth.NewAuthMiddleware(logger, metrics),
	})

	return &testServer{app: app, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded, raw
}

func (s *testServer) register(t *testing.T, name, email, password, role string) map[string]any {
	t.Helper()
	status, body, raw := s.do(t, fiber.MethodPost, "/register", "", fiber.Map{
		"name": name, "email": email, "password": password, "role": role,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	return body
}

func (s *testServer) login(t *testing.T, email, password string) (int, map[string]any) {
	t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (s *testServer) token(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.login(t, email, password)
	require.Equal(t, fiber.StatusOK, status)
	return body["access_token"].(string)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestEndToEnd_DoctorFlow(t *testing.T) {
	s := newTestServer(t)

	registered := s.register(t, "A", "a@x.com", "pw1", "doctor")
	assert.Equal(t, "doctor", registered["role"])
	assert.NotContains(t, registered, "password_hash")

	status, loginBody := s.login(t, "a@x.com", "pw1")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "bearer", loginBody["token_type"])
	token := loginBody["access_token"].(string)
	require.NotEmpty(t, token)

	status, _, raw := s.do(t, fiber.MethodGet, "/patients", token, nil)
	assert.Equal(t, fiber.StatusOK, status, string(raw))

	status, body, _ := s.do(t, fiber.MethodGet, "/patients/all", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	for _, path := range []string{"/patients", "/patients/all", "/me"} {
		status, body, _ := s.do(t, fiber.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Equal(t, "UNAUTHORIZED", errorCode(body), path)
	}

	status, me, _ := s.do(t, fiber.MethodGet, "/me", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "a@x.com", me["email"])
}

func TestEndToEnd_PatientLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "A", "a@x.com", "pw1", "doctor")
	s.register(t, "B", "b@x.com", "pw2", "doctor")
	s.register(t, "Root", "root@x.com", "pw3", "admin")
	tokenA := s.token(t, "a@x.com", "pw1")
	tokenB := s.token(t, "b@x.com", "pw2")
	adminToken := s.token(t, "root@x.com", "pw3")

	status, created, raw := s.do(t, fiber.MethodPost, "/patients", tokenA, fiber.Map{
		"name": "Jane Roe", "age": 42, "condition": "hypertension",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	patientID := created["id"].(string)
	assert.Equal(t, registeredID(t, s, "a@x.com"), created["doctor_id"])

	status, _, raw = s.do(t, fiber.MethodGet, "/patients", tokenB, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	status, _, _ = s.do(t, fiber.MethodPut, "/patients/"+patientID, tokenB, fiber.Map{"name": "X", "age": 1, "condition": ""})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, updated, _ := s.do(t, fiber.MethodPut, "/patients/"+patientID, tokenA, fiber.Map{"name": "Jane Roe", "age": 43, "condition": "stable"})
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 43, updated["age"])

	status, _, raw = s.do(t, fiber.MethodGet, "/patients/all", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(raw, &all))
	assert.Len(t, all, 1)

	status, _, _ = s.do(t, fiber.MethodPost, "/patients", adminToken, fiber.Map{"name": "Y", "age": 5})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = s.do(t, fiber.MethodDelete, "/patients/"+patientID, tokenB, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _, _ = s.do(t, fiber.MethodDelete, "/patients/not-a-uuid", tokenA, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _, _ = s.do(t, fiber.MethodDelete, "/patients/"+patientID, tokenA, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func registeredID(t *testing.T, s *testServer, email string) string {
	t.Helper()
	u, err := s.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}

func TestEndToEnd_DuplicateRegistration(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "A", "a@x.com", "pw1", "doctor")

	status, body, _ := s.do(t, fiber.MethodPost, "/register", "", fiber.Map{
		"name": "Other", "email": "a@x.com", "password": "different", "role": "admin",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))
	assert.Equal(t, 1, s.users.creates)

	stored, err := s.users.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Name)
	assert.Equal(t, domain.RoleDoctor, stored.Role)
}

func TestEndToEnd_LoginFailuresAreUniform(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "A", "a@x.com", "pw1", "doctor")

	statusWrongPw, wrongPw := s.login(t, "a@x.com", "nope")
	statusUnknown, unknown := s.login(t, "ghost@x.com", "pw1")

	assert.Equal(t, fiber.StatusBadRequest, statusWrongPw)
	assert.Equal(t, statusWrongPw, statusUnknown)
	assert.Equal(t, wrongPw, unknown)
	assert.Equal(t, "incorrect email or password", wrongPw["error"].(map[string]any)["message"])
}

func TestEndToEnd_DeletedUserTokenRejectedLikeInvalidToken(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "A", "a@x.com", "pw1", "doctor")
	token := s.token(t, "a@x.com", "pw1")

	s.users.delete(registeredID(t, s, "a@x.com"))

	statusDeleted, deleted, _ := s.do(t, fiber.MethodGet, "/patients", token, nil)
	statusInvalid, invalid, _ := s.do(t, fiber.MethodGet, "/patients", "not.a.token", nil)

	assert.Equal(t, fiber.StatusUnauthorized, statusDeleted)
	assert.Equal(t, statusInvalid, statusDeleted)
	assert.Equal(t, invalid, deleted)
}

func TestEndToEnd_RegistrationValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []fiber.Map{
		{"name": "A", "email": "not-an-email", "password": "pw1", "role": "doctor"},
		{"name": "A", "email": "a@x.com", "password": "pw1", "role": "nurse"},
		{"name": "", "email": "a@x.com", "password": "pw1", "role": "doctor"},
		{"name": "A", "email": "a@x.com", "password": strings.Repeat("p", 73), "role": "doctor"},
		{"name": "A", "email": "a@x.com", "password": strings.Repeat("é", 40), "role": "doctor"},
	}
	for i, body := range cases {
		status, resp, _ := s.do(t, fiber.MethodPost, "/register", "", body)
		assert.Equal(t, fiber.StatusBadRequest, status, fmt.Sprintf("case %d", i))
		assert.Equal(t, "VALIDATION_FAILED", errorCode(resp), fmt.Sprintf("case %d", i))
	}
	assert.Zero(t, s.users.creates)
}

func TestEndToEnd_MultibytePasswordWithinByteLimit(t *testing.T) {
	s := newTestServer(t)

	password := strings.Repeat("é", 36)
	s.register(t, "A", "a@x.com", password, "doctor")
	assert.NotEmpty(t, s.token(t, "a@x.com", password))
}

func TestEndToEnd_RootAndHealth(t *testing.T) {
	s := newTestServer(t)

	status, body, _ := s.do(t, fiber.MethodGet, "/", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "MediTrack API is running", body["message"])

	status, body, _ = s.do(t, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}
