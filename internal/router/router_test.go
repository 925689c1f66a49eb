package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"pettracker/internal/adapters/auth/jwtauth"
	"pettracker/internal/ports/mail"
	"pettracker/internal/ports/queue"
	"pettracker/internal/router"
)

// captureMailer guarda los correos en vez de enviarlos; los tests pescan
// el token de confirmación de ahí.
type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail captured")
	}
	token, _ := m.sent[len(m.sent)-1].Data["token"].(string)
	if token == "" {
		t.Fatal("captured mail has no token")
	}
	return token
}

type captureScheduler struct {
	mu   sync.Mutex
	jobs []queue.Job
	etas []time.Time
}

func (s *captureScheduler) Schedule(_ context.Context, job queue.Job, eta time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	s.etas = append(s.etas, eta)
	return nil
}

func (s *captureScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *captureScheduler) last() (queue.Job, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[len(s.jobs)-1], s.etas[len(s.etas)-1]
}

func newTestServer(t *testing.T) (*httptest.Server, *captureMailer, *captureScheduler) {
	t.Helper()

	tokens := jwtauth.New(jwtauth.Options{
		Secret:     "test-secret",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		ConfirmTTL: 24 * time.Hour,
	})
	mailer := &captureMailer{}
	sched := &captureScheduler{}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Issuer:    tokens,
		Verifier:  tokens,
		Mailer:    mailer,
		Scheduler: sched,
	}))
	t.Cleanup(ts.Close)

	return ts, mailer, sched
}

// signUp registra, verifica y loguea a un usuario; devuelve el access token.
func signUp(t *testing.T, baseURL string, mailer *captureMailer, username, email, password string) string {
	t.Helper()

	st, body := doJSON(t, baseURL, "POST", "/user/", "", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 register, got %d body=%s", st, string(body))
	}

	st, body = doJSON(t, baseURL, "PATCH", "/user/verification?token="+mailer.lastToken(t), "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 verify, got %d body=%s", st, string(body))
	}

	return login(t, baseURL, username, password)
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	st, body := doForm(t, baseURL, "/user/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("login: bad token response body=%s", string(body))
	}
	return resp.AccessToken
}

func createPet(t *testing.T, baseURL, token string, payload map[string]any) string {
	t.Helper()

	st, body := doJSON(t, baseURL, "POST", "/pet/", token, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"pet_id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing pet_id body=%s", string(body))
	}
	return resp.ID
}

func createEvent(t *testing.T, baseURL, token string, payload map[string]any) string {
	t.Helper()

	st, body := doJSON(t, baseURL, "POST", "/event/", token, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"event_id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create event: missing event_id body=%s", string(body))
	}
	return resp.ID
}

func TestHTTP_EndToEnd_PetsAndEvents(t *testing.T) {
	ts, mailer, sched := newTestServer(t)

	token := signUp(t, ts.URL, mailer, "alice", "alice@example.com", "s3cret")

	// 1) Alta de mascota
	petID := createPet(t, ts.URL, token, map[string]any{
		"name":    "Firulais",
		"species": "dog",
		"breed":   "mixed",
		"gender":  "male",
	})

	// 2) Detalle y listado
	{
		st, body := doJSON(t, ts.URL, "GET", "/pet/?pet_id="+petID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get pet, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doJSON(t, ts.URL, "GET", "/pet/list-of-pets", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list pets, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 {
			t.Fatalf("expected 1 pet listed, got %d", len(items))
		}
	}

	// 3) Crear evento agenda la notificación con la eta en UTC
	eventID := createEvent(t, ts.URL, token, map[string]any{
		"title":    "vaccine",
		"content":  "rabies shot",
		"pet_id":   petID,
		"year":     2030,
		"month":    3,
		"day":      10,
		"hour":     15,
		"minute":   30,
		"timezone": "UTC",
	})
	if sched.count() != 1 {
		t.Fatalf("expected 1 scheduled job, got %d", sched.count())
	}
	{
		job, eta := sched.last()
		if job.EventID != eventID || job.Email != "alice@example.com" || job.Body.Pet != "Firulais" {
			t.Fatalf("unexpected job: %+v", job)
		}
		want := time.Date(2030, 3, 10, 15, 30, 0, 0, time.UTC)
		if !eta.Equal(want) {
			t.Fatalf("expected eta %v, got %v", want, eta)
		}
	}

	// 4) Detalle incluye content, listado no
	{
		st, body := doJSON(t, ts.URL, "GET", "/event/?event_id="+eventID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get event, got %d body=%s", st, string(body))
		}
		var detail map[string]any
		_ = json.Unmarshal(body, &detail)
		if detail["content"] != "rabies shot" {
			t.Fatalf("expected content in detail, got %v", detail)
		}
	}

	// Segundo evento, más lejano, y un tercero al mismo minuto exacto:
	// el listado va por scheduled_at desc y, en el empate, por orden de
	// creación.
	createEvent(t, ts.URL, token, map[string]any{
		"title":    "grooming",
		"pet_id":   petID,
		"year":     2031,
		"month":    1,
		"day":      2,
		"hour":     9,
		"minute":   0,
		"timezone": "UTC",
	})
	createEvent(t, ts.URL, token, map[string]any{
		"title":    "dental",
		"pet_id":   petID,
		"year":     2031,
		"month":    1,
		"day":      2,
		"hour":     9,
		"minute":   0,
		"timezone": "UTC",
	})
	{
		st, body := doJSON(t, ts.URL, "GET", "/event/list-of-events", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list events, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 3 {
			t.Fatalf("expected 3 events listed, got %d", len(items))
		}
		if items[0]["title"] != "grooming" || items[1]["title"] != "dental" {
			t.Fatalf("expected tie broken by creation order, got %v then %v",
				items[0]["title"], items[1]["title"])
		}
		if items[2]["title"] != "vaccine" {
			t.Fatalf("expected earliest scheduled event last, got %v", items[2]["title"])
		}
		if _, hasContent := items[0]["content"]; hasContent {
			t.Fatalf("list view must not carry content: %v", items[0])
		}
	}

	// 5) PATCH solo del año conserva el resto de la fecha y reprograma
	before := sched.count()
	{
		st, body := doJSON(t, ts.URL, "PATCH", "/event/?event_id="+eventID, token, map[string]any{
			"year": 2032,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch event, got %d body=%s", st, string(body))
		}
		var detail map[string]any
		_ = json.Unmarshal(body, &detail)
		if detail["year"] != float64(2032) || detail["month"] != float64(3) ||
			detail["day"] != float64(10) || detail["hour"] != float64(15) || detail["minute"] != float64(30) {
			t.Fatalf("patch must merge date components: %v", detail)
		}
	}
	if sched.count() != before+1 {
		t.Fatalf("expected reschedule after patch, jobs=%d", sched.count())
	}
	{
		job, _ := sched.last()
		prev := sched.jobs[0]
		if job.TaskID == prev.TaskID {
			t.Fatal("reschedule must mint a fresh task id")
		}
	}

	// 6) Borrar evento
	{
		st, body := doJSON(t, ts.URL, "DELETE", "/event/?event_id="+eventID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete event, got %d body=%s", st, string(body))
		}
		st, _ = doJSON(t, ts.URL, "GET", "/event/?event_id="+eventID, token, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}

	// 7) Borrar mascota arrastra sus eventos
	{
		st, body := doJSON(t, ts.URL, "DELETE", "/pet/?pet_id="+petID, token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete pet, got %d body=%s", st, string(body))
		}
		st, body = doJSON(t, ts.URL, "GET", "/event/list-of-events", token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list events, got %d", st)
		}
		var items []map[string]any
		_ = json.Unmarshal(body, &items)
		if len(items) != 0 {
			t.Fatalf("expected no events after pet delete, got %d", len(items))
		}
	}
}

func TestHTTP_AuthRequired(t *testing.T) {
	ts, mailer, _ := newTestServer(t)

	// Sin token
	st, _ := doJSON(t, ts.URL, "GET", "/pet/list-of-pets", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", st)
	}

	// Token adulterado
	token := signUp(t, ts.URL, mailer, "bob", "bob@example.com", "s3cret")
	st, _ = doJSON(t, ts.URL, "GET", "/pet/list-of-pets", token+"x", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with tampered token, got %d", st)
	}
}

func TestHTTP_LoginRejectsUnverifiedAndWrongPassword(t *testing.T) {
	ts, _, _ := newTestServer(t)

	st, body := doJSON(t, ts.URL, "POST", "/user/", "", map[string]any{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "s3cret",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 register, got %d body=%s", st, string(body))
	}

	// Cuenta sin verificar: mismo 401 que contraseña incorrecta
	st, _ = doForm(t, ts.URL, "/user/auth/login", url.Values{
		"username": {"carol"},
		"password": {"s3cret"},
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unverified account, got %d", st)
	}

	st, _ = doForm(t, ts.URL, "/user/auth/login", url.Values{
		"username": {"carol"},
		"password": {"nope"},
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", st)
	}
}

func TestHTTP_PetsAreScopedToOwner(t *testing.T) {
	ts, mailer, _ := newTestServer(t)

	tokenA := signUp(t, ts.URL, mailer, "alice", "alice@example.com", "s3cret")
	tokenB := signUp(t, ts.URL, mailer, "bob", "bob@example.com", "s3cret")

	petID := createPet(t, ts.URL, tokenA, map[string]any{
		"name":    "Misha",
		"species": "cat",
		"gender":  "female",
	})

	// Otro usuario: 404, nunca 403 (no filtrar existencia)
	st, _ := doJSON(t, ts.URL, "GET", "/pet/?pet_id="+petID, tokenB, nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign pet, got %d", st)
	}
	st, _ = doJSON(t, ts.URL, "PATCH", "/pet/?pet_id="+petID, tokenB, map[string]any{"name": "Hacked"})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 patching foreign pet, got %d", st)
	}

	// La mascota quedó intacta
	st, body := doJSON(t, ts.URL, "GET", "/pet/?pet_id="+petID, tokenA, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get own pet, got %d", st)
	}
	var pet map[string]any
	_ = json.Unmarshal(body, &pet)
	if pet["name"] != "Misha" {
		t.Fatalf("foreign patch must not mutate, got %v", pet["name"])
	}
}

func TestHTTP_ChangeEmailConflict(t *testing.T) {
	ts, mailer, _ := newTestServer(t)

	_ = signUp(t, ts.URL, mailer, "alice", "alice@example.com", "s3cret")
	tokenB := signUp(t, ts.URL, mailer, "bob", "bob@example.com", "s3cret")

	st, body := doJSON(t, ts.URL, "PATCH", "/user/change-email", tokenB, map[string]any{
		"new_email": "alice@example.com",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d body=%s", st, string(body))
	}
}

func TestHTTP_VerificationRejectsGarbageToken(t *testing.T) {
	ts, _, _ := newTestServer(t)

	st, _ := doJSON(t, ts.URL, "PATCH", "/user/verification?token=garbage", "", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for garbage token, got %d", st)
	}
}

func doJSON(t *testing.T, baseURL, method, path, bearer string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func doForm(t *testing.T, baseURL, path string, form url.Values) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest("POST", baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
