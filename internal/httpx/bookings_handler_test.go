package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
)

type testEnv struct {
	router http.Handler
	store  *booking.MemStore
	prop   booking.Property
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := booking.NewMemStore()

	agency, err := store.CreateAgency(ctx, booking.Agency{
		OwnerUserID: "owner-1", Name: "Seaside Stays", Email: "hello@seaside.test", Phone: "+15550100",
	})
	require.NoError(t, err)
	prop, err := store.CreateProperty(ctx, booking.Property{
		AgencyID: agency.ID, Title: "Beach House", Address: "1 Shore Rd",
		NightlyRateCents: 100_00, Available: true,
	})
	require.NoError(t, err)

	svc := &booking.Service{Store: store, ServiceName: "reservation-api-test"}
	router := NewRouter()
	bh := &BookingsHandler{Svc: svc, Currency: "$", WhatsAppNumber: "+1 555 9999"}
	bh.Register(router)
	ph := &PropertiesHandler{Svc: svc}
	ph.Register(router)

	return &testEnv{router: router, store: store, prop: prop}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/bookings/check-availability", "", checkAvailabilityReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["available"])

	w = e.do(t, http.MethodPost, "/api/bookings/check-availability", "", checkAvailabilityReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-05", CheckOut: "2024-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBooking(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "guest-1", body["user_id"])
	assert.Equal(t, float64(300_00), body["total_cents"])
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, booking.DefaultPaymentMethod, body["payment_method"])
	assert.Equal(t, "2024-06-01", body["check_in"])
}

func TestCreateBookingConflict(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodPost, "/api/bookings/", "guest-2", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-03", CheckOut: "2024-06-08", Guests: 2,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	body := decode(t, w)
	detail := body["detail"].(map[string]any)
	blocking := detail["blocking"].([]any)
	require.Len(t, blocking, 1)
	first := blocking[0].(map[string]any)
	assert.Equal(t, "2024-06-01", first["check_in"])
	assert.Equal(t, "2024-06-05", first["check_out"])
	// conflict detail must not leak the other requester
	assert.NotContains(t, w.Body.String(), "guest-1")
}

func TestCreateBookingTurnover(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = e.do(t, http.MethodPost, "/api/bookings/", "guest-2", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-05", CheckOut: "2024-06-10", Guests: 2,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetBooking(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = e.do(t, http.MethodGet, "/api/bookings/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["id"])

	w = e.do(t, http.MethodGet, "/api/bookings/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserBookings(t *testing.T) {
	e := newTestEnv(t)
	for _, dates := range [][2]string{{"2024-06-01", "2024-06-05"}, {"2024-07-01", "2024-07-05"}} {
		w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
			PropertyID: e.prop.ID, CheckIn: dates[0], CheckOut: dates[1], Guests: 2,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do(t, http.MethodGet, "/api/bookings/user", "guest-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["bookings"], 2)

	w = e.do(t, http.MethodGet, "/api/bookings/user", "someone-else", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["bookings"])
}

func TestAgencyDashboard(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-04", Guests: 2, // 300
	})
	require.Equal(t, http.StatusCreated, w.Code)
	paidID := decode(t, w)["id"].(string)
	w = e.do(t, http.MethodPost, "/api/bookings/", "guest-2", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-07-01", CheckOut: "2024-07-06", Guests: 2, // 500
	})
	require.Equal(t, http.StatusCreated, w.Code)

	_, err := e.store.MarkPaid(ctx, paidID, "card")
	require.NoError(t, err)

	w = e.do(t, http.MethodGet, "/api/bookings/agency", "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["total_bookings"])
	assert.Equal(t, float64(300_00), body["total_revenue_cents"])

	// a user without an agency gets 404
	w = e.do(t, http.MethodGet, "/api/bookings/agency", "guest-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkPaidEndpoint(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = e.do(t, http.MethodPost, "/api/bookings/"+id+"/pay", "guest-1", payReq{PaymentMethod: "card"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["is_paid"])
	assert.Equal(t, "card", body["payment_method"])
}

func TestWhatsAppLinkEndpoint(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = e.do(t, http.MethodGet, "/api/bookings/"+id+"/whatsapp", "guest-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	link := decode(t, w)["link"].(string)
	assert.Contains(t, link, "wa.me/15550100") // agency phone wins over the fallback
	assert.Contains(t, link, id)
}

func TestPropertyToggleBlocksNewBookings(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/properties/toggle-availability", "owner-1", toggleReq{PropertyID: e.prop.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["available"])

	w = e.do(t, http.MethodPost, "/api/bookings/", "guest-1", createBookingReq{
		PropertyID: e.prop.ID, CheckIn: "2024-06-01", CheckOut: "2024-06-05", Guests: 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPropertyEndpoints(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/properties/", "owner-1", createPropertyReq{
		Title: "City Loft", Address: "2 Main St", NightlyRateCents: 80_00,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/properties/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["properties"], 2)

	w = e.do(t, http.MethodGet, "/api/properties/owner", "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["properties"], 2)

	// rate must be positive
	w = e.do(t, http.MethodPost, "/api/properties/", "owner-1", createPropertyReq{Title: "Free Stay"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
