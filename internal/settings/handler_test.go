package settings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeno/accounts/internal/middleware"
	"github.com/lumeno/accounts/internal/store"
	"github.com/lumeno/accounts/internal/store/storetest"
)

const testEmail = "ada@example.com"

func newTestHandler(mem *storetest.Mem) *Handler {
	return NewHandler(NewRepository(mem), nil)
}

func do(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/settings", nil)
	} else {
		req = httptest.NewRequest(method, "/settings", strings.NewReader(body))
	}
	req = req.WithContext(middleware.WithEmail(context.Background(), testEmail))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestNotificationsDefaults(t *testing.T) {
	h := newTestHandler(storetest.NewMem())

	rec := do(h.GetNotifications, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var n Notifications
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.True(t, n.Email, "email notifications default on")
	assert.False(t, n.SMS)
	assert.False(t, n.Push)
}

func TestNotificationsRoundTrip(t *testing.T) {
	mem := storetest.NewMem()
	h := newTestHandler(mem)

	rec := do(h.PutNotifications, http.MethodPut, `{"email":false,"sms":true,"push":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	record := mem.Record(store.NotificationsKey(testEmail))
	assert.Equal(t, "false", record["email"], "stored as a canonical boolean string")

	var n Notifications
	rec = do(h.GetNotifications, http.MethodGet, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, Notifications{Email: false, SMS: true, Push: true}, n)
}

func TestNotificationsLegacyFlags(t *testing.T) {
	mem := storetest.NewMem()
	// Records written by the previous system used "1"/"0".
	mem.Seed(store.NotificationsKey(testEmail), map[string]string{"email": "0", "sms": "1", "push": "0"})
	h := newTestHandler(mem)

	var n Notifications
	rec := do(h.GetNotifications, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, Notifications{Email: false, SMS: true, Push: false}, n)
}

func TestBillingRejectsShortCard(t *testing.T) {
	mem := storetest.NewMem()
	mem.Seed(store.BillingKey(testEmail), map[string]string{"card_last4": "9999"})
	h := newTestHandler(mem)

	rec := do(h.PutBilling, http.MethodPut,
		`{"card_number":"411111111111111","cardholder_name":"Ada","expiry_month":"12","expiry_year":"2030","cvv":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "9999", mem.Record(store.BillingKey(testEmail))["card_last4"],
		"a rejected card must leave the stored fingerprint unchanged")
}

func TestBillingStoresOnlyLast4(t *testing.T) {
	mem := storetest.NewMem()
	h := newTestHandler(mem)

	rec := do(h.PutBilling, http.MethodPut,
		`{"card_number":"4111 1111 1111 1234","cardholder_name":"Ada Lovelace","expiry_month":"12","expiry_year":"2030","cvv":"123","invoice_email":"billing@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	record := mem.Record(store.BillingKey(testEmail))
	assert.Equal(t, "1234", record["card_last4"])
	for field, value := range record {
		assert.NotContains(t, value, "4111", "full card number must never be stored (field %s)", field)
	}

	rec = do(h.GetBilling, http.MethodGet, "")
	assert.NotContains(t, rec.Body.String(), "4111")
	assert.Contains(t, rec.Body.String(), `"card_last4":"1234"`)
	assert.Contains(t, rec.Body.String(), `"invoice_email":"billing@example.com"`)
}

func TestBillingValidation(t *testing.T) {
	h := newTestHandler(storetest.NewMem())

	cases := []struct {
		name, body, wantMsg string
	}{
		{"non-digit card", `{"card_number":"4111-1111-1111-12ab","cardholder_name":"Ada","expiry_month":"12","expiry_year":"2030","cvv":"123"}`, "16 digits"},
		{"missing holder", `{"card_number":"4111111111111234","expiry_month":"12","expiry_year":"2030","cvv":"123"}`, "Missing required card fields"},
		{"short cvv", `{"card_number":"4111111111111234","cardholder_name":"Ada","expiry_month":"12","expiry_year":"2030","cvv":"12"}`, "invalid CVV"},
		{"bad invoice email", `{"invoice_email":"not-an-email"}`, "invalid invoice email"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := do(h.PutBilling, http.MethodPut, c.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), c.wantMsg)
		})
	}
}

func TestBillingInvoiceEmailOnlyUpdate(t *testing.T) {
	mem := storetest.NewMem()
	mem.Seed(store.BillingKey(testEmail), map[string]string{"card_last4": "9999", "cardholder_name": "Ada"})
	h := newTestHandler(mem)

	rec := do(h.PutBilling, http.MethodPut, `{"invoice_email":"finance@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	record := mem.Record(store.BillingKey(testEmail))
	assert.Equal(t, "9999", record["card_last4"], "card profile untouched")
	assert.Equal(t, "finance@example.com", record["invoice_email"])
}

func TestPlanRequiresCardForPaidTotal(t *testing.T) {
	mem := storetest.NewMem()
	h := newTestHandler(mem)

	paid := `{"plan_name":"pro","addon_priority_support":true,"total_price":10}`
	rec := do(h.PutPlan, http.MethodPut, paid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "add billing method first")
	assert.Nil(t, mem.Record(store.PlansKey(testEmail)))

	rec = do(h.PutBilling, http.MethodPut,
		`{"card_number":"4111111111111234","cardholder_name":"Ada","expiry_month":"12","expiry_year":"2030","cvv":"123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h.PutPlan, http.MethodPut, paid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p Plan
	rec = do(h.GetPlan, http.MethodGet, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "pro", p.Name)
	assert.True(t, p.AddonPrioritySupport)
	assert.False(t, p.AddonExtraStorage)
	assert.Equal(t, 10.0, p.LastChargedPrice)
}

func TestPlanFreeNeedsNoCard(t *testing.T) {
	mem := storetest.NewMem()
	h := newTestHandler(mem)

	rec := do(h.PutPlan, http.MethodPut, `{"plan_name":"free","total_price":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "free", mem.Record(store.PlansKey(testEmail))["plan_name"])
}

func TestSettingsStoreUnavailable(t *testing.T) {
	mem := storetest.NewMem()
	mem.Err = store.ErrUnavailable
	h := newTestHandler(mem)

	rec := do(h.GetNotifications, http.MethodGet, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "store unavailable")

	rec = do(h.PutPlan, http.MethodPut, `{"plan_name":"pro","total_price":10}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
