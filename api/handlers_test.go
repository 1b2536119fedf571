package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenant = "acme"

// unknownID is a well-formed customer ID that is never registered.
const unknownID = "1eb4037f-979e-4a5e-9468-da84cd0f3cf5"

func newTestService(t *testing.T, configure ...func(*Config)) *service {
	cfg := DefaultConfig()
	cfg.Server.LoggerLevel = "error"
	cfg.Server.RPCPort = 0
	for _, f := range configure {
		f(&cfg)
	}

	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Shutdown)

	return svc
}

type registered struct {
	ID               string `json:"id"`
	ConfirmationHash string `json:"confirmation_hash"`
}

type eventsResponse struct {
	Total  int `json:"total"`
	Events []struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	} `json:"events"`
}

func tenantHeader() gofight.H {
	return gofight.H{TenantHeader: testTenant}
}

func register(t *testing.T, svc *service) registered {
	var reg registered
	r := gofight.New()
	r.POST(Prefix+"/customers").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{
			"email_address": "john@doe.com",
			"given_name":    "John",
			"family_name":   "Doe",
		}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &reg))

			var body eventsResponse
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
			require.Len(t, body.Events, 1)
			assert.Equal(t, "CustomerRegistered", body.Events[0].Type)
			assert.Equal(t, "john@doe.com", body.Events[0].Data["email_address"])

			assert.Equal(t, Prefix+"/customers/"+reg.ID, (*httptest.ResponseRecorder)(res).Header().Get("Location"))
		})

	require.NotEmpty(t, reg.ID)
	require.NotEmpty(t, reg.ConfirmationHash)
	return reg
}

func confirm(t *testing.T, svc *service, id, hash string) eventsResponse {
	var body eventsResponse
	r := gofight.New()
	r.POST(Prefix+"/customers/"+id+"/confirmation").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"confirmation_hash": hash}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		})
	return body
}

func TestRootHandler(t *testing.T) {
	svc := newTestService(t)

	r := gofight.New()
	r.GET("/").
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, res.Code)
			assert.Contains(t, res.Body.String(), "Customerstore")
		})

	r.GET("/stats").
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, res.Code)
			assert.Contains(t, res.Body.String(), "goroutines")
		})
}

func TestTenantRequired(t *testing.T) {
	svc := newTestService(t)

	r := gofight.New()
	r.GET(Prefix+"/customers/abc").
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, res.Code)
		})
}

func TestCustomerLifecycle(t *testing.T) {
	svc := newTestService(t)
	reg := register(t, svc)

	failed := confirm(t, svc, reg.ID, "wrong")
	require.Len(t, failed.Events, 1)
	assert.Equal(t, "CustomerEmailAddressConfirmationFailed", failed.Events[0].Type)

	confirmed := confirm(t, svc, reg.ID, reg.ConfirmationHash)
	require.Len(t, confirmed.Events, 1)
	assert.Equal(t, "CustomerEmailAddressConfirmed", confirmed.Events[0].Type)

	again := confirm(t, svc, reg.ID, reg.ConfirmationHash)
	assert.Empty(t, again.Events)

	r := gofight.New()
	r.PUT(Prefix+"/customers/"+reg.ID+"/email").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"email_address": "john+changed@doe.com"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())

			var body eventsResponse
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
			require.Len(t, body.Events, 1)
			assert.Equal(t, "CustomerEmailAddressChanged", body.Events[0].Type)
			assert.NotEqual(t, reg.ConfirmationHash, body.Events[0].Data["confirmation_hash"])
		})

	r.PUT(Prefix+"/customers/"+reg.ID+"/name").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"given_name": "Jane", "family_name": "Doe"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())
			assert.Contains(t, res.Body.String(), "CustomerNameChanged")
		})

	r.GET(Prefix+"/customers/"+reg.ID).
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
			assert.Equal(t, reg.ID, body["id"])
			assert.Equal(t, "john+changed@doe.com", body["email_address"])
			assert.Equal(t, false, body["is_email_confirmed"])
			assert.Equal(t, float64(5), body["version"])
			assert.Equal(t, "Jane", body["name"].(map[string]interface{})["given_name"])
		})

	r.GET(Prefix+"/customers/"+reg.ID+"/events?per_page=2&page=1").
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())

			var body eventsResponse
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
			assert.Equal(t, 5, body.Total)
			require.Len(t, body.Events, 2)
			assert.Equal(t, "CustomerEmailAddressConfirmed", body.Events[0].Type)
			assert.Equal(t, "CustomerEmailAddressChanged", body.Events[1].Type)
		})
}

func TestGetCustomerAt(t *testing.T) {
	svc := newTestService(t)
	reg := register(t, svc)

	r := gofight.New()
	r.GET(Prefix+"/customers/"+reg.ID+"?at="+time.Now().Add(time.Hour).UTC().Format(time.RFC3339)).
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, res.Code, res.Body.String())
		})

	r.GET(Prefix+"/customers/"+reg.ID+"?at=2000-01-01T00:00:00Z").
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, res.Code, res.Body.String())
		})

	r.GET(Prefix+"/customers/"+reg.ID+"?at=yesterday").
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code, res.Body.String())
		})
}

func TestErrors(t *testing.T) {
	svc := newTestService(t)

	r := gofight.New()
	r.GET(Prefix+"/customers/"+unknownID).
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, res.Code)
		})

	r.POST(Prefix+"/customers/"+unknownID+"/confirmation").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"confirmation_hash": "h"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, res.Code)
		})

	r.POST(Prefix+"/customers").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"email_address": "not-an-email", "given_name": "John", "family_name": "Doe"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Contains(t, res.Body.String(), "malformed email address")
		})

	r.POST(Prefix+"/customers").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"email_address": "john@doe.com"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
}

func TestMalformedID(t *testing.T) {
	svc := newTestService(t)

	r := gofight.New()
	r.GET(Prefix+"/customers/not-a-uuid").
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Contains(t, res.Body.String(), "UUID v4")
		})

	r.PUT(Prefix+"/customers/not-a-uuid/name").
		SetHeader(tenantHeader()).
		SetJSON(gofight.D{"given_name": "Jane", "family_name": "Doe"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
}

func TestGetCustomerEvents_PageOverflow(t *testing.T) {
	svc := newTestService(t)
	reg := register(t, svc)

	r := gofight.New()
	r.GET(Prefix+"/customers/"+reg.ID+"/events?per_page=10&page=4611686018427387904").
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			require.Equal(t, http.StatusOK, res.Code, res.Body.String())

			var body eventsResponse
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
			assert.Equal(t, 1, body.Total)
			assert.Empty(t, body.Events)
		})
}

func TestTenantIsolation(t *testing.T) {
	svc := newTestService(t)
	reg := register(t, svc)

	r := gofight.New()
	r.GET(Prefix+"/customers/"+reg.ID).
		SetHeader(gofight.H{TenantHeader: "other"}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, res.Code)
		})
}

func TestJWTMiddleware(t *testing.T) {
	const secret = "s3cret"
	svc := newTestService(t, func(cfg *Config) { cfg.JWTSecret = secret })

	token, err := NewToken(secret, testTenant, time.Minute)
	require.NoError(t, err)

	r := gofight.New()
	r.GET(Prefix+"/customers/"+unknownID).
		SetHeader(gofight.H{"Authorization": "Bearer " + token}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, res.Code)
		})

	r.GET(Prefix+"/customers/"+unknownID).
		SetHeader(tenantHeader()).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, res.Code)
		})

	forged, err := NewToken("other", testTenant, time.Minute)
	require.NoError(t, err)

	r.GET(Prefix+"/customers/"+unknownID).
		SetHeader(gofight.H{"Authorization": "Bearer " + forged}).
		Run(svc.HTTPHandler(), func(res gofight.HTTPResponse, req gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, res.Code)
		})
}
