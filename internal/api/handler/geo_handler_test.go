package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart_toll/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoRouter(positions PositionService) *gin.Engine {
	h := NewGeoHandler(positions)
	r := gin.New()
	r.GET("/getUserCoords", h.GetUserCoords)
	r.POST("/set-latlon", h.SetLatLon)
	return r
}

func TestGetUserCoordsSuccess(t *testing.T) {
	stub := &stubPositions{reading: domain.GeoReading{Latitude: 37.77, Longitude: -122.41}}
	w := httptest.NewRecorder()
	geoRouter(stub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/getUserCoords?email=a@b.com&correlation_id=abc", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body domain.UserCoordsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusSuccess, body.Status)
	require.NotNil(t, body.LatLon)
	assert.Equal(t, 37.77, body.LatLon.Latitude)
	assert.Equal(t, "abc", body.CorrelationID)
	assert.Equal(t, domain.PositionRequest{CorrelationID: "abc", Email: "a@b.com"}, stub.requested)
}

func TestGetUserCoordsGeneratesID(t *testing.T) {
	stub := &stubPositions{}
	w := httptest.NewRecorder()
	geoRouter(stub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/getUserCoords", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, stub.requested.CorrelationID)
}

func TestGetUserCoordsTimeout(t *testing.T) {
	stub := &stubPositions{err: domain.ErrGeoTimeout}
	w := httptest.NewRecorder()
	geoRouter(stub).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/getUserCoords?correlation_id=abc", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	var body domain.UserCoordsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.StatusError, body.Status)
	assert.Nil(t, body.LatLon)
	assert.NotEmpty(t, body.Message)
}

func postLatLon(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/set-latlon", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSetLatLon(t *testing.T) {
	stub := &stubPositions{delivered: map[string]domain.GeoReading{"abc": {}}}
	r := geoRouter(stub)

	w := postLatLon(r, `{"latitude":37.5,"longitude":-122.25,"correlation_id":"abc"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.GeoReading{Latitude: 37.5, Longitude: -122.25}, stub.delivered["abc"])

	assert.Equal(t, http.StatusConflict, postLatLon(r, `{"latitude":1,"longitude":1,"correlation_id":"other"}`).Code)
}

func TestSetLatLonValidation(t *testing.T) {
	r := geoRouter(&stubPositions{delivered: map[string]domain.GeoReading{"abc": {}}})
	cases := map[string]string{
		"missing id":        `{"latitude":1,"longitude":1}`,
		"latitude range":    `{"latitude":91,"longitude":1,"correlation_id":"abc"}`,
		"longitude range":   `{"latitude":1,"longitude":-181,"correlation_id":"abc"}`,
		"missing longitude": `{"latitude":1,"correlation_id":"abc"}`,
		"not json":          `latitude=1`,
	}
	for name, body := range cases {
		assert.Equal(t, http.StatusBadRequest, postLatLon(r, body).Code, name)
	}
	// zero is a valid coordinate
	assert.Equal(t, http.StatusOK, postLatLon(r, `{"latitude":0,"longitude":0,"correlation_id":"abc"}`).Code)
}
