package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddvk/rmshapes/config"
	"github.com/ddvk/rmshapes/encoding/rm"
	"github.com/ddvk/rmshapes/geometry"
)

type envelope struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, secret string) *httptest.Server {
	cfg := config.Default()
	cfg.Server.Secret = secret
	s, err := NewApiServer(cfg)
	require.NoError(t, err)
	return httptest.NewServer(s.Handler())
}

func circleStroke() []geometry.Point {
	var pts []geometry.Point
	for i := 0; i < 64; i++ {
		a := 2 * math.Pi * float64(i) / 64
		pts = append(pts, geometry.Pt(300+80*math.Cos(a), 300+80*math.Sin(a)))
	}
	return pts
}

func post(t *testing.T, url, token string, body []byte) (*http.Response, envelope) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func strokeBody(t *testing.T, points []geometry.Point) []byte {
	body, err := json.Marshal(StrokeRequest{Points: points})
	require.NoError(t, err)
	return body
}

func TestFinalizeEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	defer ts.Close()

	resp, env := post(t, ts.URL+"/api/finalize", "", strokeBody(t, circleStroke()))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var sh struct {
		Kind   string         `json:"kind"`
		Center geometry.Point `json:"center"`
		Radius float64        `json:"radius"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sh))
	assert.Equal(t, "circle", sh.Kind)
	assert.InDelta(t, 300, sh.Center.X, 1e-6)
	assert.InDelta(t, 80, sh.Radius, 1e-6)

	resp, env = post(t, ts.URL+"/api/finalize", "", strokeBody(t, circleStroke()[:3]))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "stroke has too few points", env.Error)

	resp, env = post(t, ts.URL+"/api/finalize", "", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, env.Error)
}

func TestRecognizeEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	defer ts.Close()

	resp, env := post(t, ts.URL+"/api/recognize", "", strokeBody(t, circleStroke()))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var g GestureResponse
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, "circle", g.Name)
	assert.True(t, g.Match)

	_, env = post(t, ts.URL+"/api/recognize", "", strokeBody(t, circleStroke()[:5]))
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, GestureResponse{}, g)
}

func TestScanEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	defer ts.Close()

	var points []rm.Point
	for _, p := range circleStroke() {
		points = append(points, rm.Point{X: float32(p.X), Y: float32(p.Y)})
	}
	page := &rm.Rm{Layers: []rm.Layer{{Lines: []rm.Line{{BrushType: rm.FinelinerV5, Points: points}}}}}
	data, err := page.MarshalBinary()
	require.NoError(t, err)

	resp, env := post(t, ts.URL+"/api/scan", "", data)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var reports []struct {
		ID    string `json:"id"`
		Shape struct {
			Kind string `json:"kind"`
		} `json:"shape"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reports))
	require.Len(t, reports, 1)
	assert.NotEmpty(t, reports[0].ID)
	assert.Equal(t, "circle", reports[0].Shape.Kind)

	resp, _ = post(t, ts.URL+"/api/scan", "", []byte("garbage"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScanRejectsMalformedPages(t *testing.T) {
	ts := newTestServer(t, "")
	defer ts.Close()

	page := func(header string, nums ...uint32) []byte {
		b := bytes.NewBufferString(header)
		for _, n := range nums {
			require.NoError(t, binary.Write(b, binary.LittleEndian, n))
		}
		return b.Bytes()
	}

	for name, body := range map[string][]byte{
		"huge layer count": page(rm.HeaderV5, 0xFFFFFFFF),
		"huge line count":  page(rm.HeaderV5, 1, 0x7FFFFFFF),
		"huge point count": page(rm.HeaderV5, 1, 1, 0, 0, 0, 0, 0, 0x7FFFFFFF),
		"v6 block overrun": page(rm.HeaderV6, 0xFFFFFFF0, 0x05020100),
		"header only":      page(rm.HeaderV5),
	} {
		resp, env := post(t, ts.URL+"/api/scan", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		assert.Contains(t, env.Error, "invalid page", name)
	}

	// the server is still serving
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, "")
	defer ts.Close()

	for _, path := range []string{"/api/finalize", "/api/recognize", "/api/scan"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}

	resp, err := http.Post(ts.URL+"/api/templates", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestTemplatesEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/templates")
	require.NoError(t, err)
	defer resp.Body.Close()

	var env struct {
		Data struct {
			Templates []string `json:"templates"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, []string{"circle", "triangle", "rectangle", "line"}, env.Data.Templates)
}

func TestAuthorization(t *testing.T) {
	secret := "s3cret"
	ts := newTestServer(t, secret)
	defer ts.Close()

	body := strokeBody(t, circleStroke())

	resp, env := post(t, ts.URL+"/api/finalize", "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing bearer token", env.Error)

	bad, err := IssueToken([]byte("other"), "test", time.Minute)
	require.NoError(t, err)
	resp, _ = post(t, ts.URL+"/api/finalize", bad, body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired, err := IssueToken([]byte(secret), "test", -time.Minute)
	require.NoError(t, err)
	resp, _ = post(t, ts.URL+"/api/finalize", expired, body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	good, err := IssueToken([]byte(secret), "test", time.Minute)
	require.NoError(t, err)
	resp, _ = post(t, ts.URL+"/api/finalize", good, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// health stays open
	hr, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	hr.Body.Close()
	assert.Equal(t, http.StatusOK, hr.StatusCode)
}
