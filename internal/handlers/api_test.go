package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-tryon-studio/internal/catalog"
	"ai-tryon-studio/internal/history"
	"ai-tryon-studio/internal/wizard"
)

const (
	personData = "data:image/png;base64,cGVyc29u"
	clothData  = "data:image/png;base64,Y2xvdGg="
)

var resultData = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("result"))

type stubResolver struct{}

func (stubResolver) FetchDataURL(_ context.Context, url string) (string, error) {
	return "", errors.New("unexpected remote fetch: " + url)
}

type stubGenerator struct {
	tryOnResult string
	tryOnErr    error
}

func (g *stubGenerator) GenerateClothingImage(context.Context, string) (string, error) {
	return clothData, nil
}

func (g *stubGenerator) GenerateTryOn(context.Context, string, string) (string, error) {
	return g.tryOnResult, g.tryOnErr
}

func newTestServer(t *testing.T, gen wizard.Generator) (*httptest.Server, *http.Client) {
	t.Helper()

	sessions := scs.New()
	wizards := wizard.NewStore(func(string) *wizard.Machine {
		return wizard.New(wizard.Options{
			Resolver:  stubResolver{},
			Generator: gen,
			People: catalog.New(
				catalog.Asset{ID: "p1", Data: personData, Embedded: true},
			),
			Clothes: catalog.New(
				catalog.Asset{ID: "c1", Data: clothData, Embedded: true},
			),
			AdvanceDelay: 10 * time.Millisecond,
		})
	})

	h := New(Options{Wizards: wizards, Sessions: sessions, Configured: true})
	srv := httptest.NewServer(sessions.LoadAndSave(h.Router()))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func getJSON(t *testing.T, client *http.Client, url string, v any) int {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, client *http.Client, url string, body any, v any) int {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func pollState(t *testing.T, client *http.Client, base string, done func(stateResponse) bool) stateResponse {
	t.Helper()

	var st stateResponse
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/api/state")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			return false
		}
		return done(st)
	}, 2*time.Second, 10*time.Millisecond)
	return st
}

func TestHealthy(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var body map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/healthy", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStateStartsAtPersonStep(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var st stateResponse
	require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/state", &st))
	assert.Equal(t, 1, st.Step)
	assert.True(t, st.Configured)
	assert.Empty(t, st.ErrorMessage)
	assert.Zero(t, st.HistoryLength)
}

func TestAssetsEndpoint(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var body struct {
		Assets []catalog.Asset `json:"assets"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/assets/person", &body))
	require.Len(t, body.Assets, 1)
	assert.Equal(t, "p1", body.Assets[0].ID)

	require.Equal(t, http.StatusNotFound, getJSON(t, client, srv.URL+"/api/assets/hat", nil))
}

func TestSelectPersonAdvancesToClothStep(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	status := postJSON(t, client, srv.URL+"/api/assets/person/select", map[string]string{"id": "p1"}, nil)
	require.Equal(t, http.StatusOK, status)

	st := pollState(t, client, srv.URL, func(st stateResponse) bool {
		return st.Step == 2
	})
	assert.Equal(t, "p1", st.SelectedPersonID)
	assert.Equal(t, personData, st.PersonImage)
}

func TestSelectUnknownAssetReturns404(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var body apiError
	status := postJSON(t, client, srv.URL+"/api/assets/person/select", map[string]string{"id": "nope"}, &body)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unknown asset id", body.Error)
}

func multipartUpload(t *testing.T, data []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadPerson(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	body, contentType := multipartUpload(t, img.Bytes())

	resp, err := client.Post(srv.URL+"/api/assets/person/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st stateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.True(t, strings.HasPrefix(st.SelectedPersonID, "upload_p_"))

	var assets struct {
		Assets []catalog.Asset `json:"assets"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/assets/person", &assets))
	require.Len(t, assets.Assets, 2)
	assert.Equal(t, st.SelectedPersonID, assets.Assets[0].ID)
}

func TestUploadUnreadableFileReturns400(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	body, contentType := multipartUpload(t, []byte("not an image"))
	resp, err := client.Post(srv.URL+"/api/assets/person/upload", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTryOnWithoutInputsSetsError(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var st stateResponse
	status := postJSON(t, client, srv.URL+"/api/tryon", nil, &st)
	require.Equal(t, http.StatusAccepted, status)
	assert.NotEmpty(t, st.ErrorMessage)
	assert.Equal(t, 1, st.Step)

	st = stateResponse{}
	status = postJSON(t, client, srv.URL+"/api/error/dismiss", nil, &st)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, st.ErrorMessage)
}

// selectBoth walks a session to the garment step with both inputs resolved.
func selectBoth(t *testing.T, client *http.Client, base string) {
	t.Helper()

	require.Equal(t, http.StatusOK,
		postJSON(t, client, base+"/api/assets/person/select", map[string]string{"id": "p1"}, nil))
	require.Equal(t, http.StatusOK,
		postJSON(t, client, base+"/api/assets/cloth/select", map[string]string{"id": "c1"}, nil))
	pollState(t, client, base, func(st stateResponse) bool {
		return st.PersonImage == personData && st.ClothImage == clothData
	})
}

func TestTryOnHistoryRestoreDownload(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{tryOnResult: resultData})
	selectBoth(t, client, srv.URL)

	require.Equal(t, http.StatusAccepted, postJSON(t, client, srv.URL+"/api/tryon", nil, nil))
	st := pollState(t, client, srv.URL, func(st stateResponse) bool {
		return st.ResultImage != "" && !st.GeneratingResult
	})
	assert.Equal(t, resultData, st.ResultImage)
	assert.Equal(t, 3, st.Step)
	assert.Equal(t, 1, st.HistoryLength)

	var hist struct {
		Items []history.Item `json:"items"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, client, srv.URL+"/api/history", &hist))
	require.Len(t, hist.Items, 1)
	item := hist.Items[0]
	assert.Equal(t, personData, item.PersonImage)
	assert.Equal(t, clothData, item.ClothImage)
	assert.Equal(t, resultData, item.ResultImage)

	require.Equal(t, http.StatusOK,
		postJSON(t, client, srv.URL+"/api/history/"+item.ID+"/restore", nil, &st))
	assert.Equal(t, 3, st.Step)
	assert.Equal(t, resultData, st.ResultImage)

	resp, err := client.Get(srv.URL + "/api/history/" + item.ID + "/download")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("content-type"))
	assert.Contains(t, resp.Header.Get("content-disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("content-disposition"), "tryon-")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("result"), raw)
}

func TestRestoreUnknownItemReturns404(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	require.Equal(t, http.StatusNotFound,
		postJSON(t, client, srv.URL+"/api/history/missing/restore", nil, nil))
	require.Equal(t, http.StatusNotFound,
		getJSON(t, client, srv.URL+"/api/history/missing/download", nil))
}

func TestClothPromptAndGenerate(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var st stateResponse
	require.Equal(t, http.StatusOK,
		postJSON(t, client, srv.URL+"/api/cloth/prompt", map[string]string{"prompt": "red silk dress"}, &st))
	assert.Equal(t, "red silk dress", st.ClothPrompt)

	require.Equal(t, http.StatusAccepted, postJSON(t, client, srv.URL+"/api/cloth/generate", nil, nil))
	st = pollState(t, client, srv.URL, func(st stateResponse) bool {
		return !st.GeneratingCloth && st.SelectedClothID != ""
	})
	assert.True(t, strings.HasPrefix(st.SelectedClothID, "gen_c_"))
	assert.Empty(t, st.ClothPrompt)
}

func TestNavigateGuards(t *testing.T) {
	srv, client := newTestServer(t, &stubGenerator{})

	var st stateResponse
	require.Equal(t, http.StatusOK,
		postJSON(t, client, srv.URL+"/api/navigate", map[string]int{"step": 3}, &st))
	assert.Equal(t, 1, st.Step)

	selectBoth(t, client, srv.URL)
	require.Equal(t, http.StatusOK,
		postJSON(t, client, srv.URL+"/api/navigate", map[string]int{"step": 1}, &st))
	assert.Equal(t, 1, st.Step)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, first := newTestServer(t, &stubGenerator{})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	second := &http.Client{Jar: jar}

	require.Equal(t, http.StatusOK,
		postJSON(t, first, srv.URL+"/api/assets/person/select", map[string]string{"id": "p1"}, nil))
	pollState(t, first, srv.URL, func(st stateResponse) bool { return st.Step == 2 })

	var st stateResponse
	require.Equal(t, http.StatusOK, getJSON(t, second, srv.URL+"/api/state", &st))
	assert.Equal(t, 1, st.Step)
	assert.Empty(t, st.SelectedPersonID)
}
