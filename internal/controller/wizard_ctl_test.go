package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendies_market_v1/internal/model"
	"trendies_market_v1/internal/wizard"
)

// pngHeader PNG 文件签名 + IHDR 块头，足够被识别为 image/png
var pngHeader = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x02, 0x00, 0x00, 0x00,
}

func uploadPhoto(t *testing.T, env *testEnv, auth, slot, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("PUT", "/api/wizard/photos/"+slot, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", auth)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) wizard.State {
	t.Helper()
	var st wizard.State
	if err := json.Unmarshal(decode(t, w).Data, &st); err != nil {
		t.Fatalf("解析向导状态失败: %v, body=%s", err, w.Body.String())
	}
	return st
}

func TestWizard_RequiresLogin(t *testing.T) {
	env := setupCtlRouter(t)

	w := doRequest(env.router, "POST", "/api/wizard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required.", decode(t, w).Message)
}

func TestWizard_NoSession(t *testing.T) {
	env := setupCtlRouter(t)

	w := doRequest(env.router, "GET", "/api/wizard", bearer(t, 7), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(env.router, "POST", "/api/wizard/next", bearer(t, 7), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizard_StepValidation(t *testing.T) {
	env := setupCtlRouter(t)
	auth := bearer(t, 7)

	w := doRequest(env.router, "POST", "/api/wizard", auth, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, decodeState(t, w).Step)

	// 空标题不能离开第一步
	w = doRequest(env.router, "POST", "/api/wizard/next", auth, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	st := decodeState(t, w)
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, "A title is required", st.Errors["title"])

	body := validListingBody()
	delete(body, "price")
	w = doRequest(env.router, "PATCH", "/api/wizard/fields", auth, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Errors)

	w = doRequest(env.router, "POST", "/api/wizard/next", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decodeState(t, w).Step)

	w = doRequest(env.router, "POST", "/api/wizard/back", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(env.router, "POST", "/api/wizard/back", auth, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWizard_UnknownFieldRejected(t *testing.T) {
	env := setupCtlRouter(t)
	auth := bearer(t, 7)
	doRequest(env.router, "POST", "/api/wizard", auth, nil)

	w := doRequest(env.router, "PATCH", "/api/wizard/fields", auth, map[string]interface{}{"owner": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizard_PhotoUpload(t *testing.T) {
	env := setupCtlRouter(t)
	auth := bearer(t, 7)
	doRequest(env.router, "POST", "/api/wizard", auth, nil)

	// 扩展名不可信，类型按文件头识别
	w := uploadPhoto(t, env, auth, "front", "front.jpg", pngHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	st := decodeState(t, w)
	photo, ok := st.Draft["photos.front"].(map[string]interface{})
	require.True(t, ok, "draft=%v", st.Draft)
	assert.Equal(t, "image/png", photo["content_type"])
	assert.Equal(t, "front.jpg", photo["name"])

	w = uploadPhoto(t, env, auth, "garage", "x.png", pngHeader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(env.router, "DELETE", "/api/wizard/photos/front", auth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decodeState(t, w).Draft, "photos.front")
}

func TestWizard_SuggestPriceFillsDraft(t *testing.T) {
	env := setupCtlRouter(t)
	auth := bearer(t, 7)
	doRequest(env.router, "POST", "/api/wizard", auth, nil)

	w := doRequest(env.router, "POST", "/api/wizard/suggest-price", auth, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		State wizard.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, 450.0, data.State.Draft["price"])
	assert.Equal(t, 1, env.prices.calls)
}

func TestWizard_SubmitFlow(t *testing.T) {
	env := setupCtlRouter(t)
	auth := bearer(t, 7)
	doRequest(env.router, "POST", "/api/wizard", auth, nil)

	doRequest(env.router, "PATCH", "/api/wizard/fields", auth, validListingBody())

	// 未到最后一步不能提交
	w := doRequest(env.router, "POST", "/api/wizard/submit", auth, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	for step := 1; step < wizard.LastStep; step++ {
		w = doRequest(env.router, "POST", "/api/wizard/next", auth, nil)
		require.Equal(t, http.StatusOK, w.Code, "step %d: %s", step, w.Body.String())
	}
	w = doRequest(env.router, "POST", "/api/wizard/next", auth, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(env.router, "POST", "/api/wizard/submit", auth, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "/", data.Redirect)

	var count int64
	env.db.Model(&model.Listing{}).Where("user_id = ?", 7).Count(&count)
	assert.Equal(t, int64(1), count)

	// 提交成功后会话结束
	w = doRequest(env.router, "GET", "/api/wizard", auth, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
