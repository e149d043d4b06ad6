package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/pkg/apperror"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	StatusCode   int             `json:"statusCode"`
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
	ErrorDetails map[string]any  `json:"errorDetails"`
	RequestID    string          `json:"requestId"`
}

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "req-1")
	h(c)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestSuccess(t *testing.T) {
	w, env := run(t, func(c *gin.Context) {
		response.Success(c, http.StatusCreated, gin.H{"id": "1"}, "created", nil)
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 201, env.StatusCode)
	assert.True(t, env.Success)
	assert.Equal(t, "created", env.Message)
	assert.JSONEq(t, `{"id":"1"}`, string(env.Data))
	assert.Equal(t, "req-1", env.RequestID)
}

func TestFromError_Typed(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperror.Validation("all fields are required", map[string]string{"email": "is required"}), 400, "all fields are required"},
		{apperror.Conflict("taken"), 409, "taken"},
		{apperror.NotFound("user does not exist"), 404, "user does not exist"},
		{apperror.Auth("invalid credentials"), 401, "invalid credentials"},
	}
	for _, tc := range cases {
		w, env := run(t, func(c *gin.Context) { response.FromError(c, tc.err, helpers.NewNopLogger()) })
		assert.Equal(t, tc.status, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, tc.msg, env.Message)
	}
}

func TestFromError_DetailsAndHiddenCause(t *testing.T) {
	_, env := run(t, func(c *gin.Context) {
		response.FromError(c, apperror.Validation("bad", map[string]string{"email": "is required"}), nil)
	})
	assert.Equal(t, "is required", env.ErrorDetails["email"])

	w, env := run(t, func(c *gin.Context) {
		response.FromError(c, errors.New("pq: password authentication failed"), helpers.NewNopLogger())
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestAbort(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	response.Abort(c, http.StatusUnauthorized, "", nil)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Unauthorized"`)
}

func TestEnvelopeShape(t *testing.T) {
	w, _ := run(t, func(c *gin.Context) { response.Success(c, http.StatusOK, []string{}, "ok", nil) })
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w, _ = run(t, func(c *gin.Context) { response.Error[any](c, http.StatusNotFound, "missing", nil) })
	assert.NotContains(t, w.Body.String(), `"data"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
