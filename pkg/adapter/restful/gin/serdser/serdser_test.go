package serdser_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/adapter/restful/gin/serdser"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/cerr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseTime(t *testing.T) {
	d, err := serdser.ParseTime("2025-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = serdser.ParseTime("2025-01-05T12:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC), d)
	assert.Equal(t, time.UTC, d.Location())

	for _, s := range []string{"", "05/01/2025", "2025-13-01", "tomorrow"} {
		_, err = serdser.ParseTime(s)
		assert.Error(t, err, s)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) serdser.Failure {
	t.Helper()
	f := serdser.Failure{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	return f
}

func TestSerErr(t *testing.T) {
	for name, tc := range map[string]struct {
		err    error
		status int
		msg    string
	}{
		"conflict": {cerr.Conflict(cerr.ErrCarBooked), 409, cerr.ErrCarBooked.Error()},
		"not found": {cerr.NotFound(cerr.ErrRentalNotFound), 404, "rental not found"},
		"internal": {errors.New("pq: secret detail"), 500, "Internal server error"},
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			serdser.SerErr(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
			f := decode(t, w)
			assert.False(t, f.Success)
			assert.Equal(t, tc.msg, f.Message)
		})
	}
}

type bindReq struct {
	CarID int64  `json:"carId" binding:"required,gt=0"`
	Name  string `json:"name" binding:"omitempty,max=3"`
}

func TestBind(t *testing.T) {
	for name, tc := range map[string]struct {
		body   string
		ok     bool
		fields []string
	}{
		"valid":     {`{"carId": 2, "name": "abc"}`, true, nil},
		"missing":   {`{}`, false, []string{"CarID"}},
		"two":       {`{"carId": -1, "name": "abcd"}`, false, []string{"CarID", "Name"}},
		"malformed": {`{"carId":`, false, nil},
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(
				http.MethodPost, "/", strings.NewReader(tc.body),
			)
			c.Request.Header.Set("Content-Type", "application/json")
			req := &bindReq{}
			ok := serdser.Bind(c, req, binding.JSON)
			require.Equal(t, tc.ok, ok)
			if ok {
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			f := decode(t, w)
			for _, field := range tc.fields {
				assert.Len(t, f.Errors[field], 1, field)
			}
		})
	}
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	serdser.OK(c, http.StatusCreated, map[string]bool{"available": true})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"available":true}}`, w.Body.String())
}
