package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeEcho(t *testing.T, body string) map[string]interface{} {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var got map[string]interface{}
	r.POST("/", SanitizeInput(), func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&got))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return got
}

func TestSanitizeInput_StripsMarkupFromStringFields(t *testing.T) {
	got := sanitizeEcho(t, `{"firstName":"<script>x</script>Ann","companyName":"<b>Acme</b>"}`)
	assert.Equal(t, "Ann", got["firstName"])
	assert.Equal(t, "Acme", got["companyName"])
}

func TestSanitizeInput_CredentialFieldsUntouched(t *testing.T) {
	password := "Sup3r<b>&Secret!"
	payload, _ := json.Marshal(map[string]string{
		"email":       "a@example.com",
		"password":    password,
		"oldPassword": password,
		"newPassword": password,
		"token":       "tok<en>",
	})

	got := sanitizeEcho(t, string(payload))
	assert.Equal(t, password, got["password"])
	assert.Equal(t, password, got["oldPassword"])
	assert.Equal(t, password, got["newPassword"])
	assert.Equal(t, "tok<en>", got["token"])
}

func TestSanitizeInput_NonJSONPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", SanitizeInput(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
