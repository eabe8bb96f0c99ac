package respond

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestStatusHasNoBody(t *testing.T) {
	resp := Status(404)
	assert.Equal(t, 404, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestTextSetsContentTypeAndBody(t *testing.T) {
	resp := Text(200, "hello")
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(5), resp.ContentLength)
}

func TestJSONMarshalsTheValue(t *testing.T) {
	resp := JSON(201, map[string]interface{}{"name": "sandwich", "count": 3})
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "sandwich", gjson.GetBytes(data, "name").String())
	assert.Equal(t, int64(3), gjson.GetBytes(data, "count").Int())
}

func TestJSONPanicsOnUnmarshallableValue(t *testing.T) {
	assert.Panics(t, func() { JSON(200, make(chan int)) })
}

func TestHeaderChainsOntoBuilders(t *testing.T) {
	resp := Header(Text(200, "ok"), "X-Request-Id", "abc")
	assert.Equal(t, "abc", resp.Header.Get("X-Request-Id"))
}
