package port

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunardb/loquat/pkg/cache"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store := cache.New(
		cache.WithWindow[string, []byte](time.Minute),
		cache.WithPollInterval[string, []byte](0),
	)
	t.Cleanup(func() { _ = store.Close() })
	handler, err := NewHandler(store)
	require.NoError(t, err)
	return handler
}

func cmdOf(parts ...string) command {
	args := make([][]byte, 0, len(parts)-1)
	for _, part := range parts[1:] {
		args = append(args, []byte(part))
	}
	return command{name: parts[0], args: args}
}

func TestHandler_Ping(t *testing.T) {
	h := newTestHandler(t)

	out := h.handle(cmdOf("PING"))
	assert.Equal(t, []byte("PONG"), out.bulk)

	out = h.handle(cmdOf("PING", "hello"))
	assert.Equal(t, []byte("hello"), out.bulk, "PING with a message echoes it")
}

func TestHandler_Echo(t *testing.T) {
	h := newTestHandler(t)

	out := h.handle(cmdOf("ECHO", "hello"))
	assert.Equal(t, []byte("hello"), out.bulk)

	out = h.handle(cmdOf("ECHO"))
	assert.NotEmpty(t, out.errText, "ECHO without a message is an arity error")
}

func TestHandler_Quit(t *testing.T) {
	h := newTestHandler(t)

	out := h.handle(cmdOf("QUIT"))
	assert.True(t, out.closeConn)
	assert.Equal(t, []byte("OK"), out.bulk)
}

func TestHandler_SetAndGet(t *testing.T) {
	h := newTestHandler(t)

	out := h.handle(cmdOf("SET", "greeting", "hello"))
	require.Empty(t, out.errText)
	assert.Equal(t, []byte("OK"), out.bulk)

	out = h.handle(cmdOf("GET", "greeting"))
	assert.Equal(t, []byte("hello"), out.bulk)

	out = h.handle(cmdOf("GET", "missing"))
	assert.True(t, out.isNil, "A missing key is a nil reply, not an error")
}

func TestHandler_SetRejectsPerKeyTTLOptions(t *testing.T) {
	h := newTestHandler(t)

	for _, opt := range []string{"EX", "PX", "EXAT", "PXAT", "KEEPTTL", "NX", "XX", "GET"} {
		out := h.handle(cmdOf("SET", "k", "v", opt))
		assert.Contains(t, out.errText, "not supported", "Option %s must be rejected", opt)
	}

	out := h.handle(cmdOf("SET", "k", "v", "BOGUS"))
	assert.Contains(t, out.errText, "syntax error")

	out = h.handle(cmdOf("SET", "k"))
	assert.Contains(t, out.errText, "wrong number of arguments")
}

func TestHandler_Del(t *testing.T) {
	h := newTestHandler(t)

	h.handle(cmdOf("SET", "a", "1"))
	h.handle(cmdOf("SET", "b", "2"))

	out := h.handle(cmdOf("DEL", "a", "b", "missing"))
	require.NotNil(t, out.intVal)
	assert.Equal(t, 2, *out.intVal, "DEL reports how many keys it removed")

	out = h.handle(cmdOf("GET", "a"))
	assert.True(t, out.isNil)
}

func TestHandler_Exists(t *testing.T) {
	h := newTestHandler(t)

	h.handle(cmdOf("SET", "a", "1"))

	out := h.handle(cmdOf("EXISTS", "a", "a", "missing"))
	require.NotNil(t, out.intVal)
	assert.Equal(t, 2, *out.intVal, "EXISTS counts every named key that is present")
}

func TestHandler_KeysGlob(t *testing.T) {
	h := newTestHandler(t)

	for _, key := range []string{"user:1", "user:2", "order:1"} {
		h.handle(cmdOf("SET", key, "x"))
	}

	out := h.handle(cmdOf("KEYS", "user:*"))
	require.NotNil(t, out.array)
	got := make([]string, 0, len(out.array))
	for _, key := range out.array {
		got = append(got, string(key))
	}
	assert.ElementsMatch(t, []string{"user:1", "user:2"}, got)

	out = h.handle(cmdOf("KEYS", "*"))
	assert.Len(t, out.array, 3)
}

func TestHandler_DBSizeAndFlush(t *testing.T) {
	h := newTestHandler(t)

	h.handle(cmdOf("SET", "a", "1"))
	h.handle(cmdOf("SET", "b", "2"))

	out := h.handle(cmdOf("DBSIZE"))
	require.NotNil(t, out.intVal)
	assert.Equal(t, 2, *out.intVal)

	out = h.handle(cmdOf("FLUSHALL"))
	assert.Equal(t, []byte("OK"), out.bulk)

	out = h.handle(cmdOf("DBSIZE"))
	require.NotNil(t, out.intVal)
	assert.Zero(t, *out.intVal)
}

func TestHandler_UnknownCommand(t *testing.T) {
	h := newTestHandler(t)

	out := h.handle(cmdOf("WAIT", "0", "0"))
	assert.Contains(t, out.errText, "unknown command")
}

func TestNewHandler_NilStore(t *testing.T) {
	_, err := NewHandler(nil)
	assert.Error(t, err)
}
