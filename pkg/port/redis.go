// Loquat speaks a subset of the Redis protocol so stock Redis clients can
// use it as a shared-nothing in-process cache exposed over TCP. Expiry is a
// cache-wide policy configured at startup, so the per-key TTL options of SET
// are rejected rather than silently ignored.

package port

import (
	"context"
	"flag"
	"log/slog"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lunardb/loquat/pkg/cache"
	"github.com/tidwall/redcon"
)

var address = flag.String("address", "0.0.0.0:6380", "The ip:port to listen on for Redis protocol.")

// command is a parsed RESP command.
type command struct {
	name string   // Upper-cased command name.
	args [][]byte // Arguments only, the command name excluded.
}

// reply mirrors the RESP answer shapes the handler can produce.
type reply struct {
	closeConn bool     // Closes the connection after writing, QUIT only.
	isNil     bool     // A nil bulk reply.
	errText   string   // Error reply when non-empty.
	intVal    *int     // Integer reply when set.
	array     [][]byte // Array-of-bulks reply when non-nil.
	bulk      []byte   // Bulk reply otherwise.
}

func closeReply(msg string) reply     { return reply{bulk: []byte(msg), closeConn: true} }
func nilReply() reply                 { return reply{isNil: true} }
func intReply(i int) reply            { return reply{intVal: &i} }
func bulkReply(b []byte) reply        { return reply{bulk: b} }
func stringReply(s string) reply      { return reply{bulk: []byte(s)} }
func arrayReply(a [][]byte) reply     { return reply{array: a} }
func errorReply(err error) reply      { return reply{errText: "ERR " + err.Error()} }
func wrongArity(name string) reply {
	return errorReply(errors.Newf("wrong number of arguments for '%s' command", name))
}

// unsupportedSetOptions are the options Redis accepts on SET but loquat
// cannot honor: expiry is a
// cache-wide policy, not per key, and conditional writes are not part of the
// cache surface.
var unsupportedSetOptions = []string{"EX", "PX", "EXAT", "PXAT", "KEEPTTL", "NX", "XX", "GET"}

// Handler dispatches RESP commands onto a cache layer.
type Handler struct {
	store cache.Layer[string, []byte]
}

// NewHandler creates a Handler over the given store.
func NewHandler(store cache.Layer[string, []byte]) (*Handler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil store")
	}
	return &Handler{store: store}, nil
}

func (h *Handler) handle(cmd command) reply {
	switch cmd.name {
	case "PING":
		if len(cmd.args) == 1 {
			return bulkReply(cmd.args[0])
		}
		return stringReply("PONG")
	case "ECHO":
		if len(cmd.args) != 1 {
			return wrongArity("ECHO")
		}
		return bulkReply(cmd.args[0])
	case "QUIT":
		return closeReply("OK")
	case "SET":
		return h.handleSet(cmd.args)
	case "GET":
		if len(cmd.args) != 1 {
			return wrongArity("GET")
		}
		value, found, err := h.store.TryGet(string(cmd.args[0]))
		if err != nil {
			return errorReply(err)
		}
		if !found {
			return nilReply()
		}
		return bulkReply(value)
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArity("DEL")
		}
		deleted := 0
		for _, key := range cmd.args {
			removed, err := h.store.Remove(string(key))
			if err != nil {
				return errorReply(err)
			}
			if removed {
				deleted++
			}
		}
		return intReply(deleted)
	case "EXISTS":
		if len(cmd.args) < 1 {
			return wrongArity("EXISTS")
		}
		present := 0
		for _, key := range cmd.args {
			contained, err := h.store.ContainsKey(string(key))
			if err != nil {
				return errorReply(err)
			}
			if contained {
				present++
			}
		}
		return intReply(present)
	case "KEYS":
		if len(cmd.args) != 1 {
			return wrongArity("KEYS")
		}
		keys, err := h.store.Keys()
		if err != nil {
			return errorReply(err)
		}
		matched := matchGlob(string(cmd.args[0]), keys)
		out := make([][]byte, 0, len(matched))
		for _, key := range matched {
			out = append(out, []byte(key))
		}
		return arrayReply(out)
	case "DBSIZE":
		size, err := h.store.Len()
		if err != nil {
			return errorReply(err)
		}
		return intReply(size)
	case "FLUSHALL", "FLUSHDB":
		if err := h.store.Clear(); err != nil {
			return errorReply(err)
		}
		return stringReply("OK")
	default:
		return errorReply(errors.Newf("unknown command '%s'", cmd.name))
	}
}

func (h *Handler) handleSet(args [][]byte) reply {
	if len(args) < 2 {
		return wrongArity("SET")
	}
	if len(args) > 2 {
		opt := strings.ToUpper(string(args[2]))
		if slices.Contains(unsupportedSetOptions, opt) {
			return errorReply(errors.Newf("SET option '%s' is not supported: expiry is a cache-wide policy", opt))
		}
		return errorReply(errors.Newf("syntax error near '%s'", string(args[2])))
	}
	if err := h.store.Put(string(args[0]), args[1]); err != nil {
		return errorReply(err)
	}
	return stringReply("OK")
}

// RunServer starts the RESP listener over the given store and serves until
// ctx is cancelled, closing the server and the store on the way out.
func RunServer(ctx context.Context, store cache.Layer[string, []byte]) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	handler, err := NewHandler(store)
	if err != nil {
		return errors.Wrap(err, "failed to create a RESP handler")
	}

	server := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			slog.Debug("Handling command.", "cmd", string(cmd.Raw))
			out := handler.handle(command{
				name: strings.ToUpper(string(cmd.Args[0])), // Allows case-insensitive commands.
				args: cmd.Args[1:],
			})
			writeReply(conn, out)
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Info("Accepting connection.", "addr", conn.NetConn().RemoteAddr().String())
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Warn("Connection closed.", "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		slog.Info("Starting RESP server.", "address", *address)
		if err := server.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Server context cancelled.", "err", ctx.Err())
		if exitErr := errors.Join(server.Close(), store.Close()); exitErr != nil {
			return errors.Wrap(exitErr, "failed to close loquat")
		}
	case err := <-serverErrSignal:
		return errors.Wrap(err, "RESP server stopped unexpectedly")
	}

	return nil // Exited with no errors.
}

func writeReply(conn redcon.Conn, out reply) {
	switch {
	case out.closeConn:
		conn.WriteBulk(out.bulk)
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close connection.", "error", err)
		}
	case out.isNil:
		conn.WriteNull()
	case out.errText != "":
		conn.WriteError(out.errText)
	case out.intVal != nil:
		conn.WriteInt(*out.intVal)
	case out.array != nil:
		conn.WriteArray(len(out.array))
		for _, item := range out.array {
			conn.WriteBulk(item)
		}
	default:
		conn.WriteBulk(out.bulk)
	}
}
