package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// Role is the receiving node's role. Messages are only accepted by the role
// they are addressed to: requests by the authority, decisions by replicas.
type Role int

const (
	RoleAuthority Role = iota
	RoleReplica
)

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleReplica:
		return "replica"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// HandlerFunc is the callback signature for message handlers.
// The sender is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(from any, r *Reader)

type handlerEntry struct {
	fn    HandlerFunc
	roles map[Role]bool
}

// Registry maps opcodes to handlers with role-based access control.
type Registry struct {
	handlers map[byte]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given roles.
func (reg *Registry) Register(opcode byte, roles []Role, fn HandlerFunc) {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	reg.handlers[opcode] = &handlerEntry{
		fn:    fn,
		roles: allowed,
	}
}

// Dispatch finds the handler for the opcode in data[0], validates the role,
// and calls the handler. Unknown opcodes are ignored.
func (reg *Registry) Dispatch(from any, role Role, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty message")
	}
	opcode := data[0]
	reg.log.Debug("message received",
		zap.Uint8("opcode", opcode),
		zap.Int("size", len(data)),
		zap.Stringer("role", role),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("unknown opcode", zap.Uint8("opcode", opcode))
		return nil
	}

	if !entry.roles[role] {
		reg.log.Warn("opcode not accepted by this role",
			zap.Uint8("opcode", opcode),
			zap.Stringer("role", role),
		)
		return fmt.Errorf("opcode %d not allowed for role %s", opcode, role)
	}

	return reg.safeCall(entry.fn, from, NewReader(data), opcode)
}

// safeCall executes a handler with panic recovery to prevent a single
// bad message from crashing the entire game loop.
func (reg *Registry) safeCall(fn HandlerFunc, from any, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	fn(from, r)
	return nil
}
