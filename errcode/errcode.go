package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// IO: a register-bus transaction failed. Logged at the point of failure,
	// never retried automatically; during initialization it aborts startup.
	IO Code = "io_error"

	// PeerUnavailable: the bms/tcpm power-supply peer is not registered yet.
	// Expected state, triggers the fallback path, not logged as an error.
	PeerUnavailable Code = "peer_unavailable"

	// Config: invalid configuration value. Fatal to startup.
	Config Code = "config_error"

	// NoData: a property could not be produced; callers see this instead of
	// the underlying I/O cause.
	NoData Code = "no_data"

	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// IOf wraps a transport error as an IO code with the failing operation.
func IOf(op string, err error) error {
	return &E{C: IO, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Is reports whether err carries the given code.
func Is(err error, c Code) bool { return Of(err) == c }
