package inventory

// Scope indica si las mutaciones de series dentro de una operación deben disparar
// comandos de ledger. Se pasa por valor en cada llamada; no existe estado global.
type Scope struct {
	muted bool
}

// DefaultScope es el alcance normal: cada cambio de serie produce sus comandos.
func DefaultScope() Scope { return Scope{} }

// MutedScope suprime los comandos de ledger para las mutaciones hechas con él.
// Lo usan las operaciones masivas que aplican un único delta neto al final.
func MutedScope() Scope { return Scope{muted: true} }

// Muted indica si el alcance suprime comandos.
func (s Scope) Muted() bool { return s.muted }
