package domain

// Zero overwrites a byte slice with zeros. Master keys, unwrapped root keys,
// and derived purpose keys all pass through here when they leave scope so key
// material does not linger in memory longer than needed.
func Zero(b []byte) {
	clear(b)
}
