package hss

import "runtime"

// Config configures both compression and solve. It is always passed
// explicitly; there is no package-level mutable default.
type Config struct {
	// Tol is the truncation threshold used by every RRQR call in one
	// Compress invocation.
	Tol float64

	// Reltol interprets Tol relative to the largest pivot norm observed at
	// the first RRQR step when true; absolute when false.
	Reltol bool

	// Leafsize bounds the index-range length of a cluster-tree leaf.
	Leafsize int

	// Kestimate is reserved for a future adaptive/randomized compressor;
	// the direct compressor this package implements ignores it.
	Kestimate int

	// Workers is the degree of parallelism fed to the recursion harness.
	// 0 means runtime.NumCPU().
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults: absolute
// tolerance of 1e-9, a leaf size of 64, and Workers left at 0 so Validate
// resolves it to runtime.NumCPU().
func DefaultConfig() Config {
	return Config{
		Tol:       1e-9,
		Reltol:    false,
		Leafsize:  64,
		Kestimate: 0,
		Workers:   0,
	}
}

// Validate checks field values and resolves Workers == 0 to
// runtime.NumCPU(), mutating the receiver in place.
func (c *Config) Validate() error {
	if c.Tol < 0 {
		return ErrInvalidArgument
	}
	if c.Leafsize <= 0 {
		return ErrInvalidArgument
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Workers < 0 {
		return ErrInvalidArgument
	}

	return nil
}
