package env

// NewFactoryWithEnviron creates a Factory reading the given process environment.
func NewFactoryWithEnviron(environ []string) *Factory {
	return &Factory{environ: func() []string { return environ }}
}
