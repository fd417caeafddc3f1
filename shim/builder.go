package shim

import "github.com/sarchlab/memshim/memsys"

// Builder can build Wrappers.
type Builder struct {
	engineName string
	factory    memsys.Factory
	configFile string
	outputDir  string
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the name of the engine to wrap. The engine is looked up in
// the memsys registry when Build is called.
func (b Builder) WithEngine(name string) Builder {
	b.engineName = name
	return b
}

// WithFactory sets the engine factory directly, bypassing the registry.
func (b Builder) WithFactory(f memsys.Factory) Builder {
	b.factory = f
	return b
}

// WithConfigFile sets the engine configuration file. The file format is
// defined by the engine.
func (b Builder) WithConfigFile(path string) Builder {
	b.configFile = path
	return b
}

// WithOutputDir sets the directory where the engine writes its output.
func (b Builder) WithOutputDir(dir string) Builder {
	b.outputDir = dir
	return b
}

// Build constructs the engine with completion callbacks bound to a new
// Wrapper. Engine construction failures are returned as-is.
func (b Builder) Build() (*Wrapper, error) {
	w := &Wrapper{
		completed: make(map[memsys.Transaction]struct{}),
	}

	cb := memsys.Callbacks{
		ReadComplete:  w.readComplete,
		WriteComplete: w.writeComplete,
	}

	var err error
	if b.factory != nil {
		w.engine, err = b.factory(b.configFile, b.outputDir, cb)
	} else {
		w.engine, err = memsys.NewEngine(
			b.engineName, b.configFile, b.outputDir, cb)
	}

	if err != nil {
		return nil, err
	}

	return w, nil
}
