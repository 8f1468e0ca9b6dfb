package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bomt1me/paris/pkg/config"
)

// Engine uploads files to one storage backend. Open is idempotent: opening
// an already-open engine re-establishes the connection. Close on an unopened
// engine is a no-op.
type Engine interface {
	Identifier() string
	Open() error
	Close() error
	UploadFile(ctx context.Context, file *File) error
}

// Factory selects an Engine by the files.provider config key.
type Factory struct {
	config  *config.Config
	options map[string]Engine
}

func NewFactory(conf *config.Config) *Factory {
	return &Factory{
		config:  conf,
		options: map[string]Engine{},
	}
}

func (f *Factory) Register(engine Engine) {
	f.options[engine.Identifier()] = engine
}

// Build opens and returns the configured engine.
func (f *Factory) Build() (Engine, error) {
	provider := f.config.Get("files.provider")
	engine, ok := f.options[provider]
	if !ok {
		return nil, errors.Errorf("unknown storage provider %q", provider)
	}
	if err := engine.Open(); err != nil {
		return nil, errors.Wrapf(err, "unable to open storage engine %s", provider)
	}
	return engine, nil
}
