package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bomt1me/paris/pkg/config"
)

type stubEngine struct {
	id     string
	opened int
}

func (e *stubEngine) Identifier() string { return e.id }

func (e *stubEngine) Open() error {
	e.opened++
	return nil
}

func (e *stubEngine) Close() error { return nil }

func (e *stubEngine) UploadFile(ctx context.Context, file *File) error { return nil }

func TestFactoryBuildsConfiguredEngine(t *testing.T) {
	conf := config.FromProperties([][2]string{
		{"files.provider", "stub"},
	})
	factory := NewFactory(conf)
	stub := &stubEngine{id: "stub"}
	factory.Register(stub)
	factory.Register(&stubEngine{id: "other"})

	engine, err := factory.Build()
	require.NoError(t, err)
	assert.Equal(t, "stub", engine.Identifier())
	assert.Equal(t, 1, stub.opened)
}

func TestFactoryUnknownProvider(t *testing.T) {
	conf := config.FromProperties([][2]string{
		{"files.provider", "tape"},
	})
	factory := NewFactory(conf)
	factory.Register(&stubEngine{id: "stub"})

	_, err := factory.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tape")
}

func TestFactoryMissingProvider(t *testing.T) {
	factory := NewFactory(config.New())

	_, err := factory.Build()
	require.Error(t, err)
}
