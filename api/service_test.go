package api

import (
	"testing"

	"github.com/edgestore/customerstore/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestNew_InvalidStore(t *testing.T) {
	tests := []struct {
		name  string
		store string
	}{
		{"postgres without database", StorePostgres},
		{"bolt without path", StoreBolt},
		{"unknown", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Server.LoggerLevel = "error"
			cfg.Store = tt.store

			svc, err := New(cfg)
			assert.Nil(t, svc)
			assert.True(t, errors.Is(errors.Invalid, err), "%v", err)
		})
	}
}
