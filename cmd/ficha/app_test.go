package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

func TestAbandonReleasesOpenedBackends(t *testing.T) {
	var closed []string
	a := &app{closers: []func() error{
		func() error { closed = append(closed, "client"); return nil },
		func() error { closed = append(closed, "repo"); return errors.Unavailable("already closed") },
	}}

	cause := errors.InvalidArgument("bad config")
	err := a.abandon(cause)

	assert.Same(t, cause, err)
	assert.Equal(t, []string{"repo", "client"}, closed)
	assert.Empty(t, a.closers)
}
