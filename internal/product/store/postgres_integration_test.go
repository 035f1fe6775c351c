//go:build integration

package store

import (
	"testing"

	"leadhub/pkg/testutil/containers"
)

func TestProductPostgres(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	exerciseProducts(t, NewProductPostgres(pg.DB))
}

func TestSourcePostgres(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	exerciseSources(t, NewSourcePostgres(pg.DB))
}
