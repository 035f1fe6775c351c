//go:build integration

package store

import (
	"testing"

	"leadhub/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	exerciseStore(t, NewPostgres(pg.DB))
}
