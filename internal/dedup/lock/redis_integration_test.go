//go:build integration

package lock

import (
	"testing"

	"leadhub/pkg/testutil/containers"
)

func TestRedisLockAgainstServer(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	exerciseLock(t, NewRedis(rc.Client))
}
