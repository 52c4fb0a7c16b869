package cold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteStripsPrefix(t *testing.T) {
	m := Mapper{Machine: "host1", StripPrefix: "/home"}

	assert.Equal(t, "/cold/host1/alice/docs/file.txt",
		m.Remote("/cold", "/home/alice/docs/file.txt"))
}

func TestRemoteOutsidePrefixKeepsFullPath(t *testing.T) {
	m := Mapper{Machine: "host1", StripPrefix: "/home"}

	assert.Equal(t, "/cold/host1/srv/data/file.txt",
		m.Remote("/cold", "/srv/data/file.txt"))
}

func TestRemoteTrimsBaseSlash(t *testing.T) {
	m := Mapper{Machine: "host1", StripPrefix: "/home"}

	assert.Equal(t, "/cold/host1/alice/f", m.Remote("/cold/", "/home/alice/f"))
}

func TestRemoteDeterministic(t *testing.T) {
	m := Mapper{Machine: "host1", StripPrefix: "/home"}

	first := m.Remote("/cold", "/home/alice/docs/file.txt")
	second := m.Remote("/cold", "/home/alice/docs/file.txt")
	assert.Equal(t, first, second)
}

func TestWithinBase(t *testing.T) {
	m := Mapper{Machine: "host1", StripPrefix: "/home"}

	assert.True(t, m.WithinBase("/home/alice/f"))
	assert.False(t, m.WithinBase("/srv/data/f"))
	assert.False(t, m.WithinBase("/homestead/f"))
}

func TestWithinBaseNoPrefix(t *testing.T) {
	m := Mapper{Machine: "host1"}
	assert.True(t, m.WithinBase("/anything"))
}
