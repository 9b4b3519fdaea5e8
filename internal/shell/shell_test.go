package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFish(t *testing.T) {
	script := Fish()

	require.True(t, strings.HasPrefix(script, "function __portman_activate"))
	require.Contains(t, script, "portman get --extended")
	require.Contains(t, script, "set -gx PORT $lines[1]")
	require.Contains(t, script, "set -gx PORTMAN_PROJECT $lines[2]")
	require.Contains(t, script, "set -gx PORTMAN_LINKED_PORT $lines[4]")
	require.Contains(t, script, "--on-event fish_prompt")
	require.Contains(t, script, "--on-variable PWD")
	require.Contains(t, script, "--on-event fish_preexec")
	require.Contains(t, script, "set -e PORT PORTMAN_PROJECT PORTMAN_LINKED_PORT")
}
