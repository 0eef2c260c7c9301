package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	os.Setenv("CDH_TEST_B", "b")
	defer os.Unsetenv("CDH_TEST_B")
	require.Equal(t, "b", Getenv("def", "CDH_TEST_A", "CDH_TEST_B"))
	require.Equal(t, "def", Getenv("def", "CDH_TEST_A"))
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
	require.Equal(t, MachineID(), MachineID())
}
