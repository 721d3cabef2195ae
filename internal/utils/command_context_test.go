package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/telescope/internal/utils"
)

const (
	storedConfigurationFilePathConstant = "/tmp/config.yaml"
	storedLogLevelConstant              = "debug"
)

func TestCommandContextAccessorConfigurationFilePath(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, available)

	updatedContext := accessor.WithConfigurationFilePath(context.Background(), storedConfigurationFilePathConstant)
	configurationFilePath, available := accessor.ConfigurationFilePath(updatedContext)
	require.True(testInstance, available)
	require.Equal(testInstance, storedConfigurationFilePathConstant, configurationFilePath)
}

func TestCommandContextAccessorLogLevel(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.LogLevel(context.Background())
	require.False(testInstance, available)

	updatedContext := accessor.WithLogLevel(context.Background(), storedLogLevelConstant)
	logLevel, available := accessor.LogLevel(updatedContext)
	require.True(testInstance, available)
	require.Equal(testInstance, storedLogLevelConstant, logLevel)
}

func TestCommandContextAccessorToleratesNilParentContext(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	updatedContext := accessor.WithLogLevel(nil, storedLogLevelConstant)
	logLevel, available := accessor.LogLevel(updatedContext)
	require.True(testInstance, available)
	require.Equal(testInstance, storedLogLevelConstant, logLevel)
}
