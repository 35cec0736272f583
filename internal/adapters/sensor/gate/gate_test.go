package gate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bnema/stride/internal/adapters/sensor/stream"
	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInner() ports.MotionSensor {
	return stream.New(strings.NewReader("0,0\n"))
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(nil, Allow)
	assert.Error(t, err)

	_, err = New(newInner(), nil)
	assert.ErrorIs(t, err, errNilPrompter)
}

func TestCapabilityRequiresPermission(t *testing.T) {
	sensor, err := New(newInner(), Allow)
	require.NoError(t, err)

	assert.Equal(t, ports.SensorCapability{Available: true, RequiresPermission: true}, sensor.Capability())
}

func TestSubscribeBeforeGrantIsDenied(t *testing.T) {
	sensor, err := New(newInner(), Allow)
	require.NoError(t, err)

	_, err = sensor.Subscribe(func(domain.MotionSample) {})

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestRequestPermissionRemembersAnswer(t *testing.T) {
	calls := 0
	sensor, err := New(newInner(), func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		state, err := sensor.RequestPermission(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ports.PermissionDenied, state)
	}
	assert.Equal(t, 1, calls)
}

func TestRequestPermissionGrantedAllowsSubscribe(t *testing.T) {
	sensor, err := New(newInner(), Allow)
	require.NoError(t, err)

	state, err := sensor.RequestPermission(context.Background())
	require.NoError(t, err)
	require.Equal(t, ports.PermissionGranted, state)

	sub, err := sensor.Subscribe(func(domain.MotionSample) {})
	require.NoError(t, err)
	sub.Unsubscribe()
}

func TestRequestPermissionPromptErrorIsNotRemembered(t *testing.T) {
	fail := true
	sensor, err := New(newInner(), func(context.Context) (bool, error) {
		if fail {
			return false, errors.New("tty gone")
		}
		return true, nil
	})
	require.NoError(t, err)

	_, err = sensor.RequestPermission(context.Background())
	require.Error(t, err)

	fail = false
	state, err := sensor.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ports.PermissionGranted, state)
}

func TestAnswers(t *testing.T) {
	answers := make(chan bool, 1)
	prompt := Answers(answers)

	answers <- true
	allowed, err := prompt(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = prompt(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(answers)
	_, err = prompt(context.Background())
	assert.Error(t, err)
}
