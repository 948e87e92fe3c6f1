package pid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepFromCleanState(t *testing.T) {
	for _, e := range []int{-1, 0, 1} {
		c := New(DefaultGains)
		g := c.Gains
		require.Equal(t, g.Kp*e+g.Ki*e+g.Kd*e, c.Step(e), "error %d", e)
	}
}

func TestAccumulation(t *testing.T) {
	testCases := []struct {
		name   string
		errors []int
	}{
		{"centered", []int{0, 0, 0, 0, 0}},
		{"left only", []int{1, 1, 1}},
		{"oscillating", []int{1, -1, 1, -1, 0, 1}},
		{"biased right", []int{-1, -1, 0, -1, -1, -1, 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(DefaultGains)
			sum := 0
			for _, e := range tc.errors {
				c.Step(e)
				sum += e
			}
			s := c.State()
			require.Equal(t, sum, s.Integral)
			require.Equal(t, tc.errors[len(tc.errors)-1], s.PreviousError)
		})
	}
}

func TestLeftOnlyScenario(t *testing.T) {
	c := New(Gains{Kp: 1, Ki: 1, Kd: 5})
	require.Equal(t, 7, c.Step(1))
	require.Equal(t, State{PreviousError: 1, Integral: 1, Derivative: 1, Correction: 7}, c.State())
	require.Equal(t, 3, c.Step(1))
	require.Equal(t, State{PreviousError: 1, Integral: 2, Derivative: 0, Correction: 3}, c.State())
	require.Equal(t, 4, c.Step(1))
	require.Equal(t, State{PreviousError: 1, Integral: 3, Derivative: 0, Correction: 4}, c.State())
}

func TestCenteredScenario(t *testing.T) {
	c := New(DefaultGains)
	for i := 0; i < 5; i++ {
		require.Zero(t, c.Step(0))
	}
	require.Equal(t, State{}, c.State())
}

func TestDerivativeUsesPreviousError(t *testing.T) {
	c := New(DefaultGains)
	c.Step(1)
	// integral 0, derivative -2: 1*-1 + 1*0 + 5*-2
	require.Equal(t, -11, c.Step(-1))
	require.Equal(t, -2, c.State().Derivative)
}

func TestIntegralSaturates(t *testing.T) {
	c := New(Gains{Ki: 1})
	c.IntegralLimit = 3
	for i := 0; i < 10; i++ {
		c.Step(1)
	}
	require.Equal(t, 3, c.State().Integral)
	require.Equal(t, 3, c.State().Correction)
	c.Step(-1)
	require.Equal(t, 2, c.State().Integral, "unwinds immediately from the limit")
	for i := 0; i < 10; i++ {
		c.Step(-1)
	}
	require.Equal(t, -3, c.State().Integral)
}

func TestIntegralLimitDefault(t *testing.T) {
	c := &Controller{Gains: DefaultGains}
	for i := 0; i < DefaultIntegralLimit+10; i++ {
		c.Step(1)
	}
	require.Equal(t, DefaultIntegralLimit, c.State().Integral)
}
