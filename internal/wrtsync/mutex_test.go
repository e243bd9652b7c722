package wrtsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuarded_WithSerializesAccess(t *testing.T) {
	g := NewGuarded(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.With(func(v *int) { *v++ })
		}()
	}
	wg.Wait()

	g.With(func(v *int) { require.Equal(t, 100, *v) })
}

func TestGuarded_WithErrPropagatesError(t *testing.T) {
	g := NewGuarded("x")
	err := g.WithErr(func(v *string) error { return require.AnError })
	require.ErrorIs(t, err, require.AnError)
}
