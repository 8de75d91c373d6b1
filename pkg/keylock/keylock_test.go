package keylock_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/aromas-stock/pkg/keylock"
)

func TestLock_SerializaMismaClave(t *testing.T) {
	l := keylock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("p1")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, l.Len(), "las entradas se liberan al terminar")
}

func TestLock_VariasClavesSinInterbloqueo(t *testing.T) {
	l := keylock.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := l.Lock("a", "b", "a")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := l.Lock("b", "a")
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, l.Len())
}
