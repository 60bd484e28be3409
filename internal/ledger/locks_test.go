package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountLocks_SerializesSameAccount(t *testing.T) {
	al := newAccountLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			al.Lock(7)
			counter++
			al.Unlock(7)
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestAccountLocks_DifferentAccountsDoNotBlock(t *testing.T) {
	al := newAccountLocks()

	al.Lock(1)
	done := make(chan struct{})
	go func() {
		al.Lock(2)
		al.Unlock(2)
		close(done)
	}()

	// Account 2 must proceed while account 1 is still held.
	<-done
	al.Unlock(1)
}
