// Package gpio owns the single process-wide mapping of the GPIO
// register block.
package gpio

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

var (
	once sync.Once
	err  error
)

// Open maps /dev/gpiomem. Safe to call from every hardware package;
// only the first call does the work. Fails off-device.
func Open() error {
	once.Do(func() {
		err = rpio.Open()
	})
	return err
}
