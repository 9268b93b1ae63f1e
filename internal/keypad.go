package internal

import "fmt"

// SetKey sets the pressed state of a keypad key 0x0-0xF.
func (vm *C8VM) SetKey(key uint8, pressed bool) error {
	if key >= numKeys {
		return fmt.Errorf("%w: %X", ErrInvalidKey, key)
	}
	vm.keys[key] = pressed
	return nil
}

// KeyPressed returns whether key is currently held down. Keys out of range are never pressed.
func (vm *C8VM) KeyPressed(key uint8) bool {
	if key >= numKeys {
		return false
	}
	return vm.keys[key]
}
