package internal

// AdvanceTimers decrements the delay and sound timers by one, stopping at 0.
// It is meant to be called at 60 Hz independent of the Tick rate.
// soundStopped reports the sound timer reaching 0 during this call, the edge
// on which a running tone should be stopped.
func (vm *C8VM) AdvanceTimers() (soundStopped bool) {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}
	if vm.soundTimer > 0 {
		soundStopped = vm.soundTimer == 1
		vm.soundTimer--
	}
	return soundStopped
}

// DelayTimer returns the value of DT
func (vm *C8VM) DelayTimer() uint8 {
	return vm.delayTimer
}

// SoundTimer returns the value of ST
func (vm *C8VM) SoundTimer() uint8 {
	return vm.soundTimer
}

// SoundActive returns whether a tone should currently be playing.
func (vm *C8VM) SoundActive() bool {
	return vm.soundTimer > 0
}
