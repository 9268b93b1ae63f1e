package internal

// Framebuffer is the 64x32 monochrome display, indexed [y][x]. A pixel is lit when it is 1.
type Framebuffer [ScreenHeight][ScreenWidth]uint8

// Pixels returns a copy of the display for rendering
func (vm *C8VM) Pixels() Framebuffer {
	return vm.pixels
}

// Pixel returns whether the pixel at x, y is lit. Coordinates wrap around the screen edges.
func (vm *C8VM) Pixel(x, y int) bool {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}
	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}
	return vm.pixels[y][x] == 1
}

func (vm *C8VM) clearScreen() {
	vm.pixels = Framebuffer{}
	vm.clearFlag = true
}

// drawSprite XORs n bytes of sprite data starting at I onto the display at
// x, y. Pixels that leave the screen wrap around to the opposite edge. VF is
// set to 1 if any lit pixel was turned off.
func (vm *C8VM) drawSprite(x uint8, y uint8, n uint8) error {
	if err := vm.checkMemory(int(n)); err != nil {
		return err
	}

	var collision uint8
	for byteIdx := uint16(0); byteIdx < uint16(n); byteIdx++ {
		spriteByte := vm.memory[vm.regI+byteIdx]
		row := &vm.pixels[(int(y)+int(byteIdx))%ScreenHeight]
		for bitIdx := 0; bitIdx < 8; bitIdx++ {
			bit := (spriteByte >> (7 - bitIdx)) & 0x1
			px := &row[(int(x)+bitIdx)%ScreenWidth]
			collision |= bit & *px
			*px ^= bit
		}
	}

	vm.regV[0xF] = collision
	vm.drawFlag = true
	return nil
}
