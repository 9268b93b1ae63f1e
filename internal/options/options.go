// Package options contains the program options.
package options

// Program options of the emulator front-ends.
type Program struct {
	Input string // CHIP-8 program file

	Scale          int   // window pixels per CHIP-8 pixel, SDL only
	CyclesPerFrame int   // CPU cycles executed per 60 Hz frame
	Seed           int64 // random seed, 0 seeds from the current time
	ShiftQuirk     bool  // 8xy6 and 8xyE shift Vy instead of Vx

	Debug     bool
	Quiet     bool
	StatsView bool
}
