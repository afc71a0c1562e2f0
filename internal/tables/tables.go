// Package tables holds the read-only waveform and pitch tables shared by all
// voice engines.
package tables

// Sine is one full cycle of a sine wave, 256 signed 8-bit steps.
var Sine = [256]int8{
	0, 3, 6, 9, 12, 16, 19, 22, 25, 28, 31, 34, 37, 40, 43, 46,
	49, 52, 54, 57, 60, 63, 66, 68, 71, 73, 76, 78, 81, 83, 86, 88,
	90, 92, 94, 96, 98, 100, 102, 104, 106, 108, 109, 111, 112, 114, 115, 116,
	118, 119, 120, 121, 122, 123, 123, 124, 125, 125, 126, 126, 126, 127, 127, 127,
	127, 127, 127, 127, 126, 126, 125, 125, 124, 124, 123, 122, 121, 120, 119, 118,
	117, 116, 114, 113, 112, 110, 108, 107, 105, 103, 101, 99, 97, 95, 93, 91,
	89, 87, 84, 82, 80, 77, 75, 72, 69, 67, 64, 61, 59, 56, 53, 50,
	47, 44, 41, 39, 36, 32, 29, 26, 23, 20, 17, 14, 11, 8, 5, 2,
	-2, -5, -8, -11, -14, -17, -20, -23, -26, -29, -32, -36, -39, -41, -44, -47,
	-50, -53, -56, -59, -61, -64, -67, -69, -72, -75, -77, -80, -82, -84, -87, -89,
	-91, -93, -95, -97, -99, -101, -103, -105, -107, -108, -110, -112, -113, -114, -116, -117,
	-118, -119, -120, -121, -122, -123, -124, -124, -125, -125, -126, -126, -127, -127, -127, -127,
	-127, -127, -127, -126, -126, -126, -125, -125, -124, -123, -123, -122, -121, -120, -119, -118,
	-116, -115, -114, -112, -111, -109, -108, -106, -104, -102, -100, -98, -96, -94, -92, -90,
	-88, -86, -83, -81, -78, -76, -73, -71, -68, -66, -63, -60, -57, -54, -52, -49,
	-46, -43, -40, -37, -34, -31, -28, -25, -22, -19, -16, -12, -9, -6, -3, 0,
}

// NoteSteps holds the Q8.8 phase increment of each semitone in the lowest
// octave at the native sample rate.
var NoteSteps = [12]uint16{130, 138, 146, 155, 164, 174, 184, 195, 207, 220, 233, 246}

// BipStep is the phase increment of the alert tone.
const BipStep = 10000

// Step returns the phase increment for note: the semitone entry shifted up
// by the octave number.
func Step(note uint8) uint32 {
	return uint32(NoteSteps[note%12]) << (note / 12)
}

// SineAt reads the sine table with the high byte of a 16-bit phase.
func SineAt(phase uint32) int32 {
	return int32(Sine[uint8(phase>>8)])
}
