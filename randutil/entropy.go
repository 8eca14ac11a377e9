package randutil

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// entropySeed draws a seed from platform entropy, falling back to the wall
// clock if the OS entropy source is unavailable (spec §4.I: "a seed of 0
// means derive from platform entropy").
func entropySeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return binary.LittleEndian.Uint64(buf[:])
	}
	return uint64(time.Now().UnixNano())
}
