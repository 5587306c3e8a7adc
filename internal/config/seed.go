package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed replaces a zero seed with a random one.
func (c *Config) ResolveSeed() error {
	if c.Seed != 0 {
		return nil
	}
	for c.Seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return err
		}
		c.Seed = s
	}
	return nil
}
