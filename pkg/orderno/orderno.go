// Copyright (c) 2026 HKSD Tech. All rights reserved.

// Package orderno generates human-readable order numbers.
//
// Numbers look like "AORD-1756377600000-k3f9z2". The millisecond timestamp
// makes them roughly sortable by creation time; the random base36 suffix
// breaks ties within the same millisecond. A unique index on the order table
// remains the real duplicate guard.
package orderno

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	// Prefix identifies agent orders in external systems.
	Prefix = "AORD"

	// suffixLen is the length of the random base36 tail.
	suffixLen = 6
)

var base36Max = new(big.Int).Exp(big.NewInt(36), big.NewInt(suffixLen), nil)

// New returns a fresh order number for the current time.
func New() string {
	return At(time.Now())
}

// At returns an order number stamped with the given time.
func At(t time.Time) string {
	return fmt.Sprintf("%s-%d-%s", Prefix, t.UnixMilli(), randomSuffix())
}

// randomSuffix produces a zero-padded base36 string of suffixLen characters.
func randomSuffix() string {
	n, err := rand.Int(rand.Reader, base36Max)
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		// Fall back to the clock rather than serving an empty suffix.
		n = big.NewInt(time.Now().UnixNano() % base36Max.Int64())
	}

	s := strconv.FormatInt(n.Int64(), 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return s
}
