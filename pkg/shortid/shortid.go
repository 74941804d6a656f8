// Package shortid generates the opaque public codes used on catalog and
// order rows (sku_xxxxxx, ord_xxxxxx). Primary keys stay UUIDs; these codes
// are what customers and chat agents see.
package shortid

import (
	"crypto/rand"
	"fmt"
)

const (
	// Alphabet matches the legacy code format so existing references keep
	// resolving.
	Alphabet = "abcdefg1234"
	Length   = 6

	PrefixProduct = "sku_"
	PrefixOrder   = "ord_"
	PrefixPackage = "pkg_"
)

// New returns prefix plus Length random characters from Alphabet.
func New(prefix string) string {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; there is no
		// sane fallback for identifier generation.
		panic(fmt.Sprintf("shortid: rng unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return prefix + string(buf)
}

// NewProductSKU returns a fresh product code.
func NewProductSKU() string { return New(PrefixProduct) }

// NewOrderID returns a fresh order code.
func NewOrderID() string { return New(PrefixOrder) }

// NewPackageCode returns a fresh package code.
func NewPackageCode() string { return New(PrefixPackage) }
