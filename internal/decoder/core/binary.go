package core

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/gagliardetto/solana-go"

	cerrors "github.com/lugondev/solana-decoder/internal/errors"
)

// ReadU16LE reads a bounds-checked little-endian uint16 at off.
func ReadU16LE(buf []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(buf) {
		return 0, cerrors.OutOfRange("read_u16_le", off, len(buf))
	}
	return binary.LittleEndian.Uint16(buf[off : off+2]), nil
}

// ReadU32LE reads a bounds-checked little-endian uint32 at off.
func ReadU32LE(buf []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(buf) {
		return 0, cerrors.OutOfRange("read_u32_le", off, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[off : off+4]), nil
}

// ReadU64LE reads a bounds-checked little-endian uint64 at off.
func ReadU64LE(buf []byte, off int) (uint64, error) {
	if off < 0 || off+8 > len(buf) {
		return 0, cerrors.OutOfRange("read_u64_le", off, len(buf))
	}
	return binary.LittleEndian.Uint64(buf[off : off+8]), nil
}

// ReadPubkey returns the base58 encoding of the 32 bytes starting at off.
func ReadPubkey(buf []byte, off int) (string, error) {
	if off < 0 || off+32 > len(buf) {
		return "", cerrors.OutOfRange("read_pubkey", off, len(buf))
	}
	var pk solana.PublicKey
	copy(pk[:], buf[off:off+32])
	return pk.String(), nil
}

// ReadLengthPrefixedString reads a u32 length n followed by n UTF-8 bytes,
// returning the decoded string and the offset immediately after it.
func ReadLengthPrefixedString(buf []byte, off int) (string, int, error) {
	n, err := ReadU32LE(buf, off)
	if err != nil {
		return "", 0, err
	}
	start := off + 4
	end := start + int(n)
	if end > len(buf) || end < start {
		return "", 0, cerrors.OutOfRange("read_length_prefixed_string", start, len(buf))
	}
	raw := buf[start:end]
	if !utf8.Valid(raw) {
		return "", 0, cerrors.InvalidUTF8("length_prefixed_string", nil)
	}
	return string(raw), end, nil
}

// Discriminator returns the first n bytes of buf, or an error if buf is
// shorter than n.
func Discriminator(buf []byte, n int) ([]byte, error) {
	if len(buf) < n {
		return nil, cerrors.ShortPayload("discriminator", len(buf), n)
	}
	return buf[:n], nil
}

// DiscriminatorMatches reports whether buf's leading len(want) bytes equal want.
func DiscriminatorMatches(buf []byte, want []byte) bool {
	got, err := Discriminator(buf, len(want))
	if err != nil {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// Base58ToBytes decodes a base58 public key string back to its 32 raw bytes.
// Used by tests exercising the base58 round-trip property.
func Base58ToBytes(s string) ([32]byte, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return [32]byte{}, err
	}
	return pk, nil
}
