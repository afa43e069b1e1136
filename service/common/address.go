package common

import (
	"database/sql/driver"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// User-friendly address tag bytes, see the TEP-2 address format.
const (
	addrTagBounceable    = 0x11
	addrTagNonBounceable = 0x51
	addrTagTestOnly      = 0x80

	userFriendlyLen = 48
	decodedLen      = 36
)

// Address is a TON account address: a workchain id plus a 256-bit account
// hash. It parses from both the user-friendly form (48 chars of base64 or
// base64url, tag + workchain + hash + CRC16 checksum) and the raw form
// ("0:<64 hex>" / "-1:<64 hex>"). Equality of two addresses is equality of
// workchain and hash, regardless of the textual form they arrived in.
type Address struct {
	Workchain int32
	Hash      [32]byte
}

// AddressFromString parses and validates an address in either textual form.
func AddressFromString(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("empty address")
	}
	if strings.Contains(s, ":") {
		return addressFromRaw(s)
	}
	return addressFromUserFriendly(s)
}

// ValidateAddress reports whether s is a syntactically valid TON address.
// Pure syntax check, no I/O.
func ValidateAddress(s string) bool {
	_, err := AddressFromString(s)
	return err == nil
}

// AddressesEqual compares two textual addresses for account equality,
// tolerating differing forms (raw vs user-friendly, bounceable flags,
// base64 vs base64url). Returns false if either fails to parse.
func AddressesEqual(a, b string) bool {
	pa, err := AddressFromString(a)
	if err != nil {
		return false
	}
	pb, err := AddressFromString(b)
	if err != nil {
		return false
	}
	return pa == pb
}

func addressFromRaw(s string) (Address, error) {
	parts := strings.SplitN(s, ":", 2)
	wc, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return Address{}, fmt.Errorf("invalid workchain %q: %w", parts[0], err)
	}
	if wc != 0 && wc != -1 {
		return Address{}, fmt.Errorf("unsupported workchain %d", wc)
	}
	if len(parts[1]) != 64 {
		return Address{}, fmt.Errorf("account hash must be 64 hex chars, got %d", len(parts[1]))
	}
	raw, err := hex.DecodeString(parts[1])
	if err != nil {
		return Address{}, fmt.Errorf("invalid account hash: %w", err)
	}
	a := Address{Workchain: int32(wc)}
	copy(a.Hash[:], raw)
	return a, nil
}

func addressFromUserFriendly(s string) (Address, error) {
	if len(s) != userFriendlyLen {
		return Address{}, fmt.Errorf("address must be %d chars, got %d", userFriendlyLen, len(s))
	}

	enc := base64.RawStdEncoding
	if strings.ContainsAny(s, "-_") {
		enc = base64.RawURLEncoding
	}
	data, err := enc.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid base64: %w", err)
	}
	if len(data) != decodedLen {
		return Address{}, fmt.Errorf("decoded address must be %d bytes, got %d", decodedLen, len(data))
	}

	tag := data[0] &^ addrTagTestOnly
	if tag != addrTagBounceable && tag != addrTagNonBounceable {
		return Address{}, fmt.Errorf("unknown address tag 0x%02x", data[0])
	}

	var wc int32
	switch data[1] {
	case 0x00:
		wc = 0
	case 0xff:
		wc = -1
	default:
		return Address{}, fmt.Errorf("unsupported workchain byte 0x%02x", data[1])
	}

	want := binary.BigEndian.Uint16(data[34:36])
	if crc16(data[:34]) != want {
		return Address{}, fmt.Errorf("address checksum mismatch")
	}

	a := Address{Workchain: wc}
	copy(a.Hash[:], data[2:34])
	return a, nil
}

// String returns the raw form, which is the canonical form used in storage
// and logs.
func (a Address) String() string {
	return fmt.Sprintf("%d:%s", a.Workchain, hex.EncodeToString(a.Hash[:]))
}

// UserFriendly returns the bounceable base64url form.
func (a Address) UserFriendly() string {
	data := make([]byte, decodedLen)
	data[0] = addrTagBounceable
	if a.Workchain == -1 {
		data[1] = 0xff
	}
	copy(data[2:34], a.Hash[:])
	binary.BigEndian.PutUint16(data[34:36], crc16(data[:34]))
	return base64.RawURLEncoding.EncodeToString(data)
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := AddressFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Address) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Address) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("failed to unmarshal Address value: %v", value)
	}
	parsed, err := AddressFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// crc16 is CRC-16/XMODEM (poly 0x1021, init 0), the checksum of the
// user-friendly address form.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
