package common

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidHexLength = errors.New("hex string has unexpected length")

// The returned string has No 0x prefix
func ByteSliceToPureHexStr(b []byte) string {
	return Trim0xPrefix(ethcommon.Bytes2Hex(b))
}

// HexStrToBytes32 converts a hex string (with/without prefix 0x) to [32]byte.
// Unlike the loose helpers above, it fails unless exactly 32 bytes are given.
func HexStrToBytes32(hexStr string) ([32]byte, error) {
	var b [32]byte
	if err := decodeFixed(hexStr, b[:]); err != nil {
		return b, err
	}
	return b, nil
}

// HexStrToBytes65 is HexStrToBytes32 for signatures.
func HexStrToBytes65(hexStr string) ([65]byte, error) {
	var b [65]byte
	if err := decodeFixed(hexStr, b[:]); err != nil {
		return b, err
	}
	return b, nil
}

// HexStrToAddress converts a hex string to a 20-byte address, strictly.
func HexStrToAddress(hexStr string) (ethcommon.Address, error) {
	var b [20]byte
	if err := decodeFixed(hexStr, b[:]); err != nil {
		return ethcommon.Address{}, err
	}
	return ethcommon.Address(b), nil
}

// DecodeHex decodes a hex string of any even length, with or without prefix 0x.
func DecodeHex(hexStr string) ([]byte, error) {
	return hexutil.Decode("0x" + Trim0xPrefix(hexStr))
}

func decodeFixed(hexStr string, out []byte) error {
	str := Trim0xPrefix(hexStr)
	if len(str) != 2*len(out) {
		return ErrInvalidHexLength
	}
	b, err := hexutil.Decode("0x" + str)
	if err != nil {
		return err
	}
	copy(out, b)
	return nil
}

// Trim 0x or 0X prefix off the string.
func Trim0xPrefix(str string) string {
	s := strings.TrimPrefix(str, "0x")
	return strings.TrimPrefix(s, "0X")
}

func Prepend0xPrefix(str string) string {
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		return str
	}
	return "0x" + str
}

// RandBytes32 generates [32]byte with random values
func RandBytes32() [32]byte {
	var b [32]byte
	n, err := rand.Read(b[:])

	if err != nil {
		return [32]byte{}
	}
	if n != 32 {
		return [32]byte{}
	}

	return b
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil
	}
	return b
}

func RandBigInt(byteNum int) *big.Int {
	b := RandBytes(byteNum)
	return new(big.Int).SetBytes(b)
}

// Shorten shortens a hex string so that both sides have n characters and
// the rest is replaced with "..."
func Shorten(hexStr string, n int) string {
	str := Trim0xPrefix(hexStr)

	if len(str) <= n*2 {
		return Prepend0xPrefix(str)
	}
	return Prepend0xPrefix(str[:n] + "..." + str[len(str)-n:])
}

func BigIntClone(bigInt *big.Int) *big.Int {
	return new(big.Int).Set(bigInt)
}
