package expression

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	wyhash "github.com/dgryski/go-wyhash"
	"github.com/zeebo/xxh3"
	"lukechampine.com/blake3"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

var cryptographicHashTypes = map[string]bool{
	"sha256": true, "sha512": true, "md5": true, "blake3": true,
}
var nonCryptographicHashTypes = map[string]bool{
	"wyhash": true, "xxh3": true,
}

// wyhashSeed is the fixed seed used for the non-cryptographic wyhash
// kernel; determinism (§8) requires a constant seed across runs.
const wyhashSeed uint64 = 0

// Hash implements the `hash` tag. Cryptographic kernels (sha256, sha512,
// md5, blake3) natively emit hex; base64 is produced by re-decoding that
// hex and re-encoding as base64. Non-cryptographic kernels (wyhash, xxh3)
// emit a uint64 formatted as lowercase hex; base64 is not supported and is
// a decode-time error (§4.1, §9 design note).
type Hash struct {
	Child    sql.Expression
	HashType string
	Encoding string
}

// NewHash validates the hash_type/encoding combination invariant and
// constructs the expression.
func NewHash(child sql.Expression, hashType, encoding string) (*Hash, error) {
	if !cryptographicHashTypes[hashType] && !nonCryptographicHashTypes[hashType] {
		return nil, sql.ErrInvalidExpression.New("hash", "unknown hash_type "+hashType)
	}
	if encoding != "hex" && encoding != "base64" {
		return nil, sql.ErrInvalidExpression.New("hash", "unknown encoding "+encoding)
	}
	if encoding == "base64" && nonCryptographicHashTypes[hashType] {
		return nil, sql.ErrInvalidExpression.New("hash", fmt.Sprintf("base64 encoding is not supported for non-cryptographic hash type %q", hashType))
	}
	return &Hash{Child: child, HashType: hashType, Encoding: encoding}, nil
}

func (h *Hash) Type() value.Type           { return value.String }
func (h *Hash) Children() []sql.Expression { return []sql.Expression{h.Child} }
func (h *Hash) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrWrongChildCount.New("hash", 1, len(children))
	}
	return &Hash{Child: children[0], HashType: h.HashType, Encoding: h.Encoding}, nil
}
func (h *Hash) String() string {
	return fmt.Sprintf("hash(%s, %s, %s)", h.Child, h.HashType, h.Encoding)
}

func (h *Hash) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	v, err := h.Child.Eval(ctx, row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	str, _, err := value.AsString(v)
	if err != nil {
		return nil, sql.ErrTypeMismatch.New("hash", err.Error())
	}
	data := []byte(str)

	if cryptographicHashTypes[h.HashType] {
		var sum []byte
		switch h.HashType {
		case "sha256":
			s := sha256.Sum256(data)
			sum = s[:]
		case "sha512":
			s := sha512.Sum512(data)
			sum = s[:]
		case "md5":
			s := md5.Sum(data)
			sum = s[:]
		case "blake3":
			s := blake3.Sum256(data)
			sum = s[:]
		}
		hexStr := hex.EncodeToString(sum)
		if h.Encoding == "hex" {
			return hexStr, nil
		}
		// base64 on a cryptographic kernel: re-decode the hex digest then
		// re-encode as base64 (§4.1).
		decoded, err := hex.DecodeString(hexStr)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("hash", err.Error())
		}
		return base64.StdEncoding.EncodeToString(decoded), nil
	}

	// Non-cryptographic: emit uint64, hex-format lowercase. base64 was
	// already rejected at construction time.
	var sum uint64
	switch h.HashType {
	case "wyhash":
		sum = wyhash.Hash(data, wyhashSeed)
	case "xxh3":
		sum = xxh3.Hash(data)
	}
	return fmt.Sprintf("%x", sum), nil
}
