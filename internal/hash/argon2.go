package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Algorithm = "argon2id"

type Argon2id struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultArgon2id() Argon2id {
	return Argon2id{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hash returns a PHC string: $argon2id$v=19$m=..,t=..,p=..$salt$hash
func (a Argon2id) Hash(password string) (string, error) {
	salt := make([]byte, a.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, a.Time, a.Memory, a.Parallelism, a.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Algorithm,
		argon2.Version,
		a.Memory,
		a.Time,
		a.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a Argon2id) Verify(password, digest string) bool {
	p, err := parsePHC(digest)
	if err != nil {
		return false
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

var errBadPHC = errors.New("invalid argon2id digest")

func parsePHC(digest string) (*phc, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2Algorithm {
		return nil, errBadPHC
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, errBadPHC
	}

	var out phc
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errBadPHC
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, errBadPHC
		}
		switch k {
		case "m":
			out.memory = uint32(n)
		case "t":
			out.time = uint32(n)
		case "p":
			if n == 0 || n > 255 {
				return nil, errBadPHC
			}
			out.parallelism = uint8(n)
		default:
			return nil, errBadPHC
		}
	}
	if out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return nil, errBadPHC
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) == 0 {
		return nil, errBadPHC
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 {
		return nil, errBadPHC
	}
	return &out, nil
}
