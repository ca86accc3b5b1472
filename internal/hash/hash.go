package hash

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{Cost: cost}
}

func (b Bcrypt) Hash(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", err
	}
	return string(hashbytes), nil
}

func (b Bcrypt) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// Multi hashes with Primary and verifies with whichever hasher owns the
// digest format, so users keep working after PASSWORD_HASHER changes.
type Multi struct {
	Primary Hasher
	Bcrypt  Bcrypt
	Argon2  Argon2id
}

func New(kind string, bcryptCost int) Multi {
	m := Multi{Bcrypt: NewBcrypt(bcryptCost), Argon2: DefaultArgon2id()}
	if kind == "argon2id" {
		m.Primary = m.Argon2
	} else {
		m.Primary = m.Bcrypt
	}
	return m
}

func (m Multi) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

func (m Multi) Verify(password, digest string) bool {
	if strings.HasPrefix(digest, "$"+argon2Algorithm+"$") {
		return m.Argon2.Verify(password, digest)
	}
	return m.Bcrypt.Verify(password, digest)
}
