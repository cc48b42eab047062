package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is the opaque credential verification service. The core only
// ever sees hash-in, bool-out.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns the default bcrypt-backed PasswordHasher.
func NewBcryptHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *bcryptHasher) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
