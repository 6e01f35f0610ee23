package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted bcrypt hash of the given password.
// bcrypt embeds a random salt and an adaptive cost in the hash itself.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored hash.
// A malformed hash is treated as a non-match, never an error.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
