package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is the fixed work factor for password hashing.
const bcryptCost = 10

// HashPassword derives a salted one-way hash of the given password.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
