package auth

// Claims representa la información extraída del token.
type Claims struct {
	PersonID string
	Email    string
}
