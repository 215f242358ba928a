package store

import "github.com/google/uuid"

// CheckID reports ErrInvalidID for anything that is not a UUID.
func CheckID(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return ErrInvalidID
		}
	}
	return nil
}
