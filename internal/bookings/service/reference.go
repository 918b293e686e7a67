package service

import "github.com/google/uuid"

const (
	ReferencePrefix = "RS-"
	referenceLength = 8
	// Crockford-style alphabet without 0/O and 1/I, read aloud over the phone.
	referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// NewReference returns a human-readable booking reference such as
// RS-7K2M9QXA. Uniqueness is enforced against the store by the caller.
func NewReference() string {
	id := uuid.New()
	buf := make([]byte, 0, len(ReferencePrefix)+referenceLength)
	buf = append(buf, ReferencePrefix...)
	for i := 0; i < referenceLength; i++ {
		buf = append(buf, referenceAlphabet[int(id[i])%len(referenceAlphabet)])
	}
	return string(buf)
}
