package codec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var undashedUUID = regexp.MustCompile(`^([0-9a-fA-F]{8})([0-9a-fA-F]{4})([0-9a-fA-F]{4})([0-9a-fA-F]{4})([0-9a-fA-F]{12})$`)

// ParseUUID accepts both the dashed 8-4-4-4-12 form and the undashed 32 hex
// digit form used by the session servers.
func ParseUUID(s string) (uuid.UUID, error) {
	if undashedUUID.MatchString(s) {
		s = undashedUUID.ReplaceAllString(s, "$1-$2-$3-$4-$5")
	}
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("invalid UUID %q", s)
	}
	return uuid.Parse(s)
}

// FormatUUID renders u with or without dashes.
func FormatUUID(u uuid.UUID, dashes bool) string {
	if dashes {
		return u.String()
	}
	return strings.ReplaceAll(u.String(), "-", "")
}

func (r *Reader) ReadUUID() (uuid.UUID, error) {
	b, err := r.next(16)
	if err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	copy(u[:], b)
	return u, nil
}

func (w *Writer) WriteUUID(u uuid.UUID) {
	w.buf = append(w.buf, u[:]...)
}
