package documents

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-admin/internal/models"
)

// ConfirmationPrefix starts every registration confirmation number
const ConfirmationPrefix = "REG"

// NewSalt returns a random salt for ConfirmationNumber
func NewSalt() string {
	return uuid.NewString()
}

// ConfirmationNumber builds "REG-<YYYY><MM>-<NNNN>". NNNN is derived from the
// student's name, birth date and salt; two students may share a code, the
// backend id remains the authoritative key.
func ConfirmationNumber(student models.Student, salt string, registeredAt time.Time) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s",
		strings.ToLower(strings.TrimSpace(student.FullName())),
		student.DateOfBirth.Format("2006-01-02"),
		salt)

	return fmt.Sprintf("%s-%04d%02d-%04d", ConfirmationPrefix, registeredAt.Year(), int(registeredAt.Month()), h.Sum32()%10000)
}
