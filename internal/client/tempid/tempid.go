// Package tempid allocates ids for records that have not reached the server.
package tempid

import (
	"strings"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/google/uuid"
)

// Generate returns a new temporary id. The reserved prefix keeps it apart
// from every id the server can issue; the UUID keeps it unique on the device.
func Generate() string {
	return common.TempIDPrefix + uuid.NewString()
}

// IsTemp reports whether id was produced by Generate.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, common.TempIDPrefix)
}
