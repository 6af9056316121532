package assetid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the two identifier families minted by this service. Asset
// group IDs tie variant rows of one logical upload together; file IDs name a
// single MediaFile row.
const (
	GroupPrefix = "ag_"
	FilePrefix  = "mf_"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func mint(prefix string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return prefix + strings.ToLower(id.String())
}

// NewGroup returns a fresh ag_* asset group identifier.
func NewGroup() string {
	return mint(GroupPrefix)
}

// NewFile returns a fresh mf_* media file identifier.
func NewFile() string {
	return mint(FilePrefix)
}

// IsGroup reports whether the string is a valid ag_* identifier.
func IsGroup(value string) bool {
	return isValid(value, GroupPrefix)
}

// IsFile reports whether the string is a valid mf_* identifier.
func IsFile(value string) bool {
	return isValid(value, FilePrefix)
}

func isValid(value, prefix string) bool {
	if !strings.HasPrefix(value, prefix) {
		return false
	}
	_, err := parse(value, prefix)
	return err == nil
}

func parse(value, prefix string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, prefix)
	value = strings.TrimPrefix(value, strings.ToUpper(prefix))
	return ulid.Parse(value)
}
