package otas

import (
	"encoding/json"
	"fmt"
	"os"
)

// Whitelist is the set of OTA identifiers this deployment is allowed to
// scrape. It is loaded once at startup and never mutated afterwards, so
// concurrent reads need no synchronization.
type Whitelist struct {
	names   []string
	members map[string]struct{}
}

type whitelistFile struct {
	WhitelistOTAs []string `json:"WHITELIST_OTAS"`
}

// Load reads the whitelist from the shared otas.json artifact. The file is
// shared with sibling tooling, so its shape is fixed. A missing or malformed
// file is a startup failure, not something callers can recover from per-call.
func Load(path string) (*Whitelist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OTA whitelist %s: %w", path, err)
	}

	var file whitelistFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse OTA whitelist %s: %w", path, err)
	}

	if len(file.WhitelistOTAs) == 0 {
		return nil, fmt.Errorf("OTA whitelist %s contains no entries", path)
	}

	return New(file.WhitelistOTAs), nil
}

// New builds a whitelist from an explicit list of identifiers.
func New(names []string) *Whitelist {
	w := &Whitelist{
		names:   make([]string, 0, len(names)),
		members: make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		if _, seen := w.members[name]; seen {
			continue
		}
		w.names = append(w.names, name)
		w.members[name] = struct{}{}
	}
	return w
}

// Contains reports whether name is a whitelisted OTA identifier. Matching is
// exact: case-mismatched variants of valid names are not members.
func (w *Whitelist) Contains(name string) bool {
	_, ok := w.members[name]
	return ok
}

// Names returns the whitelisted identifiers in file order.
func (w *Whitelist) Names() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}
