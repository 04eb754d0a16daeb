package enhance

import (
	"path/filepath"
	"regexp"
	"strings"

	"boostd/internal/immich"
)

// Marker is the fixed substring tagging filenames of boostd-produced output.
// It is used both to name uploads and to recognize-and-skip them on future
// scans.
const Marker = "_boosted"

// defaultExt is assumed when a source filename carries no extension.
const defaultExt = ".mp4"

// Remote stores disambiguate colliding uploads by appending "+<digits>" to
// the stem; strip it so the boosted copy gets a clean name.
var duplicateCounterSuffix = regexp.MustCompile(`\+\d+$`)

// IsBoosted reports whether the asset is a previously-produced enhanced copy.
func IsBoosted(asset immich.Asset) bool {
	return strings.Contains(asset.OriginalFileName, Marker) ||
		strings.Contains(asset.OriginalPath, Marker)
}

// OutputName derives the boosted upload's display name from the source
// filename. The output container is always mp4.
func OutputName(sourceName string) string {
	ext := filepath.Ext(sourceName)
	stem := strings.TrimSuffix(sourceName, ext)
	if ext == "" {
		ext = defaultExt
	}
	stem = duplicateCounterSuffix.ReplaceAllString(stem, "")
	return stem + Marker + ".mp4"
}

// scratchExt returns the extension used for the downloaded source copy.
func scratchExt(sourceName string) string {
	if ext := filepath.Ext(sourceName); ext != "" {
		return ext
	}
	return defaultExt
}
