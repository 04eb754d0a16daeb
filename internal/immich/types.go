package immich

// ExifInfo carries the subset of EXIF metadata boostd reads. File size is the
// fidelity signal for stack resolution and defaults to zero when the remote
// record omits it.
type ExifInfo struct {
	FileSizeInByte int64  `json:"fileSizeInByte"`
	Make           string `json:"make"`
	Model          string `json:"model"`
}

// Asset is a single media item tracked by the remote store. Timestamps are
// kept as the wire strings because derived uploads copy them verbatim.
type Asset struct {
	ID               string   `json:"id"`
	DeviceAssetID    string   `json:"deviceAssetId"`
	DeviceID         string   `json:"deviceId"`
	OriginalFileName string   `json:"originalFileName"`
	OriginalPath     string   `json:"originalPath"`
	FileCreatedAt    string   `json:"fileCreatedAt"`
	FileModifiedAt   string   `json:"fileModifiedAt"`
	IsFavorite       bool     `json:"isFavorite"`
	Duration         string   `json:"duration"`
	StackParentID    string   `json:"stackParentId,omitempty"`
	Stack            []Asset  `json:"stack,omitempty"`
	ExifInfo         ExifInfo `json:"exifInfo"`
}

// FileName returns the asset's display name, falling back to the last
// element of the original path when the name field is empty.
func (a Asset) FileName() string {
	if a.OriginalFileName != "" {
		return a.OriginalFileName
	}
	path := a.OriginalPath
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// FileSize returns the EXIF-reported size in bytes, zero when unknown.
func (a Asset) FileSize() int64 {
	return a.ExifInfo.FileSizeInByte
}

// DeviceModel returns the capture hardware description used by the
// device-model filter.
func (a Asset) DeviceModel() string {
	if a.ExifInfo.Make == "" {
		return a.ExifInfo.Model
	}
	if a.ExifInfo.Model == "" {
		return a.ExifInfo.Make
	}
	return a.ExifInfo.Make + " " + a.ExifInfo.Model
}

type searchResponse struct {
	Assets struct {
		Items []Asset `json:"items"`
	} `json:"assets"`
}

// UploadRequest describes a derived asset submission.
type UploadRequest struct {
	FilePath       string
	FileName       string
	DeviceAssetID  string
	DeviceID       string
	FileCreatedAt  string
	FileModifiedAt string
	IsFavorite     bool
	Duration       string
}

type uploadResponse struct {
	ID string `json:"id"`
}
