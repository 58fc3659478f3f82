package domain

// MediaInfo is the metadata-only view of a media URL
type MediaInfo struct {
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Duration  float64  `json:"duration"`
	Uploader  string   `json:"uploader"`
	ViewCount int64    `json:"view_count"`
	Formats   []Format `json:"formats"`
}

// Format is one downloadable rendition of the media
type Format struct {
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext"`
	Quality    string `json:"quality"`
	Filesize   int64  `json:"filesize"`
	Resolution string `json:"resolution"`
}

// Unknown is used for metadata fields the fetcher did not report
const Unknown = "unknown"
