package models

// File is an uploaded object. It starts life as a pending upload and
// is claimed exactly once when attached to a parent; attachments are
// referenced by id from messages, never owned by them.
type File struct {
	ID          int64  `json:"id,string"`
	Bucket      string `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	StorageKey  string `json:"-"`
	URL         string `json:"url"`

	Used       bool   `json:"-"`
	ParentKind string `json:"-"`
	ParentID   *int64 `json:"-"`
	UploaderID int64  `json:"-"`
}
