package view

// UploadForm is the transient draft for the course upload action. The
// video bytes never round-trip to the browser; only the selected filename
// does. The draft is reset on successful submission and echoed back
// unchanged when the upload fails.
type UploadForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoName   string `json:"video_name,omitempty"`
	YoutubeLink string `json:"youtube_link,omitempty"`

	Video []byte `json:"-"`
}

// Reset clears the draft, including the selected file, so the next
// submission starts empty.
func (f *UploadForm) Reset() {
	*f = UploadForm{}
}

// HasMedia reports whether the draft carries a media reference.
func (f *UploadForm) HasMedia() bool {
	return len(f.Video) > 0 || f.YoutubeLink != ""
}
