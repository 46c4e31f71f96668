package errutil

var (
	ErrHTTPRequest     = NewInternalError("http request error")
	ErrHTTPStatus      = NewInternalError("http status code not ok")
	ErrHTMLParse       = NewInternalError("html parse error")
	ErrJSONDecode      = NewInternalError("json decode error")
	ErrInvalidURL      = NewInternalError("invalid url")
	ErrSnapshotMissing = NewInternalError("snapshot not found")
	ErrSnapshotInvalid = NewInternalError("snapshot unreadable")
	ErrSnapshotWrite   = NewInternalError("snapshot write error")
	ErrPlayer          = NewInternalError("player error")
	ErrFfmpeg          = NewInternalError("ffmpeg error")
	ErrToolMissing     = NewInternalError("required tool not found in PATH")
	ErrTag             = NewInternalError("id3 tag error")
	ErrScheduler       = NewInternalError("scheduler error")
	// anything that does not fit above
	ErrInternal = NewInternalError("internal something error")
)
