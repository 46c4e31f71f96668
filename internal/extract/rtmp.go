package extract

import "strings"

// IsRTMP reports whether u uses one of the RTMP schemes.
func IsRTMP(u string) bool {
	lower := strings.ToLower(u)
	for _, scheme := range []string{"rtmp://", "rtmpt://", "rtmps://"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// ArchiveURL rewrites an RTMP URL such as rtmp://host/mp4:LM/lm250424.mp4 to
// the same file on the storage host: <storage>/LM/lm250424.mp4.
func (r *Resolver) ArchiveURL(rtmpURL string) (string, bool) {
	if !IsRTMP(rtmpURL) {
		return "", false
	}
	m := r.archivePattern.FindStringSubmatch(rtmpURL)
	if m == nil {
		return "", false
	}
	return r.storageURL + "/" + r.code + "/" + m[1], true
}
