package media

import "strings"

// nativeExts are formats decoded in-process.
var nativeExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
}

// transcodeExts are formats rendered by converting to WAV through ffmpeg
// first.
var transcodeExts = map[string]bool{
	".aac":  true,
	".m4a":  true,
	".m4b":  true,
	".mp4":  true,
	".opus": true,
	".wma":  true,
	".aiff": true,
	".webm": true,
}

// IsNativeExt returns true if the extension has an in-process decoder.
func IsNativeExt(ext string) bool {
	return nativeExts[strings.ToLower(ext)]
}

// NeedsTranscode returns true if the extension is supported only through
// the ffmpeg conversion path.
func NeedsTranscode(ext string) bool {
	return transcodeExts[strings.ToLower(ext)]
}

// IsSupportedExt returns true if the extension is a renderable media format.
func IsSupportedExt(ext string) bool {
	e := strings.ToLower(ext)
	return nativeExts[e] || transcodeExts[e]
}

// SupportedExtsList returns a human-readable list of renderable formats.
func SupportedExtsList() string {
	return ".wav, .mp3, .flac, .ogg, .aac, .m4a, .m4b, .mp4, .opus, .wma, .aiff, .webm"
}
