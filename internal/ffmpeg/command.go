package ffmpeg

import "strconv"

// ManifestName is the well-known manifest filename written into every task
// output directory.
const ManifestName = "manifest.mpd"

// TrimArgs builds the argument list for a stream-copied trim of duration
// seconds starting at start. Seeking before the input keeps the cut fast and
// avoids a re-encode.
func TrimArgs(input string, start, duration float64, output string) []string {
	return []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-i", input,
		"-t", fmtSeconds(duration),
		"-c", "copy",
		output,
	}
}

// ConcatArgs builds the argument list for the concat demuxer over a list
// file of clip names. The invocation must run with its working directory set
// to the list file's directory so the relative entries resolve.
func ConcatArgs(listFile, output string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		output,
	}
}

// PackageArgs builds the argument list for packaging input into a single
// DASH representation with fixed-length segments. The audio stream is mapped
// optionally so sources without audio still package. All segment and
// manifest names are local; the invocation must run inside the target output
// directory.
func PackageArgs(input string, segmentSeconds int) []string {
	return []string{
		"-y",
		"-i", input,
		"-map", "0:v:0",
		"-map", "0:a:0?",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-f", "dash",
		"-seg_duration", strconv.Itoa(segmentSeconds),
		"-use_template", "1",
		"-use_timeline", "1",
		"-init_seg_name", "init-$RepresentationID$.$ext$",
		"-media_seg_name", "segment-$RepresentationID$-$Number$.$ext$",
		ManifestName,
	}
}

// ProbeDurationArgs builds the ffprobe argument list for reading a
// container's duration in seconds.
func ProbeDurationArgs(input string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		input,
	}
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
