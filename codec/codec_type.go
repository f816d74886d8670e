package codec

type CodecType int

const (
	VP8 CodecType = iota
	VP9
	AV1
	H264
	Unknown
)

// ParseFourCC maps an IVF FourCC to a CodecType.
func ParseFourCC(fourcc string) CodecType {
	switch fourcc {
	case "VP80":
		return VP8
	case "VP90":
		return VP9
	case "AV01":
		return AV1
	case "H264":
		return H264
	}
	return Unknown
}

func (c CodecType) String() string {
	switch c {
	case VP8:
		return "vp8"
	case VP9:
		return "vp9"
	case AV1:
		return "av1"
	case H264:
		return "h264"
	default:
		return "unknown"
	}
}

// MIME returns the MIME type used in track formats.
func (c CodecType) MIME() string {
	switch c {
	case VP8:
		return "video/x-vnd.on2.vp8"
	case VP9:
		return "video/x-vnd.on2.vp9"
	case AV1:
		return "video/av01"
	case H264:
		return "video/avc"
	default:
		return "application/octet-stream"
	}
}
