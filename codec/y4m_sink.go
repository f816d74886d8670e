package codec

import (
	"fmt"
	"image"
	"io"
	"os"
)

type Y4MSink struct {
	writer        io.Writer
	headerWritten bool
	fpsNum        int
	fpsDen        int
}

func NewY4MSink(w io.Writer, fpsNum, fpsDen int) *Y4MSink {
	return &Y4MSink{
		writer: w,
		fpsNum: fpsNum,
		fpsDen: fpsDen,
	}
}

// CreateY4MSink creates filePath and writes frames to it.
func CreateY4MSink(filePath string, fpsNum, fpsDen int) (*Y4MSink, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}
	return NewY4MSink(file, fpsNum, fpsDen), nil
}

func (s *Y4MSink) SaveFrame(frameData []byte, width, height int, subsampling image.YCbCrSubsampleRatio) error {
	if !s.headerWritten {
		var chromaFormat string
		switch subsampling {
		case image.YCbCrSubsampleRatio444:
			chromaFormat = "444"
		case image.YCbCrSubsampleRatio422:
			chromaFormat = "422"
		case image.YCbCrSubsampleRatio420:
			chromaFormat = "420jpeg"
		case image.YCbCrSubsampleRatio411:
			chromaFormat = "411"
		default:
			return fmt.Errorf("unsupported chroma subsampling format: %v", subsampling)
		}

		// YUV4MPEG2 W<width> H<height> F<fps_num>:<fps_den> Ip A<aspect> C<colorspace>
		header := fmt.Sprintf("YUV4MPEG2 W%d H%d F%d:%d Ip A0:0 C%s\n", width, height, s.fpsNum, s.fpsDen, chromaFormat)
		if _, err := io.WriteString(s.writer, header); err != nil {
			return err
		}
		s.headerWritten = true
	}

	if _, err := io.WriteString(s.writer, "FRAME\n"); err != nil {
		return err
	}
	_, err := s.writer.Write(frameData)
	return err
}

func (s *Y4MSink) Close() error {
	if c, ok := s.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Write implements Writer so the sink can terminate a pipeline.
func (s *Y4MSink) Write(b []byte, attrs Attributes) error {
	width, err := GetWidth(attrs)
	if err != nil {
		return fmt.Errorf("Y4MSink: %w", err)
	}
	height, err := GetHeight(attrs)
	if err != nil {
		return fmt.Errorf("Y4MSink: %w", err)
	}
	subsampleRatio, err := GetChromaSubsampling(attrs)
	if err != nil {
		return fmt.Errorf("Y4MSink: %w", err)
	}
	return s.SaveFrame(b, width, height, subsampleRatio)
}
