package codec

// Info describes the raw frames flowing through a pipeline.
type Info struct {
	Width       uint
	Height      uint
	TimebaseNum int
	TimebaseDen int
}

type Writer interface {
	Write([]byte, Attributes) error
}

type WriterFunc func([]byte, Attributes) error

func (f WriterFunc) Write(b []byte, a Attributes) error {
	return f(b, a)
}

type Processor interface {
	Link(Writer, Info) (Writer, error)
}

// Chain links processors in reverse order so that the returned Writer feeds
// the last processor, which feeds the one before it, ending in f.
func Chain(i Info, f Writer, processors ...Processor) (Writer, error) {
	var err error
	for _, p := range processors {
		f, err = p.Link(f, i)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}
