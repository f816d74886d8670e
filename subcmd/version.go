package subcmd

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"text/tabwriter"

	"github.com/mengelbart/vedit/cmdmain"
	"github.com/mengelbart/vedit/container"
)

func init() {
	cmdmain.RegisterSubCmd("version", func() cmdmain.SubCmd { return newVersion() })
}

// demuxModules are the dependencies whose versions decide which containers
// and codecs can be read.
var demuxModules = []string{
	"github.com/abema/go-mp4",
	"github.com/at-wat/ebml-go",
	"github.com/bluenviron/mediacommon/v2",
	"github.com/pion/webrtc/v4",
}

type Version struct {
	path      string
	version   string
	gitCommit string
	gitDate   string
	goVersion string
	deps      map[string]string
}

func newVersion() *Version {
	v := &Version{
		goVersion: runtime.Version(),
		deps:      map[string]string{},
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	v.path = info.Main.Path
	v.version = info.Main.Version
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			v.gitCommit = setting.Value
		case "vcs.time":
			v.gitDate = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if modified {
		v.gitCommit += "+dirty"
	}
	for _, dep := range info.Deps {
		v.deps[dep.Path] = dep.Version
	}
	return v
}

// Exec implements cmdmain.SubCmd.
func (v *Version) Exec(cmd string, args []string) error {
	fs := newFlagSet("version", v.Help(), cmd)
	fs.Parse(args)
	return v.print(os.Stdout)
}

func (v *Version) print(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
	fmt.Fprintf(w, "%v\n", v.path)
	fmt.Fprintf(w, "\tVersion:\t%v\n", v.version)
	fmt.Fprintf(w, "\tGit commit:\t%v\n", v.gitCommit)
	fmt.Fprintf(w, "\tBuilt:\t%v\n", v.gitDate)
	fmt.Fprintf(w, "\tGo Version:\t%v\n", v.goVersion)

	formats := []string{}
	for _, f := range []container.Format{container.MP4, container.WebM, container.IVF} {
		formats = append(formats, f.String())
	}
	fmt.Fprintf(w, "\tContainers:\t%v\n", strings.Join(formats, ", "))
	for _, m := range demuxModules {
		version, ok := v.deps[m]
		if !ok {
			version = "unknown"
		}
		fmt.Fprintf(w, "\t%v\t%v\n", m, version)
	}
	return w.Flush()
}

// Help implements cmdmain.SubCmd.
func (v *Version) Help() string {
	return "Print version and demuxer library information"
}
