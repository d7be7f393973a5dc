package inspector

import (
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/evyataryagoni/netlookup/internal/models"
)

// Query parameters a browser client uses to pass its screen metrics
const (
	ParamScreenWidth  = "screen_width"
	ParamScreenHeight = "screen_height"
	ParamColorDepth   = "color_depth"
	ParamOrientation  = "orientation"
)

// FromRequest reads the environment a browser exposes through its request
// headers and client hints. Network hints are only set when the client sent
// at least one of Downlink, RTT or ECT.
func FromRequest(r *http.Request) Environment {
	q := r.URL.Query()

	env := Environment{
		UserAgent: r.UserAgent(),
		Platform:  strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`),
		Language:  primaryLanguage(r.Header.Get("Accept-Language")),
		Screen: models.Screen{
			Width:       atoi(q.Get(ParamScreenWidth)),
			Height:      atoi(q.Get(ParamScreenHeight)),
			ColorDepth:  atoi(q.Get(ParamColorDepth)),
			Orientation: q.Get(ParamOrientation),
		},
	}

	downlink, rtt, ect := r.Header.Get("Downlink"), r.Header.Get("RTT"), r.Header.Get("ECT")
	if downlink != "" || rtt != "" || ect != "" {
		dl, _ := strconv.ParseFloat(downlink, 64)
		env.Net = &NetworkHints{
			Downlink:      dl,
			RTT:           atoi(rtt),
			EffectiveType: ect,
		}
	}
	return env
}

// FromTerminal describes the terminal the CLI runs in. userAgent is the
// client identifier the CLI is configured with.
func FromTerminal(userAgent string) Environment {
	env := Environment{
		UserAgent: userAgent,
		Platform:  runtime.GOOS,
		Language:  terminalLanguage(os.Getenv("LANG")),
	}

	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			env.Screen.Width = w
			env.Screen.Height = h
			env.Screen.Orientation = orientation(w, h)
		}
		env.Screen.ColorDepth = colorDepth(os.Getenv("COLORTERM"), os.Getenv("TERM"))
	}
	return env
}

// primaryLanguage returns the first tag of an Accept-Language value
func primaryLanguage(header string) string {
	tag, _, _ := strings.Cut(header, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.TrimSpace(tag)
}

// terminalLanguage turns a POSIX locale like "en_US.UTF-8" into "en-US"
func terminalLanguage(lang string) string {
	lang, _, _ = strings.Cut(lang, ".")
	lang, _, _ = strings.Cut(lang, "@")
	if lang == "C" || lang == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(lang, "_", "-")
}

func orientation(w, h int) string {
	if w >= h {
		return "landscape-primary"
	}
	return "portrait-primary"
}

func colorDepth(colorterm, termName string) int {
	switch {
	case colorterm == "truecolor" || colorterm == "24bit":
		return 24
	case strings.Contains(termName, "256color"):
		return 8
	case termName != "" && termName != "dumb":
		return 4
	default:
		return 0
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
