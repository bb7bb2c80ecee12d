package debugger

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	Hz           int
	MemDumpBytes int
	DisasmLines  int
	TraceSteps   bool
}

func newSettings(hz int) *settings {
	return &settings{
		Hz:           hz,
		MemDumpBytes: 64,
		DisasmLines:  10,
		TraceSteps:   true,
	}
}

type setting struct {
	name string
	doc  string
	get  func(s *settings) string
	set  func(s *settings, v string) error
}

var (
	settingsTree = prefixtree.New[*setting]()
	settingsList = []*setting{
		{
			name: "Hz",
			doc:  "instructions per second for frame",
			get:  func(s *settings) string { return strconv.Itoa(s.Hz) },
			set:  func(s *settings, v string) error { return setPositive(&s.Hz, v) },
		},
		{
			name: "MemDumpBytes",
			doc:  "default number of memory bytes to dump",
			get:  func(s *settings) string { return strconv.Itoa(s.MemDumpBytes) },
			set:  func(s *settings, v string) error { return setPositive(&s.MemDumpBytes, v) },
		},
		{
			name: "DisasmLines",
			doc:  "default number of lines to disassemble",
			get:  func(s *settings) string { return strconv.Itoa(s.DisasmLines) },
			set:  func(s *settings, v string) error { return setPositive(&s.DisasmLines, v) },
		},
		{
			name: "TraceSteps",
			doc:  "print each instruction while stepping",
			get:  func(s *settings) string { return strconv.FormatBool(s.TraceSteps) },
			set: func(s *settings, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return fmt.Errorf("invalid boolean %q", v)
				}
				s.TraceSteps = b
				return nil
			},
		},
	}
)

func init() {
	for _, s := range settingsList {
		settingsTree.Add(strings.ToLower(s.name), s)
	}
}

func setPositive(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid positive number %q", v)
	}
	*dst = n
	return nil
}

func (s *settings) Display(w io.Writer) {
	for _, f := range settingsList {
		fmt.Fprintf(w, "    %-16s %-8s (%s)\n", f.name, f.get(s), f.doc)
	}
}

// Set changes the setting whose name starts with key.
func (s *settings) Set(key, value string) (string, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return "", err
	}

	if err := f.set(s, value); err != nil {
		return "", err
	}
	return f.name, nil
}
