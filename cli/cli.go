package cli

import (
	"flag"
	"os"

	"github.com/ipastusi/macsql/config"
)

type Flags struct {
	ConfigFileName *string
	LogFileName    *string
	Style          *string
	DatasetFile    *string
	CaptureFile    *string
	SummaryFile    *string
	Resolver       *string
	Json           *bool
	Ui             *bool
	RenderConfig   *bool
	Args           []string
}

// GetFlags parses the process command line, exiting on bad flags.
func GetFlags() Flags {
	flags, _ := parseFlags(flag.CommandLine, os.Args[1:])
	return flags
}

// ParseFlags parses args without touching the process-wide flag set.
func ParseFlags(args []string) (Flags, error) {
	return parseFlags(flag.NewFlagSet("macsql", flag.ContinueOnError), args)
}

func parseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	configFileName := fs.String("c", "", "YAML config file (default none)")
	logFileName := fs.String("l", "macsql.log", "log file")
	style := fs.String("s", "", "output style: colon, dash, hex or link-local (default colon)")
	datasetFile := fs.String("d", "", "manuf dataset file (default embedded)")
	captureFile := fs.String("p", "", "pcap file to read source addresses from (default none)")
	summaryFile := fs.String("o", "", "summary file merged with and updated from the capture (default none)")
	resolver := fs.String("n", "native", "vendor resolver: native or generic")
	json := fs.Bool("j", false, "print JSON lines (default false)")
	ui := fs.Bool("u", false, "browse the capture summary in a terminal UI (default false)")
	renderConfig := fs.Bool("r", false, "render config and exit (default false)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	// only flags given on the command line override the config file
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	ifSet := func(name string, v *string) *string {
		if set[name] {
			return v
		}
		return nil
	}

	flags := Flags{
		ConfigFileName: configFileName,
		LogFileName:    ifSet("l", logFileName),
		Style:          ifSet("s", style),
		DatasetFile:    ifSet("d", datasetFile),
		CaptureFile:    ifSet("p", captureFile),
		SummaryFile:    ifSet("o", summaryFile),
		Resolver:       ifSet("n", resolver),
		RenderConfig:   renderConfig,
		Args:           fs.Args(),
	}
	if set["j"] {
		flags.Json = json
	}
	if set["u"] {
		flags.Ui = ui
	}
	return flags, nil
}

// Overrides returns the config values given on the command line.
func (f Flags) Overrides() config.Config {
	overrides := config.Config{
		LogFileName: f.LogFileName,
		Style:       f.Style,
		DatasetFile: f.DatasetFile,
		Resolver:    f.Resolver,
		Json:        f.Json,
	}
	if f.CaptureFile != nil || f.SummaryFile != nil || f.Ui != nil {
		overrides.CaptureConfig = &config.CaptureConfig{
			File:        f.CaptureFile,
			SummaryFile: f.SummaryFile,
			Ui:          f.Ui,
		}
	}
	return overrides
}
