package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mkarpov/rapport/internal/services"
)

// ParseCommand converts chat export files into the normalized conversation
// JSON on stdout, for headless use without the HTTP server.
type ParseCommand struct {
	OutputPath string
	Pretty     bool
	Files      []string
}

func NewParseCommand() *ParseCommand {
	return &ParseCommand{}
}

func (cmd *ParseCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)

	fs.StringVar(&cmd.OutputPath, "out", "", "Write the batch result to this file instead of stdout")
	fs.BoolVar(&cmd.Pretty, "pretty", false, "Indent the JSON output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s parse [options] <file> [<file> ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse chat export files (Facebook/Instagram JSON, Line/WhatsApp TXT)\n")
		fmt.Fprintf(os.Stderr, "into the normalized conversation format.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s parse message_1.json \"WhatsApp Chat with Tom.txt\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s parse -pretty -out result.json export/*.json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Files = fs.Args()
	if len(cmd.Files) == 0 {
		return fmt.Errorf("no input files provided")
	}
	return nil
}

func (cmd *ParseCommand) Run() error {
	result, err := parseFiles(cmd.Files)
	if err != nil {
		return err
	}
	return writeJSON(result, cmd.OutputPath, cmd.Pretty)
}

func parseFiles(paths []string) (services.ParseResult, error) {
	files := make([]services.InputFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return services.ParseResult{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, services.InputFile{Name: path, Content: content})
	}
	return services.NewParseService().ParseBatch(files), nil
}

func writeJSON(v interface{}, path string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
