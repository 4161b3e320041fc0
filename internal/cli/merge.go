package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/services"
)

// MergeCommand parses export files and applies identity mappings from a
// JSON file, printing the merged conversation list.
type MergeCommand struct {
	MappingsPath string
	OutputPath   string
	Pretty       bool
	Files        []string
}

func NewMergeCommand() *MergeCommand {
	return &MergeCommand{}
}

func (cmd *MergeCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)

	fs.StringVar(&cmd.MappingsPath, "mappings", "", "Path to a JSON file with identity mappings (required)")
	fs.StringVar(&cmd.OutputPath, "out", "", "Write the merged conversations to this file instead of stdout")
	fs.BoolVar(&cmd.Pretty, "pretty", false, "Indent the JSON output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s merge -mappings <path> [options] <file> [<file> ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse chat export files, then merge conversations that the mapping\n")
		fmt.Fprintf(os.Stderr, "file declares to belong to the same person.\n\n")
		fmt.Fprintf(os.Stderr, "The mappings file is a JSON array of objects:\n")
		fmt.Fprintf(os.Stderr, "  [{\"person1\": {\"name\": ..., \"platform\": ..., \"conversationId\": ...},\n")
		fmt.Fprintf(os.Stderr, "    \"person2\": {...}}]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.MappingsPath == "" {
		return fmt.Errorf("required flag -mappings not provided")
	}
	cmd.Files = fs.Args()
	if len(cmd.Files) == 0 {
		return fmt.Errorf("no input files provided")
	}
	return nil
}

func (cmd *MergeCommand) Run() error {
	mappingData, err := os.ReadFile(cmd.MappingsPath)
	if err != nil {
		return fmt.Errorf("failed to read mappings file: %w", err)
	}
	var mappings []entities.IdentityMapping
	if err := json.Unmarshal(mappingData, &mappings); err != nil {
		return fmt.Errorf("invalid mappings file: %w", err)
	}

	result, err := parseFiles(cmd.Files)
	if err != nil {
		return err
	}
	for _, parseErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", parseErr.FileName, parseErr.Error)
	}

	merged := services.NewMergeService().Merge(result.Conversations, mappings)
	return writeJSON(merged, cmd.OutputPath, cmd.Pretty)
}
