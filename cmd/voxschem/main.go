// Command voxschem converts a schematic file between the wire formats
// the voxschem library understands.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oriumgames/voxschem"
	"github.com/oriumgames/voxschem/stream"
)

var (
	inputPath  string
	outputPath string
	toFormat   string
	gzipIn     bool
	gzipOut    bool
)

func main() {
	root := &cobra.Command{
		Use:   "voxschem",
		Short: "Convert between voxel schematic formats",
	}
	root.AddCommand(convertCmd(), formatsCmd())
	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("voxschem failed")
	}
}

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a schematic file to another format",
		RunE:  runConvert,
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file path (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVarP(&toFormat, "to", "t", "", "target format identifier (required)")
	cmd.Flags().BoolVar(&gzipIn, "gzip-in", false, "input is gzip-compressed")
	cmd.Flags().BoolVar(&gzipOut, "gzip-out", false, "gzip-compress the output")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	cmd.MarkFlagRequired("to")
	return cmd
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported format identifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range voxschem.Formats() {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	var reader stream.Reader
	if gzipIn {
		reader, err = voxschem.OpenGzip(in)
	} else {
		reader, err = voxschem.Open(in)
	}
	if err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	var writer stream.Writer
	if gzipOut {
		writer, err = voxschem.NewGzipWriter(out, toFormat)
	} else {
		writer, err = voxschem.NewWriter(out, toFormat)
	}
	if err != nil {
		return fmt.Errorf("build writer for %s: %w", toFormat, err)
	}

	blocks, err := stream.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read input blocks: %w", err)
	}
	if _, err := writer.Write(blocks); err != nil {
		return fmt.Errorf("write blocks: %w", err)
	}
	if err := writer.Complete(); err != nil {
		return fmt.Errorf("complete output: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"input":  inputPath,
		"output": outputPath,
		"format": toFormat,
		"blocks": len(blocks),
	}).Info("conversion complete")
	return nil
}
