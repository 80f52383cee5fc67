package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tablelayout/pkg/errors"
	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/program"
)

// validateCommand creates the validate command, which checks a document
// without imposing it.
func (c *CLI) validateCommand() *cobra.Command {
	var convert string

	cmd := &cobra.Command{
		Use:   "validate [document]",
		Short: "Check a document for errors",
		Long: `Check a document for errors without imposing it.

Spans, sizes, padding and flags are validated. With --convert the parsed
document is printed in another format (toml or json), which also turns a
Lua document into a static one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), args[0], convert)
		},
	}

	cmd.Flags().StringVar(&convert, "convert", "", "print the document as toml or json")

	return cmd
}

func runValidate(ctx context.Context, w io.Writer, input, convert string) error {
	doc, err := pipeline.LoadFile(ctx, input)
	if err != nil {
		return err
	}

	if convert != "" {
		data, err := convertDocument(doc, convert)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	printSuccess("%s is valid", input)
	printKeyValue("Name", doc.Name)
	printKeyValue("Rows", fmt.Sprint(len(doc.Rows)))
	printKeyValue("Cells", fmt.Sprint(doc.CellCount()))
	if doc.Width > 0 || doc.Height > 0 {
		printKeyValue("Extent", fmt.Sprintf("%gx%g", doc.Width, doc.Height))
	}
	printKeyValue("Hash", program.Hash(doc)[:12])
	fmt.Println()
	printNextStep("Impose", appName+" impose "+input)
	return nil
}

// convertDocument encodes doc in the given document format.
func convertDocument(doc *program.Document, format string) ([]byte, error) {
	switch format {
	case program.FormatTOML:
		return program.MarshalTOML(doc)
	case program.FormatJSON:
		return program.MarshalJSON(doc)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "cannot convert to %q: must be toml or json", format)
}
