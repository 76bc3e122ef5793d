package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quiltsoft/stitch/internal/model"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Model  string // path to the CUE content model
	Locale string // locale view for entity identity
}

// FindingResult is the wire form of a single validation finding.
type FindingResult struct {
	Entry       string `json:"entry"`
	ContentType string `json:"contentType"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Findings []FindingResult `json:"findings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <document.json>",
		Short: "Validate a document against a content model",
		Long: `Decode a document and check its entries against a CUE content model.

Every entry's fields are checked for declared content types, required
fields, field types, and link target kinds.

Exit codes:
  0 - All entries conform to the model
  1 - One or more findings
  2 - Command error (missing files, model does not compile)

Examples:
  stitch validate export.json --model model.cue
  stitch validate export.json --model model.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Model, "model", "", "path to the CUE content model (required)")
	cmd.Flags().StringVar(&opts.Locale, "locale", "",
		"locale view for entity identity; a localized document decoded without it leaves every link unresolved")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runValidate(opts *ValidateOptions, docPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := model.LoadModel(opts.Model)
	if err != nil {
		_ = formatter.Error(ErrCodeModelInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading model", err)
	}
	formatter.VerboseLog("Compiled model with %d content type(s)", len(spec.Types))

	doc, _, err := loadDocument(docPath, opts.Locale)
	if err != nil {
		return err
	}

	findings := model.Validate(doc, spec)
	if len(findings) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(ValidationResult{Valid: true})
		}
		fmt.Fprintf(formatter.Writer, "✓ %d entr%s valid\n",
			len(doc.Entries), plural(len(doc.Entries), "y", "ies"))
		return nil
	}

	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Findings: make([]FindingResult, 0, len(findings))}
		for _, f := range findings {
			result.Findings = append(result.Findings, FindingResult{
				Entry:       f.EntryID,
				ContentType: f.ContentType,
				Field:       f.Field,
				Message:     f.Message,
			})
		}
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeGeneric,
				Message: findings[0].Message,
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		for _, f := range findings {
			fmt.Fprintf(formatter.Writer, "  %s\n", f)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d finding(s)", len(findings)))
}
