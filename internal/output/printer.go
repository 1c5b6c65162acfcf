// Package output prints the status lines of the provisioning tools.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

func init() {
	// Control sequences only make sense on a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		pterm.DisableStyling()
	}
}

// ExitCodeError is the exit code used when a command fails.
const ExitCodeError = 1

// Printer manages all kinds of outputs.
type Printer struct {
	Info    *pterm.PrefixPrinter
	Success *pterm.PrefixPrinter
	Warning *pterm.PrefixPrinter
	Error   *pterm.PrefixPrinter
	Section *pterm.SectionPrinter

	verbose bool
}

// NewPrinter returns a printer writing status lines to stdout and errors to stderr.
func NewPrinter(verbose bool) *Printer {
	return newPrinter(os.Stdout, os.Stderr, verbose)
}

// NewFakePrinter returns a new printer to be used in tests.
func NewFakePrinter(writer io.Writer) *Printer {
	return newPrinter(writer, writer, true)
}

func newPrinter(out, errOut io.Writer, verbose bool) *Printer {
	generic := &pterm.PrefixPrinter{MessageStyle: pterm.NewStyle(pterm.FgDefault)}

	printer := &Printer{
		verbose: verbose,
		Info: generic.WithPrefix(pterm.Prefix{
			Text:  "INFO",
			Style: pterm.NewStyle(pterm.FgDarkGray),
		}),
		Success: generic.WithPrefix(pterm.Prefix{
			Text:  "INFO",
			Style: pterm.NewStyle(pterm.FgGreen),
		}),
		Warning: generic.WithPrefix(pterm.Prefix{
			Text:  "WARN",
			Style: pterm.NewStyle(pterm.FgYellow),
		}),
		Error: generic.WithPrefix(pterm.Prefix{
			Text:  "ERRO",
			Style: pterm.NewStyle(pterm.FgRed),
		}),
		Section: &pterm.SectionPrinter{
			Style: pterm.NewStyle(pterm.FgMagenta, pterm.Bold),
			Level: 1,
		},
	}

	printer.Info.Writer = out
	printer.Success.Writer = out
	printer.Warning.Writer = errOut
	printer.Error.Writer = errOut
	printer.Section.Writer = out

	return printer
}

// Verbosef outputs verbose messages guarded by the corresponding flag.
func (p *Printer) Verbosef(format string, args ...interface{}) {
	if p.verbose {
		p.Info.Printfln(strings.TrimRight(format, "\n"), args...)
	}
}

// Step announces the beginning of a provisioning step.
func (p *Printer) Step(format string, args ...interface{}) {
	p.Info.Printfln(format, args...)
}

// Done reports the outcome of a provisioning step.
func (p *Printer) Done(format string, args ...interface{}) {
	p.Success.Printfln("-> "+format, args...)
}

// PrettyErr returns a user friendly error message. Errors returned by the AWS
// APIs are reduced to their code and message.
func PrettyErr(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		// Keep the context added by the caller in front of the API error.
		if prefix, _, ok := strings.Cut(err.Error(), ": "); ok && !strings.Contains(prefix, apiErr.ErrorCode()) {
			return prefix + ": " + msg
		}
		return msg
	}
	return err.Error()
}

// CheckErr prints a user friendly error and exits with a non-zero exit code.
func (p *Printer) CheckErr(err error) {
	if err == nil {
		return
	}
	p.Error.Println(PrettyErr(err))
	os.Exit(ExitCodeError)
}
