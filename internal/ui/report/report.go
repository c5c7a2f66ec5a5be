// Package report renders translation outcomes for humans and tools.
package report

import (
	"fmt"
	"io"

	"sl2c/internal/core/ports"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Render writes res to w in the named format.
func Render(w io.Writer, format string, res ports.TranslateResult) error {
	switch format {
	case FormatText, "":
		return Text(w, res)
	case FormatJSON:
		return JSON(w, res)
	case FormatSARIF:
		data, err := GenerateSARIF("", res.Files)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
